package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// SubjectType discriminates the payload variant of a subject resource.
type SubjectType string

const (
	SubjectRadical        SubjectType = "radical"
	SubjectKanji          SubjectType = "kanji"
	SubjectVocabulary     SubjectType = "vocabulary"
	SubjectKanaVocabulary SubjectType = "kana_vocabulary"
)

// Meaning is one English meaning attached to a subject.
type Meaning struct {
	Meaning        string `json:"meaning"`
	Primary        bool   `json:"primary"`
	AcceptedAnswer bool   `json:"accepted_answer"`
}

// Reading is one reading attached to a kanji or vocabulary subject.
type Reading struct {
	Reading        string `json:"reading"`
	Primary        bool   `json:"primary"`
	AcceptedAnswer bool   `json:"accepted_answer"`
	Kind           string `json:"type,omitempty"`
}

// AuxiliaryMeaning is a whitelist/blacklist entry the server keeps beside
// the main meanings.
type AuxiliaryMeaning struct {
	Meaning string `json:"meaning"`
	Type    string `json:"type"`
}

// ContextSentence is an example sentence pair on vocabulary subjects.
type ContextSentence struct {
	EN string `json:"en"`
	JA string `json:"ja"`
}

// RadicalData is the radical variant payload. Characters is a pointer
// because some radicals are image-only.
type RadicalData struct {
	CreatedAt         time.Time          `json:"created_at"`
	Level             int                `json:"level"`
	Slug              string             `json:"slug"`
	HiddenAt          *time.Time         `json:"hidden_at"`
	DocumentURL       string             `json:"document_url"`
	Characters        *string            `json:"characters"`
	Meanings          []Meaning          `json:"meanings"`
	AuxiliaryMeanings []AuxiliaryMeaning `json:"auxiliary_meanings"`
	MeaningMnemonic   string             `json:"meaning_mnemonic"`
	LessonPosition    int                `json:"lesson_position"`
}

// KanjiData is the kanji variant payload.
type KanjiData struct {
	CreatedAt           time.Time          `json:"created_at"`
	Level               int                `json:"level"`
	Slug                string             `json:"slug"`
	HiddenAt            *time.Time         `json:"hidden_at"`
	DocumentURL         string             `json:"document_url"`
	Characters          string             `json:"characters"`
	Meanings            []Meaning          `json:"meanings"`
	AuxiliaryMeanings   []AuxiliaryMeaning `json:"auxiliary_meanings"`
	Readings            []Reading          `json:"readings"`
	ComponentSubjectIDs []int              `json:"component_subject_ids"`
	MeaningMnemonic     string             `json:"meaning_mnemonic"`
	ReadingMnemonic     string             `json:"reading_mnemonic"`
	LessonPosition      int                `json:"lesson_position"`
}

// VocabularyData is the vocabulary variant payload. Kana-only vocabulary
// shares this shape with an empty component list.
type VocabularyData struct {
	CreatedAt           time.Time          `json:"created_at"`
	Level               int                `json:"level"`
	Slug                string             `json:"slug"`
	HiddenAt            *time.Time         `json:"hidden_at"`
	DocumentURL         string             `json:"document_url"`
	Characters          string             `json:"characters"`
	Meanings            []Meaning          `json:"meanings"`
	AuxiliaryMeanings   []AuxiliaryMeaning `json:"auxiliary_meanings"`
	Readings            []Reading          `json:"readings"`
	PartsOfSpeech       []string           `json:"parts_of_speech"`
	ComponentSubjectIDs []int              `json:"component_subject_ids"`
	ContextSentences    []ContextSentence  `json:"context_sentences"`
	MeaningMnemonic     string             `json:"meaning_mnemonic"`
	ReadingMnemonic     string             `json:"reading_mnemonic"`
	LessonPosition      int                `json:"lesson_position"`
}

// Subject is a tagged union over the three payload variants. Exactly one
// of Radical, Kanji, Vocabulary is non-nil, keyed by Type. Session logic
// should use the projection methods rather than branching on the variant.
type Subject struct {
	ID            int
	Type          SubjectType
	URL           string
	DataUpdatedAt *time.Time

	Radical    *RadicalData
	Kanji      *KanjiData
	Vocabulary *VocabularyData
}

// UnmarshalJSON decodes the envelope and dispatches the payload on the
// object discriminator.
func (s *Subject) UnmarshalJSON(b []byte) error {
	var env struct {
		ID            int             `json:"id"`
		Object        string          `json:"object"`
		URL           string          `json:"url"`
		DataUpdatedAt *time.Time      `json:"data_updated_at"`
		Data          json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}

	s.ID = env.ID
	s.Type = SubjectType(env.Object)
	s.URL = env.URL
	s.DataUpdatedAt = env.DataUpdatedAt

	switch s.Type {
	case SubjectRadical:
		s.Radical = &RadicalData{}
		return json.Unmarshal(env.Data, s.Radical)
	case SubjectKanji:
		s.Kanji = &KanjiData{}
		return json.Unmarshal(env.Data, s.Kanji)
	case SubjectVocabulary, SubjectKanaVocabulary:
		s.Vocabulary = &VocabularyData{}
		return json.Unmarshal(env.Data, s.Vocabulary)
	default:
		return fmt.Errorf("unknown subject type %q", env.Object)
	}
}

// Characters returns the display glyph, or "" for image-only radicals.
func (s *Subject) Characters() string {
	switch {
	case s.Radical != nil:
		if s.Radical.Characters != nil {
			return *s.Radical.Characters
		}
		return ""
	case s.Kanji != nil:
		return s.Kanji.Characters
	case s.Vocabulary != nil:
		return s.Vocabulary.Characters
	}
	return ""
}

// Slug returns the URL slug of the subject.
func (s *Subject) Slug() string {
	switch {
	case s.Radical != nil:
		return s.Radical.Slug
	case s.Kanji != nil:
		return s.Kanji.Slug
	case s.Vocabulary != nil:
		return s.Vocabulary.Slug
	}
	return ""
}

// Level returns the level at which the subject unlocks.
func (s *Subject) Level() int {
	switch {
	case s.Radical != nil:
		return s.Radical.Level
	case s.Kanji != nil:
		return s.Kanji.Level
	case s.Vocabulary != nil:
		return s.Vocabulary.Level
	}
	return 0
}

// Meanings returns the subject's meanings regardless of variant.
func (s *Subject) Meanings() []Meaning {
	switch {
	case s.Radical != nil:
		return s.Radical.Meanings
	case s.Kanji != nil:
		return s.Kanji.Meanings
	case s.Vocabulary != nil:
		return s.Vocabulary.Meanings
	}
	return nil
}

// Readings returns the subject's readings. Radicals return nil.
func (s *Subject) Readings() []Reading {
	switch {
	case s.Kanji != nil:
		return s.Kanji.Readings
	case s.Vocabulary != nil:
		return s.Vocabulary.Readings
	}
	return nil
}

// HasReadings reports whether a reading question exists for this subject.
func (s *Subject) HasReadings() bool {
	return len(s.Readings()) > 0
}
