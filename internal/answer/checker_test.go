package answer

import (
	"testing"

	"github.com/asamadder/kodama/internal/store"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		accepted []string
		want     bool
	}{
		{"exact match", "one", []string{"one"}, true},
		{"case insensitive", "ONE", []string{"one"}, true},
		{"surrounding whitespace", "  ONE  ", []string{"one"}, true},
		{"trailing period stripped", "One.", []string{"one"}, true},
		{"commas stripped", "one, thing", []string{"one thing"}, true},
		{"matches any accepted answer", "ground", []string{"one", "ground"}, true},
		{"no match", "two", []string{"one"}, false},
		{"empty input", "", []string{"one"}, false},
		{"whitespace-only input", "   ", []string{"one"}, false},
		{"empty input never matches empty accepted", "", []string{""}, false},
		{"punctuation-only input", ".,", []string{""}, false},
		{"no accepted answers", "one", nil, false},
		{"kana reading", "いち", []string{"いち"}, true},
		{"no fuzzy matching", "onee", []string{"one"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Check(tt.input, tt.accepted); got != tt.want {
				t.Errorf("Check(%q, %v) = %v, want %v", tt.input, tt.accepted, got, tt.want)
			}
		})
	}
}

func TestCheckMeaningAndReading(t *testing.T) {
	subject := &store.Subject{
		ID:   100,
		Type: store.SubjectKanji,
		Meanings: []store.Meaning{
			{Meaning: "One", Primary: true, AcceptedAnswer: true},
			{Meaning: "Single", AcceptedAnswer: false},
		},
		Readings: []store.Reading{
			{Reading: "いち", Primary: true, AcceptedAnswer: true},
			{Reading: "ひと", AcceptedAnswer: false},
		},
	}

	if !CheckMeaning("one", subject) {
		t.Error("CheckMeaning(one) = false, want true")
	}
	if CheckMeaning("single", subject) {
		t.Error("CheckMeaning(single) = true, want false — not an accepted answer")
	}
	if !CheckReading("いち", subject) {
		t.Error("CheckReading(いち) = false, want true")
	}
	if CheckReading("ひと", subject) {
		t.Error("CheckReading(ひと) = true, want false — not an accepted answer")
	}
	if CheckReading("one", subject) {
		t.Error("CheckReading(one) = true, want false — meanings are not readings")
	}
}

func TestCheckReading_RadicalHasNoReadings(t *testing.T) {
	radical := &store.Subject{
		ID:   1,
		Type: store.SubjectRadical,
		Meanings: []store.Meaning{
			{Meaning: "Ground", Primary: true, AcceptedAnswer: true},
		},
	}

	if radical.HasReadings() {
		t.Fatal("radical reports HasReadings() = true")
	}
	if CheckReading("anything", radical) {
		t.Error("CheckReading against a radical = true, want false")
	}
}
