// Package srs implements the nine-stage spaced repetition progression.
//
// The engine is a pure function used for instant feedback in the UI. The
// server recomputes the stage on every review submission and its answer is
// the one written back to local storage.
package srs

// Stage is an ordinal position in the SRS ladder, 0 through 9.
type Stage int

const (
	StageInitiate    Stage = 0
	StageApprentice1 Stage = 1
	StageApprentice2 Stage = 2
	StageApprentice3 Stage = 3
	StageApprentice4 Stage = 4
	StageGuru1       Stage = 5
	StageGuru2       Stage = 6
	StageMaster      Stage = 7
	StageEnlightened Stage = 8
	StageBurned      Stage = 9
)

// MaxStage is the terminal stage. Burned items are never re-reviewed.
const MaxStage = StageBurned

// Name returns the display name of the stage group. Apprentice covers
// stages 1-4 and Guru covers 5-6, matching the server's grouping.
func (s Stage) Name() string {
	switch s {
	case StageInitiate:
		return "Initiate"
	case StageApprentice1, StageApprentice2, StageApprentice3, StageApprentice4:
		return "Apprentice"
	case StageGuru1, StageGuru2:
		return "Guru"
	case StageMaster:
		return "Master"
	case StageEnlightened:
		return "Enlightened"
	case StageBurned:
		return "Burned"
	default:
		return "Unknown"
	}
}

// Valid reports whether the stage is inside the 0..9 ladder.
func (s Stage) Valid() bool {
	return s >= StageInitiate && s <= StageBurned
}

// clamp coerces an out-of-range value to the nearest valid stage.
func clamp(s Stage) Stage {
	if s < StageInitiate {
		return StageInitiate
	}
	if s > StageBurned {
		return StageBurned
	}
	return s
}
