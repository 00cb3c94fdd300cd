// Package answer checks user quiz input against a subject's accepted
// meanings and readings.
package answer

import (
	"strings"

	"github.com/asamadder/kodama/internal/store"
)

// normalize prepares input for comparison: trim surrounding whitespace,
// lowercase, and drop commas and periods so "one, 1" matches "one 1".
func normalize(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, ".", "")
	return s
}

// Check reports whether the user's answer matches any accepted answer.
// Comparison is exact after normalization — no typo tolerance. An answer
// that normalizes to the empty string never matches, even against an
// accepted answer that is itself empty.
func Check(userAnswer string, accepted []string) bool {
	normalized := normalize(userAnswer)
	if normalized == "" {
		return false
	}

	for _, a := range accepted {
		if normalize(a) == normalized {
			return true
		}
	}
	return false
}

// CheckMeaning checks the answer against the subject's accepted meanings.
func CheckMeaning(userAnswer string, subject *store.Subject) bool {
	return Check(userAnswer, subject.AcceptedMeanings())
}

// CheckReading checks the answer against the subject's accepted readings.
func CheckReading(userAnswer string, subject *store.Subject) bool {
	return Check(userAnswer, subject.AcceptedReadings())
}
