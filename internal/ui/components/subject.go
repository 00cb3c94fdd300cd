package components

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/asamadder/kodama/internal/store"
	"github.com/asamadder/kodama/internal/ui/theme"
)

// SubjectColor returns the display color for a subject type.
func SubjectColor(t store.SubjectType) color.Color {
	switch t {
	case store.SubjectRadical:
		return theme.Radical
	case store.SubjectKanji:
		return theme.Kanji
	default:
		return theme.Vocabulary
	}
}

// SubjectGlyph draws the subject characters in its type color, centered.
// Image-only radicals fall back to the slug.
func SubjectGlyph(sub *store.Subject, width int) string {
	chars := sub.Characters
	if chars == "" {
		chars = sub.Slug
	}

	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(SubjectColor(sub.Type)).
		Padding(1, 3)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(chars))
}
