package localizable

import (
	"github.com/minios-linux/xckit/xcstrings"
)

// String is one translatable unit: a single (entry, language, kind) triple.
type String struct {
	// Key is the catalog key of the owning entry.
	Key string
	// Kind locates the string inside the localization.
	Kind Kind
	// Language is the language of this string.
	Language string
	// Source is the source-language text this string translates.
	Source string
	// State is the lifecycle state.
	State xcstrings.State
	// IsSource marks strings of the catalog's source language.
	IsSource bool
	// Synthetic marks strings that did not exist in the document: the key
	// standing in for a missing source localization, or an empty
	// placeholder for an untranslated language.
	Synthetic bool

	value    string
	hasValue bool
}

// Value returns the translated text and whether there is one.
func (s *String) Value() (string, bool) {
	return s.value, s.hasValue
}

// HasValue reports whether the string carries a translation.
func (s *String) HasValue() bool {
	return s.hasValue
}

// SetTranslation stores v and moves the string to translated, whatever its
// previous state.
func (s *String) SetTranslation(v string) xcstrings.State {
	s.value = v
	s.hasValue = true
	s.State = xcstrings.StateTranslated
	return s.State
}

// SetNeedsReview flags a translated string for review. Strings in any other
// state are left as they are.
func (s *String) SetNeedsReview() xcstrings.State {
	if s.State == xcstrings.StateTranslated {
		s.State = xcstrings.StateNeedsReview
	}
	return s.State
}

// SetTranslated accepts a string that was waiting for review. Strings in any
// other state are left as they are.
func (s *String) SetTranslated() xcstrings.State {
	if s.State == xcstrings.StateNeedsReview {
		s.State = xcstrings.StateTranslated
	}
	return s.State
}
