package localizable

import (
	"fmt"

	"github.com/minios-linux/xckit/xcstrings"
)

// Session is the flat working view of a catalog. It owns every String of the
// catalog in a single slice; the catalog stays the system of record and only
// changes on Commit.
type Session struct {
	catalog   *xcstrings.Catalog
	languages []string
	keys      []string
	strings   []String
	index     map[string][]int
}

// NewSession flattens every entry of c for the given target languages. A nil
// languages slice selects every language already present in the catalog.
func NewSession(c *xcstrings.Catalog, languages []string) (*Session, error) {
	if languages == nil {
		languages = c.TargetLanguages()
	}
	s := &Session{
		catalog:   c,
		languages: languages,
		keys:      c.Keys(),
		index:     make(map[string][]int, len(c.Strings)),
	}
	for _, key := range s.keys {
		strs, err := Unflatten(c.Strings[key], key, c.SourceLanguage, languages)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		for _, str := range strs {
			s.index[key] = append(s.index[key], len(s.strings))
			s.strings = append(s.strings, str)
		}
	}
	return s, nil
}

// Catalog returns the catalog the session was built from.
func (s *Session) Catalog() *xcstrings.Catalog { return s.catalog }

// SourceLanguage returns the catalog's source language.
func (s *Session) SourceLanguage() string { return s.catalog.SourceLanguage }

// Languages returns the target languages of the session.
func (s *Session) Languages() []string { return s.languages }

// Keys returns the entry keys in processing order.
func (s *Session) Keys() []string { return s.keys }

// Len returns the number of strings in the session.
func (s *Session) Len() int { return len(s.strings) }

// Indices returns the indices of the strings belonging to key.
func (s *Session) Indices(key string) []int { return s.index[key] }

// At returns the string at index i. The pointer stays valid for the life of
// the session.
func (s *Session) At(i int) *String { return &s.strings[i] }

// Entry returns the catalog entry for key.
func (s *Session) Entry(key string) *xcstrings.Entry { return s.catalog.Strings[key] }

// Commit folds every string back into the catalog entries.
func (s *Session) Commit() error {
	for _, key := range s.keys {
		idx := s.index[key]
		strs := make([]String, len(idx))
		for i, j := range idx {
			strs[i] = s.strings[j]
		}
		entry, err := Fold(s.catalog.Strings[key], strs)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		s.catalog.Strings[key] = entry
	}
	return nil
}

// MarkNeedsReview flags every translated string of the given languages for
// review. An empty list selects all target languages. It returns the number
// of strings that changed state.
func (s *Session) MarkNeedsReview(languages []string) int {
	want := make(map[string]bool, len(languages))
	for _, l := range languages {
		want[l] = true
	}
	changed := 0
	for i := range s.strings {
		str := &s.strings[i]
		if str.IsSource || !str.hasValue {
			continue
		}
		if len(want) > 0 && !want[str.Language] {
			continue
		}
		if str.State == xcstrings.StateTranslated {
			str.SetNeedsReview()
			changed++
		}
	}
	return changed
}

// Stats counts the strings of one language by state.
type Stats struct {
	Total       int
	Translated  int
	NeedsReview int
	New         int
	Stale       int
}

// Percent returns the share of translated strings.
func (st Stats) Percent() float64 {
	if st.Total == 0 {
		return 0
	}
	return float64(st.Translated) * 100 / float64(st.Total)
}

// Stats returns state counts for lang. Strings of untranslatable entries are
// not counted.
func (s *Session) Stats(lang string) Stats {
	var st Stats
	for i := range s.strings {
		str := &s.strings[i]
		if str.Language != lang {
			continue
		}
		if e := s.catalog.Strings[str.Key]; e != nil && !e.Translatable() {
			continue
		}
		st.Total++
		switch str.State {
		case xcstrings.StateTranslated:
			st.Translated++
		case xcstrings.StateNeedsReview:
			st.NeedsReview++
		case xcstrings.StateStale:
			st.Stale++
		default:
			st.New++
		}
	}
	return st
}
