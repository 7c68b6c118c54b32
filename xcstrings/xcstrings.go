// Package xcstrings reads and writes Apple String Catalog (.xcstrings) files.
//
// The catalog is kept as a plain tree of Go values mirroring the JSON
// document. Flattening into translatable units lives in package localizable.
package xcstrings

import (
	"sort"
)

// SupportedVersion is the only catalog schema version this package accepts.
const SupportedVersion = "1.0"

// ---------------------------------------------------------------------------
// Enumerations
// ---------------------------------------------------------------------------

// State is the lifecycle state of a single string unit.
type State string

const (
	StateNew         State = "new"
	StateNeedsReview State = "needs_review"
	StateStale       State = "stale"
	StateTranslated  State = "translated"
)

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StateNew, StateNeedsReview, StateStale, StateTranslated:
		return true
	}
	return false
}

// ExtractionState records how an entry got into the catalog.
type ExtractionState string

const (
	ExtractionManual             ExtractionState = "manual"
	ExtractionExtractedWithValue ExtractionState = "extracted_with_value"
	ExtractionStale              ExtractionState = "stale"
	ExtractionMigrated           ExtractionState = "migrated"
	ExtractionUnknown            ExtractionState = "unknown"
)

// Valid reports whether e is a known extraction state.
func (e ExtractionState) Valid() bool {
	switch e {
	case ExtractionManual, ExtractionExtractedWithValue, ExtractionStale,
		ExtractionMigrated, ExtractionUnknown:
		return true
	}
	return false
}

// DeviceCategory keys a device variation.
type DeviceCategory string

const (
	DeviceIPad        DeviceCategory = "ipad"
	DeviceIPhone      DeviceCategory = "iphone"
	DeviceIPod        DeviceCategory = "ipod"
	DeviceMac         DeviceCategory = "mac"
	DeviceOther       DeviceCategory = "other"
	DeviceAppleTV     DeviceCategory = "appletv"
	DeviceAppleVision DeviceCategory = "applevision"
	DeviceAppleWatch  DeviceCategory = "applewatch"
)

// DeviceCategories lists the device categories in canonical order.
var DeviceCategories = []DeviceCategory{
	DeviceIPhone, DeviceIPod, DeviceIPad, DeviceMac,
	DeviceAppleTV, DeviceAppleVision, DeviceAppleWatch, DeviceOther,
}

// Valid reports whether d is a known device category.
func (d DeviceCategory) Valid() bool {
	switch d {
	case DeviceIPad, DeviceIPhone, DeviceIPod, DeviceMac, DeviceOther,
		DeviceAppleTV, DeviceAppleVision, DeviceAppleWatch:
		return true
	}
	return false
}

// PluralCategory keys a plural variation (CLDR categories).
type PluralCategory string

const (
	PluralZero  PluralCategory = "zero"
	PluralOne   PluralCategory = "one"
	PluralTwo   PluralCategory = "two"
	PluralFew   PluralCategory = "few"
	PluralMany  PluralCategory = "many"
	PluralOther PluralCategory = "other"
)

// PluralCategories lists the plural categories in CLDR order.
var PluralCategories = []PluralCategory{
	PluralZero, PluralOne, PluralTwo, PluralFew, PluralMany, PluralOther,
}

// Valid reports whether p is a known plural category.
func (p PluralCategory) Valid() bool {
	switch p {
	case PluralZero, PluralOne, PluralTwo, PluralFew, PluralMany, PluralOther:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Document tree
// ---------------------------------------------------------------------------

// Struct fields are declared in the same order the keys are sorted on disk.

// StringUnit is a single translated text with its state.
type StringUnit struct {
	State State  `json:"state"`
	Value string `json:"value"`
}

// Variation wraps the string unit of one device or plural category.
type Variation struct {
	StringUnit *StringUnit `json:"stringUnit"`
}

// Variations holds device and/or plural alternatives.
type Variations struct {
	Device map[DeviceCategory]Variation `json:"device,omitempty"`
	Plural map[PluralCategory]Variation `json:"plural,omitempty"`
}

// Empty reports whether v has no variation at all.
func (v *Variations) Empty() bool {
	return v == nil || (len(v.Device) == 0 && len(v.Plural) == 0)
}

// Substitution is a format argument whose text varies by device or plural.
type Substitution struct {
	ArgNum          int         `json:"argNum"`
	FormatSpecifier string      `json:"formatSpecifier"`
	Variations      *Variations `json:"variations,omitempty"`
}

// Localization is the payload of one entry for one language. Xcode writes a
// stringUnit alongside substitutions to hold the %#@arg@ template.
type Localization struct {
	StringUnit    *StringUnit             `json:"stringUnit,omitempty"`
	Substitutions map[string]Substitution `json:"substitutions,omitempty"`
	Variations    *Variations             `json:"variations,omitempty"`
}

// Empty reports whether l carries nothing.
func (l Localization) Empty() bool {
	return l.StringUnit == nil && len(l.Substitutions) == 0 && l.Variations.Empty()
}

// Entry is the record for one key of the catalog.
type Entry struct {
	Comment                string                  `json:"comment,omitempty"`
	ExtractionState        ExtractionState         `json:"extractionState,omitempty"`
	GeneratesSymbol        *bool                   `json:"generatesSymbol,omitempty"`
	IsCommentAutoGenerated *bool                   `json:"isCommentAutoGenerated,omitempty"`
	Localizations          map[string]Localization `json:"localizations,omitempty"`
	ShouldTranslate        *bool                   `json:"shouldTranslate,omitempty"`
}

// Translatable reports whether the entry should be sent for translation.
func (e *Entry) Translatable() bool {
	return e.ShouldTranslate == nil || *e.ShouldTranslate
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	out := *e
	out.GeneratesSymbol = cloneBool(e.GeneratesSymbol)
	out.IsCommentAutoGenerated = cloneBool(e.IsCommentAutoGenerated)
	out.ShouldTranslate = cloneBool(e.ShouldTranslate)
	if e.Localizations != nil {
		out.Localizations = make(map[string]Localization, len(e.Localizations))
		for lang, loc := range e.Localizations {
			out.Localizations[lang] = loc.clone()
		}
	}
	return &out
}

func (l Localization) clone() Localization {
	out := Localization{Variations: l.Variations.clone()}
	if l.StringUnit != nil {
		su := *l.StringUnit
		out.StringUnit = &su
	}
	if l.Substitutions != nil {
		out.Substitutions = make(map[string]Substitution, len(l.Substitutions))
		for id, sub := range l.Substitutions {
			sub.Variations = sub.Variations.clone()
			out.Substitutions[id] = sub
		}
	}
	return out
}

func (v *Variations) clone() *Variations {
	if v == nil {
		return nil
	}
	out := &Variations{}
	if v.Device != nil {
		out.Device = make(map[DeviceCategory]Variation, len(v.Device))
		for k, vv := range v.Device {
			out.Device[k] = vv.clone()
		}
	}
	if v.Plural != nil {
		out.Plural = make(map[PluralCategory]Variation, len(v.Plural))
		for k, vv := range v.Plural {
			out.Plural[k] = vv.clone()
		}
	}
	return out
}

func (v Variation) clone() Variation {
	if v.StringUnit == nil {
		return v
	}
	su := *v.StringUnit
	return Variation{StringUnit: &su}
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// Catalog is the root of an .xcstrings document.
type Catalog struct {
	SourceLanguage string            `json:"sourceLanguage"`
	Strings        map[string]*Entry `json:"strings"`
	Version        string            `json:"version"`
}

// New returns an empty catalog for the given source language.
func New(sourceLanguage string) *Catalog {
	return &Catalog{
		SourceLanguage: sourceLanguage,
		Strings:        make(map[string]*Entry),
		Version:        SupportedVersion,
	}
}

// Keys returns the entry keys in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.Strings))
	for k := range c.Strings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Languages returns every language that has at least one localization,
// sorted, with the source language first when present.
func (c *Catalog) Languages() []string {
	seen := make(map[string]bool)
	for _, e := range c.Strings {
		for lang := range e.Localizations {
			seen[lang] = true
		}
	}
	var langs []string
	for lang := range seen {
		if lang != c.SourceLanguage {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	if seen[c.SourceLanguage] {
		langs = append([]string{c.SourceLanguage}, langs...)
	}
	return langs
}

// TargetLanguages returns Languages without the source language.
func (c *Catalog) TargetLanguages() []string {
	var out []string
	for _, lang := range c.Languages() {
		if lang != c.SourceLanguage {
			out = append(out, lang)
		}
	}
	return out
}

// RemoveLanguages deletes the given languages from every entry and returns
// the number of localizations removed. The source language is never removed.
func (c *Catalog) RemoveLanguages(langs []string) int {
	removed := 0
	for _, e := range c.Strings {
		for _, lang := range langs {
			if lang == c.SourceLanguage {
				continue
			}
			if _, ok := e.Localizations[lang]; ok {
				delete(e.Localizations, lang)
				removed++
			}
		}
		if len(e.Localizations) == 0 {
			e.Localizations = nil
		}
	}
	return removed
}
