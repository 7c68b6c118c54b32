package localizable

import (
	"errors"
	"fmt"
	"sort"

	"github.com/minios-linux/xckit/xcstrings"
)

var (
	// ErrSourceNotFound is returned when a target string has no source counterpart.
	ErrSourceNotFound = errors.New("no matching source string")
	// ErrAmbiguousSource is returned when a target string matches several source strings.
	ErrAmbiguousSource = errors.New("ambiguous source string")
	// ErrUnsupported is returned for localization shapes that cannot be flattened.
	ErrUnsupported = errors.New("unsupported localization")
)

// ---------------------------------------------------------------------------
// Build context
// ---------------------------------------------------------------------------

type contextType int

const (
	// isSource: the strings being built are themselves the source.
	isSource contextType = iota
	// needsLookup: each string's source is found among sources by kind.
	needsLookup
)

type buildContext struct {
	typ     contextType
	sources []String
}

// sourceFor returns the source text for a string of the given kind whose own
// value is value.
func (c buildContext) sourceFor(kind Kind, value string) (string, error) {
	switch c.typ {
	case isSource:
		return value, nil
	case needsLookup:
		src, err := lookup(c.sources, kind)
		if err != nil {
			return "", err
		}
		return src.Source, nil
	default:
		panic(fmt.Sprintf("localizable: unknown context type %d", c.typ))
	}
}

// lookup finds the single source string matching kind.
func lookup(sources []String, kind Kind) (*String, error) {
	var found []int
	for i := range sources {
		if kind.matches(sources[i].Kind) {
			found = append(found, i)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w for %s", ErrSourceNotFound, kind)
	case 1:
		return &sources[found[0]], nil
	default:
		return nil, fmt.Errorf("%w: %d candidates for %s", ErrAmbiguousSource, len(found), kind)
	}
}

// ---------------------------------------------------------------------------
// Unflatten
// ---------------------------------------------------------------------------

// Unflatten turns an entry into flat strings: first the source-language
// strings, then those of each target language in order. A target language
// without a localization gets one empty string per source kind, in state new.
func Unflatten(entry *xcstrings.Entry, key, sourceLanguage string, targetLanguages []string) ([]String, error) {
	if entry == nil {
		entry = &xcstrings.Entry{}
	}

	var sources []String
	if loc, ok := entry.Localizations[sourceLanguage]; ok {
		var err error
		sources, err = decompose(loc, key, sourceLanguage, buildContext{typ: isSource})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sourceLanguage, err)
		}
		for i := range sources {
			sources[i].IsSource = true
		}
	} else {
		sources = []String{{
			Key:       key,
			Kind:      Standalone,
			Language:  sourceLanguage,
			Source:    key,
			State:     xcstrings.StateTranslated,
			IsSource:  true,
			Synthetic: true,
			value:     key,
			hasValue:  true,
		}}
	}

	out := append([]String(nil), sources...)
	seen := map[string]bool{sourceLanguage: true}
	for _, lang := range targetLanguages {
		if seen[lang] {
			continue
		}
		seen[lang] = true

		loc, ok := entry.Localizations[lang]
		if !ok {
			for _, src := range sources {
				out = append(out, String{
					Key:       key,
					Kind:      src.Kind,
					Language:  lang,
					Source:    src.Source,
					State:     xcstrings.StateNew,
					Synthetic: true,
				})
			}
			continue
		}

		strs, err := decompose(loc, key, lang, buildContext{typ: needsLookup, sources: sources})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", lang, err)
		}
		out = append(out, strs...)
	}
	return out, nil
}

// decompose flattens a single localization.
func decompose(loc xcstrings.Localization, key, lang string, ctx buildContext) ([]String, error) {
	if !loc.Variations.Empty() && (loc.StringUnit != nil || len(loc.Substitutions) > 0) {
		return nil, fmt.Errorf("%w: variations combined with stringUnit or substitutions", ErrUnsupported)
	}

	var out []String
	add := func(kind Kind, su *xcstrings.StringUnit) error {
		src, err := ctx.sourceFor(kind, su.Value)
		if err != nil {
			return err
		}
		out = append(out, String{
			Key:      key,
			Kind:     kind,
			Language: lang,
			Source:   src,
			State:    su.State,
			value:    su.Value,
			hasValue: true,
		})
		return nil
	}

	if loc.StringUnit != nil {
		if err := add(Standalone, loc.StringUnit); err != nil {
			return nil, err
		}
	}

	for _, id := range substitutionIDs(loc.Substitutions) {
		sub := loc.Substitutions[id]
		if sub.Variations.Empty() {
			return nil, fmt.Errorf("%w: substitution %q has no variations", ErrUnsupported, id)
		}
		err := eachVariation(sub.Variations, func(v Variant, su *xcstrings.StringUnit) error {
			return add(Replacement(id, sub.ArgNum, sub.FormatSpecifier, v), su)
		})
		if err != nil {
			return nil, fmt.Errorf("substitution %q: %w", id, err)
		}
	}

	if !loc.Variations.Empty() {
		err := eachVariation(loc.Variations, func(v Variant, su *xcstrings.StringUnit) error {
			return add(Variation(v), su)
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// eachVariation visits device variants then plural variants in canonical order.
func eachVariation(vs *xcstrings.Variations, fn func(Variant, *xcstrings.StringUnit) error) error {
	for _, cat := range xcstrings.DeviceCategories {
		if v, ok := vs.Device[cat]; ok {
			if err := fn(DeviceVariant(cat), v.StringUnit); err != nil {
				return err
			}
		}
	}
	for _, cat := range xcstrings.PluralCategories {
		if v, ok := vs.Plural[cat]; ok {
			if err := fn(PluralVariant(cat), v.StringUnit); err != nil {
				return err
			}
		}
	}
	return nil
}

// substitutionIDs returns the substitution keys ordered by argument number.
func substitutionIDs(subs map[string]xcstrings.Substitution) []string {
	ids := make([]string, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := subs[ids[i]], subs[ids[j]]
		if a.ArgNum != b.ArgNum {
			return a.ArgNum < b.ArgNum
		}
		return ids[i] < ids[j]
	})
	return ids
}

// ---------------------------------------------------------------------------
// Fold
// ---------------------------------------------------------------------------

// Fold rebuilds an entry from base and the flat strings of that entry.
// Languages with no strings keep base's localization. Strings without a
// value are dropped, and a language left with nothing is removed. The
// synthetic source string never materializes in the document.
func Fold(base *xcstrings.Entry, strs []String) (*xcstrings.Entry, error) {
	out := base.Clone()
	if out == nil {
		out = &xcstrings.Entry{}
	}

	var order []string
	groups := make(map[string][]String)
	for _, s := range strs {
		if _, ok := groups[s.Language]; !ok {
			order = append(order, s.Language)
		}
		groups[s.Language] = append(groups[s.Language], s)
	}

	for _, lang := range order {
		group := groups[lang]
		if syntheticSource(group) {
			continue
		}
		loc, err := foldLocalization(group)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", lang, err)
		}
		if loc.Empty() {
			delete(out.Localizations, lang)
			continue
		}
		if out.Localizations == nil {
			out.Localizations = make(map[string]xcstrings.Localization)
		}
		out.Localizations[lang] = loc
	}
	if len(out.Localizations) == 0 {
		out.Localizations = nil
	}
	return out, nil
}

func syntheticSource(group []String) bool {
	for _, s := range group {
		if !s.IsSource || !s.Synthetic {
			return false
		}
	}
	return true
}

func foldLocalization(group []String) (xcstrings.Localization, error) {
	var loc xcstrings.Localization
	for _, s := range group {
		if !s.hasValue {
			continue
		}
		unit := &xcstrings.StringUnit{State: s.State, Value: s.value}

		switch s.Kind.Type {
		case KindStandalone:
			loc.StringUnit = unit

		case KindReplacement:
			if s.Kind.Variant.Type == VariantNone {
				return loc, fmt.Errorf("%w: %s without variant", ErrUnsupported, s.Kind)
			}
			if loc.Substitutions == nil {
				loc.Substitutions = make(map[string]xcstrings.Substitution)
			}
			id := s.Kind.argID()
			sub := loc.Substitutions[id]
			sub.ArgNum = s.Kind.ArgNum
			sub.FormatSpecifier = s.Kind.FormatSpecifier
			if sub.Variations == nil {
				sub.Variations = &xcstrings.Variations{}
			}
			putVariant(sub.Variations, s.Kind.Variant, unit)
			loc.Substitutions[id] = sub

		case KindVariation:
			if s.Kind.Variant.Type == VariantNone {
				return loc, fmt.Errorf("%w: %s without variant", ErrUnsupported, s.Kind)
			}
			if loc.Variations == nil {
				loc.Variations = &xcstrings.Variations{}
			}
			putVariant(loc.Variations, s.Kind.Variant, unit)

		default:
			return loc, fmt.Errorf("%w: %s", ErrUnsupported, s.Kind)
		}
	}

	if loc.Variations != nil && (loc.StringUnit != nil || len(loc.Substitutions) > 0) {
		return loc, fmt.Errorf("%w: variations combined with stringUnit or substitutions", ErrUnsupported)
	}
	return loc, nil
}

func putVariant(vs *xcstrings.Variations, v Variant, unit *xcstrings.StringUnit) {
	switch v.Type {
	case VariantDevice:
		if vs.Device == nil {
			vs.Device = make(map[xcstrings.DeviceCategory]xcstrings.Variation)
		}
		vs.Device[xcstrings.DeviceCategory(v.Category)] = xcstrings.Variation{StringUnit: unit}
	case VariantPlural:
		if vs.Plural == nil {
			vs.Plural = make(map[xcstrings.PluralCategory]xcstrings.Variation)
		}
		vs.Plural[xcstrings.PluralCategory(v.Category)] = xcstrings.Variation{StringUnit: unit}
	}
}
