// Package langmeta provides language display metadata (native and English
// names, emoji flags) for prompts and CLI output.
package langmeta

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	// Code is the canonical BCP 47 tag.
	Code string
	// Name is the language's name for itself.
	Name string
	// EnglishName is the English name, used in AI prompts.
	EnglishName string
	// Flag is the emoji flag of the most likely country, or "".
	Flag string
}

// Common lists the languages offered by default, in the tags Xcode uses.
var Common = []string{
	"ar", "ca", "zh-HK", "zh-Hans", "zh-Hant", "hr", "cs", "da", "nl", "en",
	"en-AU", "en-IN", "en-GB", "fi", "fr", "fr-CA", "de", "el", "he", "hi",
	"hu", "id", "it", "ja", "ko", "ms", "nb", "pl", "pt-BR", "pt-PT",
	"ro", "ru", "sk", "es", "es-419", "sv", "th", "tr", "uk", "vi",
}

// canonicalize normalizes user input such as "pt_br" or " EN-us " to a
// canonical tag. Unparseable input is returned trimmed.
func canonicalize(lang string) string {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	return tag.String()
}

// Canonical returns the canonical form of a language tag.
func Canonical(lang string) string {
	return canonicalize(lang)
}

// Validate reports an error when lang is not a well-formed language tag.
func Validate(lang string) error {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return fmt.Errorf("empty language code")
	}
	if _, err := language.Parse(lang); err != nil {
		return fmt.Errorf("invalid language code %q: %w", lang, err)
	}
	return nil
}

// Resolve returns display metadata for lang. Unknown or invalid tags resolve
// to the code itself as name.
func Resolve(lang string) Meta {
	code := canonicalize(lang)
	m := Meta{Code: code, Name: code, EnglishName: code}
	tag, err := language.Parse(code)
	if err != nil {
		return m
	}
	if n := display.Self.Name(tag); n != "" {
		m.Name = n
	}
	if n := display.English.Tags().Name(tag); n != "" {
		m.EnglishName = n
	}
	if region, conf := tag.Region(); conf != language.No && region.IsCountry() {
		m.Flag = flag(region.String())
	}
	return m
}

// EnglishName returns the English name of lang.
func EnglishName(lang string) string {
	return Resolve(lang).EnglishName
}

// flag turns a two-letter region code into its regional indicator pair.
func flag(region string) string {
	if len(region) != 2 {
		return ""
	}
	var b strings.Builder
	for _, c := range strings.ToUpper(region) {
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (c - 'A'))
	}
	return b.String()
}
