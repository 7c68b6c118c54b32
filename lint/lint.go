// Package lint checks translated strings against their source with a list
// of simple offline rules.
package lint

import (
	"strings"
	"unicode"

	"github.com/minios-linux/xckit/localizable"
)

// Status is the verdict of a rule.
type Status int

const (
	Good Status = iota
	Bad
)

// Rule is a pure check of a translation against its source.
type Rule struct {
	// Name identifies the rule in reports.
	Name string
	// Check returns Bad when the translation violates the rule.
	Check func(source, sourceLanguage, translation, targetLanguage string) Status
}

// UnbalancedWhitespace requires the translation to start and end with the same
// whitespace as the source.
var UnbalancedWhitespace = Rule{
	Name: "unbalanced_whitespace",
	Check: func(source, _, translation, _ string) Status {
		if leading(source) != leading(translation) || trailing(source) != trailing(translation) {
			return Bad
		}
		return Good
	},
}

// SpecialCharactersNotInSource flags backticks the model added on its own,
// usually leftovers of a markdown code fence.
var SpecialCharactersNotInSource = Rule{
	Name: "special_characters_not_in_source",
	Check: func(source, _, translation, _ string) Status {
		if strings.Contains(translation, "`") && !strings.Contains(source, "`") {
			return Bad
		}
		return Good
	},
}

// DefaultRules is the built-in rule list, in evaluation order.
var DefaultRules = []Rule{
	UnbalancedWhitespace,
	SpecialCharactersNotInSource,
}

func leading(s string) string {
	return s[:len(s)-len(strings.TrimLeftFunc(s, unicode.IsSpace))]
}

func trailing(s string) string {
	trimmed := strings.TrimRightFunc(s, unicode.IsSpace)
	if trimmed == "" {
		// All-whitespace strings are counted once, as leading.
		return ""
	}
	return s[len(trimmed):]
}

// Linter runs rules over translations.
type Linter struct {
	// Rules are evaluated in order; nil means DefaultRules.
	Rules []Rule
	// OnLog receives one line per failing string.
	OnLog func(format string, args ...any)
	// Verbose also logs passing strings.
	Verbose bool
}

func (l *Linter) log(format string, args ...any) {
	if l.OnLog != nil {
		l.OnLog(format, args...)
	}
}

func (l *Linter) rules() []Rule {
	if l.Rules != nil {
		return l.Rules
	}
	return DefaultRules
}

// Check returns the first rule the translation breaks. Later rules are not
// evaluated once one has failed.
func (l *Linter) Check(source, sourceLanguage, translation, targetLanguage string) (Rule, bool) {
	for _, r := range l.rules() {
		if r.Check(source, sourceLanguage, translation, targetLanguage) == Bad {
			return r, false
		}
	}
	return Rule{}, true
}

// Lint checks every translated string of the given languages and flags the
// failing ones for review. Passing strings are left as they are. It returns
// the number of failing and passing strings.
func (l *Linter) Lint(s *localizable.Session, languages []string) (failed, passed int) {
	want := make(map[string]bool, len(languages))
	for _, lang := range languages {
		want[lang] = true
	}

	for _, key := range s.Keys() {
		for _, i := range s.Indices(key) {
			str := s.At(i)
			if !want[str.Language] {
				continue
			}
			value, ok := str.Value()
			if !ok {
				continue
			}
			rule, good := l.Check(str.Source, s.SourceLanguage(), value, str.Language)
			if good {
				passed++
				if l.Verbose {
					l.log("[%s] %q passed", str.Language, key)
				}
				continue
			}
			failed++
			str.SetNeedsReview()
			l.log("[%s] %q failed %s: %q -> %q", str.Language, key, rule.Name, str.Source, value)
		}
	}
	return failed, passed
}
