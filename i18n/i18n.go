// Package i18n translates the user-facing strings of xckit itself.
//
// Translations are gettext catalogs embedded in the binary under
// locales/{lang}/LC_MESSAGES/xckit.po and loaded by Init.
//
// Usage:
//
//	i18n.Init("")  // auto-detect from LANGUAGE/LC_ALL/LC_MESSAGES/LANG
//	fmt.Println(i18n.T("Nothing to translate"))
//	fmt.Printf(i18n.N("Found %d catalog", "Found %d catalogs", n), n)
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const domain = "xckit"

var (
	po   *gotext.Locale
	lang = "en"
)

// Init loads the catalog for lang. An empty lang is detected from the
// environment, following GNU gettext. Call it once before T or N.
func Init(l string) {
	if l == "" {
		l = detectLanguage()
	}
	lang = l

	po = gotext.NewLocaleFSWithPath(l, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// Lang returns the language passed to (or detected by) Init.
func Lang() string {
	return lang
}

// T translates msgid, returning it unchanged when there is no translation.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid, []any{}...)
}

// Tf translates format and formats it with args.
func Tf(format string, args ...any) string {
	return fmt.Sprintf(T(format), args...)
}

// N translates a message with plural forms, choosing the form for n.
// The result is not formatted.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage reads LANGUAGE, LC_ALL, LC_MESSAGES and LANG in that order.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		// LANGUAGE is a colon-separated preference list.
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// "ru_RU.UTF-8" -> "ru_RU", "de_DE@euro" -> "de_DE"
		if idx := strings.IndexAny(val, ".@"); idx >= 0 {
			val = val[:idx]
		}
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
