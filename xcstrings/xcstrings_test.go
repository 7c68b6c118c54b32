package xcstrings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCatalog = `{
  "sourceLanguage" : "en",
  "strings" : {
    "%lld items" : {
      "comment" : "Item counter",
      "localizations" : {
        "en" : {
          "variations" : {
            "plural" : {
              "one" : {
                "stringUnit" : {
                  "state" : "translated",
                  "value" : "%lld item"
                }
              },
              "other" : {
                "stringUnit" : {
                  "state" : "translated",
                  "value" : "%lld items"
                }
              }
            }
          }
        }
      }
    },
    "Hello" : {
      "extractionState" : "manual",
      "localizations" : {
        "fr" : {
          "stringUnit" : {
            "state" : "needs_review",
            "value" : "Bonjour <b>"
          }
        }
      }
    },
    "Skip" : {
      "shouldTranslate" : false
    }
  },
  "version" : "1.0"
}`

func TestParseAndMarshalRoundTrip(t *testing.T) {
	c, err := Parse([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.SourceLanguage != "en" {
		t.Errorf("SourceLanguage = %q, want en", c.SourceLanguage)
	}
	if got := len(c.Strings); got != 3 {
		t.Fatalf("len(Strings) = %d, want 3", got)
	}
	if c.Strings["Skip"].Translatable() {
		t.Error("Skip should not be translatable")
	}
	if !c.Strings["Hello"].Translatable() {
		t.Error("Hello should be translatable")
	}

	data, err := c.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != sampleCatalog {
		t.Errorf("Marshal output differs from input\ngot:\n%s\nwant:\n%s", data, sampleCatalog)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"bad json", `{"sourceLanguage": "en",`, ErrMalformed},
		{"future version", `{"sourceLanguage":"en","strings":{},"version":"2.0"}`, ErrUnsupportedVersion},
		{"missing version", `{"sourceLanguage":"en","strings":{}}`, ErrUnsupportedVersion},
		{"bad source language", `{"sourceLanguage":"not a tag","strings":{},"version":"1.0"}`, ErrMalformed},
		{"unknown state", `{"sourceLanguage":"en","version":"1.0","strings":{"a":{"localizations":{"fr":{"stringUnit":{"state":"done","value":"x"}}}}}}`, ErrMalformed},
		{"unknown extraction state", `{"sourceLanguage":"en","version":"1.0","strings":{"a":{"extractionState":"guessed"}}}`, ErrMalformed},
		{"unknown plural", `{"sourceLanguage":"en","version":"1.0","strings":{"a":{"localizations":{"en":{"variations":{"plural":{"lots":{"stringUnit":{"state":"new","value":""}}}}}}}}}`, ErrMalformed},
		{"unknown device", `{"sourceLanguage":"en","version":"1.0","strings":{"a":{"localizations":{"en":{"variations":{"device":{"fridge":{"stringUnit":{"state":"new","value":""}}}}}}}}}`, ErrMalformed},
		{"nested variation", `{"sourceLanguage":"en","version":"1.0","strings":{"a":{"localizations":{"en":{"variations":{"device":{"iphone":{"variations":{}}}}}}}}}`, ErrMalformed},
		{"null entry", `{"sourceLanguage":"en","version":"1.0","strings":{"a":null}}`, ErrMalformed},
		{"missing strings", `{"sourceLanguage":"en","version":"1.0"}`, ErrMalformed},
		{"null strings", `{"sourceLanguage":"en","strings":null,"version":"1.0"}`, ErrMalformed},
		{"missing source language", `{"strings":{},"version":"1.0"}`, ErrMalformed},
		{"substitution without argNum", `{"sourceLanguage":"en","version":"1.0","strings":{"a":{"localizations":{"en":{"substitutions":{"arg1":{"formatSpecifier":"lld"}}}}}}}`, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseEmptyStrings(t *testing.T) {
	c, err := Parse([]byte(`{"sourceLanguage":"en","strings":{},"version":"1.0"}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Strings == nil {
		t.Fatal("Strings should be initialized")
	}
}

func TestMarshalDoesNotEscapeHTMLOrSeparatorsInValues(t *testing.T) {
	c := New("en")
	c.Strings[`a "quoted": key`] = &Entry{Comment: "<b>x</b> & y: z"}
	data, err := c.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, `"<b>x</b> & y: z"`) {
		t.Errorf("comment was escaped or altered:\n%s", s)
	}
	if !strings.Contains(s, `"a \"quoted\": key" : {`) {
		t.Errorf("key separator wrong:\n%s", s)
	}
	if strings.HasSuffix(s, "\n") {
		t.Error("output should not end with a newline")
	}
}

func TestLineSeparatorsRoundTrip(t *testing.T) {
	doc := "{\n  \"sourceLanguage\" : \"en\",\n  \"strings\" : {\n    \"a\u2028b\" : {\n      \"comment\" : \"p\u2029q \\\\u2028\"\n    }\n  },\n  \"version\" : \"1.0\"\n}"
	c, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := c.Strings["a\u2028b"].Comment; got != "p\u2029q \\u2028" {
		t.Fatalf("comment = %q", got)
	}
	data, err := c.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != doc {
		t.Errorf("Marshal() =\n%s\nwant\n%s", data, doc)
	}
}

func TestWriteAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "Localizable.xcstrings")

	c := New("en")
	c.Strings["Hello"] = &Entry{
		Localizations: map[string]Localization{
			"fr": {StringUnit: &StringUnit{State: StateTranslated, Value: "Bonjour"}},
		},
	}
	if err := c.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := loaded.Strings["Hello"].Localizations["fr"].StringUnit
	if got == nil || got.Value != "Bonjour" || got.State != StateTranslated {
		t.Errorf("fr = %+v, want translated Bonjour", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the catalog in the directory, found %d entries", len(entries))
	}
}

func TestWriteKeepsPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.xcstrings")
	if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := New("en").Write(path); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.xcstrings"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want not-exist", err)
	}
}

func TestLanguagesAndRemove(t *testing.T) {
	c, err := Parse([]byte(sampleCatalog))
	if err != nil {
		t.Fatal(err)
	}
	c.Strings["Hello"].Localizations["de"] = Localization{
		StringUnit: &StringUnit{State: StateTranslated, Value: "Hallo"},
	}

	got := strings.Join(c.Languages(), ",")
	if got != "en,de,fr" {
		t.Errorf("Languages() = %s, want en,de,fr", got)
	}
	if got := strings.Join(c.TargetLanguages(), ","); got != "de,fr" {
		t.Errorf("TargetLanguages() = %s, want de,fr", got)
	}

	if n := c.RemoveLanguages([]string{"fr", "en"}); n != 1 {
		t.Errorf("RemoveLanguages removed %d, want 1", n)
	}
	if got := strings.Join(c.Languages(), ","); got != "en,de" {
		t.Errorf("after remove Languages() = %s, want en,de", got)
	}
}

func TestEntryCloneIsDeep(t *testing.T) {
	yes := true
	e := &Entry{
		ShouldTranslate: &yes,
		Localizations: map[string]Localization{
			"en": {Variations: &Variations{Plural: map[PluralCategory]Variation{
				PluralOne: {StringUnit: &StringUnit{State: StateTranslated, Value: "one"}},
			}}},
		},
	}
	cp := e.Clone()
	cp.Localizations["en"].Variations.Plural[PluralOne].StringUnit.Value = "changed"
	*cp.ShouldTranslate = false

	if e.Localizations["en"].Variations.Plural[PluralOne].StringUnit.Value != "one" {
		t.Error("Clone shares string units with the original")
	}
	if !*e.ShouldTranslate {
		t.Error("Clone shares ShouldTranslate with the original")
	}
}

func TestKeysSorted(t *testing.T) {
	c := New("en")
	for _, k := range []string{"b", "a", "c"} {
		c.Strings[k] = &Entry{}
	}
	if got := strings.Join(c.Keys(), ""); got != "abc" {
		t.Errorf("Keys() = %s, want abc", got)
	}
}
