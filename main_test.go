package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/minios-linux/xckit/config"
	"github.com/minios-linux/xckit/lockfile"
	"github.com/minios-linux/xckit/translate"
	"github.com/minios-linux/xckit/xcstrings"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		width   int
		want    string
	}{
		{
			name:    "clamps below zero",
			percent: -10,
			width:   4,
			want:    colorRed + "░░░░" + colorReset + "   0%",
		},
		{
			name:    "mid range uses yellow",
			percent: 50,
			width:   4,
			want:    colorYellow + "██░░" + colorReset + "  50%",
		},
		{
			name:    "clamps above hundred",
			percent: 120,
			width:   4,
			want:    colorGreen + "████" + colorReset + " 100%",
		},
	}

	for _, tc := range tests {
		if got := progressBar(tc.percent, tc.width); got != tc.want {
			t.Fatalf("%s: progressBar() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestLanguageListFlag(t *testing.T) {
	var l languageList
	if err := l.Set("fr, pt_br"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := l.Set("ja"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if want := []string{"fr", "pt-BR", "ja"}; !reflect.DeepEqual([]string(l), want) {
		t.Fatalf("languageList = %v, want %v", l, want)
	}
	if l.String() != "fr,pt-BR,ja" || l.Type() != "languages" {
		t.Fatalf("String()/Type() = %q/%q", l.String(), l.Type())
	}
	if err := l.Set("not a language"); err == nil {
		t.Fatal("Set(invalid) should fail")
	}
}

func TestLangHelpers(t *testing.T) {
	langs := []string{"en", "pt-BR", "zh-Hant"}
	if got := langColumnWidth(langs); got != len("zh-Hant") {
		t.Fatalf("langColumnWidth() = %d, want %d", got, len("zh-Hant"))
	}

	cell := langCell("pt-BR", 6)
	if !strings.Contains(cell, "🇧🇷") || !strings.Contains(cell, "pt-BR ") {
		t.Fatalf("langCell() = %q, want flag and padded code", cell)
	}
}

func TestIntersectLanguages(t *testing.T) {
	available := []string{"en", "fr", "de", "es"}
	filter := []string{" fr ", "es", "it"}
	want := []string{"fr", "es"}

	if got := intersectLanguages(available, filter); !reflect.DeepEqual(got, want) {
		t.Fatalf("intersectLanguages() = %#v, want %#v", got, want)
	}
}

func TestFilterOutLang(t *testing.T) {
	langs := []string{"en", "fr", "en", "de"}
	want := []string{"fr", "de"}

	if got := filterOutLang(langs, "en"); !reflect.DeepEqual(got, want) {
		t.Fatalf("filterOutLang() = %#v, want %#v", got, want)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(filePath, []byte("ok"), 0644); err != nil {
		t.Fatalf("os.WriteFile() error: %v", err)
	}

	if !fileExists(filePath) {
		t.Fatalf("fileExists(file) = false, want true")
	}
	if fileExists(dir) {
		t.Fatalf("fileExists(directory) = true, want false")
	}
	if fileExists(filepath.Join(dir, "missing.txt")) {
		t.Fatalf("fileExists(missing) = true, want false")
	}
}

func TestCatalogLanguages(t *testing.T) {
	c := xcstrings.New("en")
	c.Strings["Hi"] = &xcstrings.Entry{Localizations: map[string]xcstrings.Localization{
		"de": {StringUnit: &xcstrings.StringUnit{State: xcstrings.StateTranslated, Value: "Hallo"}},
	}}

	if got := catalogLanguages(c, nil); !reflect.DeepEqual(got, []string{"de"}) {
		t.Errorf("catalogLanguages(nil) = %v", got)
	}
	if got := catalogLanguages(c, []string{"en", "fr"}); !reflect.DeepEqual(got, []string{"fr"}) {
		t.Errorf("catalogLanguages(en,fr) = %v", got)
	}
}

func TestOpenCatalogContinuesFromOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "Localizable.xcstrings")
	tr := xcstrings.StateTranslated

	c := xcstrings.New("en")
	c.Strings["Hello"] = &xcstrings.Entry{}
	if err := c.Write(in); err != nil {
		t.Fatal(err)
	}

	got, out, err := openCatalog(in, false)
	if err != nil {
		t.Fatalf("openCatalog: %v", err)
	}
	if out != filepath.Join(dir, "Localizable.loc.xcstrings") {
		t.Fatalf("out = %s", out)
	}
	if len(got.Strings) != 1 {
		t.Fatalf("loaded %d strings", len(got.Strings))
	}

	// First run translated Hello and stopped.
	got.Strings["Hello"] = &xcstrings.Entry{Localizations: map[string]xcstrings.Localization{
		"de": {StringUnit: &xcstrings.StringUnit{State: tr, Value: "Hallo"}},
	}}
	got.Strings["Gone"] = &xcstrings.Entry{}
	if err := got.Write(out); err != nil {
		t.Fatal(err)
	}

	// A key is added to the input afterwards.
	c.Strings["World"] = &xcstrings.Entry{Comment: "new"}
	if err := c.Write(in); err != nil {
		t.Fatal(err)
	}

	again, _, err := openCatalog(in, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := again.Strings["World"]; !ok {
		t.Fatal("key added to the input after the first run is missing")
	}
	if _, ok := again.Strings["Gone"]; ok {
		t.Fatal("key only present in the output should not come back")
	}
	if u := again.Strings["Hello"].Localizations["de"].StringUnit; u == nil || u.Value != "Hallo" {
		t.Fatalf("earlier translation not carried over: %+v", again.Strings["Hello"])
	}

	over, out, err := openCatalog(in, true)
	if err != nil {
		t.Fatal(err)
	}
	if out != in || len(over.Strings) != 2 {
		t.Fatalf("overwrite: out=%s strings=%d", out, len(over.Strings))
	}
	if len(over.Strings["Hello"].Localizations) != 0 {
		t.Fatalf("overwrite should not read the output: %+v", over.Strings["Hello"])
	}
}

func TestPruneLockDropsRemovedLanguagesAndKeys(t *testing.T) {
	tr := xcstrings.StateTranslated
	c := xcstrings.New("en")
	c.Strings["Hi"] = &xcstrings.Entry{Localizations: map[string]xcstrings.Localization{
		"de": {StringUnit: &xcstrings.StringUnit{State: tr, Value: "Hallo"}},
		"fr": {StringUnit: &xcstrings.StringUnit{State: tr, Value: "Salut"}},
	}}

	lf, err := lockfile.Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	const cat = "Localizable.xcstrings"
	lf.Update(cat, lockfile.EntryKey("Hi", "de", "standalone"), "Hi")
	lf.Update(cat, lockfile.EntryKey("Hi", "fr", "standalone"), "Hi")
	lf.Update(cat, lockfile.EntryKey("Gone", "de", "standalone"), "Gone")
	lf.Update("Other.xcstrings", lockfile.EntryKey("X", "de", "standalone"), "X")

	c.RemoveLanguages([]string{"fr"})
	if err := pruneLock(lf, cat, c); err != nil {
		t.Fatalf("pruneLock: %v", err)
	}

	entries := lf.Checksums[cat]
	if len(entries) != 1 {
		t.Fatalf("entries = %v, want only Hi in de", entries)
	}
	for k := range entries {
		if !strings.HasPrefix(k, "Hi|de|") {
			t.Fatalf("unexpected entry %q", k)
		}
	}
	if len(lf.Checksums["Other.xcstrings"]) != 1 {
		t.Fatal("other catalogs must not be touched")
	}
}

func TestResolveAndValidateProvider(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("GROQ_API_KEY", "")

	s := config.Defaults()
	s.Provider = "groq"
	s.Model = "llama"
	s.Timeout = 9 * time.Second

	prov := resolveProvider(s)
	if prov.ID != translate.ProviderGroq || prov.Model != "llama" || prov.Timeout != 9*time.Second {
		t.Fatalf("resolveProvider() = %+v", prov)
	}
	if err := validateProvider(prov); err == nil || !strings.Contains(err.Error(), "API key") {
		t.Fatalf("validateProvider without key = %v", err)
	}

	t.Setenv("GROQ_API_KEY", "gsk")
	if err := validateProvider(resolveProvider(s)); err != nil {
		t.Fatalf("validateProvider with env key: %v", err)
	}

	custom := config.Defaults()
	custom.Provider = "custom-openai"
	custom.Model = "m"
	if err := validateProvider(resolveProvider(custom)); err == nil || !strings.Contains(err.Error(), "endpoint") {
		t.Fatalf("custom-openai without URL = %v", err)
	}
	custom.BaseURL = "http://llm.local/v1"
	if err := validateProvider(resolveProvider(custom)); err != nil {
		t.Fatalf("custom-openai with URL: %v", err)
	}
}

func TestRunOptions(t *testing.T) {
	s := config.Defaults()
	s.MaxRetries = 0
	s.CheckpointInterval = 3
	opts := runOptions(s, false)
	if opts.MaxRetries != -1 || opts.CheckpointInterval != 3 {
		t.Fatalf("runOptions() = %+v", opts)
	}
	if opts.OnLog != nil || opts.OnError == nil {
		t.Fatal("non-verbose run should only log errors")
	}

	s.MaxRetries = 2
	if got := runOptions(s, true); got.MaxRetries != 2 || got.OnLog == nil {
		t.Fatalf("runOptions(verbose) = %+v", got)
	}
}
