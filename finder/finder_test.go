package finder

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "App", "Localizable.xcstrings"))
	touch(t, filepath.Join(dir, "App", "Localizable.loc.xcstrings"))
	touch(t, filepath.Join(dir, "App", "InfoPlist.xcstrings"))
	touch(t, filepath.Join(dir, "Widget", "Sub", "Widget.xcstrings"))
	touch(t, filepath.Join(dir, ".build", "Cached.xcstrings"))
	touch(t, filepath.Join(dir, "App", ".hidden.xcstrings"))
	touch(t, filepath.Join(dir, "README.md"))

	got, err := Find(dir)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	want := []string{
		filepath.Join(dir, "App", "InfoPlist.xcstrings"),
		filepath.Join(dir, "App", "Localizable.xcstrings"),
		filepath.Join(dir, "Widget", "Sub", "Widget.xcstrings"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Find() = %v\nwant %v", got, want)
	}
}

func TestFindFileAndMissing(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Localizable.xcstrings")
	touch(t, file)

	if got, err := Find(file); err != nil || len(got) != 1 || got[0] != file {
		t.Errorf("Find(file) = %v, %v", got, err)
	}
	if got, err := Find(filepath.Join(dir, "missing")); err != nil || len(got) != 0 {
		t.Errorf("Find(missing) = %v, %v", got, err)
	}
	other := filepath.Join(dir, "notes.txt")
	touch(t, other)
	if got, err := Find(other); err != nil || len(got) != 0 {
		t.Errorf("Find(non-catalog) = %v, %v", got, err)
	}
	if got, err := Find(t.TempDir()); err != nil || len(got) != 0 {
		t.Errorf("Find(empty dir) = %v, %v", got, err)
	}
}

func TestFindAllDeduplicates(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "A.xcstrings")
	touch(t, file)

	got, err := FindAll([]string{dir, file})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != file {
		t.Fatalf("FindAll() = %v", got)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		path      string
		overwrite bool
		want      string
	}{
		{"App/Localizable.xcstrings", false, "App/Localizable.loc.xcstrings"},
		{"App/Localizable.xcstrings", true, "App/Localizable.xcstrings"},
		{"App/Localizable.loc.xcstrings", false, "App/Localizable.loc.xcstrings"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.path, tt.overwrite); got != tt.want {
			t.Errorf("OutputPath(%q, %v) = %q, want %q", tt.path, tt.overwrite, got, tt.want)
		}
	}
}
