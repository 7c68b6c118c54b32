package xcstrings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
)

var (
	// ErrUnsupportedVersion is returned for any version other than SupportedVersion.
	ErrUnsupportedVersion = errors.New("unsupported catalog version")
	// ErrMalformed is returned when the document does not follow the catalog schema.
	ErrMalformed = errors.New("malformed catalog")
)

// Load reads and parses the catalog at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a catalog document and validates it. Invalid UTF-8 in the
// document is replaced with U+FFFD.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if c.Version != SupportedVersion {
		return nil, fmt.Errorf("%w: %q (want %q)", ErrUnsupportedVersion, c.Version, SupportedVersion)
	}
	var required struct {
		SourceLanguage *string          `json:"sourceLanguage"`
		Strings        *json.RawMessage `json:"strings"`
	}
	if err := json.Unmarshal(data, &required); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if required.SourceLanguage == nil {
		return nil, malformed("missing sourceLanguage")
	}
	if required.Strings == nil {
		return nil, malformed("missing strings")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.Strings == nil {
		c.Strings = make(map[string]*Entry)
	}
	return &c, nil
}

// Marshal encodes the catalog the way Xcode lays it out: sorted keys, two
// space indentation and " : " between keys and values. U+2028 and U+2029 are
// written raw, not as \u escapes.
func (c *Catalog) Marshal() ([]byte, error) {
	if c.Strings == nil {
		c.Strings = make(map[string]*Entry)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return xcodeSeparators(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Write serializes the catalog and atomically replaces the file at path.
// Readers see either the previous document or the new one, never a partial write.
func (c *Catalog) Write(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// xcodeSeparators rewrites encoder output to Xcode's layout: " : " after
// keys, and raw line and paragraph separators inside strings.
func xcodeSeparators(data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data) + len(data)/16)
	inString := false
	escaped := false

	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				if r, ok := rawSeparator(data[i:]); ok {
					out.Truncate(out.Len() - 1)
					out.WriteRune(r)
					i += len(`\u2028`) - 1
					continue
				}
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
			out.WriteByte(c)
		case ':':
			out.WriteString(" :")
		default:
			out.WriteByte(c)
		}
	}
	return out.Bytes()
}

// rawSeparator reports whether b starts with the escape of U+2028 or U+2029.
func rawSeparator(b []byte) (rune, bool) {
	switch {
	case bytes.HasPrefix(b, []byte(`\u2028`)):
		return '\u2028', true
	case bytes.HasPrefix(b, []byte(`\u2029`)):
		return '\u2029', true
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

func validLanguage(tag string) bool {
	if tag == "" {
		return false
	}
	_, err := language.Parse(tag)
	return err == nil
}

func (c *Catalog) validate() error {
	if !validLanguage(c.SourceLanguage) {
		return malformed("invalid sourceLanguage %q", c.SourceLanguage)
	}
	for key, e := range c.Strings {
		if e == nil {
			return malformed("entry %q is null", key)
		}
		if e.ExtractionState != "" && !e.ExtractionState.Valid() {
			return malformed("entry %q: unknown extractionState %q", key, e.ExtractionState)
		}
		for lang, loc := range e.Localizations {
			if !validLanguage(lang) {
				return malformed("entry %q: invalid language %q", key, lang)
			}
			if err := loc.validate(); err != nil {
				return fmt.Errorf("entry %q, language %s: %w", key, lang, err)
			}
		}
	}
	return nil
}

func (l Localization) validate() error {
	if l.StringUnit != nil {
		if err := l.StringUnit.validate(); err != nil {
			return err
		}
	}
	for id, sub := range l.Substitutions {
		if sub.ArgNum < 1 {
			return malformed("substitution %q: invalid argNum %d", id, sub.ArgNum)
		}
		if sub.FormatSpecifier == "" {
			return malformed("substitution %q: missing formatSpecifier", id)
		}
		if err := sub.Variations.validate(); err != nil {
			return fmt.Errorf("substitution %q: %w", id, err)
		}
	}
	return l.Variations.validate()
}

func (v *Variations) validate() error {
	if v == nil {
		return nil
	}
	for cat, vv := range v.Device {
		if !cat.Valid() {
			return malformed("unknown device category %q", cat)
		}
		if vv.StringUnit == nil {
			return malformed("device variation %q has no stringUnit", cat)
		}
		if err := vv.StringUnit.validate(); err != nil {
			return err
		}
	}
	for cat, vv := range v.Plural {
		if !cat.Valid() {
			return malformed("unknown plural category %q", cat)
		}
		if vv.StringUnit == nil {
			return malformed("plural variation %q has no stringUnit", cat)
		}
		if err := vv.StringUnit.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (su *StringUnit) validate() error {
	if !su.State.Valid() {
		return malformed("unknown state %q", su.State)
	}
	return nil
}
