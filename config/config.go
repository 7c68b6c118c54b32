// Package config resolves xckit run settings from the project file
// (.xckit.yaml), XCKIT_* environment variables and command-line flags.
//
// Precedence, highest first: flags, environment, project file, defaults.
// Flags are applied by the caller on top of the Settings returned by Resolve.
package config

import (
	"time"
)

// Defaults.
const (
	DefaultProvider           = "google"
	DefaultMaxRetries         = 1
	DefaultCheckpointInterval = 5
)

// Settings is the merged configuration for one run.
type Settings struct {
	Languages []string
	Paths     []string

	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Proxy    string
	Timeout  time.Duration

	MaxRetries         int
	CheckpointInterval int

	Overwrite      bool
	SetNeedsReview bool
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Provider:           DefaultProvider,
		MaxRetries:         DefaultMaxRetries,
		CheckpointInterval: DefaultCheckpointInterval,
	}
}

// Resolve merges file (may be nil) and e over the defaults.
func Resolve(file *File, e Env) Settings {
	s := Defaults()

	if file != nil {
		s.Languages = append([]string(nil), file.Languages...)
		s.Paths = append([]string(nil), file.Paths...)
		setString(&s.Provider, file.Provider)
		setString(&s.Model, file.Model)
		setString(&s.BaseURL, file.BaseURL)
		setString(&s.Proxy, file.Proxy)
		if file.Timeout > 0 {
			s.Timeout = file.Timeout
		}
		setInt(&s.MaxRetries, file.MaxRetries)
		setInt(&s.CheckpointInterval, file.CheckpointInterval)
		s.Overwrite = file.Overwrite
		s.SetNeedsReview = file.SetNeedsReview
	}

	if len(e.Languages) > 0 {
		s.Languages = append([]string(nil), e.Languages...)
	}
	setString(&s.Provider, e.Provider)
	setString(&s.Model, e.Model)
	setString(&s.APIKey, e.APIKey)
	setString(&s.BaseURL, e.BaseURL)
	setString(&s.Proxy, e.Proxy)
	if e.Timeout != nil {
		s.Timeout = *e.Timeout
	}
	setInt(&s.MaxRetries, e.MaxRetries)
	setInt(&s.CheckpointInterval, e.CheckpointInterval)

	return s
}

// Load reads .xckit.yaml from rootDir and the environment, and resolves them.
func Load(rootDir string) (Settings, error) {
	file, err := LoadFile(rootDir)
	if err != nil {
		return Settings{}, err
	}
	e, err := LoadEnv()
	if err != nil {
		return Settings{}, err
	}
	return Resolve(file, e), nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
