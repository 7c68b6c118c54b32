// Package translate drives AI translation and review of string catalogs.
//
// The orchestrator walks a localizable.Session strictly in order: one string,
// one provider call at a time. It retries failed calls, records failures
// without stopping the batch, and periodically writes the catalog so an
// interrupted run loses at most one checkpoint interval of work.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/minios-linux/xckit/localizable"
	"github.com/minios-linux/xckit/xcstrings"
)

// ---------------------------------------------------------------------------
// Capabilities
// ---------------------------------------------------------------------------

// Translator translates a single text.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage, comment string) (string, error)
}

// Evaluator rates an existing translation.
type Evaluator interface {
	EvaluateQuality(ctx context.Context, text, translation, targetLanguage, comment string) (Evaluation, error)
}

// Quality is the verdict of an evaluation.
type Quality string

const (
	QualityGood Quality = "good"
	QualityPoor Quality = "poor"
	QualityBad  Quality = "bad"
)

// Evaluation is the result of EvaluateQuality.
type Evaluation struct {
	Quality     Quality
	Explanation string
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Defaults for Options.
const (
	DefaultMaxRetries         = 1
	DefaultCheckpointInterval = 5
)

// Options controls a translation or review run.
type Options struct {
	// Languages are the target languages; nil selects those in the catalog.
	Languages []string
	// MaxRetries is the number of extra attempts per string. Zero means
	// DefaultMaxRetries, a negative value disables retries.
	MaxRetries int
	// CheckpointInterval is the number of successful strings between writes.
	// Zero means DefaultCheckpointInterval.
	CheckpointInterval int
	// MarkNeedsReview flags fresh translations for review instead of
	// leaving them translated.
	MarkNeedsReview bool
	// Write persists the catalog; nil uses Catalog.Write.
	Write func(c *xcstrings.Catalog, path string) error
	// OnProgress is called after each processed string.
	OnProgress func(done, total int)
	// OnTranslated is called after a string received a translation.
	OnTranslated func(s *localizable.String)
	// OnLog emits log messages.
	OnLog func(format string, args ...any)
	// OnError emits error messages.
	OnError func(format string, args ...any)
	// Verbose enables detailed logging.
	Verbose bool
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveMaxRetries() int {
	switch {
	case o.MaxRetries > 0:
		return o.MaxRetries
	case o.MaxRetries < 0:
		return 0
	}
	return DefaultMaxRetries
}

func (o *Options) effectiveCheckpointInterval() int {
	if o.CheckpointInterval > 0 {
		return o.CheckpointInterval
	}
	return DefaultCheckpointInterval
}

func (o *Options) write(c *xcstrings.Catalog, path string) error {
	if o.Write != nil {
		return o.Write(c, path)
	}
	return c.Write(path)
}

// ---------------------------------------------------------------------------
// Results
// ---------------------------------------------------------------------------

// Failure is a string that could not be processed after all retries.
type Failure struct {
	Key      string
	Language string
	Kind     localizable.Kind
	Err      error
}

// Result summarizes a run.
type Result struct {
	// Total is the number of strings selected for processing.
	Total int
	// Succeeded counts strings the provider handled.
	Succeeded int
	// Accepted counts reviewed strings rated good.
	Accepted int
	// Checkpoints counts intermediate writes.
	Checkpoints int
	// Failures lists strings that failed every attempt.
	Failures []Failure
}

// ---------------------------------------------------------------------------
// Orchestration
// ---------------------------------------------------------------------------

type mode int

const (
	modeTranslate mode = iota
	modeReview
)

// TranslateCatalog translates every string of c that is not translated yet
// and writes the catalog to path (periodically, and once at the end). An
// empty path disables writing.
func TranslateCatalog(ctx context.Context, c *xcstrings.Catalog, path string, tr Translator, opts Options) (*Result, error) {
	sess, err := localizable.NewSession(c, opts.Languages)
	if err != nil {
		return nil, err
	}
	return run(ctx, sess, path, opts, modeTranslate, func(ctx context.Context, str *localizable.String, comment string) error {
		value, err := tr.Translate(ctx, str.Source, str.Language, comment)
		if err != nil {
			return err
		}
		str.SetTranslation(value)
		if opts.MarkNeedsReview {
			str.SetNeedsReview()
		}
		if opts.Verbose {
			opts.log("[%s] %q -> %q", str.Language, str.Source, value)
		}
		if opts.OnTranslated != nil {
			opts.OnTranslated(str)
		}
		return nil
	})
}

// ReviewCatalog asks ev to rate every string waiting for review. Strings
// rated good become translated; the others stay in review.
func ReviewCatalog(ctx context.Context, c *xcstrings.Catalog, path string, ev Evaluator, opts Options) (*Result, error) {
	sess, err := localizable.NewSession(c, opts.Languages)
	if err != nil {
		return nil, err
	}
	var accepted int
	res, err := run(ctx, sess, path, opts, modeReview, func(ctx context.Context, str *localizable.String, comment string) error {
		value, _ := str.Value()
		eval, err := ev.EvaluateQuality(ctx, str.Source, value, str.Language, comment)
		if err != nil {
			return err
		}
		if eval.Quality == QualityGood {
			str.SetTranslated()
			accepted++
			if opts.Verbose {
				opts.log("[%s] %q accepted", str.Language, str.Source)
			}
			return nil
		}
		opts.log("[%s] %q rated %s: %s", str.Language, str.Source, eval.Quality, eval.Explanation)
		return nil
	})
	if res != nil {
		res.Accepted = accepted
	}
	return res, err
}

// Pending returns how many strings of c a TranslateCatalog and a
// ReviewCatalog run over languages would process.
func Pending(c *xcstrings.Catalog, languages []string) (translate, review int, err error) {
	sess, err := localizable.NewSession(c, languages)
	if err != nil {
		return 0, 0, err
	}
	for i := 0; i < sess.Len(); i++ {
		str := sess.At(i)
		if selected(sess, str, modeTranslate) {
			translate++
		}
		if selected(sess, str, modeReview) {
			review++
		}
	}
	return translate, review, nil
}

// selected reports whether str takes part in a run of mode m.
func selected(sess *localizable.Session, str *localizable.String, m mode) bool {
	if str.IsSource || str.Language == sess.SourceLanguage() {
		return false
	}
	if e := sess.Entry(str.Key); e != nil && !e.Translatable() {
		return false
	}
	switch m {
	case modeTranslate:
		return str.State != xcstrings.StateTranslated
	case modeReview:
		return str.State == xcstrings.StateNeedsReview && str.HasValue()
	}
	return false
}

func run(ctx context.Context, sess *localizable.Session, path string, opts Options, m mode,
	process func(context.Context, *localizable.String, string) error) (*Result, error) {

	var pending []int
	for _, key := range sess.Keys() {
		for _, i := range sess.Indices(key) {
			if selected(sess, sess.At(i), m) {
				pending = append(pending, i)
			}
		}
	}

	res := &Result{Total: len(pending)}
	interval := opts.effectiveCheckpointInterval()
	attempts := 1 + opts.effectiveMaxRetries()

	save := func() error {
		if path == "" {
			return nil
		}
		if err := sess.Commit(); err != nil {
			return err
		}
		return opts.write(sess.Catalog(), path)
	}

	for n, i := range pending {
		if ctx.Err() != nil {
			break
		}
		str := sess.At(i)
		comment := ""
		if e := sess.Entry(str.Key); e != nil {
			comment = e.Comment
		}

		var err error
		for attempt := 1; attempt <= attempts; attempt++ {
			err = process(ctx, str, comment)
			if err == nil || ctx.Err() != nil {
				break
			}
			if attempt < attempts {
				opts.logError("[%s] %q: %v (retrying)", str.Language, str.Key, err)
			}
		}
		if ctx.Err() != nil {
			break
		}

		if err != nil {
			res.Failures = append(res.Failures, Failure{Key: str.Key, Language: str.Language, Kind: str.Kind, Err: err})
			opts.logError("[%s] %q failed: %v", str.Language, str.Key, err)
		} else {
			res.Succeeded++
			if res.Succeeded%interval == 0 && path != "" {
				if err := save(); err != nil {
					opts.logError("Checkpoint %s: %v", path, err)
				} else {
					res.Checkpoints++
					if opts.Verbose {
						opts.log("Checkpoint saved %s (%d/%d)", path, n+1, len(pending))
					}
				}
			}
		}

		if opts.OnProgress != nil {
			opts.OnProgress(n+1, len(pending))
		}
	}

	if err := save(); err != nil {
		return res, fmt.Errorf("saving %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// ---------------------------------------------------------------------------
// Text mode
// ---------------------------------------------------------------------------

// TextResult is the translation of a literal text into one language.
type TextResult struct {
	Language    string
	Translation string
	Err         error
}

// TranslateText translates text into each of opts.Languages, with the same
// retry policy as catalog runs.
func TranslateText(ctx context.Context, tr Translator, text, comment string, opts Options) []TextResult {
	attempts := 1 + opts.effectiveMaxRetries()
	var out []TextResult
	for _, lang := range opts.Languages {
		var value string
		var err error
		for attempt := 1; attempt <= attempts; attempt++ {
			value, err = tr.Translate(ctx, text, lang, comment)
			if err == nil || ctx.Err() != nil {
				break
			}
		}
		out = append(out, TextResult{Language: lang, Translation: value, Err: err})
		if ctx.Err() != nil {
			break
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Multiple files
// ---------------------------------------------------------------------------

// ProcessFiles runs fn for each path in order. A failing file is reported
// and the next one is processed; the returned error lists every failed file.
func ProcessFiles(ctx context.Context, paths []string, fn func(ctx context.Context, path string) error, opts Options) error {
	var failed []string
	for _, path := range paths {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(ctx, path); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			opts.logError("%s: %v", path, err)
			failed = append(failed, path)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d file(s) failed: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}
