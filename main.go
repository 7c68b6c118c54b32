// xckit: AI translation and linting for Xcode string catalogs (.xcstrings).
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/minios-linux/xckit/config"
	"github.com/minios-linux/xckit/finder"
	"github.com/minios-linux/xckit/i18n"
	"github.com/minios-linux/xckit/langmeta"
	"github.com/minios-linux/xckit/lint"
	"github.com/minios-linux/xckit/localizable"
	"github.com/minios-linux/xckit/lockfile"
	"github.com/minios-linux/xckit/settings"
	"github.com/minios-linux/xckit/translate"
	"github.com/minios-linux/xckit/xcstrings"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// largeBatch is the number of strings above which a run is announced with a
// warning.
const largeBatch = 200

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var rootDir string

// languageList is a pflag.Value collecting language tags from comma-separated
// or repeated flags.
type languageList []string

func (l *languageList) String() string { return strings.Join(*l, ",") }

func (l *languageList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := langmeta.Validate(part); err != nil {
			return err
		}
		*l = append(*l, langmeta.Canonical(part))
	}
	return nil
}

func (l *languageList) Type() string { return "languages" }

var _ pflag.Value = (*languageList)(nil)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xckit",
		Short: i18n.T("Localize Xcode string catalogs with AI"),
		Long: `xckit translates, reviews and lints Xcode string catalogs (.xcstrings).

Paths may be catalogs or directories; directories are searched recursively.
Without --overwrite, results are written next to each input as
<name>.loc.xcstrings and later runs continue from that file.

Commands:
  translate          Translate strings that are not translated yet
  review             Let the AI review strings marked as needing review
  lint               Check translations for common mistakes
  mark-needs-review  Flag translated strings for review
  remove-languages   Remove languages from catalogs
  status             Show translation progress
  auth               Manage provider API keys

AI Providers:
  openai         OpenAI (API key)
  google         Google AI Gemini (API key)
  anthropic      Anthropic (API key)
  groq           Groq (API key)
  ollama         Ollama local server
  custom-openai  Custom OpenAI-compatible endpoint

Settings are read from .xckit.yaml in the project root and from XCKIT_*
environment variables; flags take precedence over both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory (.xckit.yaml, xckit.lock)")

	root.AddCommand(
		newTranslateCmd(),
		newReviewCmd(),
		newLintCmd(),
		newMarkNeedsReviewCmd(),
		newRemoveLanguagesCmd(),
		newStatusCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			logError("%v", err)
		}
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Print version information"),
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("xckit version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// Shared run setup
// ---------------------------------------------------------------------------

// runFlags are the flags shared by the catalog commands.
type runFlags struct {
	langs     languageList
	overwrite bool
	verbose   bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().Var(&f.langs, "lang", "Target languages (comma-separated or repeated, default: all in the catalog)")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "Write results back to the input catalog instead of <name>.loc.xcstrings")
	cmd.Flags().BoolVar(&f.verbose, "verbose", false, "Enable detailed logging")
}

// loadSettings resolves .xckit.yaml and the environment, then applies the
// flags the user set explicitly.
func loadSettings(cmd *cobra.Command, f *runFlags) (config.Settings, error) {
	s, err := config.Load(rootDir)
	if err != nil {
		return s, err
	}
	if len(f.langs) > 0 {
		s.Languages = append([]string(nil), f.langs...)
	}
	if cmd.Flags().Changed("overwrite") {
		s.Overwrite = f.overwrite
	}
	return s, nil
}

// catalogPaths returns the catalogs named by args, or by the configured
// paths, or found under the project root.
func catalogPaths(args []string, s config.Settings) ([]string, error) {
	paths := args
	if len(paths) == 0 {
		paths = s.Paths
	}
	if len(paths) == 0 {
		paths = []string{rootDir}
	}
	files, err := finder.FindAll(paths)
	if err != nil {
		return nil, err
	}
	if len(files) > 0 {
		logInfo(i18n.N("Found %d catalog", "Found %d catalogs", len(files)), len(files))
	}
	return files, nil
}

// openCatalog loads the catalog at path and returns it with the path results
// go to. Translations from an existing output of an earlier run are carried
// over for keys the input still has, so interrupted runs continue where they
// stopped.
func openCatalog(path string, overwrite bool) (*xcstrings.Catalog, string, error) {
	out := finder.OutputPath(path, overwrite)
	c, err := xcstrings.Load(path)
	if err != nil {
		return nil, "", err
	}
	if out == path || !fileExists(out) {
		return c, out, nil
	}
	prev, err := xcstrings.Load(out)
	if err != nil {
		return nil, "", err
	}
	if n := carryOver(c, prev); n > 0 {
		logInfo("Continuing from %s", out)
	}
	return c, out, nil
}

// carryOver copies the target language localizations of prev into c for
// every key present in both and returns how many keys it touched. Source
// language text and entry metadata always come from c.
func carryOver(c, prev *xcstrings.Catalog) int {
	if prev.SourceLanguage != c.SourceLanguage {
		return 0
	}
	n := 0
	for key, entry := range c.Strings {
		old, ok := prev.Strings[key]
		if !ok || old == nil || entry == nil {
			continue
		}
		old = old.Clone()
		touched := false
		for lang, loc := range old.Localizations {
			if lang == c.SourceLanguage {
				continue
			}
			if entry.Localizations == nil {
				entry.Localizations = make(map[string]xcstrings.Localization)
			}
			entry.Localizations[lang] = loc
			touched = true
		}
		if touched {
			n++
		}
	}
	return n
}

// catalogLanguages returns the languages to process in c: the requested
// ones, or the catalog's own target languages.
func catalogLanguages(c *xcstrings.Catalog, requested []string) []string {
	if len(requested) > 0 {
		return filterOutLang(requested, c.SourceLanguage)
	}
	return c.TargetLanguages()
}

// signalContext returns a context cancelled on the first interrupt.
func signalContext(message string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		select {
		case <-sigCh:
			if message != "" {
				logWarning("%s", message)
			}
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func logOptions(verbose bool) translate.Options {
	opts := translate.Options{
		Verbose: verbose,
		OnError: func(format string, args ...any) {
			logError(format, args...)
		},
	}
	if verbose {
		opts.OnLog = func(format string, args ...any) {
			logInfo(format, args...)
		}
	}
	return opts
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", description)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionClearOnFinish(),
	)
}

func reportFailures(res *translate.Result) {
	if res == nil || len(res.Failures) == 0 {
		return
	}
	logWarning("%d string(s) failed:", len(res.Failures))
	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "  [%s] %q (%s): %v\n", f.Language, f.Key, f.Kind, f.Err)
	}
}

// ---------------------------------------------------------------------------
// Provider resolution
// ---------------------------------------------------------------------------

// providerFlags are the flags that configure the AI provider.
type providerFlags struct {
	provider, model, apiKey, baseURL, proxy string
	timeout                                 time.Duration
	retries, checkpointInterval             int
}

func (p *providerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.provider, "provider", "", "AI provider: openai, google, anthropic, groq, ollama, custom-openai (or XCKIT_PROVIDER)")
	cmd.Flags().StringVar(&p.model, "model", "", "Model name (or XCKIT_MODEL)")
	cmd.Flags().StringVar(&p.apiKey, "api-key", "", "API key (or XCKIT_API_KEY)")
	cmd.Flags().StringVar(&p.baseURL, "base-url", "", "Custom API base URL")
	cmd.Flags().StringVar(&p.proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	cmd.Flags().DurationVar(&p.timeout, "timeout", 0, "Request timeout (0 = provider default)")
	cmd.Flags().IntVar(&p.retries, "retries", config.DefaultMaxRetries, "Extra attempts per string after a failure")
	cmd.Flags().IntVar(&p.checkpointInterval, "checkpoint-interval", config.DefaultCheckpointInterval, "Save the catalog after this many strings")

	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		completions := make([]string, 0, len(allProviders))
		for _, p := range allProviders {
			completions = append(completions, fmt.Sprintf("%s\t%s", p.id, p.name))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})
}

// apply overrides s with the provider flags the user set explicitly.
func (p *providerFlags) apply(cmd *cobra.Command, s *config.Settings) {
	fl := cmd.Flags()
	if fl.Changed("provider") {
		s.Provider = p.provider
	}
	if fl.Changed("model") {
		s.Model = p.model
	}
	if fl.Changed("api-key") {
		s.APIKey = p.apiKey
	}
	if fl.Changed("base-url") {
		s.BaseURL = p.baseURL
	}
	if fl.Changed("proxy") {
		s.Proxy = p.proxy
	}
	if fl.Changed("timeout") {
		s.Timeout = p.timeout
	}
	if fl.Changed("retries") {
		s.MaxRetries = p.retries
	}
	if fl.Changed("checkpoint-interval") {
		s.CheckpointInterval = p.checkpointInterval
	}
}

// runOptions maps settings onto orchestrator options. An explicit zero
// retries setting disables retries.
func runOptions(s config.Settings, verbose bool) translate.Options {
	opts := logOptions(verbose)
	opts.MaxRetries = s.MaxRetries
	if s.MaxRetries <= 0 {
		opts.MaxRetries = -1
	}
	opts.CheckpointInterval = s.CheckpointInterval
	return opts
}

func resolveProvider(s config.Settings) translate.Provider {
	defaults := translate.DefaultProviders()

	name := strings.ToLower(s.Provider)
	prov, ok := defaults[name]
	if !ok {
		prov = translate.Provider{
			ID:      translate.ProviderCustomOpenAI,
			Name:    s.Provider,
			BaseURL: s.Provider,
			Timeout: 60 * time.Second,
		}
	}

	if s.BaseURL != "" {
		prov.BaseURL = s.BaseURL
	} else if stored := settings.GetBaseURL(prov.ID); stored != "" {
		prov.BaseURL = stored
	}
	prov.APIKey = settings.ResolveAPIKey(prov.ID, s.APIKey)
	if s.Model != "" {
		prov.Model = s.Model
	} else if stored := settings.GetModel(prov.ID); stored != "" {
		prov.Model = stored
	}
	if s.Proxy != "" {
		prov.Proxy = s.Proxy
	}
	if s.Timeout > 0 {
		prov.Timeout = s.Timeout
	}

	return prov
}

func validateProvider(prov translate.Provider) error {
	if prov.Model == "" {
		return fmt.Errorf("--model is required for provider '%s'\n\n"+
			"Usage: --provider %s --model MODEL_NAME", prov.ID, prov.ID)
	}
	if prov.BaseURL == "" {
		return fmt.Errorf("provider '%s' requires an endpoint URL\n\n"+
			"Option 1: Configure via auth:\n"+
			"  xckit auth login --provider %s\n\n"+
			"Option 2: Pass directly:\n"+
			"  --base-url https://api.example.com/v1", prov.ID, prov.ID)
	}
	if prov.NeedsAPIKey() && prov.APIKey == "" {
		hint := ""
		if env := settings.EnvVarForProvider(prov.ID); env != "" {
			hint = " or export " + env + "=YOUR_KEY"
		}
		return fmt.Errorf("provider '%s' requires an API key\n\n"+
			"Option 1: Store your API key:\n"+
			"  xckit auth login --provider %s\n\n"+
			"Option 2: Pass key directly:\n"+
			"  --api-key YOUR_KEY%s", prov.ID, prov.ID, hint)
	}
	return nil
}

// newService builds the AI service for the resolved settings and loads the
// prompt overrides.
func newService(s config.Settings, verbose bool) (*translate.AIService, error) {
	prov := resolveProvider(s)
	if err := validateProvider(prov); err != nil {
		return nil, err
	}
	if path, err := translate.LoadPromptsFromDefaultLocations(); err != nil {
		logWarning("Prompts: %v (using built-in prompts)", err)
	} else if verbose {
		logInfo("Prompts: %s", path)
	}

	svc := translate.NewAIService(prov, "en")
	svc.Verbose = verbose
	logInfo("Provider: %s (%s), Model: %s", prov.Name, prov.ID, prov.Model)
	return svc, nil
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

type translateArgs struct {
	runFlags
	providerFlags
	setNeedsReview bool
	dryRun         bool
	text           string
	comment        string
	sourceLang     string
}

func newTranslateCmd() *cobra.Command {
	var a translateArgs

	cmd := &cobra.Command{
		Use:   "translate [path...]",
		Short: i18n.T("Translate strings that are not translated yet"),
		Long: `Translate every string that is not translated yet, including strings
marked as needing review, into the target languages.

Progress is saved every --checkpoint-interval strings and when the run ends,
also on Ctrl+C. A string that keeps failing is reported and skipped.

With --text, a literal string is translated into each --lang and printed;
no catalog is read.

Examples:
  xckit translate --provider google --model gemini-2.5-flash
  xckit translate App/Localizable.xcstrings --lang fr,de --overwrite
  xckit translate --text "Hello, world!" --lang fr --lang ja`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args, &a)
		},
	}

	a.runFlags.register(cmd)
	a.providerFlags.register(cmd)
	cmd.Flags().BoolVar(&a.setNeedsReview, "set-needs-review", false, "Mark new translations as needing review")
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "Show what would be translated without calling AI")
	cmd.Flags().StringVar(&a.text, "text", "", "Translate this text instead of catalogs")
	cmd.Flags().StringVar(&a.comment, "comment", "", "Context for --text")
	cmd.Flags().StringVar(&a.sourceLang, "source-lang", "en", "Source language of --text")

	return cmd
}

func runTranslate(cmd *cobra.Command, args []string, a *translateArgs) error {
	s, err := loadSettings(cmd, &a.runFlags)
	if err != nil {
		return err
	}
	a.providerFlags.apply(cmd, &s)
	if cmd.Flags().Changed("set-needs-review") {
		s.SetNeedsReview = a.setNeedsReview
	}

	if a.text != "" {
		return runTranslateText(s, a)
	}

	files, err := catalogPaths(args, s)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logWarning("%s", i18n.T("No string catalogs found"))
		return nil
	}

	if a.dryRun {
		return dryRun(files, s)
	}

	svc, err := newService(s, a.verbose)
	if err != nil {
		return err
	}
	lf, err := lockfile.Load(rootDir)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext("Interrupted, saving progress...")
	defer cancel()

	base := runOptions(s, a.verbose)
	base.MarkNeedsReview = s.SetNeedsReview

	err = translate.ProcessFiles(ctx, files, func(ctx context.Context, path string) error {
		c, out, err := openCatalog(path, s.Overwrite)
		if err != nil {
			return err
		}
		langs := catalogLanguages(c, s.Languages)
		if len(langs) == 0 {
			logWarning("%s: no target languages (use --lang)", path)
			return nil
		}
		pending, _, err := translate.Pending(c, langs)
		if err != nil {
			return err
		}
		if pending == 0 {
			logSuccess("%s: %s", path, i18n.T("Nothing to translate"))
			return nil
		}
		if pending > largeBatch {
			logWarning("%s: %d strings to translate into %d language(s)", path, pending, len(langs))
		}

		svc.SourceLanguage = c.SourceLanguage
		catalogKey := lockfile.CatalogKey(rootDir, path)

		opts := base
		opts.Languages = langs
		opts.OnTranslated = func(str *localizable.String) {
			lf.Update(catalogKey, lockfile.EntryKey(str.Key, str.Language, str.Kind.String()), str.Source)
		}
		var bar *progressbar.ProgressBar
		if !a.verbose {
			bar = newProgressBar(pending, i18n.T("Translating")+" "+filepath.Base(path))
			opts.OnProgress = func(done, total int) { _ = bar.Set(done) }
		}

		res, err := translate.TranslateCatalog(ctx, c, out, svc, opts)
		if bar != nil {
			_ = bar.Finish()
		}
		if perr := pruneLock(lf, catalogKey, c); perr != nil {
			logWarning("Lock file: %v", perr)
		}
		if serr := lf.Save(); serr != nil {
			logWarning("Lock file: %v", serr)
		}
		reportFailures(res)
		if err != nil {
			return err
		}
		logSuccess("%s (%d/%d)", i18n.Tf("Saved %s", out), res.Succeeded, res.Total)
		return nil
	}, base)
	return err
}

func runTranslateText(s config.Settings, a *translateArgs) error {
	if len(s.Languages) == 0 {
		return fmt.Errorf("--text requires --lang")
	}
	svc, err := newService(s, a.verbose)
	if err != nil {
		return err
	}
	svc.SourceLanguage = a.sourceLang

	ctx, cancel := signalContext("")
	defer cancel()

	opts := runOptions(s, a.verbose)
	opts.Languages = filterOutLang(s.Languages, a.sourceLang)

	failed := 0
	for _, r := range translate.TranslateText(ctx, svc, a.text, a.comment, opts) {
		if r.Err != nil {
			logError("[%s] %v", r.Language, r.Err)
			failed++
			continue
		}
		fmt.Printf("%s\t%s\n", r.Language, r.Translation)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d language(s) failed", failed)
	}
	return nil
}

func dryRun(files []string, s config.Settings) error {
	for _, path := range files {
		c, _, err := openCatalog(path, s.Overwrite)
		if err != nil {
			logError("%s: %v", path, err)
			continue
		}
		langs := catalogLanguages(c, s.Languages)
		for _, lang := range langs {
			pending, _, err := translate.Pending(c, []string{lang})
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			meta := langmeta.Resolve(lang)
			logInfo("%s: %s (%s): %d strings to translate", path, lang, meta.Name, pending)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// review
// ---------------------------------------------------------------------------

type reviewArgs struct {
	runFlags
	providerFlags
}

func newReviewCmd() *cobra.Command {
	var a reviewArgs

	cmd := &cobra.Command{
		Use:   "review [path...]",
		Short: i18n.T("Review strings marked as needing review"),
		Long: `Ask the AI to rate every string marked as needing review.

Strings rated good are marked translated; the others stay in review and the
reason is logged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(cmd, args, &a)
		},
	}

	a.runFlags.register(cmd)
	a.providerFlags.register(cmd)

	return cmd
}

func runReview(cmd *cobra.Command, args []string, a *reviewArgs) error {
	s, err := loadSettings(cmd, &a.runFlags)
	if err != nil {
		return err
	}
	a.providerFlags.apply(cmd, &s)

	files, err := catalogPaths(args, s)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logWarning("%s", i18n.T("No string catalogs found"))
		return nil
	}

	svc, err := newService(s, a.verbose)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext("Interrupted, saving progress...")
	defer cancel()

	base := runOptions(s, a.verbose)
	// Rejections are always worth seeing.
	base.OnLog = func(format string, args ...any) {
		logInfo(format, args...)
	}

	return translate.ProcessFiles(ctx, files, func(ctx context.Context, path string) error {
		c, out, err := openCatalog(path, s.Overwrite)
		if err != nil {
			return err
		}
		langs := catalogLanguages(c, s.Languages)
		_, pending, err := translate.Pending(c, langs)
		if err != nil {
			return err
		}
		if pending == 0 {
			logSuccess("%s: %s", path, i18n.T("Nothing to review"))
			return nil
		}

		svc.SourceLanguage = c.SourceLanguage
		opts := base
		opts.Languages = langs

		res, err := translate.ReviewCatalog(ctx, c, out, svc, opts)
		reportFailures(res)
		if err != nil {
			return err
		}
		logSuccess("%s: %d/%d accepted", i18n.Tf("Saved %s", out), res.Accepted, res.Total)
		return nil
	}, base)
}

// ---------------------------------------------------------------------------
// lint
// ---------------------------------------------------------------------------

func newLintCmd() *cobra.Command {
	var (
		f    runFlags
		mark bool
	)

	cmd := &cobra.Command{
		Use:   "lint [path...]",
		Short: i18n.T("Check translations for common mistakes"),
		Long: `Check translations against the source for mistakes such as unbalanced
leading or trailing whitespace and backticks that are not in the source.

Nothing is written unless --mark-failing-needs-review is given, in which case
failing strings are marked as needing review. Without it, the command fails
when any string fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, &f)
			if err != nil {
				return err
			}
			files, err := catalogPaths(args, s)
			if err != nil {
				return err
			}

			linter := &lint.Linter{OnLog: logWarning, Verbose: f.verbose}
			totalFailed := 0
			err = translate.ProcessFiles(context.Background(), files, func(_ context.Context, path string) error {
				c, out, err := openCatalog(path, s.Overwrite)
				if err != nil {
					return err
				}
				langs := catalogLanguages(c, s.Languages)
				sess, err := localizable.NewSession(c, langs)
				if err != nil {
					return err
				}
				failed, passed := linter.Lint(sess, langs)
				totalFailed += failed
				logInfo("%s: %d passed, %d failed", path, passed, failed)
				if failed == 0 || !mark {
					return nil
				}
				if err := sess.Commit(); err != nil {
					return err
				}
				if err := c.Write(out); err != nil {
					return err
				}
				logSuccess("%s", i18n.Tf("Saved %s", out))
				return nil
			}, logOptions(f.verbose))
			if err != nil {
				return err
			}
			if totalFailed == 0 {
				logSuccess("%s", i18n.T("All strings passed"))
				return nil
			}
			if !mark {
				return fmt.Errorf("%d string(s) failed lint", totalFailed)
			}
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&mark, "mark-failing-needs-review", false, "Mark failing strings as needing review and save")

	return cmd
}

// ---------------------------------------------------------------------------
// mark-needs-review / remove-languages
// ---------------------------------------------------------------------------

func newMarkNeedsReviewCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "mark-needs-review [path...]",
		Short: i18n.T("Mark translated strings as needing review"),
		Long: `Mark every translated string as needing review, for the languages given
with --lang or for all languages.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, &f)
			if err != nil {
				return err
			}
			files, err := catalogPaths(args, s)
			if err != nil {
				return err
			}
			return translate.ProcessFiles(context.Background(), files, func(_ context.Context, path string) error {
				c, out, err := openCatalog(path, s.Overwrite)
				if err != nil {
					return err
				}
				sess, err := localizable.NewSession(c, nil)
				if err != nil {
					return err
				}
				n := sess.MarkNeedsReview(filterOutLang(s.Languages, c.SourceLanguage))
				if err := sess.Commit(); err != nil {
					return err
				}
				if err := c.Write(out); err != nil {
					return err
				}
				logSuccess("%s: %d string(s) marked", i18n.Tf("Saved %s", out), n)
				return nil
			}, logOptions(f.verbose))
		},
	}

	f.register(cmd)
	return cmd
}

func newRemoveLanguagesCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "remove-languages [path...] --lang LANG",
		Short: i18n.T("Remove languages from string catalogs"),
		Long: `Remove the localizations of the languages given with --lang from every
entry. The source language is never removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(f.langs) == 0 {
				return fmt.Errorf("--lang is required")
			}
			s, err := loadSettings(cmd, &f)
			if err != nil {
				return err
			}
			files, err := catalogPaths(args, s)
			if err != nil {
				return err
			}
			lf, err := lockfile.Load(rootDir)
			if err != nil {
				return err
			}
			return translate.ProcessFiles(context.Background(), files, func(_ context.Context, path string) error {
				c, out, err := openCatalog(path, s.Overwrite)
				if err != nil {
					return err
				}
				if contains(f.langs, c.SourceLanguage) {
					logWarning("%s: not removing source language %s", path, c.SourceLanguage)
				}
				n := c.RemoveLanguages(f.langs)
				if err := c.Write(out); err != nil {
					return err
				}
				if err := pruneLock(lf, lockfile.CatalogKey(rootDir, path), c); err != nil {
					logWarning("Lock file: %v", err)
				} else if err := lf.Save(); err != nil {
					logWarning("Lock file: %v", err)
				}
				logSuccess("%s: %d localization(s) removed", i18n.Tf("Saved %s", out), n)
				return nil
			}, logOptions(f.verbose))
		},
	}

	f.register(cmd)
	return cmd
}

// ---------------------------------------------------------------------------
// status
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "status [path...]",
		Short: i18n.T("Show translation progress"),
		Long: `Show per-language translation progress of each catalog, and the
translations whose source text changed since they were made (from xckit.lock).
Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, &f)
			if err != nil {
				return err
			}
			files, err := catalogPaths(args, s)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				logWarning("%s", i18n.T("No string catalogs found"))
				return nil
			}
			lf, err := lockfile.Load(rootDir)
			if err != nil {
				return err
			}
			for _, path := range files {
				if err := showStatus(path, s, lf); err != nil {
					logError("%s: %v", path, err)
				}
			}
			fmt.Fprintf(os.Stderr, "\n%s: %s\n", lockfile.LockFileName, lf.Summary())
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func showStatus(path string, s config.Settings, lf *lockfile.LockFile) error {
	c, _, err := openCatalog(path, s.Overwrite)
	if err != nil {
		return err
	}
	langs := c.TargetLanguages()
	if len(s.Languages) > 0 {
		langs = intersectLanguages(langs, s.Languages)
	}
	sess, err := localizable.NewSession(c, langs)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, path, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "  Source language: %s, keys: %d\n", c.SourceLanguage, len(c.Strings))
	if len(langs) == 0 {
		fmt.Fprintf(os.Stderr, "  No target languages. Common choices: %s\n", strings.Join(langmeta.Common, ", "))
		return nil
	}

	width := langColumnWidth(langs)
	for _, lang := range langs {
		st := sess.Stats(lang)
		fmt.Fprintf(os.Stderr, "  %s %s  %d/%d (review: %d, new: %d, stale: %d)\n",
			langCell(lang, width), progressBar(int(st.Percent()), 20),
			st.Translated, st.Total, st.NeedsReview, st.New, st.Stale)
	}

	drifted := driftedStrings(sess, lockfile.CatalogKey(rootDir, path), lf)
	if len(drifted) > 0 {
		fmt.Fprintf(os.Stderr, "\n  %sSource changed since translation:%s\n", colorYellow, colorReset)
		for _, d := range drifted {
			fmt.Fprintf(os.Stderr, "    %s\n", d)
		}
	}
	return nil
}

// pruneLock drops the lock entries of catalogKey that no longer name a
// translated string of c, such as removed keys or languages.
func pruneLock(lf *lockfile.LockFile, catalogKey string, c *xcstrings.Catalog) error {
	sess, err := localizable.NewSession(c, nil)
	if err != nil {
		return err
	}
	lf.Clean(catalogKey, lockEntries(sess))
	return nil
}

// lockEntries returns the lock entry keys of the translated strings of sess.
func lockEntries(sess *localizable.Session) []string {
	var keys []string
	for i := 0; i < sess.Len(); i++ {
		str := sess.At(i)
		if str.IsSource || !str.HasValue() {
			continue
		}
		keys = append(keys, lockfile.EntryKey(str.Key, str.Language, str.Kind.String()))
	}
	return keys
}

// driftedStrings lists the translated strings whose source differs from the
// one recorded in the lock file.
func driftedStrings(sess *localizable.Session, catalogKey string, lf *lockfile.LockFile) []string {
	var out []string
	for _, key := range sess.Keys() {
		for _, i := range sess.Indices(key) {
			str := sess.At(i)
			if str.IsSource || !str.HasValue() {
				continue
			}
			if lf.Drifted(catalogKey, lockfile.EntryKey(str.Key, str.Language, str.Kind.String()), str.Source) {
				out = append(out, fmt.Sprintf("[%s] %q", str.Language, str.Key))
			}
		}
	}
	return out
}

// progressBar renders a colored bar of width cells followed by the percent.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	return color + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + colorReset +
		fmt.Sprintf(" %3d%%", percent)
}

func langColumnWidth(langs []string) int {
	w := 0
	for _, l := range langs {
		if len(l) > w {
			w = len(l)
		}
	}
	return w
}

// langCell renders the flag and code of lang, padded to width.
func langCell(lang string, width int) string {
	flag := langmeta.Resolve(lang).Flag
	if flag == "" {
		flag = "  "
	}
	return fmt.Sprintf("%s %-*s", flag, width, lang)
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: i18n.T("Manage provider API keys"),
		Long: `Manage API keys and endpoints for the AI providers.

Keys are stored in $XDG_DATA_HOME/xckit/auth.json (mode 0600). A key given
with --api-key or XCKIT_API_KEY, or the provider's own variable such as
OPENAI_API_KEY, takes precedence over the stored one.

Examples:
  xckit auth login                         Interactive provider selection
  xckit auth login --provider google       Store a Google AI API key
  xckit auth logout --provider google      Remove the Google API key
  xckit auth logout                        Remove all credentials
  xckit auth list                          Show all stored credentials`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthListCmd(),
	)

	return cmd
}

// allProviders is the ordered list of providers for the interactive menu.
var allProviders = []struct {
	id      string
	name    string
	helpURL string
	apiKey  bool
}{
	{translate.ProviderOpenAI, "OpenAI", "https://platform.openai.com/api-keys", true},
	{translate.ProviderGoogle, "Google AI Studio", "https://aistudio.google.com/apikey", true},
	{translate.ProviderAnthropic, "Anthropic", "https://console.anthropic.com/settings/keys", true},
	{translate.ProviderGroq, "Groq Cloud", "https://console.groq.com/keys", true},
	{translate.ProviderCustomOpenAI, "Custom OpenAI", "", true},
	{translate.ProviderOllama, "Ollama", "", false},
}

func knownProvider(id string) bool {
	for _, p := range allProviders {
		if p.id == id {
			return true
		}
	}
	return false
}

func newAuthLoginCmd() *cobra.Command {
	var provider, baseURL, model string

	cmd := &cobra.Command{
		Use:   "login",
		Short: i18n.T("Store an API key for a provider"),
		Long: `Store an API key for a provider. If --provider is not specified, you will
be prompted to choose. --base-url and --model are stored with the key and
used when not given on the command line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewScanner(os.Stdin)
			if provider == "" {
				p, err := promptProvider(in)
				if err != nil {
					return err
				}
				provider = p
			}
			if !knownProvider(provider) {
				return fmt.Errorf("unknown provider '%s'. Run 'xckit auth login' for options", provider)
			}
			return authLogin(in, provider, baseURL, model)
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to authenticate")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Endpoint URL to store (custom-openai, ollama)")
	cmd.Flags().StringVar(&model, "model", "", "Default model to store")

	return cmd
}

func promptProvider(in *bufio.Scanner) (string, error) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "%sSelect provider to authenticate:%s\n\n", colorBlue, colorReset)
	for i, p := range allProviders {
		fmt.Fprintf(os.Stderr, "  %d. %s%-13s%s %s\n", i+1, colorYellow, p.id, colorReset, p.name)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Enter choice (number or name): ")

	if !in.Scan() {
		return "", fmt.Errorf("no input received")
	}
	choice := strings.TrimSpace(in.Text())
	for i, p := range allProviders {
		if choice == fmt.Sprintf("%d", i+1) || choice == p.id {
			return p.id, nil
		}
	}
	return "", fmt.Errorf("invalid choice. Use: xckit auth login --provider PROVIDER")
}

func authLogin(in *bufio.Scanner, providerID, baseURL, model string) error {
	info := settings.Get(providerID)
	if info == nil {
		info = &settings.Info{Type: "api"}
	}
	info.Type = "api"

	var name, helpURL string
	needsKey := true
	for _, p := range allProviders {
		if p.id == providerID {
			name, helpURL, needsKey = p.name, p.helpURL, p.apiKey
		}
	}

	fmt.Fprintf(os.Stderr, "\n%s%s: API Key Setup%s\n", colorBlue, name, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintln(os.Stderr)
	if helpURL != "" {
		fmt.Fprintf(os.Stderr, "  Get your API key from: %s%s%s\n\n", colorGreen, helpURL, colorReset)
	}

	if providerID == translate.ProviderCustomOpenAI && baseURL == "" && info.BaseURL == "" {
		fmt.Fprintf(os.Stderr, "  Enter endpoint URL (e.g. http://localhost:8080/v1): ")
		if !in.Scan() {
			return fmt.Errorf("no input received")
		}
		baseURL = strings.TrimSpace(in.Text())
		if baseURL == "" {
			return fmt.Errorf("no endpoint URL provided")
		}
	}
	if baseURL != "" {
		info.BaseURL = baseURL
	}
	if model != "" {
		info.Model = model
	}

	if needsKey {
		if info.Key != "" {
			fmt.Fprintf(os.Stderr, "  Current key: %s%s%s\n", colorYellow, settings.MaskKey(info.Key), colorReset)
			fmt.Fprintf(os.Stderr, "  Enter new key to replace, or press Enter to keep: ")
		} else {
			fmt.Fprintf(os.Stderr, "  Enter API key: ")
		}
		if !in.Scan() {
			return fmt.Errorf("no input received")
		}
		if key := strings.TrimSpace(in.Text()); key != "" {
			info.Key = key
		} else if info.Key == "" && providerID != translate.ProviderCustomOpenAI {
			return fmt.Errorf("no API key provided")
		}
	}

	if err := settings.Set(providerID, info); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	logSuccess("%s settings saved to %s", name, settings.FilePath())
	return nil
}

func newAuthLogoutCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: i18n.T("Remove stored API keys"),
		Long: `Remove stored credentials for one or all providers.

If --provider is not specified, credentials for ALL providers are removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider != "" {
				if !knownProvider(provider) {
					return fmt.Errorf("unknown provider '%s'. Run 'xckit auth list' to see providers", provider)
				}
				if err := settings.Remove(provider); err != nil {
					return fmt.Errorf("removing %s credentials: %w", provider, err)
				}
				logSuccess("%s credentials removed", provider)
				return nil
			}
			if err := settings.RemoveAll(); err != nil {
				return err
			}
			logSuccess("All stored credentials removed")
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to logout (default: all)")
	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   i18n.T("List stored API keys"),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stderr, "\n%sStored Credentials%s\n", colorBlue, colorReset)
			fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

			for _, p := range allProviders {
				entry := settings.Get(p.id)
				switch {
				case entry != nil && entry.Key != "":
					fmt.Fprintf(os.Stderr, "  %-14s %sconfigured%s (key: %s)\n", p.id, colorGreen, colorReset, settings.MaskKey(entry.Key))
				case entry != nil && entry.BaseURL != "":
					fmt.Fprintf(os.Stderr, "  %-14s %sconfigured%s (no key)\n", p.id, colorGreen, colorReset)
				default:
					fmt.Fprintf(os.Stderr, "  %-14s %snot configured%s\n", p.id, colorRed, colorReset)
					continue
				}
				if entry.BaseURL != "" {
					fmt.Fprintf(os.Stderr, "  %14s endpoint: %s\n", "", entry.BaseURL)
				}
				if entry.Model != "" {
					fmt.Fprintf(os.Stderr, "  %14s model: %s\n", "", entry.Model)
				}
			}

			fmt.Fprintf(os.Stderr, "\n  %sEnvironment Variables%s\n", colorYellow, colorReset)
			for _, name := range []string{"XCKIT_API_KEY", "OPENAI_API_KEY", "GOOGLE_API_KEY", "ANTHROPIC_API_KEY", "GROQ_API_KEY"} {
				if v := os.Getenv(name); v != "" {
					fmt.Fprintf(os.Stderr, "  %-18s %s%s%s\n", name+":", colorGreen, settings.MaskKey(v), colorReset)
				} else {
					fmt.Fprintf(os.Stderr, "  %-18s %snot set%s\n", name+":", colorRed, colorReset)
				}
			}
			fmt.Fprintln(os.Stderr)
		},
	}
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// fileExists returns true if the file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// intersectLanguages returns the languages of filter present in available,
// in filter order.
func intersectLanguages(available, filter []string) []string {
	set := make(map[string]bool, len(available))
	for _, l := range available {
		set[l] = true
	}
	var out []string
	for _, l := range filter {
		l = strings.TrimSpace(l)
		if set[l] {
			out = append(out, l)
		}
	}
	return out
}

// filterOutLang returns langs without lang.
func filterOutLang(langs []string, lang string) []string {
	var out []string
	for _, l := range langs {
		if l != lang {
			out = append(out, l)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
