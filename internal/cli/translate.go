package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/translocutor/internal/caption"
	"github.com/alnah/translocutor/internal/config"
	"github.com/alnah/translocutor/internal/format"
	"github.com/alnah/translocutor/internal/lang"
	"github.com/alnah/translocutor/internal/subtitle"
	"github.com/alnah/translocutor/internal/token"
	"github.com/alnah/translocutor/internal/translate"
)

// maxPreflight bounds concurrent file checks before translation starts.
const maxPreflight = 8

// translateFlags holds raw flag values as typed by the user.
type translateFlags struct {
	files          []string
	targetLanguage string
	model          string
	targetTokens   int
	timeout        time.Duration
	outputDir      string
	force          bool
}

// translateOptions holds validated options for the translate command.
type translateOptions struct {
	files          []string
	targetLanguage string
	model          string
	targetTokens   int
	timeout        time.Duration
	outputDir      string
	force          bool
}

// job is one input file checked by preflight.
type job struct {
	input  string
	output string
	format subtitle.Format
	size   int64
}

// TranslateCmd creates the translate command, used as the root command.
// The env parameter provides injectable dependencies for testing.
func TranslateCmd(env *Env) *cobra.Command {
	var flags translateFlags

	cmd := &cobra.Command{
		Use:   "translocutor -f <file>... [flags]",
		Short: "Translate subtitle files with OpenAI, keeping the original text",
		Long: `Translate WebVTT or SubRip subtitle files into a target language.

Each output cue shows the original text (yellow) above the translation
(white). Captions are sent in batches sized by a token budget; every batch is
one request, and requests run one after another.

Output goes next to the input as <name>.all.<ext> (or into --output-dir).
Existing outputs are never overwritten unless --force is given.

Requires OPENAI_API_KEY (environment or .env file).`,
		Example: `  translocutor -f island.vtt
  translocutor -f part1.vtt part2.vtt -t German
  translocutor -f movie.srt -t pt-BR --target-tokens 2000 --timeout 5m
  translocutor -f talk.vtt --output-dir ~/subs --force`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.files = append(flags.files, args...)
			if len(flags.files) == 0 {
				return fmt.Errorf("requires at least 1 file (use -f <file>)")
			}

			cfg, err := env.ConfigLoader.Load()
			if err != nil {
				fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
				cfg = config.Config{}
			}

			opts, err := parseTranslateOptions(flags, changedFlags(cmd), cfg)
			if err != nil {
				return err
			}
			return runTranslate(cmd.Context(), env, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&flags.files, "file", "f", nil, "Subtitle file(s) to translate (.vtt, .srt)")
	cmd.Flags().StringVarP(&flags.targetLanguage, "target-language", "t", "", "Target language, as a name or code (default: English)")
	cmd.Flags().StringVar(&flags.model, "model", "", "OpenAI chat model with structured outputs (default: "+translate.DefaultModel+")")
	cmd.Flags().IntVar(&flags.targetTokens, "target-tokens", 0, fmt.Sprintf("Token budget per request (default: %d)", translate.DefaultTargetTokens))
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "Timeout per request (default: "+format.DurationHuman(translate.DefaultTimeout)+")")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Directory for output files (default: next to each input)")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Overwrite existing output files")

	return cmd
}

// changedFlags returns the names of flags explicitly set on the command line.
func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := make(map[string]bool)
	for _, name := range []string{"target-language", "model", "target-tokens", "timeout", "output-dir"} {
		changed[name] = cmd.Flags().Changed(name)
	}
	return changed
}

// parseTranslateOptions merges flags with configuration and validates the result.
// Precedence: explicit flag, then config (file, then env), then default.
// All parsing happens at the CLI boundary.
func parseTranslateOptions(flags translateFlags, changed map[string]bool, cfg config.Config) (translateOptions, error) {
	opts := translateOptions{
		files:          flags.files,
		targetLanguage: cfg.TargetLanguage,
		model:          cfg.Model,
		targetTokens:   cfg.TargetTokens,
		timeout:        cfg.Timeout,
		outputDir:      cfg.OutputDir,
		force:          flags.force,
	}
	if changed["target-language"] {
		opts.targetLanguage = flags.targetLanguage
	}
	if changed["model"] {
		opts.model = flags.model
	}
	if changed["target-tokens"] {
		opts.targetTokens = flags.targetTokens
	} else if opts.targetTokens == 0 {
		opts.targetTokens = translate.DefaultTargetTokens
	}
	if changed["timeout"] {
		opts.timeout = flags.timeout
	} else if opts.timeout == 0 {
		opts.timeout = translate.DefaultTimeout
	}
	if changed["output-dir"] {
		opts.outputDir = flags.outputDir
	}
	if opts.model == "" {
		opts.model = translate.DefaultModel
	}
	opts.outputDir = config.ExpandPath(opts.outputDir)

	target, err := lang.ParseTarget(opts.targetLanguage)
	if err != nil {
		return translateOptions{}, err
	}
	opts.targetLanguage = target

	if opts.targetTokens <= 0 {
		return translateOptions{}, fmt.Errorf("--target-tokens %d: %w", opts.targetTokens, translate.ErrInvalidBudget)
	}
	if opts.timeout <= 0 {
		return translateOptions{}, fmt.Errorf("--timeout %v must be positive: %w", opts.timeout, config.ErrInvalidValue)
	}

	return opts, nil
}

// runTranslate executes the translate command with validated options.
// Files are processed in order; the first error aborts the run.
// A requested stop is honored between files.
func runTranslate(ctx context.Context, env *Env, opts translateOptions) error {
	// === VALIDATION (fail-fast) ===

	// 1. API key, checked once for the whole run
	apiKey := env.Getenv(EnvOpenAIAPIKey)
	if apiKey == "" {
		return fmt.Errorf("%w (set it with: export %s=sk-... or add it to .env)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
	}

	// 2. Output directory
	if opts.outputDir != "" {
		if err := config.EnsureOutputDir(opts.outputDir); err != nil {
			return fmt.Errorf("invalid output-dir: %w", err)
		}
	}

	// 3. Every input file, before any request is made
	jobs, err := preflight(ctx, opts)
	if err != nil {
		return err
	}

	// 4. Tokenizer for the model
	est, err := env.EstimatorFactory.NewEstimator(opts.model)
	if err != nil {
		return err
	}

	// 5. One client for every file
	client, err := env.ClientFactory.NewClient(apiKey,
		translate.WithModel(opts.model),
		translate.WithTimeout(opts.timeout),
	)
	if err != nil {
		return err
	}

	// === TRANSLATE ===

	for i, j := range jobs {
		if i > 0 && env.StopRequested != nil && env.StopRequested() {
			return fmt.Errorf("stopped, %d file(s) not translated: %w", len(jobs)-i, context.Canceled)
		}
		if err := translateFile(ctx, env, opts, est, client, j); err != nil {
			return err
		}
	}
	return nil
}

// preflight checks every input concurrently and derives its output path.
// Jobs are returned in input order.
func preflight(ctx context.Context, opts translateOptions) ([]job, error) {
	jobs := make([]job, len(opts.files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPreflight)
	for i, input := range opts.files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			j, err := checkInput(input, opts)
			if err != nil {
				return err
			}
			jobs[i] = j
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Two inputs must not write the same output.
	seen := make(map[string]string, len(jobs))
	for _, j := range jobs {
		if prev, ok := seen[j.output]; ok {
			return nil, fmt.Errorf("%s and %s both write %s: %w", prev, j.input, j.output, ErrOutputExists)
		}
		seen[j.output] = j.input
	}

	return jobs, nil
}

// checkInput validates one input file and resolves its output.
func checkInput(input string, opts translateOptions) (job, error) {
	info, err := os.Stat(input)
	if err != nil {
		if os.IsNotExist(err) {
			return job{}, fmt.Errorf("%s: %w", input, ErrFileNotFound)
		}
		return job{}, fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return job{}, fmt.Errorf("%s is a directory: %w", input, ErrFileNotFound)
	}

	f, err := subtitle.FormatOf(input)
	if err != nil {
		return job{}, err
	}

	output := subtitle.OutputPath(input, opts.outputDir)
	if !opts.force {
		if _, err := os.Stat(output); err == nil {
			return job{}, fmt.Errorf("%s (use --force to overwrite): %w", output, ErrOutputExists)
		}
	}

	return job{input: input, output: output, format: f, size: info.Size()}, nil
}

// translateFile reads, translates, writes and reports a single file.
func translateFile(ctx context.Context, env *Env, opts translateOptions, est token.Estimator, client translate.Client, j job) error {
	// === READ INPUT ===

	fmt.Fprintf(env.Stderr, "reading file: %s (%s)\n", j.input, format.Size(j.size))

	captions, err := subtitle.Read(j.input)
	if err != nil {
		return fmt.Errorf("%s: %w", j.input, err)
	}
	if len(captions) == 0 {
		fmt.Fprintf(env.Stderr, "Warning: no captions in %s\n", j.input)
	}

	// === TRANSLATE ===

	reporter, done := newStatusReporter(env, j.input)
	tr := translate.NewTranslator(est,
		translate.NewOrchestrator(client, translate.WithStatusReporter(reporter)),
		translate.WithTargetTokens(opts.targetTokens),
	)

	start := env.Now()
	result, err := tr.Translate(ctx, captions, opts.targetLanguage)
	done()
	if err != nil {
		return fmt.Errorf("%s: %w", j.input, err)
	}
	elapsed := env.Now().Sub(start)

	// === WRITE OUTPUT ===

	fmt.Fprintf(env.Stderr, "writing to %s\n", j.output)

	var buf bytes.Buffer
	if err := subtitle.Write(&buf, j.format, result.Captions); err != nil {
		return err
	}
	if err := writeFileAtomic(j.output, buf.Bytes(), opts.force); err != nil {
		return err
	}

	// === REPORT ===

	report := usageReport{
		SourceLanguage: sourceLanguage(captions),
		TargetLanguage: opts.targetLanguage,
		Captions:       len(result.Captions),
		Partitions:     result.Partitions,
		Estimated:      result.EstimatedTokens,
		Usage:          result.Usage,
		Elapsed:        elapsed,
	}
	fmt.Fprintln(env.Stderr, report.render())
	return nil
}

// sourceLanguage names the detected language of the captions, or "unknown".
func sourceLanguage(captions []caption.Request) string {
	var lines []string
	for _, c := range captions {
		lines = append(lines, c.Caption...)
	}
	tag := lang.Detect(lines)
	base, conf := tag.Base()
	if conf == 0 || base.String() == "und" {
		return "unknown"
	}
	return lang.DisplayName(base.String())
}
