package cli

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/alnah/translocutor/internal/config"
	"github.com/alnah/translocutor/internal/token"
	"github.com/alnah/translocutor/internal/translate"
)

// EnvOpenAIAPIKey is the environment variable holding the OpenAI API key.
const EnvOpenAIAPIKey = "OPENAI_API_KEY"

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout     io.Writer
	Stderr     io.Writer
	Getenv     func(string) string
	Now        func() time.Time
	IsTerminal func(io.Writer) bool
	// StopRequested reports a pending graceful stop (first Ctrl+C).
	// Checked between files; nil means never.
	StopRequested func() bool

	// Factories for domain objects
	ConfigLoader     ConfigLoader
	EstimatorFactory EstimatorFactory
	ClientFactory    ClientFactory
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// EstimatorFactory creates token estimators for a model.
type EstimatorFactory interface {
	NewEstimator(model string) (token.Estimator, error)
}

// ClientFactory creates the translation service client.
// The CLI calls it once per run; the client is shared by every file.
type ClientFactory interface {
	NewClient(apiKey string, opts ...translate.Option) (translate.Client, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithIsTerminal sets the terminal detector used to pick the progress display.
func WithIsTerminal(fn func(io.Writer) bool) EnvOption {
	return func(e *Env) {
		e.IsTerminal = fn
	}
}

// WithStopRequested sets the graceful stop check.
func WithStopRequested(fn func() bool) EnvOption {
	return func(e *Env) {
		e.StopRequested = fn
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithEstimatorFactory sets the estimator factory.
func WithEstimatorFactory(f EstimatorFactory) EnvOption {
	return func(e *Env) {
		e.EstimatorFactory = f
	}
}

// WithClientFactory sets the client factory.
func WithClientFactory(f ClientFactory) EnvOption {
	return func(e *Env) {
		e.ClientFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		Getenv:           os.Getenv,
		Now:              time.Now,
		IsTerminal:       isTerminal,
		StopRequested:    func() bool { return false },
		ConfigLoader:     &defaultConfigLoader{},
		EstimatorFactory: &defaultEstimatorFactory{},
		ClientFactory:    &defaultClientFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// isTerminal reports whether w is a terminal file descriptor.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultEstimatorFactory implements EstimatorFactory with tiktoken.
type defaultEstimatorFactory struct{}

func (defaultEstimatorFactory) NewEstimator(model string) (token.Estimator, error) {
	est, err := token.New(model)
	if err != nil {
		return nil, err
	}
	return est, nil
}

// defaultClientFactory implements ClientFactory using OpenAI.
type defaultClientFactory struct{}

func (defaultClientFactory) NewClient(apiKey string, opts ...translate.Option) (translate.Client, error) {
	client, err := translate.NewOpenAIClient(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Compile-time interface verification.
var (
	_ ConfigLoader     = (*defaultConfigLoader)(nil)
	_ EstimatorFactory = (*defaultEstimatorFactory)(nil)
	_ ClientFactory    = (*defaultClientFactory)(nil)
)
