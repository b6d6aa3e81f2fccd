package cli

import (
	"context"
	"strings"
	"sync"

	"github.com/alnah/translocutor/internal/caption"
	"github.com/alnah/translocutor/internal/config"
	"github.com/alnah/translocutor/internal/token"
	"github.com/alnah/translocutor/internal/translate"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock EstimatorFactory + Estimator
// ---------------------------------------------------------------------------

type mockEstimatorFactory struct {
	NewEstimatorFunc func(model string) (token.Estimator, error)

	mu     sync.Mutex
	models []string
}

func (m *mockEstimatorFactory) NewEstimator(model string) (token.Estimator, error) {
	m.mu.Lock()
	m.models = append(m.models, model)
	m.mu.Unlock()

	if m.NewEstimatorFunc != nil {
		return m.NewEstimatorFunc(model)
	}
	return &mockEstimator{}, nil
}

func (m *mockEstimatorFactory) Models() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.models...)
}

// mockEstimator charges PerCaption tokens per caption (default 1).
type mockEstimator struct {
	PerCaption int
}

func (m *mockEstimator) Estimate(captions []caption.Request) (int, error) {
	per := m.PerCaption
	if per == 0 {
		per = 1
	}
	return per * len(captions), nil
}

// ---------------------------------------------------------------------------
// Mock ClientFactory + Client
// ---------------------------------------------------------------------------

type mockClientFactory struct {
	NewClientFunc func(apiKey string, opts ...translate.Option) (translate.Client, error)

	mu      sync.Mutex
	apiKeys []string
	client  *mockClient
}

func (m *mockClientFactory) NewClient(apiKey string, opts ...translate.Option) (translate.Client, error) {
	m.mu.Lock()
	m.apiKeys = append(m.apiKeys, apiKey)
	if m.client == nil {
		m.client = &mockClient{}
	}
	client := m.client
	m.mu.Unlock()

	if m.NewClientFunc != nil {
		return m.NewClientFunc(apiKey, opts...)
	}
	return client, nil
}

// NewClientCalls returns the API keys passed to NewClient.
func (m *mockClientFactory) NewClientCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.apiKeys...)
}

// Client returns the client handed out by NewClient, creating it if needed.
func (m *mockClientFactory) Client() *mockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		m.client = &mockClient{}
	}
	return m.client
}

// mockClient answers each request with "[lang] line" translations and
// a fixed usage. TranslateFunc overrides the behavior when set.
type mockClient struct {
	TranslateFunc func(ctx context.Context, req translate.Request) (translate.Outcome, error)

	mu    sync.Mutex
	calls []translate.Request
}

func (m *mockClient) Translate(ctx context.Context, req translate.Request) (translate.Outcome, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, req)
	}

	out := make([]caption.Translated, len(req.Captions))
	for i, c := range req.Captions {
		out[i] = caption.Translated{
			Start:      c.Start,
			End:        c.End,
			Translated: []string{"[" + req.TargetLanguage + "] " + strings.Join(c.Caption, " ")},
		}
	}
	return &translate.Success{
		Captions: out,
		Usage:    translate.Usage{PromptTokens: 100, CompletionTokens: 40, TotalTokens: 140},
	}, nil
}

func (m *mockClient) Calls() []translate.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]translate.Request(nil), m.calls...)
}

// Compile-time interface verification.
var (
	_ ConfigLoader     = (*mockConfigLoader)(nil)
	_ EstimatorFactory = (*mockEstimatorFactory)(nil)
	_ ClientFactory    = (*mockClientFactory)(nil)
	_ token.Estimator  = (*mockEstimator)(nil)
	_ translate.Client = (*mockClient)(nil)
)
