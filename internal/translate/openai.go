package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/alnah/translocutor/internal/apierr"
	"github.com/alnah/translocutor/internal/caption"
	"github.com/alnah/translocutor/internal/token"
)

// OpenAI API configuration.
const (
	// DefaultModel is the chat model used for translation.
	// It must support structured outputs (json_schema response format).
	DefaultModel = token.DefaultModel

	// DefaultTimeout bounds a single chat completion request.
	DefaultTimeout = 10 * time.Minute

	// responseSchemaName names the json_schema response format.
	responseSchemaName = "translation_response"

	// systemPromptFormat is the system instruction; %s is the target language.
	systemPromptFormat = "Translate the following sets of text to %s"
)

// translationResponse is the structured output the model must return.
type translationResponse struct {
	Captions []caption.Translated `json:"captions"`
}

// responseSchema is generated once from translationResponse.
var responseSchema = sync.OnceValues(func() (*jsonschema.Definition, error) {
	return jsonschema.GenerateSchemaForType(translationResponse{})
})

// chatCompleter is the subset of *openai.Client used by OpenAIClient.
// Tests inject fakes through withChatCompleter.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Client        = (*OpenAIClient)(nil)
	_ chatCompleter = (*openai.Client)(nil)
)

// OpenAIClient translates partitions with OpenAI chat completions and
// structured outputs. It holds no per-request state and is safe to reuse
// across partitions and files.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
	client  chatCompleter
}

// Option configures an OpenAIClient.
type Option func(*OpenAIClient)

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(c *OpenAIClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
// Zero or negative values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *OpenAIClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBaseURL sets a custom base URL (for testing or proxies).
// The URL must include the API version path, e.g. https://host/v1.
func WithBaseURL(url string) Option {
	return func(c *OpenAIClient) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// withChatCompleter replaces the go-openai client (for testing).
func withChatCompleter(cc chatCompleter) Option {
	return func(c *OpenAIClient) {
		c.client = cc
	}
}

// NewOpenAIClient creates an OpenAIClient.
// Returns ErrEmptyAPIKey if apiKey is empty.
func NewOpenAIClient(apiKey string, opts ...Option) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}
	c := &OpenAIClient{
		apiKey:  apiKey,
		model:   DefaultModel,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	// Build the go-openai client after options are applied (timeout may be customized).
	if c.client == nil {
		cfg := openai.DefaultConfig(c.apiKey)
		if c.baseURL != "" {
			cfg.BaseURL = c.baseURL
		}
		cfg.HTTPClient = &http.Client{Timeout: c.timeout}
		c.client = openai.NewClientWithConfig(cfg)
	}
	return c, nil
}

// Model returns the chat model requests are sent to.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Translate sends one partition and decodes the structured response.
func (c *OpenAIClient) Translate(ctx context.Context, req Request) (Outcome, error) {
	schema, err := responseSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to build response schema: %w", err)
	}

	payload, err := caption.Marshal(req.Captions)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize captions: %w", err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(systemPromptFormat, req.TargetLanguage)},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   responseSchemaName,
				Schema: schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	return decodeCompletion(resp)
}

// decodeCompletion turns a chat completion into an Outcome.
func decodeCompletion(resp openai.ChatCompletionResponse) (Outcome, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response: %w", ErrEmptyResponse)
	}

	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return &Refusal{Reason: choice.Message.Refusal}, nil
	}
	if choice.FinishReason == openai.FinishReasonLength {
		return nil, fmt.Errorf("output truncated at max tokens: %w", ErrMalformedResponse)
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return nil, fmt.Errorf("no content in response: %w", ErrEmptyResponse)
	}

	var parsed translationResponse
	if err := json.Unmarshal([]byte(choice.Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrMalformedResponse)
	}

	return &Success{
		Captions: parsed.Captions,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// classifyOpenAIError maps go-openai errors to apierr sentinel errors.
func classifyOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	// Cancellation is the caller's decision, not an API failure.
	if errors.Is(err, context.Canceled) {
		return err
	}

	// Typed API errors carry the HTTP status and the service message.
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	// Request errors carry a status but no decoded message.
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, reqErr.Error(), err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	// http.Client timeouts surface as *url.Error with Timeout() == true.
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	return err
}

// classifyStatus maps an HTTP status to an apierr sentinel.
func classifyStatus(status int, message string, err error) error {
	switch status {
	case http.StatusTooManyRequests:
		// Distinguish between temporary rate limit and quota exceeded (billing issue).
		if strings.Contains(message, "quota") || strings.Contains(message, "billing") {
			return fmt.Errorf("%s: %w", message, apierr.ErrQuotaExceeded)
		}
		return fmt.Errorf("%s: %w", message, apierr.ErrRateLimit)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%s: %w", message, apierr.ErrQuotaExceeded)
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", message, apierr.ErrAuthFailed)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return fmt.Errorf("%s: %w", message, apierr.ErrTimeout)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Errorf("%s: %w", message, apierr.ErrServer)
	case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity:
		return fmt.Errorf("%s: %w", message, apierr.ErrBadRequest)
	}
	return err
}
