package translate_test

// Notes:
// - The OpenAI client is exercised end-to-end against an httptest.Server
//   speaking the chat completions wire format; go-openai does the HTTP.
// - Error classification and completion decoding are also tested directly
//   through export_test.go.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/translocutor/internal/apierr"
	"github.com/alnah/translocutor/internal/caption"
	"github.com/alnah/translocutor/internal/translate"
)

// ---------------------------------------------------------------------------
// Helpers - OpenAI mock server
// ---------------------------------------------------------------------------

// chatRequest is the part of the request body the tests inspect.
type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat struct {
		Type       string `json:"type"`
		JSONSchema struct {
			Name   string          `json:"name"`
			Strict bool            `json:"strict"`
			Schema json.RawMessage `json:"schema"`
		} `json:"json_schema"`
	} `json:"response_format"`
}

type mockChatServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []chatRequest
	status   int
	body     any
}

func newMockChatServer(t *testing.T, status int, body any) *mockChatServer {
	t.Helper()
	m := &mockChatServer{status: status, body: body}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		m.mu.Lock()
		m.requests = append(m.requests, req)
		m.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(m.status)
		_ = json.NewEncoder(w).Encode(m.body)
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *mockChatServer) lastRequest() chatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return chatRequest{}
	}
	return m.requests[len(m.requests)-1]
}

// completion builds a chat completion body with the given message fields.
func completion(message map[string]any, finish string) map[string]any {
	message["role"] = "assistant"
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1723000000,
		"model":   "gpt-4o-2024-08-06",
		"choices": []map[string]any{{
			"index":         0,
			"message":       message,
			"finish_reason": finish,
		}},
		"usage": map[string]any{
			"prompt_tokens":     120,
			"completion_tokens": 80,
			"total_tokens":      200,
		},
	}
}

func translatedContent(t *testing.T, caps ...caption.Translated) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{"captions": caps})
	require.NoError(t, err)
	return string(b)
}

var danishCaptions = []caption.Request{
	{Start: "00:00:07.960", End: "00:00:13.320", Caption: []string{"Da den sidste istid som en softice", "smeltede for 11.000 år siden -"}},
	{Start: "00:00:18.440", End: "00:00:23.840", Caption: []string{"Nu får fire af dem besøg.", "Ærø, Fanø, Fur og Orø. "}},
}

func newTestClient(t *testing.T, srv *mockChatServer) *translate.OpenAIClient {
	t.Helper()
	c, err := translate.NewOpenAIClient("sk-test", translate.WithBaseURL(srv.URL+"/v1/"), translate.WithTimeout(5*time.Second))
	require.NoError(t, err)
	return c
}

// ---------------------------------------------------------------------------
// TestOpenAIClient_Translate
// ---------------------------------------------------------------------------

func TestOpenAIClient_Translate_Success(t *testing.T) {
	t.Parallel()

	content := translatedContent(t,
		caption.Translated{Start: "00:00:07.960", End: "00:00:13.320", Translated: []string{"When the last ice age melted 11,000 years ago -"}},
		caption.Translated{Start: "00:00:18.440", End: "00:00:23.840", Translated: []string{"Now, four of them are being visited.", "Ærø, Fanø, Fur, and Orø."}},
	)
	srv := newMockChatServer(t, http.StatusOK, completion(map[string]any{"content": content}, "stop"))
	client := newTestClient(t, srv)

	out, err := client.Translate(context.Background(), translate.Request{Captions: danishCaptions, TargetLanguage: "English"})
	require.NoError(t, err)

	success, ok := out.(*translate.Success)
	require.True(t, ok, "outcome = %T, want *Success", out)
	require.Len(t, success.Captions, 2)
	assert.Equal(t, []string{"Now, four of them are being visited.", "Ærø, Fanø, Fur, and Orø."}, success.Captions[1].Translated)
	assert.Equal(t, translate.Usage{PromptTokens: 120, CompletionTokens: 80, TotalTokens: 200}, success.Usage)

	req := srv.lastRequest()
	assert.Equal(t, translate.DefaultModel, req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "Translate the following sets of text to English", req.Messages[0].Content)
	assert.Equal(t, "user", req.Messages[1].Role)

	var payload []caption.Request
	require.NoError(t, json.Unmarshal([]byte(req.Messages[1].Content), &payload))
	assert.Equal(t, danishCaptions, payload)

	assert.Equal(t, "json_schema", req.ResponseFormat.Type)
	assert.Equal(t, translate.ResponseSchemaName, req.ResponseFormat.JSONSchema.Name)
	assert.True(t, req.ResponseFormat.JSONSchema.Strict)
	assert.Contains(t, string(req.ResponseFormat.JSONSchema.Schema), `"captions"`)
	assert.Contains(t, string(req.ResponseFormat.JSONSchema.Schema), `"translated"`)
}

func TestOpenAIClient_Translate_CustomModel(t *testing.T) {
	t.Parallel()

	srv := newMockChatServer(t, http.StatusOK, completion(map[string]any{"content": `{"captions":[]}`}, "stop"))
	client, err := translate.NewOpenAIClient("sk-test", translate.WithBaseURL(srv.URL+"/v1"), translate.WithModel("gpt-4o-mini"))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", client.Model())

	_, err = client.Translate(context.Background(), translate.Request{TargetLanguage: "German"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", srv.lastRequest().Model)
	assert.Equal(t, "[]", srv.lastRequest().Messages[1].Content)
}

func TestOpenAIClient_Translate_Refusal(t *testing.T) {
	t.Parallel()

	srv := newMockChatServer(t, http.StatusOK, completion(map[string]any{"content": "", "refusal": "I'm sorry, I can't assist with that."}, "stop"))
	client := newTestClient(t, srv)

	out, err := client.Translate(context.Background(), translate.Request{Captions: danishCaptions, TargetLanguage: "English"})
	require.NoError(t, err)

	refusal, ok := out.(*translate.Refusal)
	require.True(t, ok, "outcome = %T, want *Refusal", out)
	assert.Equal(t, "I'm sorry, I can't assist with that.", refusal.Reason)
}

func TestOpenAIClient_Translate_HTTPErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		message string
		want    error
	}{
		{"rate limit", http.StatusTooManyRequests, "Rate limit reached for requests", apierr.ErrRateLimit},
		{"quota", http.StatusTooManyRequests, "You exceeded your current quota", apierr.ErrQuotaExceeded},
		{"auth", http.StatusUnauthorized, "Incorrect API key provided", apierr.ErrAuthFailed},
		{"bad request", http.StatusBadRequest, "Invalid schema for response_format", apierr.ErrBadRequest},
		{"server", http.StatusInternalServerError, "The server had an error", apierr.ErrServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			body := map[string]any{"error": map[string]any{"message": tt.message, "type": "test_error"}}
			srv := newMockChatServer(t, tt.status, body)
			client := newTestClient(t, srv)

			out, err := client.Translate(context.Background(), translate.Request{Captions: danishCaptions, TargetLanguage: "English"})
			require.Error(t, err)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewOpenAIClient_EmptyKey(t *testing.T) {
	t.Parallel()

	c, err := translate.NewOpenAIClient("")
	assert.Nil(t, c)
	assert.ErrorIs(t, err, translate.ErrEmptyAPIKey)
}

// ---------------------------------------------------------------------------
// TestDecodeCompletion - response validation without HTTP
// ---------------------------------------------------------------------------

func TestDecodeCompletion(t *testing.T) {
	t.Parallel()

	choice := func(content, refusal string, finish openai.FinishReason) openai.ChatCompletionResponse {
		return openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: content, Refusal: refusal},
				FinishReason: finish,
			}},
		}
	}

	tests := []struct {
		name    string
		resp    openai.ChatCompletionResponse
		wantErr error
		refusal bool
	}{
		{name: "no choices", resp: openai.ChatCompletionResponse{}, wantErr: translate.ErrEmptyResponse},
		{name: "empty content", resp: choice("  ", "", openai.FinishReasonStop), wantErr: translate.ErrEmptyResponse},
		{name: "truncated", resp: choice(`{"captions":[`, "", openai.FinishReasonLength), wantErr: translate.ErrMalformedResponse},
		{name: "not json", resp: choice("Here is your translation:", "", openai.FinishReasonStop), wantErr: translate.ErrMalformedResponse},
		{name: "refusal wins", resp: choice("", "no", openai.FinishReasonStop), refusal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := translate.DecodeCompletion(tt.resp)
			if tt.refusal {
				require.NoError(t, err)
				_, ok := out.(*translate.Refusal)
				assert.True(t, ok)
				return
			}
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// TestClassifyOpenAIError
// ---------------------------------------------------------------------------

type timeoutError struct{}

func (timeoutError) Error() string { return "Client.Timeout exceeded" }
func (timeoutError) Timeout() bool { return true }

func TestClassifyOpenAIError(t *testing.T) {
	t.Parallel()

	plain := errors.New("something else")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", context.DeadlineExceeded, apierr.ErrTimeout},
		{"http client timeout", timeoutError{}, apierr.ErrTimeout},
		{"canceled passes through", context.Canceled, context.Canceled},
		{"gateway timeout", &openai.APIError{HTTPStatusCode: http.StatusGatewayTimeout, Message: "upstream"}, apierr.ErrTimeout},
		{"payment required", &openai.APIError{HTTPStatusCode: http.StatusPaymentRequired, Message: "pay"}, apierr.ErrQuotaExceeded},
		{"request error 503", &openai.RequestError{HTTPStatusCode: http.StatusServiceUnavailable, Err: errors.New("unavailable")}, apierr.ErrServer},
		{"unknown passes through", plain, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := translate.ClassifyOpenAIError(tt.err)
			assert.ErrorIs(t, got, tt.want)
		})
	}

	assert.NoError(t, translate.ClassifyOpenAIError(nil))
}

// ---------------------------------------------------------------------------
// Fake chat completer through the exported option
// ---------------------------------------------------------------------------

type fakeCompleter struct {
	resp openai.ChatCompletionResponse
	err  error
	got  openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.got = req
	return f.resp, f.err
}

func TestOpenAIClient_WithChatCompleter(t *testing.T) {
	t.Parallel()

	fc := &fakeCompleter{err: &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"}}
	client, err := translate.NewOpenAIClient("sk-test", translate.WithChatCompleter(fc))
	require.NoError(t, err)

	_, err = client.Translate(context.Background(), translate.Request{Captions: danishCaptions, TargetLanguage: "fr"})
	assert.ErrorIs(t, err, apierr.ErrAuthFailed)
	assert.Equal(t, "Translate the following sets of text to fr", fc.got.Messages[0].Content)
	require.NotNil(t, fc.got.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONSchema, fc.got.ResponseFormat.Type)
}
