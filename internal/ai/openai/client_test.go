package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type fakeCompleter struct {
	responses []goopenai.ChatCompletionResponse
	errs      []error
	requests  []goopenai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
	idx := len(f.requests)
	f.requests = append(f.requests, req)
	var err error
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	if err != nil {
		return goopenai.ChatCompletionResponse{}, err
	}
	if idx < len(f.responses) {
		return f.responses[idx], nil
	}
	return goopenai.ChatCompletionResponse{}, nil
}

func reply(text string) goopenai.ChatCompletionResponse {
	return goopenai.ChatCompletionResponse{
		Choices: []goopenai.ChatCompletionChoice{{Message: goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleAssistant, Content: text}}},
	}
}

func TestGenerateContentSendsSystemAndUser(t *testing.T) {
	fake := &fakeCompleter{responses: []goopenai.ChatCompletionResponse{reply("  {\"question\":\"hi\"}  ")}}
	g := &Generator{client: fake, model: "gpt-test", logger: zap.NewNop()}

	got, err := g.GenerateContent(context.Background(), "system text", "user text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"question":"hi"}` {
		t.Fatalf("unexpected content %q", got)
	}

	msgs := fake.requests[0].Messages
	if len(msgs) != 2 || msgs[0].Role != goopenai.ChatMessageRoleSystem || msgs[1].Content != "user text" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}

func TestGenerateContentRetriesServerErrors(t *testing.T) {
	var delays []time.Duration
	prev := sleep
	sleep = func(d time.Duration) { delays = append(delays, d) }
	t.Cleanup(func() { sleep = prev })

	fake := &fakeCompleter{
		errs:      []error{&goopenai.APIError{HTTPStatusCode: http.StatusBadGateway}, nil},
		responses: []goopenai.ChatCompletionResponse{{}, reply("ok")},
	}
	g := &Generator{client: fake, model: "gpt-test", maxRetries: 2, logger: zap.NewNop()}

	got, err := g.GenerateContent(context.Background(), "", "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("unexpected content %q", got)
	}
	if len(delays) != 1 || delays[0] != baseBackoff {
		t.Fatalf("unexpected delays %v", delays)
	}
	if len(fake.requests[1].Messages) != 1 {
		t.Fatalf("expected system message to be omitted when empty")
	}
}

func TestGenerateContentDoesNotRetryClientErrors(t *testing.T) {
	fake := &fakeCompleter{errs: []error{&goopenai.APIError{HTTPStatusCode: http.StatusUnauthorized}}}
	g := &Generator{client: fake, model: "gpt-test", maxRetries: 3, logger: zap.NewNop()}

	_, err := g.GenerateContent(context.Background(), "", "prompt")
	var apiErr *goopenai.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected api error, got %v", err)
	}
	if len(fake.requests) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(fake.requests))
	}
}

func TestGeneratorAgainstHTTPServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req goopenai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply("from " + req.Model))
	}))
	t.Cleanup(server.Close)

	g, err := NewGenerator("secret", server.URL+"/v1", "local-model", 0, nil)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	got, err := g.GenerateContent(context.Background(), "sys", "msg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from local-model" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestNewGeneratorRequiresModel(t *testing.T) {
	if _, err := NewGenerator("key", "", " ", 0, nil); err == nil {
		t.Fatalf("expected error for empty model")
	}
}
