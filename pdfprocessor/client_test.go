package pdfprocessor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

// mockChatServer serves a fixed status and raw body for /v1/chat/completions
// and counts requests.
func mockChatServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Expected /v1/chat/completions path, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(serverURL string) *Client {
	return NewClient(ClientConfig{
		APIKey:  "test-key",
		BaseURL: serverURL + "/v1",
		Timeout: 5 * time.Second,
	}, nil)
}

func chatBody(content string, finish openai.FinishReason) string {
	resp := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: "assistant", Content: content}, FinishReason: finish},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestClient_Complete_Success(t *testing.T) {
	var got openai.ChatCompletionRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, chatBody("  A concise summary.  \n", openai.FinishReasonStop))
	}))
	defer srv.Close()

	res := newTestClient(srv.URL).Complete(context.Background(), "Summarize this.", "You are summarizing part 1 of 2 from a larger document.")

	if !res.OK() {
		t.Fatalf("Complete() failed: %v", res)
	}
	if res.Text != "A concise summary." {
		t.Errorf("Text = %q, want trimmed content", res.Text)
	}
	if auth != "Bearer test-key" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.Model != DefaultModel {
		t.Errorf("model = %q, want %q", got.Model, DefaultModel)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != openai.ChatMessageRoleUser {
		t.Fatalf("messages = %+v, want one user message", got.Messages)
	}
	want := "You are summarizing part 1 of 2 from a larger document.\n\nSummarize this."
	if got.Messages[0].Content != want {
		t.Errorf("content = %q, want %q", got.Messages[0].Content, want)
	}
}

func TestClient_Complete_NoContextTrimsPrompt(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, chatBody("ok", openai.FinishReasonStop))
	}))
	defer srv.Close()

	newTestClient(srv.URL).Complete(context.Background(), "Only the prompt", "")

	if got.Messages[0].Content != "Only the prompt" {
		t.Errorf("content = %q, want %q", got.Messages[0].Content, "Only the prompt")
	}
}

func TestClient_Complete_MissingCredential(t *testing.T) {
	srv, calls := mockChatServer(t, http.StatusOK, chatBody("unused", openai.FinishReasonStop))

	client := NewClient(ClientConfig{BaseURL: srv.URL + "/v1"}, nil)
	res := client.Complete(context.Background(), "prompt", "")

	if res.OK() || res.Failure.Kind != FailureMissingCredential {
		t.Fatalf("result = %+v, want missing_credential", res)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Errorf("server received %d requests, want 0", *calls)
	}
	if !strings.HasPrefix(res.String(), ErrorPrefix) {
		t.Errorf("String() = %q, want error prefix", res.String())
	}
}

func TestClient_Complete_ResponseFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   FailureKind
		wantStatus int
		wantText   string
	}{
		{
			name:       "api error json",
			status:     http.StatusInternalServerError,
			body:       `{"error":{"message":"server exploded","type":"server_error"}}`,
			wantKind:   FailureHTTP,
			wantStatus: 500,
			wantText:   "server exploded (type: server_error)",
		},
		{
			name:       "api error with code",
			status:     http.StatusPaymentRequired,
			body:       `{"error":{"message":"Insufficient Balance","type":"invalid_request_error","code":"insufficient_quota"}}`,
			wantKind:   FailureHTTP,
			wantStatus: 402,
			wantText:   "Insufficient Balance (type: invalid_request_error, code: insufficient_quota)",
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"error":{"message":"Authentication Fails (no such user)","type":"authentication_error"}}`,
			wantKind:   FailureHTTP,
			wantStatus: 401,
			wantText:   "Authentication Fails",
		},
		{
			name:       "plain text error body",
			status:     http.StatusBadGateway,
			body:       "bad gateway from upstream",
			wantKind:   FailureHTTP,
			wantStatus: 502,
			wantText:   "bad gateway from upstream",
		},
		{
			name:     "invalid json",
			status:   http.StatusOK,
			body:     "this is not json",
			wantKind: FailureMalformedResponse,
		},
		{
			name:     "missing choices",
			status:   http.StatusOK,
			body:     `{"id":"x"}`,
			wantKind: FailureMalformedResponse,
			wantText: "no choices",
		},
		{
			name:     "content filtered",
			status:   http.StatusOK,
			body:     `{"choices":[{"message":{"role":"assistant","content":""},"finish_reason":"content_filter"}]}`,
			wantKind: FailureContentFiltered,
			wantText: "content policy",
		},
		{
			name:     "truncated",
			status:   http.StatusOK,
			body:     `{"choices":[{"message":{"role":"assistant","content":""},"finish_reason":"length"}]}`,
			wantKind: FailureTruncated,
			wantText: "truncated",
		},
		{
			name:     "empty with stop",
			status:   http.StatusOK,
			body:     `{"choices":[{"message":{"role":"assistant","content":"   "},"finish_reason":"stop"}]}`,
			wantKind: FailureEmptyContent,
			wantText: "Finish Reason: stop",
		},
		{
			name:     "missing message",
			status:   http.StatusOK,
			body:     `{"choices":[{}]}`,
			wantKind: FailureEmptyContent,
			wantText: "Finish Reason: none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := mockChatServer(t, tt.status, tt.body)

			res := newTestClient(srv.URL).Complete(context.Background(), "prompt", "")

			if res.OK() {
				t.Fatalf("Complete() succeeded with %q, want %s", res.Text, tt.wantKind)
			}
			if res.Failure.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s (message: %s)", res.Failure.Kind, tt.wantKind, res.Failure.Message)
			}
			if tt.wantStatus != 0 && res.Failure.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", res.Failure.StatusCode, tt.wantStatus)
			}
			if tt.wantText != "" && !strings.Contains(res.Failure.Message, tt.wantText) {
				t.Errorf("Message = %q, want it to contain %q", res.Failure.Message, tt.wantText)
			}
			if n := atomic.LoadInt32(calls); n != 1 {
				t.Errorf("server received %d requests, want exactly 1", n)
			}
		})
	}
}

func TestClient_Complete_TruncatedAndFilteredAreDistinct(t *testing.T) {
	filtered := interpretResponse(openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{FinishReason: openai.FinishReasonContentFilter}}})
	truncated := interpretResponse(openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{FinishReason: openai.FinishReasonLength}}})

	if filtered.String() == truncated.String() {
		t.Errorf("content_filter and length produced the same text: %q", filtered.String())
	}
	if filtered.Failure.Kind.Category() != CategoryContent || truncated.Failure.Kind.Category() != CategoryContent {
		t.Error("content failures should be in the content category")
	}
}

func TestClient_Complete_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1", Timeout: 50 * time.Millisecond}, nil)
	res := client.Complete(context.Background(), "prompt", "")

	if res.OK() || res.Failure.Kind != FailureTimeout {
		t.Fatalf("result = %+v, want timeout", res.Failure)
	}
	if res.Failure.Kind.Category() != CategoryTransport {
		t.Errorf("Category() = %s, want transport", res.Failure.Kind.Category())
	}
}

func TestClient_Complete_Canceled(t *testing.T) {
	srv, _ := mockChatServer(t, http.StatusOK, chatBody("unused", openai.FinishReasonStop))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestClient(srv.URL).Complete(ctx, "prompt", "")
	if res.OK() || res.Failure.Kind != FailureCanceled {
		t.Fatalf("result = %+v, want canceled", res.Failure)
	}
}

func TestClient_Complete_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := newTestClient(url).Complete(context.Background(), "prompt", "")
	if res.OK() || res.Failure.Kind != FailureNetwork {
		t.Fatalf("result = %+v, want network_error", res.Failure)
	}
	if !strings.Contains(res.String(), "Network or Request Error") {
		t.Errorf("String() = %q", res.String())
	}
}

func TestClient_Complete_APIErrorBody(t *testing.T) {
	srv, _ := mockChatServer(t, http.StatusBadRequest,
		`{"error":{"message":"Invalid model","type":"invalid_request_error","param":"model","code":null}}`)

	res := newTestClient(srv.URL).Complete(context.Background(), "prompt", "")
	if res.OK() || res.Failure.Kind != FailureHTTP {
		t.Fatalf("result = %+v, want http_error", res.Failure)
	}
	for _, want := range []string{`"message":"Invalid model"`, `"type":"invalid_request_error"`, `"param":"model"`} {
		if !strings.Contains(res.Failure.Body, want) {
			t.Errorf("Body = %q, want it to contain %s", res.Failure.Body, want)
		}
	}
	if strings.Contains(res.Failure.Message, "code:") {
		t.Errorf("Message = %q, a null code should be omitted", res.Failure.Message)
	}
}
