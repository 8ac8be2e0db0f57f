package pdfprocessor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"pdfsummarizer/logging"
)

// Client defaults.
const (
	DefaultBaseURL = "https://api.deepseek.com/v1"
	DefaultModel   = "deepseek-chat"
	DefaultTimeout = 180 * time.Second
)

// maxErrorBodyLen bounds response bodies embedded in http_error messages.
const maxErrorBodyLen = 1000

// ClientConfig holds configuration for the chat-completion client.
type ClientConfig struct {
	// APIKey is the bearer credential. Empty means every call fails with missing_credential.
	APIKey string

	// BaseURL is the OpenAI-compatible API root; /chat/completions is appended.
	BaseURL string

	// Model names the chat model, e.g. "deepseek-chat".
	Model string

	// Timeout bounds each request when HTTPClient is nil.
	Timeout time.Duration

	// HTTPClient overrides the transport (tests, proxies).
	HTTPClient *http.Client
}

// Client sends one prompt per call to an OpenAI-compatible chat endpoint.
// It never retries and never returns a Go error: every outcome is a *Result.
type Client struct {
	api    *openai.Client
	config ClientConfig
	logger *logging.Logger
}

// NewClient creates a Client. A nil logger discards output.
//
// Example:
//
//	client := NewClient(ClientConfig{APIKey: cfg.DeepSeekAPIKey}, logger)
//	res := client.Complete(ctx, "Summarize: ...", "")
func NewClient(cfg ClientConfig, logger *logging.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	} else {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		api:    openai.NewClientWithConfig(clientConfig),
		config: cfg,
		logger: logger.Named("client"),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.config.Model
}

// Complete sends contextInfo and prompt as a single user message and returns
// the trimmed reply, or a typed failure.
func (c *Client) Complete(ctx context.Context, prompt, contextInfo string) *Result {
	if strings.TrimSpace(c.config.APIKey) == "" {
		return failure(FailureMissingCredential, "API key not provided to the client.")
	}

	fullPrompt := strings.TrimSpace(contextInfo + "\n\n" + prompt)

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fullPrompt},
		},
	})
	elapsed := time.Since(start)

	if err != nil {
		res := classifyError(ctx, err)
		c.logger.Warn("chat completion failed",
			zap.String("kind", string(res.Failure.Kind)),
			zap.Int("prompt_len", len(fullPrompt)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return res
	}

	res := interpretResponse(resp)
	if res.OK() {
		c.logger.Debug("chat completion succeeded",
			zap.Int("prompt_len", len(fullPrompt)),
			zap.Int("reply_len", len(res.Text)),
			zap.Duration("elapsed", elapsed))
	} else {
		c.logger.Warn("chat completion returned no content",
			zap.String("kind", string(res.Failure.Kind)),
			zap.String("detail", res.Failure.Message))
	}
	return res
}

// interpretResponse maps a decoded 2xx response to content or a content failure.
func interpretResponse(resp openai.ChatCompletionResponse) *Result {
	if len(resp.Choices) == 0 {
		return failure(FailureMalformedResponse, "Unexpected API response format: no choices in response.")
	}

	choice := resp.Choices[0]
	if content := strings.TrimSpace(choice.Message.Content); content != "" {
		return success(content)
	}

	switch choice.FinishReason {
	case openai.FinishReasonContentFilter:
		return failure(FailureContentFiltered, "API response filtered due to content policy.")
	case openai.FinishReasonLength:
		return failure(FailureTruncated, "API response truncated due to length limits. Consider reducing chunk size or summary detail.")
	default:
		reason := string(choice.FinishReason)
		if reason == "" {
			reason = "none"
		}
		return failure(FailureEmptyContent, "API returned empty content (Finish Reason: %s).", reason)
	}
}

// classifyError maps transport and API errors from go-openai to failure kinds.
func classifyError(ctx context.Context, err error) *Result {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		res := failure(FailureHTTP, "HTTP Error: status %d: %s", apiErr.HTTPStatusCode, apiErrorDetail(apiErr))
		res.Failure.StatusCode = apiErr.HTTPStatusCode
		res.Failure.Body = apiErr.Message
		// go-openai decodes the error object; re-encode it as the body.
		if raw, err := json.Marshal(apiErr); err == nil {
			res.Failure.Body = TruncateText(string(raw), maxErrorBodyLen)
		}
		return res
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := TruncateText(strings.TrimSpace(string(reqErr.Body)), maxErrorBodyLen)
		res := failure(FailureHTTP, "HTTP Error: status %d: %s", reqErr.HTTPStatusCode, body)
		res.Failure.StatusCode = reqErr.HTTPStatusCode
		res.Failure.Body = body
		return res
	}

	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return failure(FailureCanceled, "Request canceled: %v", err)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return failure(FailureTimeout, "Request timed out. Check connection or increase timeout.")
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return failure(FailureMalformedResponse, "Could not parse API response: %v", err)
	}

	// A cut-off body on a 2xx reply surfaces as a bare EOF from the decoder;
	// a dropped connection arrives wrapped in *url.Error instead.
	var urlErr *url.Error
	if !errors.As(err, &urlErr) && (errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)) {
		return failure(FailureMalformedResponse, "Could not parse API response: %v", err)
	}

	return failure(FailureNetwork, "Network or Request Error: %v", err)
}

// apiErrorDetail renders the message with the error type and code when present.
func apiErrorDetail(apiErr *openai.APIError) string {
	var extra []string
	if apiErr.Type != "" {
		extra = append(extra, "type: "+apiErr.Type)
	}
	// go-openai decodes a null code as 0.
	switch code := apiErr.Code.(type) {
	case string:
		if code != "" {
			extra = append(extra, "code: "+code)
		}
	case int:
		if code != 0 {
			extra = append(extra, fmt.Sprintf("code: %d", code))
		}
	}
	if len(extra) == 0 {
		return apiErr.Message
	}
	return fmt.Sprintf("%s (%s)", apiErr.Message, strings.Join(extra, ", "))
}
