package ocrprocessor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"pdfsummarizer/logging"
)

// DefaultVisionEndpoint is the Google Cloud Vision annotate endpoint.
const DefaultVisionEndpoint = "https://vision.googleapis.com/v1/images:annotate"

var (
	// ErrEmptyResponse indicates the API returned no annotation entries.
	ErrEmptyResponse = errors.New("ocrprocessor: empty response from Vision API")

	// ErrNilClient indicates the HTTP client is nil.
	ErrNilClient = errors.New("ocrprocessor: HTTP client cannot be nil")
)

// VisionConfig holds configuration for the Vision recognizer.
type VisionConfig struct {
	// Endpoint is the images:annotate URL.
	Endpoint string

	// FeatureType is the detection feature, usually DOCUMENT_TEXT_DETECTION.
	FeatureType string

	// LanguageHints are BCP-47 codes passed as imageContext.languageHints.
	LanguageHints []string

	// Timeout bounds one annotate call when the context has no deadline.
	Timeout time.Duration
}

// DefaultVisionConfig returns the dense-text configuration.
func DefaultVisionConfig() VisionConfig {
	return VisionConfig{
		Endpoint:    DefaultVisionEndpoint,
		FeatureType: "DOCUMENT_TEXT_DETECTION",
		Timeout:     30 * time.Second,
	}
}

type visionRequest struct {
	Requests []visionRequestItem `json:"requests"`
}

type visionRequestItem struct {
	Image        visionImage         `json:"image"`
	Features     []visionFeature     `json:"features"`
	ImageContext *visionImageContext `json:"imageContext,omitempty"`
}

type visionImage struct {
	Content string `json:"content"`
}

type visionFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type visionImageContext struct {
	LanguageHints []string `json:"languageHints,omitempty"`
}

type visionResponse struct {
	Responses []struct {
		FullTextAnnotation struct {
			Text string `json:"text"`
		} `json:"fullTextAnnotation"`
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// VisionRecognizer sends images to Google Cloud Vision.
//
// Thread-Safety:
//   - VisionRecognizer is safe for concurrent use
type VisionRecognizer struct {
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
	config     VisionConfig
}

// NewVisionRecognizer validates apiKey and returns a recognizer.
// A nil logger discards output.
func NewVisionRecognizer(apiKey string, httpClient *http.Client, logger *logging.Logger, config VisionConfig) (*VisionRecognizer, error) {
	if httpClient == nil {
		return nil, ErrNilClient
	}
	if err := ValidateGoogleAPIKey(apiKey); err != nil {
		return nil, fmt.Errorf("ocrprocessor: %w", err)
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultVisionEndpoint
	}
	if config.FeatureType == "" {
		config.FeatureType = "DOCUMENT_TEXT_DETECTION"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &VisionRecognizer{
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger.Named("vision"),
		config:     config,
	}, nil
}

// Name identifies the engine in logs.
func (v *VisionRecognizer) Name() string { return "vision" }

// Recognize returns the full text annotation for image, or ErrNoTextFound.
func (v *VisionRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("ocrprocessor: image data is empty")
	}
	if _, ok := ctx.Deadline(); !ok && v.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	body, err := json.Marshal(v.buildRequest(image))
	if err != nil {
		return "", fmt.Errorf("ocrprocessor: failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s?key=%s", v.config.Endpoint, url.QueryEscape(v.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ocrprocessor: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		// The URL carries the key; report only the cause.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return "", fmt.Errorf("ocrprocessor: failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ocrprocessor: failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocrprocessor: Vision API error: status %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	var decoded visionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("ocrprocessor: failed to decode response: %w", err)
	}
	if len(decoded.Responses) == 0 {
		return "", ErrEmptyResponse
	}
	item := decoded.Responses[0]
	if item.Error.Message != "" {
		return "", fmt.Errorf("ocrprocessor: Vision API error: %s (code: %d)", item.Error.Message, item.Error.Code)
	}

	text := CleanText(item.FullTextAnnotation.Text)
	v.logger.Debug("image annotated",
		zap.Int("image_bytes", len(image)),
		zap.Int("text_len", len(text)),
		zap.Duration("elapsed", time.Since(start)))
	if text == "" {
		return "", ErrNoTextFound
	}
	return text, nil
}

func (v *VisionRecognizer) buildRequest(image []byte) *visionRequest {
	item := visionRequestItem{
		Image:    visionImage{Content: base64.StdEncoding.EncodeToString(image)},
		Features: []visionFeature{{Type: v.config.FeatureType, MaxResults: 1}},
	}
	if len(v.config.LanguageHints) > 0 {
		item.ImageContext = &visionImageContext{LanguageHints: v.config.LanguageHints}
	}
	return &visionRequest{Requests: []visionRequestItem{item}}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
