package pdfprocessor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"
)

// TestIntegration_PDFToSummary runs a generated PDF through the real
// extractor, chunker and client against a mock chat endpoint.
func TestIntegration_PDFToSummary(t *testing.T) {
	dir := t.TempDir()
	writeTestPDF(t, dir, "report.pdf",
		"Quarterly revenue grew by ten percent.",
		"Costs were flat across all regions.",
		"The outlook for next year is positive.")

	var mu sync.Mutex
	var prompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		prompts = append(prompts, req.Messages[0].Content)

		mu.Unlock()

		content := "section summary"
		if strings.Contains(req.Messages[0].Content, "Individual Section Summaries") {
			content = "final summary"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: content},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	// Small budget so every page becomes its own chunk.
	summarizer := NewSummarizer(SummarizerConfig{MaxCharsPerChunk: 60, MaxCombinedSummaryChars: 1000}, client, nil)
	processor := NewProcessor(NewExtractor(nil), nil, summarizer, nil)

	batch, err := processor.ProcessFolder(context.Background(), dir, DocumentOptions{Instruction: "Summarize the report"}, BatchHooks{})
	if err != nil {
		t.Fatalf("ProcessFolder() error = %v", err)
	}
	if batch.Summarized != 1 {
		t.Fatalf("batch = %+v, want one summarized document", batch)
	}

	doc := batch.Documents[0]
	if doc.Pages != 3 {
		t.Errorf("Pages = %d, want 3", doc.Pages)
	}
	if doc.Summary.Text != "final summary" {
		t.Errorf("Summary = %q, want synthesized text", doc.Summary.Text)
	}
	if doc.Summary.ChunkCount != 3 || doc.Summary.Requests != 4 {
		t.Errorf("ChunkCount = %d, Requests = %d", doc.Summary.ChunkCount, doc.Summary.Requests)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(prompts) != 4 {
		t.Fatalf("server saw %d requests, want 4", len(prompts))
	}
	if !strings.Contains(prompts[0], "part 1 of 3") || !strings.Contains(prompts[0], "Quarterly revenue") {
		t.Errorf("first prompt = %q", prompts[0])
	}
}
