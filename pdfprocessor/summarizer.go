package pdfprocessor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"pdfsummarizer/logging"
)

// Orchestration defaults.
const (
	DefaultMaxCombinedSummaryChars = 20000
	DefaultChunkDelay              = 500 * time.Millisecond
	DefaultInstruction             = "Summarize this document and highlight key points."
)

// summaryDelimiter separates chunk summaries in the combined text.
const summaryDelimiter = "\n\n---\n\n"

// Completer performs one prompt/response exchange. *Client implements it.
type Completer interface {
	Complete(ctx context.Context, prompt, contextInfo string) *Result
}

// Stage names a progress milestone.
type Stage string

const (
	StageSplit     Stage = "split"
	StageChunk     Stage = "chunk"
	StageSynthesis Stage = "synthesis"
	StageDone      Stage = "done"
)

// Progress describes one milestone of a summarization run.
// Chunk and Total are 1-based positions for StageChunk; Total is the chunk
// count for every stage after splitting.
type Progress struct {
	Stage   Stage
	Chunk   int
	Total   int
	Message string
}

// ProgressFunc receives milestones synchronously on the summarizing goroutine.
type ProgressFunc func(Progress)

// SummarizerConfig holds the thresholds for one Summarizer.
type SummarizerConfig struct {
	// MaxCharsPerChunk is the chunk budget in bytes.
	MaxCharsPerChunk int

	// MaxCombinedSummaryChars is the largest combined-summaries text that is
	// still sent for synthesis.
	MaxCombinedSummaryChars int

	// ChunkDelay is the pause between consecutive chunk requests.
	ChunkDelay time.Duration
}

// DefaultSummarizerConfig returns the thresholds tuned for deepseek-chat.
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{
		MaxCharsPerChunk:        DefaultMaxCharsPerChunk,
		MaxCombinedSummaryChars: DefaultMaxCombinedSummaryChars,
		ChunkDelay:              DefaultChunkDelay,
	}
}

// Summarizer chooses between a single request and chunk-then-synthesize, and
// drives the requests strictly in order.
type Summarizer struct {
	config  SummarizerConfig
	chunker *Chunker
	client  Completer
	logger  *logging.Logger
}

// NewSummarizer creates a Summarizer. Zero thresholds take their defaults; a
// negative delay is treated as zero.
func NewSummarizer(config SummarizerConfig, client Completer, logger *logging.Logger) *Summarizer {
	if config.MaxCharsPerChunk <= 0 {
		config.MaxCharsPerChunk = DefaultMaxCharsPerChunk
	}
	if config.MaxCombinedSummaryChars <= 0 {
		config.MaxCombinedSummaryChars = DefaultMaxCombinedSummaryChars
	}
	if config.ChunkDelay < 0 {
		config.ChunkDelay = 0
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Summarizer{
		config:  config,
		chunker: NewChunker(config.MaxCharsPerChunk),
		client:  client,
		logger:  logger.Named("summarizer"),
	}
}

// Summarize produces one terminal result for text. It never returns nil and
// never panics on bad input; failures are reported in the result.
//
// Example:
//
//	res := summarizer.Summarize(ctx, merged, "Summarize briefly", nil)
//	if !res.OK() {
//	    log.Println(res)
//	}
func (s *Summarizer) Summarize(ctx context.Context, text, instruction string, progress ProgressFunc) *SummaryResult {
	report := func(p Progress) {
		if progress != nil {
			progress(p)
		}
	}

	if strings.TrimSpace(text) == "" {
		return s.finish(report, &SummaryResult{
			Failure: &Failure{Kind: FailureInput, Message: "No text provided to summarize."},
		})
	}

	chunks := s.chunker.SplitIntoChunks(text)
	total := len(chunks)
	if total == 0 {
		return s.finish(report, &SummaryResult{
			Failure: &Failure{Kind: FailureInput, Message: "Text resulted in zero valid chunks after splitting."},
		})
	}
	report(Progress{Stage: StageSplit, Total: total, Message: fmt.Sprintf("Text split into %d chunk(s).", total)})
	s.logger.Debug("text split", zap.Int("chunks", total), zap.Int("text_len", len(text)))

	if total == 1 {
		report(Progress{Stage: StageChunk, Chunk: 1, Total: 1, Message: "Summarizing single chunk..."})
		res := s.client.Complete(ctx, singlePrompt(instruction, chunks[0]), "")
		out := &SummaryResult{ChunkCount: 1, Requests: 1}
		if res.OK() {
			out.Text = res.Text
		} else {
			out.Failure = res.Failure
		}
		return s.finish(report, out)
	}

	return s.finish(report, s.summarizeChunks(ctx, chunks, instruction, report))
}

func (s *Summarizer) summarizeChunks(ctx context.Context, chunks []string, instruction string, report func(Progress)) *SummaryResult {
	total := len(chunks)
	out := &SummaryResult{ChunkCount: total}
	summaries := make([]string, 0, total)

	for i, chunk := range chunks {
		num := i + 1
		if i > 0 && !s.pause(ctx) {
			// Canceled while waiting: remaining chunks fail without a request.
			for j := i; j < total; j++ {
				summaries = append(summaries, chunkErrorMarker(j+1, ErrorPrefix+"Request canceled before it was sent."))
				out.FailedChunks = append(out.FailedChunks, j+1)
			}
			break
		}

		report(Progress{Stage: StageChunk, Chunk: num, Total: total, Message: fmt.Sprintf("Summarizing chunk %d/%d...", num, total)})

		res := s.client.Complete(ctx, chunkPrompt(instruction, chunk), chunkContext(num, total))
		out.Requests++
		if res.OK() {
			summaries = append(summaries, res.Text)
			continue
		}

		s.logger.Warn("chunk summary failed",
			zap.Int("chunk", num),
			zap.Int("total", total),
			zap.String("kind", string(res.Failure.Kind)))
		summaries = append(summaries, chunkErrorMarker(num, res.String()))
		out.FailedChunks = append(out.FailedChunks, num)
	}

	if len(summaries) == 0 {
		out.Failure = &Failure{Kind: FailureInput, Message: "Failed to get summaries for any chunk."}
		return out
	}

	combined := strings.Join(summaries, summaryDelimiter)

	switch {
	case len(out.FailedChunks) > 0:
		out.SkipReason = SkipChunkErrors
	case len(combined) > s.config.MaxCombinedSummaryChars:
		out.SkipReason = SkipLength
	}
	if out.SkipReason != SkipNone {
		s.logger.Info("synthesis skipped",
			zap.String("reason", string(out.SkipReason)),
			zap.Int("combined_len", len(combined)),
			zap.Ints("failed_chunks", out.FailedChunks))
		out.Text = out.SkipReason.Notice() + combined
		return out
	}

	report(Progress{Stage: StageSynthesis, Total: total, Message: "Combining chunk summaries for final result..."})
	res := s.client.Complete(ctx, synthesisPrompt(instruction, combined), "")
	out.Requests++
	if res.OK() {
		out.Text = res.Text
	} else {
		out.Failure = res.Failure
	}
	return out
}

// pause waits ChunkDelay. It returns false if ctx ended first.
func (s *Summarizer) pause(ctx context.Context) bool {
	if s.config.ChunkDelay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(s.config.ChunkDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *Summarizer) finish(report func(Progress), res *SummaryResult) *SummaryResult {
	msg := "Summary received."
	if !res.OK() {
		msg = res.String()
	} else if res.Degraded() {
		msg = "Synthesis skipped. Returning combined summaries."
	}
	report(Progress{Stage: StageDone, Total: res.ChunkCount, Message: msg})
	return res
}

func singlePrompt(instruction, chunk string) string {
	return fmt.Sprintf("%s\n\nPlease summarize the following text:\n\n%s", instruction, chunk)
}

func chunkContext(num, total int) string {
	return fmt.Sprintf("You are summarizing part %d of %d from a larger document.", num, total)
}

func chunkPrompt(instruction, chunk string) string {
	return fmt.Sprintf("%s\n\nPlease summarize this section of the document:\n\n%s", instruction, chunk)
}

func synthesisPrompt(instruction, combined string) string {
	return fmt.Sprintf("The following are summaries of consecutive sections of a document. "+
		"Synthesize them into a single, coherent, and comprehensive summary of the entire document, "+
		"maintaining a consistent tone and flow.\n\n"+
		"The original high-level instruction for the summary was: '%s'\n\n"+
		"--- Individual Section Summaries to Combine ---\n%s", instruction, combined)
}

func chunkErrorMarker(num int, errText string) string {
	return fmt.Sprintf("[Error summarizing chunk %d: %s]", num, errText)
}
