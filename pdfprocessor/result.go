package pdfprocessor

import (
	"fmt"
	"strings"
)

// ErrorPrefix starts the display form of every failed result.
const ErrorPrefix = "Error: "

// FailureKind identifies why a request or a summarization run failed.
type FailureKind string

// Failure kinds. Their category is reported by FailureKind.Category.
const (
	FailureInput             FailureKind = "input"
	FailureMissingCredential FailureKind = "missing_credential"
	FailureTimeout           FailureKind = "timeout"
	FailureNetwork           FailureKind = "network_error"
	FailureCanceled          FailureKind = "canceled"
	FailureHTTP              FailureKind = "http_error"
	FailureMalformedResponse FailureKind = "malformed_response"
	FailureContentFiltered   FailureKind = "content_filtered"
	FailureTruncated         FailureKind = "truncated"
	FailureEmptyContent      FailureKind = "empty_content"
)

// Failure categories.
const (
	CategoryInput     = "input"
	CategoryTransport = "transport"
	CategoryRemote    = "remote"
	CategoryContent   = "content"
)

// Category groups the kind into input, transport, remote or content errors.
func (k FailureKind) Category() string {
	switch k {
	case FailureInput, FailureMissingCredential:
		return CategoryInput
	case FailureTimeout, FailureNetwork, FailureCanceled:
		return CategoryTransport
	case FailureHTTP, FailureMalformedResponse:
		return CategoryRemote
	default:
		return CategoryContent
	}
}

// Failure is a typed failure with a human-readable message.
// StatusCode and Body are set for http_error only.
type Failure struct {
	Kind       FailureKind
	Message    string
	StatusCode int
	Body       string
}

func (f *Failure) Error() string {
	return f.Message
}

// Result is the outcome of a single completion request.
type Result struct {
	Text    string
	Failure *Failure
}

// OK reports whether the request produced content.
func (r *Result) OK() bool {
	return r != nil && r.Failure == nil
}

// String returns the content, or the failure message with ErrorPrefix.
func (r *Result) String() string {
	if r == nil {
		return ErrorPrefix + "no result"
	}
	if r.Failure != nil {
		return ErrorPrefix + r.Failure.Message
	}
	return r.Text
}

func success(text string) *Result {
	return &Result{Text: text}
}

func failure(kind FailureKind, format string, args ...interface{}) *Result {
	return &Result{Failure: &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

// SkipReason says why synthesis was not attempted on a multi-chunk run.
type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipChunkErrors SkipReason = "chunk_errors"
	SkipLength      SkipReason = "length"
)

// Notices prefixed to a degraded result. They differ so callers and tests can
// tell the two skip reasons apart.
const (
	ChunkErrorsNotice = "--- Combined Section Summaries (Final Synthesis Skipped Due to Chunk Errors) ---\n\n"
	LengthNotice      = "--- Combined Section Summaries (Final Synthesis Skipped Due to Length) ---\n\n"
)

// Notice returns the prefix text for the reason, or "" for SkipNone.
func (s SkipReason) Notice() string {
	switch s {
	case SkipChunkErrors:
		return ChunkErrorsNotice
	case SkipLength:
		return LengthNotice
	default:
		return ""
	}
}

// SummaryResult is the terminal outcome of one summarization run.
//
// A run either fails (Failure set) or yields Text. A degraded run yields Text
// made of the concatenated chunk summaries with SkipReason set.
type SummaryResult struct {
	Text         string
	Failure      *Failure
	SkipReason   SkipReason
	ChunkCount   int
	FailedChunks []int // 1-based
	Requests     int
}

// OK reports whether the run produced a summary, degraded or not.
func (r *SummaryResult) OK() bool {
	return r != nil && r.Failure == nil
}

// Degraded reports whether synthesis was skipped.
func (r *SummaryResult) Degraded() bool {
	return r.OK() && r.SkipReason != SkipNone
}

// String returns the summary text, or the failure message with ErrorPrefix.
func (r *SummaryResult) String() string {
	if r == nil {
		return ErrorPrefix + "no result"
	}
	if r.Failure != nil {
		return ErrorPrefix + r.Failure.Message
	}
	return r.Text
}

// IsErrorText reports whether s is the display form of a failure.
func IsErrorText(s string) bool {
	return strings.HasPrefix(s, ErrorPrefix)
}
