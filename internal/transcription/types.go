package transcription

import (
	"context"
	"strings"
)

// Word is one recognized token with its timing in seconds.
type Word struct {
	Text  string
	Start float64
	End   float64
}

// Result is a finished transcription. Either field may be empty.
type Result struct {
	Text  string
	Words []Word
}

// HasWords reports whether word-level timing is available.
func (r Result) HasWords() bool {
	return len(r.Words) > 0
}

// HasText reports whether the result carries non-blank text.
func (r Result) HasText() bool {
	return strings.TrimSpace(r.Text) != ""
}

// Transcriber turns an audio file into a Result.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (Result, error)
}

// msToSeconds converts provider millisecond offsets.
func msToSeconds(ms float64) float64 {
	return ms / 1000
}
