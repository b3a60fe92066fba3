package captions

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subburn/internal/logging"
	"subburn/internal/transcription"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{3661.5, "01:01:01,500"},
		{1.001, "00:00:01,001"},
		{59.9999, "00:00:59,999"},
		{math.NaN(), "00:00:00,000"},
		{math.Inf(1), "00:00:00,000"},
		{-3, "00:00:00,000"},
		{36000, "10:00:00,000"},
	}
	for _, tc := range cases {
		if got := FormatTimestamp(tc.seconds); got != tc.want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestBuildCuesBatchesWords(t *testing.T) {
	words := make([]transcription.Word, 15)
	for i := range words {
		words[i] = transcription.Word{Text: string(rune('a' + i)), Start: float64(i), End: float64(i) + 0.5}
	}
	cues := BuildCues(transcription.Result{Text: "ignored. text.", Words: words})
	if len(cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(cues))
	}
	sizes := []int{7, 7, 1}
	for i, cue := range cues {
		if cue.Index != i+1 {
			t.Fatalf("cue %d has index %d", i, cue.Index)
		}
		if got := len(strings.Fields(cue.Text)); got != sizes[i] {
			t.Fatalf("cue %d has %d words, want %d", i, got, sizes[i])
		}
		if i > 0 && cue.Start <= cues[i-1].Start {
			t.Fatalf("cue starts not increasing: %v then %v", cues[i-1].Start, cue.Start)
		}
	}
	if cues[0].Start != 0 || cues[0].End != 6.5 || cues[0].Text != "a b c d e f g" {
		t.Fatalf("unexpected first cue: %#v", cues[0])
	}
	if cues[2].Start != 14 || cues[2].End != 14.5 {
		t.Fatalf("unexpected last cue: %#v", cues[2])
	}
}

func TestBuildCuesFallsBackToSentences(t *testing.T) {
	cues := BuildCues(transcription.Result{Text: "Hello world. Bye."})
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Start != 0 || cues[0].End != 4 || cues[0].Text != "Hello world." {
		t.Fatalf("unexpected first cue: %#v", cues[0])
	}
	if cues[1].Start != 4 || cues[1].End != 8 || cues[1].Text != "Bye." || cues[1].Index != 2 {
		t.Fatalf("unexpected second cue: %#v", cues[1])
	}
}

func TestBuildCuesDropsTrailingFragment(t *testing.T) {
	cues := BuildCues(transcription.Result{Text: "Hello world. and then it cut"})
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d: %#v", len(cues), cues)
	}
	if cues[0].Start != 0 || cues[0].End != 4 || cues[0].Text != "Hello world." {
		t.Fatalf("unexpected cue: %#v", cues[0])
	}
}

func TestBuildCuesPadsZeroLengthBatch(t *testing.T) {
	words := []transcription.Word{
		{Text: "one", Start: 2, End: 2},
		{Text: "two", Start: 9, End: 9},
		{Text: "three", Start: 9, End: 8.5},
	}
	cues := BuildCues(transcription.Result{Words: words[:1]})
	if len(cues) != 1 || cues[0].End <= cues[0].Start {
		t.Fatalf("expected positive span, got %#v", cues)
	}
	if cues[0].End != 2+minCueSeconds {
		t.Fatalf("end = %v, want %v", cues[0].End, 2+minCueSeconds)
	}
	cues = BuildCues(transcription.Result{Words: words[1:]})
	if len(cues) != 1 || cues[0].Start != 9 || cues[0].End != 9+minCueSeconds {
		t.Fatalf("unexpected inverted batch cue: %#v", cues)
	}
}

func TestBuildCuesEmpty(t *testing.T) {
	if cues := BuildCues(transcription.Result{Text: "   "}); len(cues) != 0 {
		t.Fatalf("expected no cues, got %v", cues)
	}
	if got := FormatSRT(nil); got != "" {
		t.Fatalf("expected empty SRT, got %q", got)
	}
}

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"no punctuation here", []string{"no punctuation here"}},
		{"Wait... what?! Yes.", []string{"Wait...", "what?!", "Yes."}},
		{"One. trailing words", []string{"One."}},
	}
	for _, tc := range cases {
		got := SplitSentences(tc.text)
		if strings.Join(got, "|") != strings.Join(tc.want, "|") {
			t.Fatalf("SplitSentences(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestFormatSRT(t *testing.T) {
	got := FormatSRT([]Cue{
		{Index: 1, Start: 0, End: 1.25, Text: "hello there"},
		{Index: 2, Start: 1.25, End: 2, Text: "again"},
	})
	want := "1\n00:00:00,000 --> 00:00:01,250\nhello there\n\n" +
		"2\n00:00:01,250 --> 00:00:02,000\nagain\n\n"
	if got != want {
		t.Fatalf("FormatSRT mismatch:\n%q\nwant\n%q", got, want)
	}
}

func TestSynthesizerWritesStablePath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "processed")
	synth := NewSynthesizer(dir, logging.NewNop())

	first, err := synth.Write(transcription.Result{Text: "First run."}, "job-1")
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if first != filepath.Join(dir, "job-1.srt") {
		t.Fatalf("unexpected path %q", first)
	}

	second, err := synth.Write(transcription.Result{Text: "Second run."}, "job-1")
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if second != first {
		t.Fatalf("expected identical path across runs, got %q and %q", first, second)
	}
	data, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	if !strings.Contains(string(data), "Second run.") || strings.Contains(string(data), "First run.") {
		t.Fatalf("expected file to be replaced, got %q", data)
	}
}

func TestSynthesizerRequiresJobID(t *testing.T) {
	synth := NewSynthesizer(t.TempDir(), nil)
	if _, err := synth.Write(transcription.Result{}, " "); err == nil {
		t.Fatal("expected error for blank job id")
	}
}
