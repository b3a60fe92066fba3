package captions

import (
	"regexp"
	"strings"

	"subburn/internal/transcription"
)

const (
	// WordsPerCue is the batch size used when word timing is available.
	WordsPerCue = 7
	// SentenceSlotSeconds is the window each sentence receives when only text is available.
	SentenceSlotSeconds = 4

	minCueSeconds = 0.001
)

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// Cue is one timed caption entry. Index starts at 1.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// BuildCues converts a transcription into ordered cues. Word timing wins over
// plain text; a result with neither yields no cues.
func BuildCues(result transcription.Result) []Cue {
	switch {
	case result.HasWords():
		return cuesFromWords(result.Words)
	case result.HasText():
		return cuesFromSentences(SplitSentences(result.Text))
	default:
		return nil
	}
}

func cuesFromWords(words []transcription.Word) []Cue {
	cues := make([]Cue, 0, (len(words)+WordsPerCue-1)/WordsPerCue)
	for i := 0; i < len(words); i += WordsPerCue {
		batch := words[i:min(i+WordsPerCue, len(words))]
		texts := make([]string, 0, len(batch))
		for _, word := range batch {
			texts = append(texts, word.Text)
		}
		start := batch[0].Start
		end := batch[len(batch)-1].End
		// Zero-length or inverted word timings still yield a positive span.
		if end <= start {
			end = start + minCueSeconds
		}
		cues = append(cues, Cue{
			Index: len(cues) + 1,
			Start: start,
			End:   end,
			Text:  strings.Join(texts, " "),
		})
	}
	return cues
}

func cuesFromSentences(sentences []string) []Cue {
	cues := make([]Cue, 0, len(sentences))
	for i, sentence := range sentences {
		cues = append(cues, Cue{
			Index: i + 1,
			Start: float64(i * SentenceSlotSeconds),
			End:   float64((i + 1) * SentenceSlotSeconds),
			Text:  sentence,
		})
	}
	return cues
}

// SplitSentences splits text on runs ending in '.', '!' or '?'. Text with no
// terminal punctuation is returned as a single sentence. Once any terminator
// matches, words after the last one are dropped.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	locs := sentencePattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}
	sentences := make([]string, 0, len(locs))
	for _, loc := range locs {
		if sentence := strings.TrimSpace(text[loc[0]:loc[1]]); sentence != "" {
			sentences = append(sentences, sentence)
		}
	}
	return sentences
}
