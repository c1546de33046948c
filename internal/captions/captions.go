package captions

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Pause extensions injected after punctuation, in seconds. They are absorbed
// proportionally from the rest of the budget so totals still sum to the
// narration duration.
const (
	sentencePause = 0.30
	clausePause   = 0.15
)

// Cue is a single renderable caption unit. Start is inclusive, End exclusive,
// both offsets from narration start. Cue sequences are ordered and
// non-overlapping by construction.
type Cue struct {
	Text  string
	Start float64
	End   float64
}

// Duration returns the cue's display span in seconds.
func (c Cue) Duration() float64 {
	return c.End - c.Start
}

// TimingOptions tunes cue generation.
type TimingOptions struct {
	// WordsPerCue is the group size; values below 1 fall back to 3.
	WordsPerCue int
	// Uppercase renders cue text in upper case.
	Uppercase bool
	// WordBias adds flat weight to every word, damping the syllable
	// heuristic. Zero keeps pure syllable proportions.
	WordBias float64
}

var upperCaser = cases.Upper(language.English)

// Generate produces the cue sequence for a script spoken over totalSeconds.
// It is pure and deterministic: no I/O, no shared state.
//
// An empty script yields an empty sequence. A non-positive duration yields
// zero-width cues, never negative spans.
func Generate(script string, totalSeconds float64, opts TimingOptions) []Cue {
	words := strings.Fields(script)
	if len(words) == 0 {
		return nil
	}
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	groupSize := opts.WordsPerCue
	if groupSize < 1 {
		groupSize = 3
	}

	durations := allocate(words, totalSeconds, opts.WordBias)

	cues := make([]Cue, 0, (len(words)+groupSize-1)/groupSize)
	elapsed := 0.0
	for i := 0; i < len(words); {
		// A group closes at the configured size or at a sentence boundary,
		// whichever comes first, so cues never straddle sentences.
		j := i
		for j < len(words) {
			j++
			if j-i == groupSize || endsWithAny(words[j-1], ".", "!", "?") {
				break
			}
		}
		span := 0.0
		for _, d := range durations[i:j] {
			span += d
		}
		text := strings.Join(words[i:j], " ")
		if opts.Uppercase {
			text = upperCaser.String(text)
		}
		cues = append(cues, Cue{Text: text, Start: elapsed, End: elapsed + span})
		elapsed += span
		i = j
	}

	// Floating point drift accumulates over the word sums; pin the final
	// boundary to the narration duration exactly.
	cues[len(cues)-1].End = totalSeconds
	if last := &cues[len(cues)-1]; last.Start > last.End {
		last.Start = last.End
	}
	return cues
}

// allocate distributes totalSeconds across words proportionally to syllable
// weight, then layers punctuation pauses and rescales so the sum is exact.
func allocate(words []string, totalSeconds, bias float64) []float64 {
	if bias < 0 {
		bias = 0
	}

	weights := make([]float64, len(words))
	totalWeight := 0.0
	for i, word := range words {
		weights[i] = float64(SyllableCount(word)) + bias
		totalWeight += weights[i]
	}

	durations := make([]float64, len(words))
	sum := 0.0
	for i, word := range words {
		d := weights[i] / totalWeight * totalSeconds
		switch {
		case endsWithAny(word, ".", "!", "?"):
			d += sentencePause
		case endsWithAny(word, ",", ";", ":"):
			d += clausePause
		}
		durations[i] = d
		sum += d
	}

	if sum > 0 {
		scale := totalSeconds / sum
		for i := range durations {
			durations[i] *= scale
		}
	}
	return durations
}

// SyllableCount estimates spoken length by counting vowel clusters:
// consecutive vowel runs count as one syllable each, minimum one per word.
func SyllableCount(word string) int {
	trimmed := strings.ToLower(strings.Trim(word, ".,!?;:\"'"))
	count := 0
	previousWasVowel := false
	for _, r := range trimmed {
		isVowel := strings.ContainsRune("aeiouy", r)
		if isVowel && !previousWasVowel {
			count++
		}
		previousWasVowel = isVowel
	}
	if count < 1 {
		count = 1
	}
	return count
}

func endsWithAny(word string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(word, suffix) {
			return true
		}
	}
	return false
}
