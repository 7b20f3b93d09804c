// Package align implements the sequence alignment engine used for transcript
// scoring and diff rendering.
//
// Tokenization and alignment are deliberately separate concerns: callers pick
// a granularity ([Words], [Graphemes], or [Lines]) and feed the resulting
// token sequences to [Align]. No normalization (case folding, punctuation
// stripping, nikud handling) happens here — callers that want normalized
// comparison normalize the text before tokenizing.
package align

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Words splits text into whitespace-separated word tokens. Runs of
// whitespace count as a single separator. Empty or all-whitespace input
// yields an empty sequence, never a one-element sequence containing the
// empty string.
func Words(text string) []string {
	return strings.Fields(text)
}

// Graphemes splits text into Unicode grapheme clusters. A combining mark
// stays attached to its base character, so a Hebrew letter with nikud is a
// single token rather than two. Empty input yields an empty sequence.
func Graphemes(text string) []string {
	if text == "" {
		return nil
	}
	tokens := make([]string, 0, len(text))
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		tokens = append(tokens, gr.Str())
	}
	return tokens
}

// Lines splits text on newline characters for line-level document diffing.
// A trailing newline does not produce a trailing empty token. Empty input
// yields an empty sequence.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
