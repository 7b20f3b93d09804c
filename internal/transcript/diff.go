package transcript

import (
	"strings"

	"github.com/Shloimy15e/yiddish-cleaner/internal/align"
)

// SpanKind classifies a diff span from the reference's point of view.
type SpanKind string

const (
	// SpanSame covers tokens present in both texts.
	SpanSame SpanKind = "same"

	// SpanRemoved covers reference tokens missing from the hypothesis. A
	// substitution contributes one removed span and one added span.
	SpanRemoved SpanKind = "removed"

	// SpanAdded covers hypothesis tokens absent from the reference.
	SpanAdded SpanKind = "added"
)

// Span is a run of consecutive tokens sharing one diff classification.
type Span struct {
	Kind SpanKind `json:"kind"`
	Text string   `json:"text"`
}

// DiffSpans converts an alignment into the removed/added/unchanged span list
// the review UI renders. Substitutions split into a removed span (reference
// side) followed by an added span (hypothesis side); adjacent spans of the
// same kind merge into one.
func DiffSpans(res align.Result) []Span {
	var spans []Span
	push := func(kind SpanKind, text string) {
		if n := len(spans); n > 0 && spans[n-1].Kind == kind {
			spans[n-1].Text += " " + text
			return
		}
		spans = append(spans, Span{Kind: kind, Text: text})
	}

	for _, op := range res.Operations {
		switch op.Kind {
		case align.Correct:
			push(SpanSame, op.Hypothesis)
		case align.Substitution:
			push(SpanRemoved, op.Reference)
			push(SpanAdded, op.Hypothesis)
		case align.Deletion:
			push(SpanRemoved, op.Reference)
		case align.Insertion:
			push(SpanAdded, op.Hypothesis)
		}
	}
	return spans
}

// DiffLines aligns two documents line by line and returns one span per line.
// Used to preview an automated cleaning pass before it is accepted: each
// changed line shows up as a removed span followed by an added span, and
// unchanged lines pass through as-is without the word-level merging of
// [DiffSpans].
func DiffLines(before, after string) []Span {
	res := align.Align(align.Lines(before), align.Lines(after))

	spans := make([]Span, 0, len(res.Operations))
	for _, op := range res.Operations {
		switch op.Kind {
		case align.Correct:
			spans = append(spans, Span{Kind: SpanSame, Text: op.Hypothesis})
		case align.Substitution:
			spans = append(spans,
				Span{Kind: SpanRemoved, Text: op.Reference},
				Span{Kind: SpanAdded, Text: op.Hypothesis})
		case align.Deletion:
			spans = append(spans, Span{Kind: SpanRemoved, Text: op.Reference})
		case align.Insertion:
			spans = append(spans, Span{Kind: SpanAdded, Text: op.Hypothesis})
		}
	}
	return spans
}

// ReconstructHypothesis rebuilds the hypothesis text from a span list.
// The inverse sanity check used in tests: same + added spans joined in order
// must reproduce the aligned hypothesis tokens.
func ReconstructHypothesis(spans []Span) string {
	var parts []string
	for _, s := range spans {
		if s.Kind == SpanSame || s.Kind == SpanAdded {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}
