package score

import (
	"math"
	"strings"

	"github.com/Shloimy15e/yiddish-cleaner/internal/align"
)

// Snapshot is the metric set derived from one (reference, hypothesis, range)
// triple. It is computed fresh on every request; the owning transcript
// record persists it so stored metrics never lag the stored text.
//
// WER and CER are nil when the record has no reference text at all —
// "not computable" rather than zero error.
type Snapshot struct {
	WER                *float64 `json:"wer"`
	CER                *float64 `json:"cer"`
	ReferenceWordCount int      `json:"reference_word_count"`
	Substitutions      int      `json:"substitutions"`
	Insertions         int      `json:"insertions"`
	Deletions          int      `json:"deletions"`
	Range              Range    `json:"range"`
}

// Compute tokenizes both texts, aligns the range-restricted word sequences,
// and derives the word and character error rates in one pass.
//
// The WER denominator is the length of the sliced reference range, not the
// full sequence. When the sliced reference is empty but the record carries
// reference text, WER is 0.0 against an empty sliced hypothesis and 100.0
// against a non-empty one; only a record with no reference text at all
// produces nil.
//
// CER is computed over the grapheme sequences of the same sliced word spans
// (joined with single spaces), so the character metric honours the active
// range the same way the word metric does. Only the distance is needed at
// character granularity, so the rolling-row [align.Distance] is used there
// instead of a full table.
func Compute(reference, hypothesis string, r Range) Snapshot {
	refWords := align.Words(reference)
	hypWords := align.Words(hypothesis)

	slicedRef := r.SliceReference(refWords)
	slicedHyp := r.SliceHypothesis(hypWords)

	res := align.Align(slicedRef, slicedHyp)

	snap := Snapshot{
		ReferenceWordCount: len(slicedRef),
		Substitutions:      res.Substitutions,
		Insertions:         res.Insertions,
		Deletions:          res.Deletions,
		Range:              r,
	}

	if len(refWords) == 0 {
		// No reference at all: not computable, leave WER and CER nil.
		return snap
	}

	snap.WER = Float64Ptr(rate(res.Errors(), len(slicedRef), len(slicedHyp)))

	refChars := align.Graphemes(strings.Join(slicedRef, " "))
	hypChars := align.Graphemes(strings.Join(slicedHyp, " "))
	snap.CER = Float64Ptr(rate(align.Distance(refChars, hypChars), len(refChars), len(hypChars)))

	return snap
}

// WER returns the word error rate for the given texts and range, as a
// percentage rounded to one decimal. Nil when no reference text exists.
func WER(reference, hypothesis string, r Range) *float64 {
	return Compute(reference, hypothesis, r).WER
}

// CER returns the character error rate for the given texts and range, as a
// percentage rounded to one decimal. Nil when no reference text exists.
func CER(reference, hypothesis string, r Range) *float64 {
	return Compute(reference, hypothesis, r).CER
}

// rate converts an error count over a reference span of refLen tokens into a
// percentage. An empty reference span scores 0.0 against an empty hypothesis
// span and 100.0 against a non-empty one.
func rate(errors, refLen, hypLen int) float64 {
	if refLen == 0 {
		if hypLen == 0 {
			return 0.0
		}
		return 100.0
	}
	return Round1(float64(errors) / float64(refLen) * 100)
}

// Round1 rounds v to one decimal place, the precision metrics are displayed
// and stored with.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}
