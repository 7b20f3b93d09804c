// Package score derives accuracy metrics — WER, CER, and the
// reviewer-adjusted custom WER — from alignment results.
//
// Everything in this package is a pure function over immutable inputs: the
// caller supplies the text pair, an optional [Range], and the review-derived
// counts, and gets back a value it can persist or discard. There is no
// hidden caching and no shared state.
package score

// Range restricts scoring to a sub-span of the reference and/or hypothesis
// sequence. Nil bounds mean "full sequence". Bounds are inclusive,
// zero-based token indices.
//
// A Range is never invalid: out-of-bounds values are clamped to the sequence
// and an end that falls before its start (a reviewer dragging a selection
// backwards) collapses to the single start index rather than producing a
// negative-length span.
type Range struct {
	ReferenceStart  *int `json:"reference_start"`
	ReferenceEnd    *int `json:"reference_end"`
	HypothesisStart *int `json:"hypothesis_start"`
	HypothesisEnd   *int `json:"hypothesis_end"`
}

// IsFull reports whether r places no restriction on either sequence.
func (r Range) IsFull() bool {
	return r.ReferenceStart == nil && r.ReferenceEnd == nil &&
		r.HypothesisStart == nil && r.HypothesisEnd == nil
}

// ReferenceBounds resolves the reference-side bounds against a sequence of
// length n. The returned pair is inclusive; for an empty sequence it is
// (0, -1), an empty span.
func (r Range) ReferenceBounds(n int) (start, end int) {
	return resolveBounds(r.ReferenceStart, r.ReferenceEnd, n)
}

// HypothesisBounds resolves the hypothesis-side bounds against a sequence of
// length n, with the same conventions as [Range.ReferenceBounds].
func (r Range) HypothesisBounds(n int) (start, end int) {
	return resolveBounds(r.HypothesisStart, r.HypothesisEnd, n)
}

// SliceReference returns the reference tokens covered by r.
func (r Range) SliceReference(tokens []string) []string {
	start, end := r.ReferenceBounds(len(tokens))
	if end < start {
		return nil
	}
	return tokens[start : end+1]
}

// SliceHypothesis returns the hypothesis tokens covered by r.
func (r Range) SliceHypothesis(tokens []string) []string {
	start, end := r.HypothesisBounds(len(tokens))
	if end < start {
		return nil
	}
	return tokens[start : end+1]
}

// resolveBounds clamps optional inclusive bounds to [0, n-1], defaulting to
// the full sequence. When the clamped end lands before the clamped start the
// span collapses to the start index.
func resolveBounds(startPtr, endPtr *int, n int) (start, end int) {
	if n == 0 {
		return 0, -1
	}
	start = 0
	end = n - 1
	if startPtr != nil {
		start = clamp(*startPtr, 0, n-1)
	}
	if endPtr != nil {
		end = clamp(*endPtr, 0, n-1)
	}
	if end < start {
		end = start
	}
	return start, end
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IntPtr returns a pointer to v. Convenience for building [Range] literals.
func IntPtr(v int) *int {
	return &v
}
