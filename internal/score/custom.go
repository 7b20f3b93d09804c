package score

// Summary is the reviewer-adjusted metric set. Each field is a pure function
// of the same inputs and is exposed individually because callers inspect the
// counts, not just the final ratio.
//
// The custom WER numerator is insertions + deletions + critical
// replacements. Raw substitutions never enter it: only the subset a human
// reviewer flagged as critical counts, which is exactly what distinguishes
// the custom metric from the automatic one. Insertion and deletion counts
// come straight from the aligner; only the substitution-versus-critical
// distinction is reviewer-controlled.
type Summary struct {
	// InsertionCount and DeletionCount are the aligner's raw counts for the
	// active range.
	InsertionCount int `json:"insertion_count"`
	DeletionCount  int `json:"deletion_count"`

	// ReplacementCount is the aligner's raw substitution count. Informational
	// only — it is not part of the custom WER numerator.
	ReplacementCount int `json:"replacement_count"`

	// CriticalReplacementCount is the number of reviewer-flagged critical
	// words within the active range, excluding deleted words.
	CriticalReplacementCount int `json:"critical_replacement_count"`

	// ErrorCount is the custom WER numerator:
	// InsertionCount + DeletionCount + CriticalReplacementCount.
	ErrorCount int `json:"error_count"`

	// ReviewedWordCount is the number of review entries within the active
	// range that carry any reviewer action.
	ReviewedWordCount int `json:"reviewed_word_count"`

	// CustomWER is ErrorCount / reference word count * 100, rounded to one
	// decimal. Nil when the reference word count is zero — "not computable",
	// distinct from zero error.
	CustomWER *float64 `json:"custom_wer"`
}

// Custom combines the aligner's counts with the review-derived critical
// count into a [Summary].
//
// When referenceWordCount is zero there is no underlying metric data at all:
// CustomWER is nil and ErrorCount and ReviewedWordCount are forced to zero
// so callers can distinguish "nothing to score" from "scored clean".
func Custom(insertions, deletions, substitutions, criticalReplacements, reviewedWords, referenceWordCount int) Summary {
	s := Summary{
		InsertionCount:           insertions,
		DeletionCount:            deletions,
		ReplacementCount:         substitutions,
		CriticalReplacementCount: criticalReplacements,
	}

	if referenceWordCount == 0 {
		return s
	}

	s.ErrorCount = insertions + deletions + criticalReplacements
	s.ReviewedWordCount = reviewedWords
	s.CustomWER = Float64Ptr(Round1(float64(s.ErrorCount) / float64(referenceWordCount) * 100))
	return s
}
