// Package review holds the per-word correction and annotation layer a
// reviewer applies on top of a hypothesis transcript.
//
// The overlay is independent of the alignment itself: alignment results are
// recomputed from the text pair on every request, while review state is
// persisted and keyed by hypothesis position, so the two only meet when the
// custom WER calculation asks the overlay for its critical-error count.
package review

// Word is the review state for a single hypothesis-side position. Words are
// created when an ASR provider or forced-alignment run populates per-word
// data, mutated by reviewer actions, and removed only when a reviewer
// deletes a word they themselves inserted.
type Word struct {
	// ID uniquely identifies this entry across all transcripts.
	ID string `json:"id"`

	// TranscriptID is the owning transcript. Bulk mutations are constrained
	// to one transcript; ids from other transcripts are silently excluded.
	TranscriptID string `json:"transcript_id"`

	// Position is the zero-based hypothesis index this entry annotates. For
	// inserted words it is the index of the word the insertion follows
	// (-1 when inserted before the first word).
	Position int `json:"position"`

	// Ordinal orders multiple inserted words that share a Position. Zero for
	// non-inserted words. The (Position, Ordinal) pair is the stable sort
	// key; inserting or removing entries never renumbers unrelated ones.
	Ordinal int `json:"ordinal"`

	// OriginalText is the hypothesis token as produced by the ASR step.
	// Empty for inserted words, which exist only because a reviewer added
	// them.
	OriginalText string `json:"original_text,omitempty"`

	// CorrectedText is the reviewer's replacement text. Nil when the word is
	// uncorrected. For inserted words it holds the inserted text itself.
	// Informational for display — it never changes the custom WER counts.
	CorrectedText *string `json:"corrected_text"`

	IsDeleted  bool `json:"is_deleted"`
	IsInserted bool `json:"is_inserted"`

	// IsCritical flags a semantically significant error. A deleted word may
	// stay flagged, but deletion always excludes it from the critical
	// replacement count — deletion and substitution are mutually exclusive
	// error categories.
	IsCritical bool `json:"is_critical_error"`

	// Confidence is the ASR word probability, when the provider reported
	// one.
	Confidence *float64 `json:"confidence"`

	// StartTime and EndTime are word timings in seconds from forced
	// alignment, when available.
	StartTime *float64 `json:"start_time"`
	EndTime   *float64 `json:"end_time"`
}

// Text returns the display text for the word: the corrected text when set,
// otherwise the original ASR token.
func (w Word) Text() string {
	if w.CorrectedText != nil {
		return *w.CorrectedText
	}
	return w.OriginalText
}

// Reviewed reports whether the entry carries any reviewer action.
func (w Word) Reviewed() bool {
	return w.CorrectedText != nil || w.IsDeleted || w.IsInserted || w.IsCritical
}
