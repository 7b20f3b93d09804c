// Package transcript owns the transcript record: a reference text, the ASR
// hypothesis under review, and the persisted metric snapshot that compares
// them.
//
// Metrics are never edited directly. Every text edit runs the full
// tokenize → align → score pipeline synchronously and persists the fresh
// snapshot together with the new text, so a stored record can never pair
// old metrics with new words. Range changes and review-overlay changes only
// re-score; the texts stay untouched.
package transcript

import (
	"time"

	"github.com/Shloimy15e/yiddish-cleaner/internal/score"
)

// Record is a persisted transcript pair with its current metric snapshot.
type Record struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	// Language is a BCP 47 tag ("yi", "en", …) passed through to ASR
	// providers. Empty means auto-detect.
	Language string `json:"language,omitempty"`

	// ReferenceText is the ground-truth text. Empty until a reviewer or an
	// import provides one; metrics stay nil while it is empty.
	ReferenceText string `json:"reference_text"`

	// HypothesisText is the ASR output under review.
	HypothesisText string `json:"hypothesis_text"`

	// Range restricts which part of each text the metrics cover. The full
	// texts are always stored; only scoring respects the range.
	Range score.Range `json:"range"`

	// Snapshot is the metric snapshot computed from the texts and Range at
	// the last recompute.
	Snapshot score.Snapshot `json:"snapshot"`

	// AudioPath is the server-side path of the source audio, when the
	// hypothesis came from an ASR run.
	AudioPath string `json:"audio_path,omitempty"`

	// Duration is the audio length in seconds as reported by the ASR
	// provider. Zero when unknown.
	Duration float64 `json:"duration,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasReference reports whether the record carries any reference text.
// Without one there is nothing to align against and WER/CER stay nil.
func (r Record) HasReference() bool {
	return r.ReferenceText != ""
}
