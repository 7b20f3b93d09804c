package review

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// ErrWordNotFound is returned by single-word operations when no entry with
// the given id exists in the overlay.
var ErrWordNotFound = errors.New("review: word not found")

// ErrUnknownAction is returned by [Overlay.Bulk] when the action name is not
// recognised. The check happens before any mutation, so an unknown action
// never partially applies.
var ErrUnknownAction = errors.New("review: unknown bulk action")

// BulkAction names a bulk mutation applied to a set of word ids.
type BulkAction string

const (
	BulkDelete        BulkAction = "delete"
	BulkMarkCritical  BulkAction = "mark_critical_error"
	BulkClearCritical BulkAction = "clear_critical_error"
)

// IsValid reports whether a is a recognised bulk action.
func (a BulkAction) IsValid() bool {
	switch a {
	case BulkDelete, BulkMarkCritical, BulkClearCritical:
		return true
	}
	return false
}

// Overlay is the in-memory working set of review words for one transcript,
// kept sorted by the stable (Position, Ordinal) key. It is pure bookkeeping:
// no I/O, no locking — callers load it from a [Store], mutate it on a single
// request goroutine, and persist the result.
type Overlay struct {
	transcriptID string
	words        []*Word
}

// NewOverlay builds an overlay for the given transcript from previously
// persisted words. The input slice is copied and sorted; the caller's slice
// is not retained.
func NewOverlay(transcriptID string, words []Word) *Overlay {
	o := &Overlay{transcriptID: transcriptID}
	o.words = make([]*Word, 0, len(words))
	for i := range words {
		w := words[i]
		o.words = append(o.words, &w)
	}
	o.sort()
	return o
}

// Words returns the overlay entries in position order.
func (o *Overlay) Words() []Word {
	out := make([]Word, len(o.words))
	for i, w := range o.words {
		out[i] = *w
	}
	return out
}

// Len returns the number of overlay entries.
func (o *Overlay) Len() int {
	return len(o.words)
}

// SaveCorrection sets the corrected text for the word with the given id.
// Correcting a word back to its original text clears the correction — a
// no-op correction is not stored as a correction. Inserted words keep their
// text in CorrectedText, so for them the new text simply replaces it.
func (o *Overlay) SaveCorrection(id, text string) error {
	w := o.find(id)
	if w == nil {
		return fmt.Errorf("%w: %s", ErrWordNotFound, id)
	}
	if w.IsInserted {
		w.CorrectedText = &text
		return nil
	}
	if text == w.OriginalText {
		w.CorrectedText = nil
		return nil
	}
	w.CorrectedText = &text
	return nil
}

// Delete marks a word deleted. For a non-inserted word the corrected text is
// cleared but the critical flag is left alone — the flag survives deletion
// even though a deleted word never counts as a critical replacement. An
// inserted word has no deleted state: deleting it removes the entry
// entirely.
func (o *Overlay) Delete(id string) error {
	w := o.find(id)
	if w == nil {
		return fmt.Errorf("%w: %s", ErrWordNotFound, id)
	}
	if w.IsInserted {
		o.remove(id)
		return nil
	}
	w.IsDeleted = true
	w.CorrectedText = nil
	return nil
}

// Restore clears the deleted flag and any corrected text.
func (o *Overlay) Restore(id string) error {
	w := o.find(id)
	if w == nil {
		return fmt.Errorf("%w: %s", ErrWordNotFound, id)
	}
	w.IsDeleted = false
	w.CorrectedText = nil
	return nil
}

// ToggleCritical flips the critical-error flag. Allowed on corrected,
// uncorrected, and deleted words alike; the deletion exclusion is applied at
// counting time, not here.
func (o *Overlay) ToggleCritical(id string) error {
	w := o.find(id)
	if w == nil {
		return fmt.Errorf("%w: %s", ErrWordNotFound, id)
	}
	w.IsCritical = !w.IsCritical
	return nil
}

// Insert creates a reviewer-inserted word immediately after afterPosition
// (use -1 to insert before the first word) and returns the new entry.
// Existing entries are never renumbered: the new word takes the next free
// ordinal at that position.
func (o *Overlay) Insert(afterPosition int, text string) Word {
	ordinal := 1
	for _, w := range o.words {
		if w.Position == afterPosition && w.Ordinal >= ordinal {
			ordinal = w.Ordinal + 1
		}
	}
	w := &Word{
		ID:            uuid.NewString(),
		TranscriptID:  o.transcriptID,
		Position:      afterPosition,
		Ordinal:       ordinal,
		CorrectedText: &text,
		IsInserted:    true,
	}
	o.words = append(o.words, w)
	o.sort()
	return *w
}

// Bulk applies action to every word in ids that belongs to this overlay's
// transcript and returns the number of entries mutated. An unrecognised
// action is rejected with [ErrUnknownAction] before anything is touched.
// Ids that do not resolve to an entry of this transcript are silently
// excluded — callers observe that only as a smaller affected count.
func (o *Overlay) Bulk(action BulkAction, ids []string) (int, error) {
	if !action.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	affected := 0
	for _, id := range ids {
		w := o.find(id)
		if w == nil {
			continue
		}
		switch action {
		case BulkDelete:
			if w.IsInserted {
				o.remove(id)
			} else {
				w.IsDeleted = true
				w.CorrectedText = nil
			}
		case BulkMarkCritical:
			w.IsCritical = true
		case BulkClearCritical:
			w.IsCritical = false
		}
		affected++
	}
	return affected, nil
}

// CriticalReplacements counts the entries flagged critical within the
// inclusive hypothesis position range [start, end]. Deleted words are
// excluded even when flagged — their error is already captured by the
// deletion count, and counting them again would double-bill it.
func (o *Overlay) CriticalReplacements(start, end int) int {
	n := 0
	for _, w := range o.words {
		if w.IsCritical && !w.IsDeleted && w.Position >= start && w.Position <= end {
			n++
		}
	}
	return n
}

// ReviewedCount counts the entries within [start, end] that carry any
// reviewer action (correction, deletion, insertion, or critical flag).
func (o *Overlay) ReviewedCount(start, end int) int {
	n := 0
	for _, w := range o.words {
		if w.Position >= start && w.Position <= end && w.Reviewed() {
			n++
		}
	}
	return n
}

// find returns the entry with the given id belonging to this transcript, or
// nil. The transcript check is what keeps foreign ids out of bulk
// mutations.
func (o *Overlay) find(id string) *Word {
	for _, w := range o.words {
		if w.ID == id && w.TranscriptID == o.transcriptID {
			return w
		}
	}
	return nil
}

func (o *Overlay) remove(id string) {
	o.words = slices.DeleteFunc(o.words, func(w *Word) bool {
		return w.ID == id
	})
}

func (o *Overlay) sort() {
	slices.SortStableFunc(o.words, func(a, b *Word) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return a.Ordinal - b.Ordinal
	})
}
