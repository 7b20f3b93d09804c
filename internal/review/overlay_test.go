package review_test

import (
	"errors"
	"testing"

	"github.com/Shloimy15e/yiddish-cleaner/internal/review"
)

// seedWords builds n plain ASR words for transcript "t1" with ids w0..w(n-1).
func seedWords(n int) []review.Word {
	words := make([]review.Word, n)
	for i := range words {
		words[i] = review.Word{
			ID:           "w" + string(rune('0'+i)),
			TranscriptID: "t1",
			Position:     i,
			OriginalText: "word" + string(rune('0'+i)),
		}
	}
	return words
}

func TestOverlay_SaveCorrection(t *testing.T) {
	t.Parallel()

	ov := review.NewOverlay("t1", seedWords(3))

	if err := ov.SaveCorrection("w1", "fixed"); err != nil {
		t.Fatalf("SaveCorrection: %v", err)
	}
	words := ov.Words()
	if words[1].CorrectedText == nil || *words[1].CorrectedText != "fixed" {
		t.Errorf("CorrectedText = %v, want fixed", words[1].CorrectedText)
	}
	if words[1].Text() != "fixed" {
		t.Errorf("Text() = %q, want fixed", words[1].Text())
	}
}

func TestOverlay_CorrectionBackToOriginalClears(t *testing.T) {
	t.Parallel()

	ov := review.NewOverlay("t1", seedWords(2))

	if err := ov.SaveCorrection("w0", "changed"); err != nil {
		t.Fatalf("SaveCorrection: %v", err)
	}
	if err := ov.SaveCorrection("w0", "word0"); err != nil {
		t.Fatalf("SaveCorrection back to original: %v", err)
	}
	w := ov.Words()[0]
	if w.CorrectedText != nil {
		t.Errorf("CorrectedText = %q, want nil after reverting to the original", *w.CorrectedText)
	}
	if w.Reviewed() {
		t.Error("Reviewed() = true after reverting, want false")
	}
}

func TestOverlay_UnknownWord(t *testing.T) {
	t.Parallel()

	ov := review.NewOverlay("t1", seedWords(1))

	if err := ov.SaveCorrection("missing", "x"); !errors.Is(err, review.ErrWordNotFound) {
		t.Errorf("SaveCorrection(missing) error = %v, want ErrWordNotFound", err)
	}
	if err := ov.Delete("missing"); !errors.Is(err, review.ErrWordNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrWordNotFound", err)
	}
	if err := ov.ToggleCritical("missing"); !errors.Is(err, review.ErrWordNotFound) {
		t.Errorf("ToggleCritical(missing) error = %v, want ErrWordNotFound", err)
	}
}

func TestOverlay_ForeignTranscriptWordInvisible(t *testing.T) {
	t.Parallel()

	words := seedWords(1)
	words = append(words, review.Word{ID: "other", TranscriptID: "t2", Position: 0})
	ov := review.NewOverlay("t1", words)

	if err := ov.Delete("other"); !errors.Is(err, review.ErrWordNotFound) {
		t.Errorf("Delete on a foreign transcript's word = %v, want ErrWordNotFound", err)
	}
}

func TestOverlay_DeleteKeepsCriticalFlag(t *testing.T) {
	t.Parallel()

	ov := review.NewOverlay("t1", seedWords(2))

	if err := ov.ToggleCritical("w0"); err != nil {
		t.Fatalf("ToggleCritical: %v", err)
	}
	if err := ov.SaveCorrection("w0", "corrected"); err != nil {
		t.Fatalf("SaveCorrection: %v", err)
	}
	if err := ov.Delete("w0"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	w := ov.Words()[0]
	if !w.IsDeleted {
		t.Error("IsDeleted = false, want true")
	}
	if !w.IsCritical {
		t.Error("IsCritical = false, want the flag to survive deletion")
	}
	if w.CorrectedText != nil {
		t.Errorf("CorrectedText = %q, want nil after deletion", *w.CorrectedText)
	}

	// Deleted words never count as critical replacements.
	if got := ov.CriticalReplacements(0, 10); got != 0 {
		t.Errorf("CriticalReplacements = %d, want 0", got)
	}
}

func TestOverlay_Restore(t *testing.T) {
	t.Parallel()

	ov := review.NewOverlay("t1", seedWords(1))

	if err := ov.Delete("w0"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := ov.Restore("w0"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	w := ov.Words()[0]
	if w.IsDeleted {
		t.Error("IsDeleted = true after restore, want false")
	}
}

func TestOverlay_InsertAssignsOrdinals(t *testing.T) {
	t.Parallel()

	ov := review.NewOverlay("t1", seedWords(3))

	first := ov.Insert(1, "alef")
	second := ov.Insert(1, "beys")

	if first.Ordinal != 1 || second.Ordinal != 2 {
		t.Errorf("ordinals = (%d, %d), want (1, 2)", first.Ordinal, second.Ordinal)
	}
	if !first.IsInserted || first.CorrectedText == nil || *first.CorrectedText != "alef" {
		t.Errorf("inserted word = %+v, want IsInserted with text alef", first)
	}

	// Sorted order: w0, w1, alef, beys, w2.
	words := ov.Words()
	gotTexts := make([]string, len(words))
	for i, w := range words {
		gotTexts[i] = w.Text()
	}
	want := []string{"word0", "word1", "alef", "beys", "word2"}
	for i := range want {
		if gotTexts[i] != want[i] {
			t.Errorf("Words()[%d] = %q, want %q (full order %v)", i, gotTexts[i], want[i], gotTexts)
		}
	}
}

func TestOverlay_InsertBeforeFirstWord(t *testing.T) {
	t.Parallel()

	ov := review.NewOverlay("t1", seedWords(2))

	w := ov.Insert(-1, "first")
	if w.Position != -1 || w.Ordinal != 1 {
		t.Errorf("inserted at (%d, %d), want (-1, 1)", w.Position, w.Ordinal)
	}
	if got := ov.Words()[0].Text(); got != "first" {
		t.Errorf("Words()[0] = %q, want the inserted word first", got)
	}
}

func TestOverlay_DeleteInsertedWordRemovesEntry(t *testing.T) {
	t.Parallel()

	ov := review.NewOverlay("t1", seedWords(2))
	inserted := ov.Insert(0, "extra")

	if err := ov.Delete(inserted.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ov.Len() != 2 {
		t.Errorf("Len = %d after deleting an inserted word, want 2", ov.Len())
	}
}

func TestOverlay_Bulk(t *testing.T) {
	t.Parallel()

	ov := review.NewOverlay("t1", seedWords(4))

	affected, err := ov.Bulk(review.BulkMarkCritical, []string{"w0", "w2", "nope"})
	if err != nil {
		t.Fatalf("Bulk: %v", err)
	}
	if affected != 2 {
		t.Errorf("affected = %d, want 2 (unknown id silently excluded)", affected)
	}
	if got := ov.CriticalReplacements(0, 3); got != 2 {
		t.Errorf("CriticalReplacements = %d, want 2", got)
	}

	affected, err = ov.Bulk(review.BulkClearCritical, []string{"w0"})
	if err != nil {
		t.Fatalf("Bulk clear: %v", err)
	}
	if affected != 1 {
		t.Errorf("affected = %d, want 1", affected)
	}
	if got := ov.CriticalReplacements(0, 3); got != 1 {
		t.Errorf("CriticalReplacements after clear = %d, want 1", got)
	}
}

func TestOverlay_BulkDeleteMixedWords(t *testing.T) {
	t.Parallel()

	ov := review.NewOverlay("t1", seedWords(2))
	inserted := ov.Insert(0, "extra")

	affected, err := ov.Bulk(review.BulkDelete, []string{"w1", inserted.ID})
	if err != nil {
		t.Fatalf("Bulk delete: %v", err)
	}
	if affected != 2 {
		t.Errorf("affected = %d, want 2", affected)
	}
	// The inserted word is gone, the ASR word is flag-deleted.
	if ov.Len() != 2 {
		t.Errorf("Len = %d, want 2", ov.Len())
	}
	for _, w := range ov.Words() {
		if w.ID == "w1" && !w.IsDeleted {
			t.Error("w1 not marked deleted")
		}
	}
}

func TestOverlay_BulkUnknownActionRejectedBeforeMutation(t *testing.T) {
	t.Parallel()

	ov := review.NewOverlay("t1", seedWords(2))

	_, err := ov.Bulk(review.BulkAction("explode"), []string{"w0", "w1"})
	if !errors.Is(err, review.ErrUnknownAction) {
		t.Fatalf("Bulk(explode) error = %v, want ErrUnknownAction", err)
	}
	for _, w := range ov.Words() {
		if w.Reviewed() {
			t.Errorf("word %s mutated despite rejected action", w.ID)
		}
	}
}

func TestOverlay_CriticalReplacementsRange(t *testing.T) {
	t.Parallel()

	words := seedWords(9)
	ov := review.NewOverlay("t1", words)

	// Flags at positions 3 and 7; active range [2,5] sees only position 3.
	if err := ov.ToggleCritical("w3"); err != nil {
		t.Fatalf("ToggleCritical: %v", err)
	}
	if err := ov.ToggleCritical("w7"); err != nil {
		t.Fatalf("ToggleCritical: %v", err)
	}

	if got := ov.CriticalReplacements(2, 5); got != 1 {
		t.Errorf("CriticalReplacements(2, 5) = %d, want 1", got)
	}
	if got := ov.CriticalReplacements(0, 8); got != 2 {
		t.Errorf("CriticalReplacements(0, 8) = %d, want 2", got)
	}
}

func TestOverlay_ReviewedCount(t *testing.T) {
	t.Parallel()

	ov := review.NewOverlay("t1", seedWords(4))

	if err := ov.SaveCorrection("w0", "fixed"); err != nil {
		t.Fatalf("SaveCorrection: %v", err)
	}
	if err := ov.Delete("w1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := ov.ToggleCritical("w2"); err != nil {
		t.Fatalf("ToggleCritical: %v", err)
	}

	if got := ov.ReviewedCount(0, 3); got != 3 {
		t.Errorf("ReviewedCount = %d, want 3", got)
	}
	if got := ov.ReviewedCount(0, 0); got != 1 {
		t.Errorf("ReviewedCount(0, 0) = %d, want 1", got)
	}
}
