package transcript_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Shloimy15e/yiddish-cleaner/internal/asr"
	"github.com/Shloimy15e/yiddish-cleaner/internal/review"
	"github.com/Shloimy15e/yiddish-cleaner/internal/score"
	"github.com/Shloimy15e/yiddish-cleaner/internal/transcript"
)

func newTestService(opts ...transcript.ServiceOption) *transcript.Service {
	return transcript.NewService(transcript.NewMemStore(), review.NewMemStore(), opts...)
}

func TestService_CreateComputesSnapshot(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, "drosho", "yi", "a b c d", "a x c")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID == "" {
		t.Error("record has no id")
	}
	if rec.Snapshot.WER == nil || *rec.Snapshot.WER != 50.0 {
		t.Errorf("WER = %v, want 50.0", rec.Snapshot.WER)
	}
	if rec.Snapshot.ReferenceWordCount != 4 {
		t.Errorf("ReferenceWordCount = %d, want 4", rec.Snapshot.ReferenceWordCount)
	}

	// The stored record carries the same snapshot.
	got, err := svc.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Snapshot.WER == nil || *got.Snapshot.WER != 50.0 {
		t.Errorf("stored WER = %v, want 50.0", got.Snapshot.WER)
	}
}

func TestService_CreateUsesClock(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	svc := newTestService(transcript.WithClock(func() time.Time { return fixed }))

	rec, err := svc.Create(context.Background(), "t", "yi", "a", "a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !rec.CreatedAt.Equal(fixed) || !rec.UpdatedAt.Equal(fixed) {
		t.Errorf("timestamps = (%v, %v), want %v", rec.CreatedAt, rec.UpdatedAt, fixed)
	}
}

func TestService_RejectsOversizedText(t *testing.T) {
	t.Parallel()

	svc := newTestService(transcript.WithMaxTokens(3))
	ctx := context.Background()

	_, err := svc.Create(ctx, "t", "yi", "one two three four", "ok")
	if !errors.Is(err, transcript.ErrTooLarge) {
		t.Fatalf("Create oversized reference error = %v, want ErrTooLarge", err)
	}

	rec, err := svc.Create(ctx, "t", "yi", "a b c", "a b")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = svc.SetTexts(ctx, rec.ID, "a b c", strings.Repeat("x ", 4))
	if !errors.Is(err, transcript.ErrTooLarge) {
		t.Errorf("SetTexts oversized hypothesis error = %v, want ErrTooLarge", err)
	}
}

func TestService_SetTextsRecomputes(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, "t", "yi", "a b", "a b")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if *rec.Snapshot.WER != 0.0 {
		t.Fatalf("initial WER = %v, want 0.0", *rec.Snapshot.WER)
	}

	rec, err = svc.SetTexts(ctx, rec.ID, "a b", "a x")
	if err != nil {
		t.Fatalf("SetTexts: %v", err)
	}
	if rec.Snapshot.WER == nil || *rec.Snapshot.WER != 50.0 {
		t.Errorf("WER after SetTexts = %v, want 50.0", rec.Snapshot.WER)
	}
}

func TestService_SetRangeRestrictsAndRestores(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	// Mismatch only in the last word.
	rec, err := svc.Create(ctx, "t", "yi", "a b c wrong", "a b c bad")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if *rec.Snapshot.WER != 25.0 {
		t.Fatalf("full WER = %v, want 25.0", *rec.Snapshot.WER)
	}

	rec, err = svc.SetRange(ctx, rec.ID, score.Range{
		ReferenceStart:  score.IntPtr(0),
		ReferenceEnd:    score.IntPtr(2),
		HypothesisStart: score.IntPtr(0),
		HypothesisEnd:   score.IntPtr(2),
	})
	if err != nil {
		t.Fatalf("SetRange: %v", err)
	}
	if *rec.Snapshot.WER != 0.0 {
		t.Errorf("range WER = %v, want 0.0", *rec.Snapshot.WER)
	}
	if rec.Snapshot.ReferenceWordCount != 3 {
		t.Errorf("range ReferenceWordCount = %d, want 3", rec.Snapshot.ReferenceWordCount)
	}

	// Back to the full range restores the full-text metrics.
	rec, err = svc.SetRange(ctx, rec.ID, score.Range{})
	if err != nil {
		t.Fatalf("SetRange full: %v", err)
	}
	if *rec.Snapshot.WER != 25.0 {
		t.Errorf("restored WER = %v, want 25.0", *rec.Snapshot.WER)
	}
}

func TestService_DeleteRemovesReviewWords(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, "t", "yi", "a b", "a b")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.InsertWord(ctx, rec.ID, -1, "extra"); err != nil {
		t.Fatalf("InsertWord: %v", err)
	}

	if err := svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, rec.ID); !errors.Is(err, transcript.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	words, err := svc.ListWords(ctx, rec.ID)
	if err != nil {
		t.Fatalf("ListWords: %v", err)
	}
	if len(words) != 0 {
		t.Errorf("got %d review words after delete, want 0", len(words))
	}
}

func TestService_MetricsBlendsCriticalFlags(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	// 4 reference words, 2 substitutions: standard WER 50.0.
	rec, err := svc.Create(ctx, "t", "yi", "a b c d", "a x c y")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Import review words so the overlay has entries to flag.
	rec, err = svc.ImportTranscription(ctx, rec.ID, asr.Transcription{
		Text:     "a x c y",
		Language: "yi",
		Words: []asr.WordTiming{
			{Word: "a"}, {Word: "x"}, {Word: "c"}, {Word: "y"},
		},
	}, "")
	if err != nil {
		t.Fatalf("ImportTranscription: %v", err)
	}

	// Without any critical flags the custom numerator is empty.
	report, err := svc.Metrics(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if report.Custom.CustomWER == nil || *report.Custom.CustomWER != 0.0 {
		t.Errorf("CustomWER with no flags = %v, want 0.0", report.Custom.CustomWER)
	}
	if report.Custom.ReplacementCount != 2 {
		t.Errorf("ReplacementCount = %d, want 2", report.Custom.ReplacementCount)
	}

	// Flag one substituted word critical: (0+0+1)/4*100 = 25.0.
	words, err := svc.ListWords(ctx, rec.ID)
	if err != nil {
		t.Fatalf("ListWords: %v", err)
	}
	if _, err := svc.ToggleCritical(ctx, rec.ID, words[1].ID); err != nil {
		t.Fatalf("ToggleCritical: %v", err)
	}

	report, err = svc.Metrics(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if report.Custom.CriticalReplacementCount != 1 {
		t.Errorf("CriticalReplacementCount = %d, want 1", report.Custom.CriticalReplacementCount)
	}
	if report.Custom.CustomWER == nil || *report.Custom.CustomWER != 25.0 {
		t.Errorf("CustomWER = %v, want 25.0", report.Custom.CustomWER)
	}

	// Deleting the flagged word moves its error into the review layer's
	// deletion, which the stored snapshot does not know about; what matters
	// here is that the flag stops counting.
	if err := svc.DeleteWord(ctx, rec.ID, words[1].ID); err != nil {
		t.Fatalf("DeleteWord: %v", err)
	}
	report, err = svc.Metrics(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if report.Custom.CriticalReplacementCount != 0 {
		t.Errorf("CriticalReplacementCount after delete = %d, want 0", report.Custom.CriticalReplacementCount)
	}
}

func TestService_ImportTranscriptionPopulatesWords(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, "t", "", "gut morgn", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	conf := 0.93
	rec, err = svc.ImportTranscription(ctx, rec.ID, asr.Transcription{
		Text:     "gut morgn",
		Language: "yi",
		Duration: 1.7,
		Words: []asr.WordTiming{
			{Word: "gut", Start: 0.1, End: 0.6, Confidence: &conf},
			{Word: "morgn", Start: 0.7, End: 1.5},
		},
	}, "drosho.mp3")
	if err != nil {
		t.Fatalf("ImportTranscription: %v", err)
	}

	if rec.HypothesisText != "gut morgn" {
		t.Errorf("HypothesisText = %q, want the transcription text", rec.HypothesisText)
	}
	if rec.AudioPath != "drosho.mp3" || rec.Duration != 1.7 {
		t.Errorf("audio metadata = (%q, %v), want (drosho.mp3, 1.7)", rec.AudioPath, rec.Duration)
	}
	if rec.Language != "yi" {
		t.Errorf("Language = %q, want detected language to fill the blank", rec.Language)
	}
	if rec.Snapshot.WER == nil || *rec.Snapshot.WER != 0.0 {
		t.Errorf("WER = %v, want 0.0", rec.Snapshot.WER)
	}

	words, err := svc.ListWords(ctx, rec.ID)
	if err != nil {
		t.Fatalf("ListWords: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("got %d review words, want 2", len(words))
	}
	if words[0].OriginalText != "gut" || words[0].Position != 0 {
		t.Errorf("words[0] = %+v, want gut at position 0", words[0])
	}
	if words[0].Confidence == nil || *words[0].Confidence != 0.93 {
		t.Errorf("words[0].Confidence = %v, want 0.93", words[0].Confidence)
	}
	if words[1].StartTime == nil || *words[1].StartTime != 0.7 {
		t.Errorf("words[1].StartTime = %v, want 0.7", words[1].StartTime)
	}
}

func TestService_ImportReplacesExistingReviewState(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, "t", "yi", "a", "a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.InsertWord(ctx, rec.ID, -1, "stale"); err != nil {
		t.Fatalf("InsertWord: %v", err)
	}

	_, err = svc.ImportTranscription(ctx, rec.ID, asr.Transcription{
		Text:  "b",
		Words: []asr.WordTiming{{Word: "b"}},
	}, "")
	if err != nil {
		t.Fatalf("ImportTranscription: %v", err)
	}

	words, err := svc.ListWords(ctx, rec.ID)
	if err != nil {
		t.Fatalf("ListWords: %v", err)
	}
	if len(words) != 1 || words[0].OriginalText != "b" {
		t.Errorf("words = %v, want only the fresh import", words)
	}
}

func TestService_WordMutations(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, "t", "yi", "a b", "a b")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = svc.ImportTranscription(ctx, rec.ID, asr.Transcription{
		Text:  "a b",
		Words: []asr.WordTiming{{Word: "a"}, {Word: "b"}},
	}, "")
	if err != nil {
		t.Fatalf("ImportTranscription: %v", err)
	}
	words, _ := svc.ListWords(ctx, rec.ID)

	w, err := svc.SaveCorrection(ctx, rec.ID, words[0].ID, "alef")
	if err != nil {
		t.Fatalf("SaveCorrection: %v", err)
	}
	if w.CorrectedText == nil || *w.CorrectedText != "alef" {
		t.Errorf("CorrectedText = %v, want alef", w.CorrectedText)
	}

	if err := svc.DeleteWord(ctx, rec.ID, words[1].ID); err != nil {
		t.Fatalf("DeleteWord: %v", err)
	}
	w, err = svc.RestoreWord(ctx, rec.ID, words[1].ID)
	if err != nil {
		t.Fatalf("RestoreWord: %v", err)
	}
	if w.IsDeleted {
		t.Error("word still deleted after restore")
	}

	// Deleting an inserted word removes the entry.
	ins, err := svc.InsertWord(ctx, rec.ID, 0, "extra")
	if err != nil {
		t.Fatalf("InsertWord: %v", err)
	}
	if err := svc.DeleteWord(ctx, rec.ID, ins.ID); err != nil {
		t.Fatalf("DeleteWord inserted: %v", err)
	}
	after, _ := svc.ListWords(ctx, rec.ID)
	if len(after) != 2 {
		t.Errorf("got %d words after removing the insertion, want 2", len(after))
	}

	if err := svc.DeleteWord(ctx, rec.ID, "ghost"); !errors.Is(err, review.ErrWordNotFound) {
		t.Errorf("DeleteWord(ghost) = %v, want ErrWordNotFound", err)
	}
}

func TestService_BulkWords(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, "t", "yi", "a b c", "a b c")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = svc.ImportTranscription(ctx, rec.ID, asr.Transcription{
		Text:  "a b c",
		Words: []asr.WordTiming{{Word: "a"}, {Word: "b"}, {Word: "c"}},
	}, "")
	if err != nil {
		t.Fatalf("ImportTranscription: %v", err)
	}
	words, _ := svc.ListWords(ctx, rec.ID)

	n, err := svc.BulkWords(ctx, rec.ID, review.BulkMarkCritical, []string{words[0].ID, words[2].ID, "ghost"})
	if err != nil {
		t.Fatalf("BulkWords: %v", err)
	}
	if n != 2 {
		t.Errorf("affected = %d, want 2", n)
	}

	_, err = svc.BulkWords(ctx, rec.ID, review.BulkAction("nope"), []string{words[0].ID})
	if !errors.Is(err, review.ErrUnknownAction) {
		t.Errorf("BulkWords(nope) = %v, want ErrUnknownAction", err)
	}
}

func TestService_DiffHonoursRange(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, "t", "yi", "bad a b bad", "worse a b")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = svc.SetRange(ctx, rec.ID, score.Range{
		ReferenceStart:  score.IntPtr(1),
		ReferenceEnd:    score.IntPtr(2),
		HypothesisStart: score.IntPtr(1),
		HypothesisEnd:   score.IntPtr(2),
	})
	if err != nil {
		t.Fatalf("SetRange: %v", err)
	}

	spans, err := svc.Diff(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(spans) != 1 || spans[0].Kind != transcript.SpanSame || spans[0].Text != "a b" {
		t.Errorf("spans = %v, want a single unchanged span covering the range", spans)
	}
}

func TestService_UnknownRecord(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Get(ctx, "nope"); !errors.Is(err, transcript.ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
	if _, err := svc.Recompute(ctx, "nope"); !errors.Is(err, transcript.ErrNotFound) {
		t.Errorf("Recompute = %v, want ErrNotFound", err)
	}
	if _, err := svc.SetRange(ctx, "nope", score.Range{}); !errors.Is(err, transcript.ErrNotFound) {
		t.Errorf("SetRange = %v, want ErrNotFound", err)
	}
}
