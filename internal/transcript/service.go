package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Shloimy15e/yiddish-cleaner/internal/align"
	"github.com/Shloimy15e/yiddish-cleaner/internal/asr"
	"github.com/Shloimy15e/yiddish-cleaner/internal/observe"
	"github.com/Shloimy15e/yiddish-cleaner/internal/review"
	"github.com/Shloimy15e/yiddish-cleaner/internal/score"
)

// ErrTooLarge is returned when a text exceeds the configured word-token
// limit. Oversized input is rejected outright, never truncated.
var ErrTooLarge = errors.New("transcript: text exceeds token limit")

// defaultMaxTokens bounds the alignment table size. The full backtrace table
// is quadratic in the token counts, so unbounded input would let one request
// allocate arbitrary memory.
const defaultMaxTokens = 50_000

// ServiceOption is a functional option for configuring a [Service].
type ServiceOption func(*Service)

// WithMaxTokens sets the per-text word-token limit enforced on every text
// edit. Default: 50000.
func WithMaxTokens(n int) ServiceOption {
	return func(s *Service) {
		s.maxTokens = n
	}
}

// WithLogger sets the structured logger. Default: [slog.Default].
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = l
	}
}

// WithMetrics sets the metrics instance recompute and review mutations are
// recorded on. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source used for record timestamps. Intended
// for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// Service coordinates transcript records, their metric snapshots, and the
// review overlay. Every text edit recomputes metrics synchronously and
// persists the snapshot together with the new text, so the store never holds
// metrics computed from words that are no longer there. Range and review
// edits re-score without touching the texts.
//
// Service is safe for concurrent use as long as its stores are; concurrent
// edits to the same record resolve by last write.
type Service struct {
	store   Store
	reviews review.Store

	maxTokens int
	log       *slog.Logger
	metrics   *observe.Metrics
	now       func() time.Time
}

// NewService constructs a [Service] with the supplied options.
func NewService(store Store, reviews review.Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		reviews:   reviews,
		maxTokens: defaultMaxTokens,
		log:       slog.Default(),
		metrics:   observe.DefaultMetrics(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create stores a new transcript record with a freshly computed snapshot.
func (s *Service) Create(ctx context.Context, title, language, reference, hypothesis string) (Record, error) {
	if err := s.checkSize(reference, hypothesis); err != nil {
		return Record{}, err
	}

	now := s.now().UTC()
	r := Record{
		ID:             uuid.NewString(),
		Title:          title,
		Language:       language,
		ReferenceText:  reference,
		HypothesisText: hypothesis,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.rescore(ctx, &r, "create")

	if err := s.store.Create(ctx, r); err != nil {
		return Record{}, err
	}
	s.metrics.ActiveTranscripts.Add(ctx, 1)
	s.log.InfoContext(ctx, "transcript created",
		"id", r.ID, "title", title, "words", r.Snapshot.ReferenceWordCount)
	return r, nil
}

// Get returns a stored record.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	return s.store.Get(ctx, id)
}

// List returns all stored records, newest first.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.store.List(ctx)
}

// Delete removes a record together with its review words.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.reviews.Replace(ctx, id, nil); err != nil {
		return fmt.Errorf("transcript: delete review words of %q: %w", id, err)
	}
	s.metrics.ActiveTranscripts.Add(ctx, -1)
	return nil
}

// SetTexts replaces the reference and hypothesis texts and runs a full
// recompute before persisting. The stored range is kept; its bounds clamp to
// the new token counts at scoring time.
func (s *Service) SetTexts(ctx context.Context, id, reference, hypothesis string) (Record, error) {
	if err := s.checkSize(reference, hypothesis); err != nil {
		return Record{}, err
	}

	r, err := s.store.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	r.ReferenceText = reference
	r.HypothesisText = hypothesis
	r.UpdatedAt = s.now().UTC()
	s.rescore(ctx, &r, "texts")

	if err := s.store.Update(ctx, r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// SetRange replaces the scoring range and re-scores. The texts are left
// untouched; a later [Service.SetRange] back to the full range restores the
// full-text metrics.
func (s *Service) SetRange(ctx context.Context, id string, sr score.Range) (Record, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	r.Range = sr
	r.UpdatedAt = s.now().UTC()
	s.rescore(ctx, &r, "range")

	if err := s.store.Update(ctx, r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Recompute re-runs the scoring pipeline on the stored texts and range and
// persists the fresh snapshot.
func (s *Service) Recompute(ctx context.Context, id string) (Record, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	r.UpdatedAt = s.now().UTC()
	s.rescore(ctx, &r, "manual")

	if err := s.store.Update(ctx, r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Report combines the aligner snapshot with the review-derived custom WER
// for one transcript.
type Report struct {
	Snapshot score.Snapshot `json:"snapshot"`
	Custom   score.Summary  `json:"custom"`
}

// Metrics returns the stored snapshot plus the custom WER summary, which
// blends the aligner's insertion and deletion counts with the reviewer's
// critical-error flags. Raw substitutions are reported but excluded from the
// custom error count: only substitutions a reviewer marked critical count.
func (s *Service) Metrics(ctx context.Context, id string) (Report, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return Report{}, err
	}
	words, err := s.reviews.ListByTranscript(ctx, id)
	if err != nil {
		return Report{}, fmt.Errorf("transcript: metrics of %q: %w", id, err)
	}

	ov := review.NewOverlay(id, words)
	start, end := r.Range.HypothesisBounds(len(align.Words(r.HypothesisText)))

	custom := score.Custom(
		r.Snapshot.Insertions,
		r.Snapshot.Deletions,
		r.Snapshot.Substitutions,
		ov.CriticalReplacements(start, end),
		ov.ReviewedCount(start, end),
		r.Snapshot.ReferenceWordCount,
	)
	return Report{Snapshot: r.Snapshot, Custom: custom}, nil
}

// Diff returns the word-level alignment of the record's texts as
// removed/added/unchanged spans, restricted to the stored range.
func (s *Service) Diff(ctx context.Context, id string) ([]Span, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := r.Range.SliceReference(align.Words(r.ReferenceText))
	hyp := r.Range.SliceHypothesis(align.Words(r.HypothesisText))
	return DiffSpans(align.Align(ref, hyp)), nil
}

// ImportTranscription stores an ASR result on an existing record: the
// hypothesis text, audio metadata, and one review word per hypothesis
// position with the provider's timing and confidence data. Any existing
// review state is replaced, then the metrics are recomputed in full.
func (s *Service) ImportTranscription(ctx context.Context, id string, t asr.Transcription, audioPath string) (Record, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if err := s.checkSize(r.ReferenceText, t.Text); err != nil {
		return Record{}, err
	}

	r.HypothesisText = t.Text
	r.AudioPath = audioPath
	r.Duration = t.Duration
	if r.Language == "" {
		r.Language = t.Language
	}
	r.UpdatedAt = s.now().UTC()
	s.rescore(ctx, &r, "asr")

	words := make([]review.Word, 0, len(t.Words))
	for i, wt := range t.Words {
		start, end := wt.Start, wt.End
		words = append(words, review.Word{
			ID:           uuid.NewString(),
			TranscriptID: id,
			Position:     i,
			OriginalText: wt.Word,
			Confidence:   wt.Confidence,
			StartTime:    &start,
			EndTime:      &end,
		})
	}
	if err := s.reviews.Replace(ctx, id, words); err != nil {
		return Record{}, fmt.Errorf("transcript: import words of %q: %w", id, err)
	}
	if err := s.store.Update(ctx, r); err != nil {
		return Record{}, err
	}
	s.log.InfoContext(ctx, "transcription imported",
		"id", id, "words", len(words), "duration", t.Duration)
	return r, nil
}

// ListWords returns the review words of a transcript in position order.
func (s *Service) ListWords(ctx context.Context, id string) ([]review.Word, error) {
	return s.reviews.ListByTranscript(ctx, id)
}

// SaveCorrection sets (or, for a no-op, clears) the corrected text of one
// review word and persists it. Corrections are informational: they never
// change any metric.
func (s *Service) SaveCorrection(ctx context.Context, transcriptID, wordID, text string) (review.Word, error) {
	return s.mutateWord(ctx, transcriptID, wordID, "correct", func(ov *review.Overlay) error {
		return ov.SaveCorrection(wordID, text)
	})
}

// DeleteWord marks a word deleted, or removes it entirely when it was
// reviewer-inserted.
func (s *Service) DeleteWord(ctx context.Context, transcriptID, wordID string) error {
	words, err := s.reviews.ListByTranscript(ctx, transcriptID)
	if err != nil {
		return fmt.Errorf("transcript: delete word: %w", err)
	}
	ov := review.NewOverlay(transcriptID, words)
	w, ok := wordByID(ov.Words(), wordID)
	if !ok {
		return fmt.Errorf("%w: %s", review.ErrWordNotFound, wordID)
	}
	if err := ov.Delete(wordID); err != nil {
		return err
	}

	if w.IsInserted {
		err = s.reviews.Remove(ctx, transcriptID, wordID)
	} else {
		w, _ = wordByID(ov.Words(), wordID)
		err = s.reviews.Save(ctx, w)
	}
	if err != nil {
		return fmt.Errorf("transcript: delete word %q: %w", wordID, err)
	}
	s.metrics.RecordReviewMutation(ctx, "delete")
	return nil
}

// RestoreWord clears a word's deleted flag and any correction.
func (s *Service) RestoreWord(ctx context.Context, transcriptID, wordID string) (review.Word, error) {
	return s.mutateWord(ctx, transcriptID, wordID, "restore", func(ov *review.Overlay) error {
		return ov.Restore(wordID)
	})
}

// ToggleCritical flips a word's critical-error flag.
func (s *Service) ToggleCritical(ctx context.Context, transcriptID, wordID string) (review.Word, error) {
	return s.mutateWord(ctx, transcriptID, wordID, "toggle_critical", func(ov *review.Overlay) error {
		return ov.ToggleCritical(wordID)
	})
}

// InsertWord adds a reviewer-inserted word after the given hypothesis
// position (-1 inserts before the first word) and persists it.
func (s *Service) InsertWord(ctx context.Context, transcriptID string, afterPosition int, text string) (review.Word, error) {
	words, err := s.reviews.ListByTranscript(ctx, transcriptID)
	if err != nil {
		return review.Word{}, fmt.Errorf("transcript: insert word: %w", err)
	}
	ov := review.NewOverlay(transcriptID, words)
	w := ov.Insert(afterPosition, text)
	if err := s.reviews.Save(ctx, w); err != nil {
		return review.Word{}, fmt.Errorf("transcript: insert word: %w", err)
	}
	s.metrics.RecordReviewMutation(ctx, "insert")
	return w, nil
}

// BulkWords applies a bulk action to a set of word ids of one transcript and
// returns the number of entries affected. The whole set is validated before
// anything is mutated; ids belonging to other transcripts are excluded and
// surface only as a smaller count.
func (s *Service) BulkWords(ctx context.Context, transcriptID string, action review.BulkAction, ids []string) (int, error) {
	n, err := s.reviews.BulkUpdate(ctx, transcriptID, action, ids)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordReviewMutation(ctx, "bulk_"+string(action))
	return n, nil
}

// mutateWord loads the overlay, applies mutate, and persists the touched
// word.
func (s *Service) mutateWord(ctx context.Context, transcriptID, wordID, action string, mutate func(*review.Overlay) error) (review.Word, error) {
	words, err := s.reviews.ListByTranscript(ctx, transcriptID)
	if err != nil {
		return review.Word{}, fmt.Errorf("transcript: %s word: %w", action, err)
	}
	ov := review.NewOverlay(transcriptID, words)
	if err := mutate(ov); err != nil {
		return review.Word{}, err
	}
	w, ok := wordByID(ov.Words(), wordID)
	if !ok {
		return review.Word{}, fmt.Errorf("%w: %s", review.ErrWordNotFound, wordID)
	}
	if err := s.reviews.Save(ctx, w); err != nil {
		return review.Word{}, fmt.Errorf("transcript: %s word %q: %w", action, wordID, err)
	}
	s.metrics.RecordReviewMutation(ctx, action)
	return w, nil
}

// rescore recomputes the record's snapshot from its texts and range.
func (s *Service) rescore(ctx context.Context, r *Record, trigger string) {
	start := time.Now()
	r.Snapshot = score.Compute(r.ReferenceText, r.HypothesisText, r.Range)
	s.metrics.RecordRecompute(ctx, trigger, "ok", time.Since(start).Seconds())
}

// checkSize enforces the word-token limit on both texts.
func (s *Service) checkSize(reference, hypothesis string) error {
	if n := len(align.Words(reference)); n > s.maxTokens {
		return fmt.Errorf("%w: reference has %d words, limit %d", ErrTooLarge, n, s.maxTokens)
	}
	if n := len(align.Words(hypothesis)); n > s.maxTokens {
		return fmt.Errorf("%w: hypothesis has %d words, limit %d", ErrTooLarge, n, s.maxTokens)
	}
	return nil
}

func wordByID(words []review.Word, id string) (review.Word, bool) {
	for _, w := range words {
		if w.ID == id {
			return w, true
		}
	}
	return review.Word{}, false
}
