package review

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the review_words table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS review_words (
    id                TEXT PRIMARY KEY,
    transcript_id     TEXT NOT NULL,
    position          INTEGER NOT NULL,
    ordinal           INTEGER NOT NULL DEFAULT 0,
    original_text     TEXT NOT NULL DEFAULT '',
    corrected_text    TEXT,
    is_deleted        BOOLEAN NOT NULL DEFAULT FALSE,
    is_inserted       BOOLEAN NOT NULL DEFAULT FALSE,
    is_critical_error BOOLEAN NOT NULL DEFAULT FALSE,
    confidence        DOUBLE PRECISION,
    start_time        DOUBLE PRECISION,
    end_time          DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS idx_review_words_transcript ON review_words(transcript_id, position, ordinal);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by PostgreSQL.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a [PostgresStore] over the given connection or
// pool. Call [PostgresStore.Migrate] before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL, creating the review_words table and
// index if they do not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("review: migrate: %w", err)
	}
	return nil
}

const wordColumns = `id, transcript_id, position, ordinal, original_text, corrected_text,
       is_deleted, is_inserted, is_critical_error, confidence, start_time, end_time`

// ListByTranscript implements [Store].
func (s *PostgresStore) ListByTranscript(ctx context.Context, transcriptID string) ([]Word, error) {
	query := `SELECT ` + wordColumns + `
		FROM review_words
		WHERE transcript_id = $1
		ORDER BY position, ordinal`

	rows, err := s.db.Query(ctx, query, transcriptID)
	if err != nil {
		return nil, fmt.Errorf("review: list words: %w", err)
	}
	defer rows.Close()

	var words []Word
	for rows.Next() {
		var w Word
		if err := rows.Scan(
			&w.ID, &w.TranscriptID, &w.Position, &w.Ordinal, &w.OriginalText, &w.CorrectedText,
			&w.IsDeleted, &w.IsInserted, &w.IsCritical, &w.Confidence, &w.StartTime, &w.EndTime,
		); err != nil {
			return nil, fmt.Errorf("review: list words scan: %w", err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("review: list words: %w", err)
	}
	return words, nil
}

// Replace implements [Store]. The delete and inserts run in sequence on the
// same connection; callers that need strict atomicity should pass a
// transaction-bound DB.
func (s *PostgresStore) Replace(ctx context.Context, transcriptID string, words []Word) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM review_words WHERE transcript_id = $1`, transcriptID); err != nil {
		return fmt.Errorf("review: replace delete: %w", err)
	}
	for _, w := range words {
		if err := s.Save(ctx, w); err != nil {
			return fmt.Errorf("review: replace: %w", err)
		}
	}
	return nil
}

// Save implements [Store].
func (s *PostgresStore) Save(ctx context.Context, w Word) error {
	const query = `
		INSERT INTO review_words (` + wordColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
			position = EXCLUDED.position,
			ordinal = EXCLUDED.ordinal,
			original_text = EXCLUDED.original_text,
			corrected_text = EXCLUDED.corrected_text,
			is_deleted = EXCLUDED.is_deleted,
			is_inserted = EXCLUDED.is_inserted,
			is_critical_error = EXCLUDED.is_critical_error,
			confidence = EXCLUDED.confidence,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time`

	_, err := s.db.Exec(ctx, query,
		w.ID, w.TranscriptID, w.Position, w.Ordinal, w.OriginalText, w.CorrectedText,
		w.IsDeleted, w.IsInserted, w.IsCritical, w.Confidence, w.StartTime, w.EndTime,
	)
	if err != nil {
		return fmt.Errorf("review: save word %q: %w", w.ID, err)
	}
	return nil
}

// Remove implements [Store].
func (s *PostgresStore) Remove(ctx context.Context, transcriptID, id string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM review_words WHERE transcript_id = $1 AND id = $2`,
		transcriptID, id,
	)
	if err != nil {
		return fmt.Errorf("review: remove word %q: %w", id, err)
	}
	return nil
}

// BulkUpdate implements [Store]. Each action is a single UPDATE or DELETE
// constrained by both transcript id and the id set, so ids belonging to
// other transcripts never match a row — they show up only as a smaller
// affected count.
func (s *PostgresStore) BulkUpdate(ctx context.Context, transcriptID string, action BulkAction, ids []string) (int, error) {
	if !action.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var (
		tag     pgconn.CommandTag
		removed int64
		err     error
	)

	switch action {
	case BulkDelete:
		// Reviewer-inserted words are removed outright; everything else is
		// flag-deleted with its correction cleared and its critical flag kept.
		delTag, delErr := s.db.Exec(ctx,
			`DELETE FROM review_words
			 WHERE transcript_id = $1 AND id = ANY($2) AND is_inserted`,
			transcriptID, ids,
		)
		if delErr != nil {
			return 0, fmt.Errorf("review: bulk delete inserted: %w", delErr)
		}
		removed = delTag.RowsAffected()
		tag, err = s.db.Exec(ctx,
			`UPDATE review_words
			 SET is_deleted = TRUE, corrected_text = NULL
			 WHERE transcript_id = $1 AND id = ANY($2)`,
			transcriptID, ids,
		)
	case BulkMarkCritical:
		tag, err = s.db.Exec(ctx,
			`UPDATE review_words
			 SET is_critical_error = TRUE
			 WHERE transcript_id = $1 AND id = ANY($2)`,
			transcriptID, ids,
		)
	case BulkClearCritical:
		tag, err = s.db.Exec(ctx,
			`UPDATE review_words
			 SET is_critical_error = FALSE
			 WHERE transcript_id = $1 AND id = ANY($2)`,
			transcriptID, ids,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("review: bulk %s: %w", action, err)
	}
	return int(tag.RowsAffected() + removed), nil
}
