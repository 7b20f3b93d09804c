package transcript

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Shloimy15e/yiddish-cleaner/internal/score"
)

// Schema is the SQL DDL for the transcripts table. The scoring range is a
// JSONB document because its four bounds are independently optional; the
// snapshot counts are plain columns so they can be queried and aggregated.
const Schema = `
CREATE TABLE IF NOT EXISTS transcripts (
    id                   TEXT PRIMARY KEY,
    title                TEXT NOT NULL DEFAULT '',
    language             TEXT NOT NULL DEFAULT '',
    reference_text       TEXT NOT NULL DEFAULT '',
    hypothesis_text      TEXT NOT NULL DEFAULT '',
    score_range          JSONB NOT NULL DEFAULT '{}',
    wer                  DOUBLE PRECISION,
    cer                  DOUBLE PRECISION,
    reference_word_count INTEGER NOT NULL DEFAULT 0,
    substitutions        INTEGER NOT NULL DEFAULT 0,
    insertions           INTEGER NOT NULL DEFAULT 0,
    deletions            INTEGER NOT NULL DEFAULT 0,
    audio_path           TEXT NOT NULL DEFAULT '',
    duration             DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at           TIMESTAMPTZ NOT NULL,
    updated_at           TIMESTAMPTZ NOT NULL
);
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

// Migrate executes the [Schema] DDL.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("transcript: migrate: %w", err)
	}
	return nil
}

const recordColumns = `id, title, language, reference_text, hypothesis_text, score_range,
       wer, cer, reference_word_count, substitutions, insertions, deletions,
       audio_path, duration, created_at, updated_at`

// Create implements [Store].
func (s *PostgresStore) Create(ctx context.Context, r Record) error {
	const query = `
		INSERT INTO transcripts (` + recordColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`

	_, err := s.db.Exec(ctx, query,
		r.ID, r.Title, r.Language, r.ReferenceText, r.HypothesisText, r.Range,
		r.Snapshot.WER, r.Snapshot.CER, r.Snapshot.ReferenceWordCount,
		r.Snapshot.Substitutions, r.Snapshot.Insertions, r.Snapshot.Deletions,
		r.AudioPath, r.Duration, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("transcript: create %q: %w", r.ID, err)
	}
	return nil
}

// Get implements [Store].
func (s *PostgresStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM transcripts WHERE id = $1`, id)

	r, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("transcript: get %q: %w", id, err)
	}
	return r, nil
}

// List implements [Store].
func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+recordColumns+` FROM transcripts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("transcript: list: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("transcript: list scan: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transcript: list: %w", err)
	}
	return records, nil
}

// Update implements [Store].
func (s *PostgresStore) Update(ctx context.Context, r Record) error {
	const query = `
		UPDATE transcripts SET
			title = $2, language = $3, reference_text = $4, hypothesis_text = $5,
			score_range = $6, wer = $7, cer = $8, reference_word_count = $9,
			substitutions = $10, insertions = $11, deletions = $12,
			audio_path = $13, duration = $14, updated_at = $15
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query,
		r.ID, r.Title, r.Language, r.ReferenceText, r.HypothesisText, r.Range,
		r.Snapshot.WER, r.Snapshot.CER, r.Snapshot.ReferenceWordCount,
		r.Snapshot.Substitutions, r.Snapshot.Insertions, r.Snapshot.Deletions,
		r.AudioPath, r.Duration, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("transcript: update %q: %w", r.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, r.ID)
	}
	return nil
}

// Delete implements [Store].
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM transcripts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("transcript: delete %q: %w", id, err)
	}
	return nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		r  Record
		sr score.Range
	)
	err := row.Scan(
		&r.ID, &r.Title, &r.Language, &r.ReferenceText, &r.HypothesisText, &sr,
		&r.Snapshot.WER, &r.Snapshot.CER, &r.Snapshot.ReferenceWordCount,
		&r.Snapshot.Substitutions, &r.Snapshot.Insertions, &r.Snapshot.Deletions,
		&r.AudioPath, &r.Duration, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	r.Range = sr
	r.Snapshot.Range = sr
	return r, nil
}
