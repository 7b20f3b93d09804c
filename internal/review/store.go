package review

import "context"

// Store persists review words. All implementations must be safe for
// concurrent use.
//
// Bulk mutations are scoped to a single transcript: ids belonging to other
// transcripts must be excluded from the mutation set without touching the
// unrelated records, surfaced to the caller only as a smaller affected
// count.
type Store interface {
	// ListByTranscript returns all review words for a transcript in
	// (position, ordinal) order.
	ListByTranscript(ctx context.Context, transcriptID string) ([]Word, error)

	// Replace atomically swaps the full word set of a transcript, used when
	// an ASR or forced-alignment run repopulates per-word data.
	Replace(ctx context.Context, transcriptID string, words []Word) error

	// Save upserts a single word.
	Save(ctx context.Context, w Word) error

	// Remove deletes a word entry entirely. Used only for reviewer-inserted
	// words; removing a non-existent id is not an error.
	Remove(ctx context.Context, transcriptID, id string) error

	// BulkUpdate applies action to the given ids of one transcript and
	// returns the number of rows affected. Returns [ErrUnknownAction] for an
	// unrecognised action, before any mutation.
	BulkUpdate(ctx context.Context, transcriptID string, action BulkAction, ids []string) (int, error)
}
