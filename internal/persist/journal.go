package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/l1jgo/scenegraph/internal/core/event"
)

var journalColumns = []string{"session", "frame", "entity", "world"}

// JournalRepo appends per-frame change sets to transform_journal. Each run
// of the host writes under its own session id.
type JournalRepo struct {
	db      *DB
	session uuid.UUID
}

func NewJournalRepo(db *DB, session uuid.UUID) *JournalRepo {
	return &JournalRepo{db: db, session: session}
}

func (r *JournalRepo) Session() uuid.UUID { return r.session }

// WriteFrame copies one change set in a single transaction.
func (r *JournalRepo) WriteFrame(ctx context.Context, cs event.TransformsChanged) error {
	if cs.Len() == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"transform_journal"}, journalColumns, journalRows(r.session, cs)); err != nil {
		return fmt.Errorf("journal copy frame %d: %w", cs.Frame, err)
	}
	return tx.Commit(ctx)
}

// Frames returns the number of distinct frames recorded for this session.
func (r *JournalRepo) Frames(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT frame) FROM transform_journal WHERE session = $1`,
		[16]byte(r.session),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("journal frames: %w", err)
	}
	return n, nil
}

func journalRows(session uuid.UUID, cs event.TransformsChanged) pgx.CopyFromSource {
	rows := make([][]any, len(cs.Entities))
	for i, e := range cs.Entities {
		w := cs.Worlds[i]
		rows[i] = []any{[16]byte(session), int64(cs.Frame), int64(e), w[:]}
	}
	return pgx.CopyFromRows(rows)
}
