package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// --- Journal ---

// InsertJournalEntry appends a journal entry. ID and CreatedAt are assigned
// when zero. The stored entry is returned.
func (s *Store) InsertJournalEntry(ctx context.Context, e JournalEntry) (JournalEntry, error) {
	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return JournalEntry{}, err
		}
		e.ID = id.String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO journal_entries (id, content, created_at) VALUES (?, ?, ?)`),
		e.ID, e.Content, formatTime(e.CreatedAt),
	)
	if err != nil {
		return JournalEntry{}, err
	}
	return e, nil
}

// LatestJournalEntry returns the most recently created entry, or ErrNotFound.
func (s *Store) LatestJournalEntry(ctx context.Context) (JournalEntry, error) {
	var e JournalEntry
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, content, created_at FROM journal_entries
		ORDER BY created_at DESC, id DESC LIMIT 1`,
	).Scan(&e.ID, &e.Content, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return JournalEntry{}, ErrNotFound
	}
	if err != nil {
		return JournalEntry{}, err
	}
	t, err := parseTime("created_at", createdAt)
	if err != nil {
		return JournalEntry{}, err
	}
	e.CreatedAt = t
	return e, nil
}
