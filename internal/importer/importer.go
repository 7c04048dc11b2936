package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kalambet/dayboard/internal/storage"
)

// JournalWriter is the storage operation the Importer needs.
type JournalWriter interface {
	InsertJournalEntry(ctx context.Context, e storage.JournalEntry) (storage.JournalEntry, error)
}

// Importer turns documents into journal entries, one entry per document.
type Importer struct {
	store  JournalWriter
	logger *slog.Logger
}

// New creates an Importer writing to store.
func New(store JournalWriter) *Importer {
	return &Importer{store: store, logger: slog.Default()}
}

// ImportFile extracts the text of the file at path and stores it as a new entry.
func (im *Importer) ImportFile(ctx context.Context, path string) (storage.JournalEntry, error) {
	text, err := ExtractText(path)
	if err != nil {
		return storage.JournalEntry{}, err
	}
	return im.save(ctx, path, text)
}

// Import extracts the text of an in-memory document and stores it as a new entry.
func (im *Importer) Import(ctx context.Context, name string, data []byte) (storage.JournalEntry, error) {
	text, err := Extract(name, data)
	if err != nil {
		return storage.JournalEntry{}, err
	}
	return im.save(ctx, name, text)
}

func (im *Importer) save(ctx context.Context, source, text string) (storage.JournalEntry, error) {
	e, err := im.store.InsertJournalEntry(ctx, storage.JournalEntry{Content: text})
	if err != nil {
		return storage.JournalEntry{}, fmt.Errorf("saving journal entry from %s: %w", source, err)
	}
	im.logger.Info("imported journal entry", "source", source, "id", e.ID, "chars", len(text))
	return e, nil
}
