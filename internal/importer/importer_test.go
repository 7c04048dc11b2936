package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kalambet/dayboard/internal/storage"
)

type failingWriter struct{}

func (failingWriter) InsertJournalEntry(context.Context, storage.JournalEntry) (storage.JournalEntry, error) {
	return storage.JournalEntry{}, errors.New("disk full")
}

func TestImportFile(t *testing.T) {
	st, err := storage.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	second := filepath.Join(dir, "b.html")
	os.WriteFile(first, []byte("first entry"), 0o644)
	os.WriteFile(second, []byte("<p>second entry</p>"), 0o644)

	im := New(st)
	ctx := context.Background()
	for _, p := range []string{first, second} {
		if _, err := im.ImportFile(ctx, p); err != nil {
			t.Fatalf("ImportFile(%s): %v", p, err)
		}
	}

	latest, err := st.LatestJournalEntry(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if latest.Content != "second entry" {
		t.Errorf("latest = %q", latest.Content)
	}
}

func TestImport_WriteFailure(t *testing.T) {
	im := New(failingWriter{})
	if _, err := im.Import(context.Background(), "x.txt", []byte("hello")); err == nil {
		t.Fatal("expected error")
	}
	if _, err := im.Import(context.Background(), "x.doc", []byte("hello")); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("err = %v, want ErrUnsupportedType", err)
	}
}
