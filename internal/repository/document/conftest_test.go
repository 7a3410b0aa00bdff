package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/answerdex/internal/db/sqlite"
	domdoc "github.com/kailas-cloud/answerdex/internal/domain/document"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(db.Handle())
}

func makeDoc(t *testing.T, id, text string, meta map[string]any, tags []domdoc.Tag) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New(id, text, meta, tags)
	if err != nil {
		t.Fatalf("document.New: %v", err)
	}
	return doc
}

func mustWrite(t *testing.T, r *Repo, docs ...domdoc.Document) {
	t.Helper()
	if err := r.Write(context.Background(), docs); err != nil {
		t.Fatalf("Write: %v", err)
	}
}
