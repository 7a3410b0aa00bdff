// Package document implements the relational document store: a documents
// table, a tags table, and a document_tags association table. Metadata is
// an opaque serialized blob, not queryable by field.
package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/answerdex/internal/domain"
	domdoc "github.com/kailas-cloud/answerdex/internal/domain/document"
)

// Capabilities describes the query capability set of this store variant
// so callers can branch without probing for sentinel errors.
type Capabilities struct {
	TagFiltering     bool
	EmbeddingQueries bool
}

// Repo implements usecase/document.Repository on SQLite.
type Repo struct {
	db *sql.DB
}

// New creates a document repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Capabilities reports what this store variant supports.
func (r *Repo) Capabilities() Capabilities {
	return Capabilities{TagFiltering: true, EmbeddingQueries: false}
}

// Write persists a batch of documents in a single transaction
// (all-or-nothing). Writing an existing id replaces the whole record,
// including its tag associations.
func (r *Repo) Write(ctx context.Context, docs []domdoc.Document) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %v: %w", err, domain.ErrStorage)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for i := range docs {
		if err := writeOne(ctx, tx, &docs[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %v: %w", err, domain.ErrStorage)
	}
	return nil
}

func writeOne(ctx context.Context, tx *sql.Tx, doc *domdoc.Document) error {
	meta, err := marshalMeta(doc.Meta())
	if err != nil {
		return fmt.Errorf("document %s: %w", doc.ID(), err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, text, meta) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET text = excluded.text, meta = excluded.meta, updated_at = CURRENT_TIMESTAMP
	`, doc.ID(), doc.Text(), meta)
	if err != nil {
		return fmt.Errorf("write document %s: %v: %w", doc.ID(), err, domain.ErrStorage)
	}

	// Whole-record semantics: replacing a document replaces its tag set.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM document_tags WHERE document_id = ?`, doc.ID(),
	); err != nil {
		return fmt.Errorf("clear tags for %s: %v: %w", doc.ID(), err, domain.ErrStorage)
	}

	for _, tag := range doc.Tags() {
		if err := associateTag(ctx, tx, doc.ID(), tag); err != nil {
			return err
		}
	}
	return nil
}

// associateTag links a document to a tag row, creating the tag if needed.
// UNIQUE(name, value) plus INSERT OR IGNORE keeps tag rows deduplicated
// under concurrent writers.
func associateTag(ctx context.Context, tx *sql.Tx, docID string, tag domdoc.Tag) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO tags (name, value) VALUES (?, ?)`, tag.Name, tag.Value,
	); err != nil {
		return fmt.Errorf("write tag %s=%s: %v: %w", tag.Name, tag.Value, err, domain.ErrStorage)
	}

	var tagID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM tags WHERE name = ? AND value = ?`, tag.Name, tag.Value,
	).Scan(&tagID); err != nil {
		return fmt.Errorf("resolve tag %s=%s: %v: %w", tag.Name, tag.Value, err, domain.ErrStorage)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO document_tags (document_id, tag_id) VALUES (?, ?)`, docID, tagID,
	); err != nil {
		return fmt.Errorf("associate tag %s=%s with %s: %v: %w", tag.Name, tag.Value, docID, err, domain.ErrStorage)
	}
	return nil
}

// GetByID returns a document. A miss is a normal outcome (ok=false), not
// an error.
func (r *Repo) GetByID(ctx context.Context, id string) (domdoc.Document, bool, error) {
	var (
		text string
		meta sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT text, meta FROM documents WHERE id = ?`, id,
	).Scan(&text, &meta)
	if errors.Is(err, sql.ErrNoRows) {
		return domdoc.Document{}, false, nil
	}
	if err != nil {
		return domdoc.Document{}, false, fmt.Errorf("get document %s: %v: %w", id, err, domain.ErrStorage)
	}

	metaMap, err := unmarshalMeta(meta)
	if err != nil {
		return domdoc.Document{}, false, fmt.Errorf("document %s: %w", id, err)
	}

	tags, err := r.tagsFor(ctx, id)
	if err != nil {
		return domdoc.Document{}, false, err
	}

	return domdoc.Reconstruct(id, text, metaMap, tags), true, nil
}

// GetAll returns every stored document, ordered by creation time then id
// so the ordering is stable within one store state.
func (r *Repo) GetAll(ctx context.Context) ([]domdoc.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, text, meta FROM documents ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %v: %w", err, domain.ErrStorage)
	}
	defer rows.Close()

	var docs []domdoc.Document
	var ids []string
	for rows.Next() {
		var (
			id   string
			text string
			meta sql.NullString
		)
		if err := rows.Scan(&id, &text, &meta); err != nil {
			return nil, fmt.Errorf("scan document: %v: %w", err, domain.ErrStorage)
		}
		metaMap, err := unmarshalMeta(meta)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", id, err)
		}
		docs = append(docs, domdoc.Reconstruct(id, text, metaMap, nil))
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %v: %w", err, domain.ErrStorage)
	}

	tagsByDoc, err := r.tagsForAll(ctx)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		if tags := tagsByDoc[id]; tags != nil {
			docs[i] = domdoc.Reconstruct(id, docs[i].Text(), docs[i].Meta(), tags)
		}
	}

	return docs, nil
}

// IDsByTags returns the ids of documents that have, for every requested
// criterion, at least one tag whose value matches (AND across criteria,
// OR within one criterion's values). Executed as a single aggregate query
// with bound parameters, never string-interpolated values.
func (r *Repo) IDsByTags(ctx context.Context, tags map[string][]string) ([]string, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("no tag supplied for filtering documents: %w", domain.ErrInvalidQuery)
	}

	var having []string
	var args []any
	for name, values := range tags {
		if len(values) == 0 {
			return nil, fmt.Errorf("tag criterion %q has no values: %w", name, domain.ErrInvalidQuery)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
		having = append(having,
			fmt.Sprintf("SUM(CASE WHEN t.value IN (%s) THEN 1 ELSE 0 END) > 0", placeholders))
		for _, v := range values {
			args = append(args, v)
		}
	}

	query := fmt.Sprintf(`
		SELECT id FROM documents WHERE id IN (
			SELECT dt.document_id
			FROM document_tags dt
			JOIN tags t ON t.id = dt.tag_id
			GROUP BY dt.document_id
			HAVING %s
		)
		ORDER BY created_at ASC, id ASC
	`, strings.Join(having, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter by tags: %v: %w", err, domain.ErrStorage)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan document id: %v: %w", err, domain.ErrStorage)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document ids: %v: %w", err, domain.ErrStorage)
	}

	return ids, nil
}

// Count returns the number of stored documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %v: %w", err, domain.ErrStorage)
	}
	return n, nil
}

// QueryByEmbedding is not supported by the relational store variant.
// Use a vector-capable store for similarity queries.
func (r *Repo) QueryByEmbedding(_ context.Context, _ []float32, _ int) ([]domdoc.Document, error) {
	return nil, fmt.Errorf("embedding queries require a vector-capable store: %w", domain.ErrUnsupportedOperation)
}

func (r *Repo) tagsFor(ctx context.Context, docID string) ([]domdoc.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.name, t.value
		FROM document_tags dt
		JOIN tags t ON t.id = dt.tag_id
		WHERE dt.document_id = ?
		ORDER BY t.id ASC
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("load tags for %s: %v: %w", docID, err, domain.ErrStorage)
	}
	defer rows.Close()

	var tags []domdoc.Tag
	for rows.Next() {
		var tag domdoc.Tag
		if err := rows.Scan(&tag.Name, &tag.Value); err != nil {
			return nil, fmt.Errorf("scan tag: %v: %w", err, domain.ErrStorage)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %v: %w", err, domain.ErrStorage)
	}
	return tags, nil
}

func (r *Repo) tagsForAll(ctx context.Context) (map[string][]domdoc.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT dt.document_id, t.name, t.value
		FROM document_tags dt
		JOIN tags t ON t.id = dt.tag_id
		ORDER BY t.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load tags: %v: %w", err, domain.ErrStorage)
	}
	defer rows.Close()

	byDoc := make(map[string][]domdoc.Tag)
	for rows.Next() {
		var docID string
		var tag domdoc.Tag
		if err := rows.Scan(&docID, &tag.Name, &tag.Value); err != nil {
			return nil, fmt.Errorf("scan tag: %v: %w", err, domain.ErrStorage)
		}
		byDoc[docID] = append(byDoc[docID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %v: %w", err, domain.ErrStorage)
	}
	return byDoc, nil
}
