package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Temutjin2k/fleet-ops-system/internal/docstore"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// notifyChannel is the LISTEN/NOTIFY channel all document changes go
// through. The payload is the collection name; live queries re-run and emit
// a full snapshot when their collection is notified.
const notifyChannel = "fleet_doc_changes"

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection  TEXT        NOT NULL,
	id          TEXT        NOT NULL,
	data        JSONB       NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
`

// Postgres implements docstore.Store on a single JSONB documents table.
type Postgres struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

func NewPostgres(pool *pgxpool.Pool, log logger.Logger) *Postgres {
	return &Postgres{
		pool: pool,
		log:  log,
	}
}

// EnsureSchema creates the documents table if it does not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure documents schema: %w", err)
	}
	return nil
}

func (s *Postgres) Query(ctx context.Context, collection string, filters []docstore.Filter) ([]docstore.Document, error) {
	query, args := buildQuery(collection, filters)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var doc docstore.Document
		if err := rows.Scan(&doc.ID, &doc.Data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}

	return docs, nil
}

func (s *Postgres) Write(ctx context.Context, collection, id string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s/%s: %w", collection, id, err)
	}

	const upsert = `
		INSERT INTO documents (collection, id, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()`

	if _, err := s.pool.Exec(ctx, upsert, collection, id, data); err != nil {
		return fmt.Errorf("failed to write document %s/%s: %w", collection, id, err)
	}

	return s.notify(ctx, collection)
}

func (s *Postgres) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id); err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}

	return s.notify(ctx, collection)
}

func (s *Postgres) notify(ctx context.Context, collection string) error {
	if _, err := s.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, collection); err != nil {
		return fmt.Errorf("failed to notify %s change: %w", collection, err)
	}
	return nil
}

// buildQuery renders the equality filters into JSONB field comparisons.
func buildQuery(collection string, filters []docstore.Filter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, data FROM documents WHERE collection = $1`)

	args := []any{collection}
	for _, f := range filters {
		args = append(args, f.Field, filterValue(f.Value))
		sb.WriteString(fmt.Sprintf(` AND data ->> $%d = $%d`, len(args)-1, len(args)))
	}
	sb.WriteString(` ORDER BY updated_at`)

	return sb.String(), args
}

// filterValue renders a filter value the way JSONB ->> renders it.
func filterValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(x)
	}
}
