package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS budget_documents (
	key        TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const selectDocument = `SELECT body FROM budget_documents WHERE key = $1`

const upsertDocument = `
INSERT INTO budget_documents (key, body, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`

// DocumentRepository implements domain.DocumentRepository using PostgreSQL.
// Each document is one JSONB row addressed by key.
type DocumentRepository struct {
	pool *pgxpool.Pool
	key  string
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(pool *pgxpool.Pool, key string) *DocumentRepository {
	return &DocumentRepository{
		pool: pool,
		key:  key,
	}
}

// EnsureSchema creates the documents table when missing
func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createDocumentsTable); err != nil {
		return fmt.Errorf("create budget_documents: %w", err)
	}
	return nil
}

// Load reads the document row. A missing row is an empty document.
func (r *DocumentRepository) Load(ctx context.Context) (*domain.Document, error) {
	var body []byte
	err := r.pool.QueryRow(ctx, selectDocument, r.key).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewDocument(), nil
		}
		return nil, fmt.Errorf("select document %s: %w", r.key, err)
	}

	doc, warnings, err := domain.DecodeDocument(body)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		log.Warn().Str("key", r.key).Str("section", w.Section).Str("category", w.Category).Err(w.Err).Msg("Reset malformed document section")
	}
	return doc, nil
}

// Save upserts the document row
func (r *DocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if _, err := r.pool.Exec(ctx, upsertDocument, r.key, body); err != nil {
		return fmt.Errorf("upsert document %s: %w", r.key, err)
	}
	return nil
}
