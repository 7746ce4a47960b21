package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/yithril/docpipeline/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026021002)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	project_id BIGINT NOT NULL,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	blob_url TEXT NOT NULL,
	status TEXT NOT NULL,
	document_type TEXT,
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	candidates JSONB NOT NULL DEFAULT '{}'::jsonb,
	summary TEXT,
	key_points JSONB NOT NULL DEFAULT '[]'::jsonb,
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_tenant_project ON documents(tenant_id, project_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_tenant_project_filename ON documents(tenant_id, project_id, filename);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	candidatesJSON, err := json.Marshal(doc.Candidates)
	if err != nil {
		return fmt.Errorf("marshal candidates: %w", err)
	}
	keyPointsJSON, err := json.Marshal(doc.KeyPoints)
	if err != nil {
		return fmt.Errorf("marshal key points: %w", err)
	}
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, tenant_id, project_id, filename, mime_type, blob_url, status, document_type, confidence, candidates, summary, key_points, metadata, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
`,
		doc.ID, doc.TenantID, doc.ProjectID, doc.Filename, doc.MimeType, doc.BlobURL,
		string(doc.Status), doc.DocumentType, doc.Confidence, candidatesJSON,
		doc.Summary, keyPointsJSON, metadataJSON, doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, documentSelect+` WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document",
				fmt.Errorf("document not found: %s", id))
		}
		return nil, err
	}
	return doc, nil
}

// FindByProjectAndFilename is the duplicate-upload lookup. A missing
// row is reported as (nil, nil), not an error.
func (r *DocumentRepository) FindByProjectAndFilename(ctx context.Context, tenantID string, projectID int, filename string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx,
		documentSelect+` WHERE tenant_id = $1 AND project_id = $2 AND filename = $3`,
		tenantID, projectID, filename)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return requireRowUpdated(res, "update document status", id)
}

func (r *DocumentRepository) SaveClassification(ctx context.Context, id string, res domain.ClassificationResult) error {
	candidatesJSON, err := json.Marshal(res.Candidates)
	if err != nil {
		return fmt.Errorf("marshal candidates: %w", err)
	}
	execRes, err := r.db.ExecContext(ctx, `
UPDATE documents
SET document_type = $2, confidence = $3, candidates = $4, updated_at = $5
WHERE id = $1
`, id, res.DocumentType, res.Confidence, candidatesJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save classification: %w", err)
	}
	return requireRowUpdated(execRes, "save classification", id)
}

func (r *DocumentRepository) SaveSummary(ctx context.Context, id string, res domain.SummaryResult) error {
	keyPointsJSON, err := json.Marshal(res.KeyPoints)
	if err != nil {
		return fmt.Errorf("marshal key points: %w", err)
	}
	metadataJSON, err := json.Marshal(res.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	execRes, err := r.db.ExecContext(ctx, `
UPDATE documents
SET summary = $2, key_points = $3, metadata = $4, updated_at = $5
WHERE id = $1
`, id, res.Summary, keyPointsJSON, metadataJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	return requireRowUpdated(execRes, "save summary", id)
}

func requireRowUpdated(res sql.Result, op, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, op, fmt.Errorf("document not found: %s", id))
	}
	return nil
}

const documentSelect = `
SELECT id, tenant_id, project_id, filename, mime_type, blob_url, status, document_type, confidence, candidates, summary, key_points, metadata, error_message, created_at, updated_at
FROM documents`

func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var status string
	var candidatesRaw, keyPointsRaw, metadataRaw []byte

	err := row.Scan(
		&doc.ID, &doc.TenantID, &doc.ProjectID, &doc.Filename, &doc.MimeType, &doc.BlobURL,
		&status, &doc.DocumentType, &doc.Confidence, &candidatesRaw,
		&doc.Summary, &keyPointsRaw, &metadataRaw, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(candidatesRaw, &doc.Candidates); err != nil {
		return nil, fmt.Errorf("unmarshal candidates: %w", err)
	}
	if err := json.Unmarshal(keyPointsRaw, &doc.KeyPoints); err != nil {
		return nil, fmt.Errorf("unmarshal key points: %w", err)
	}
	if err := json.Unmarshal(metadataRaw, &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}
