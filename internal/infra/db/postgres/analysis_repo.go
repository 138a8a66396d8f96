package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	domain "github.com/bryanwahyu/resume-analyzer/internal/domain/analysis"
)

const schema = `
CREATE TABLE IF NOT EXISTS resume_analyses (
  id              BIGSERIAL PRIMARY KEY,
  resume_text     TEXT        NOT NULL,
  job_description TEXT        NOT NULL,
  analysis        JSONB       NOT NULL,
  created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_resume_analyses_created_at
  ON resume_analyses (created_at DESC, id DESC);`

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Migrate creates the table when it does not exist yet.
func (r *AnalysisRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Save appends a record. Existing rows are never updated.
func (r *AnalysisRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO resume_analyses
  (resume_text, job_description, analysis, created_at)
VALUES ($1,$2,$3,$4);
`
	payload, err := json.Marshal(rec.Analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err = r.db.ExecContext(ctx, q, rec.ResumeText, rec.JobDescription, string(payload), createdAt.UTC())
	return err
}

// Recent returns the newest records first; ties on created_at keep insertion order.
func (r *AnalysisRepository) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT resume_text, job_description, analysis, created_at
FROM resume_analyses
ORDER BY created_at DESC, id DESC
LIMIT $1;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Record, 0, limit)
	for rows.Next() {
		var (
			rec     domain.Record
			payload []byte
			created time.Time
		)
		if err := rows.Scan(&rec.ResumeText, &rec.JobDescription, &payload, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &rec.Analysis); err != nil {
			return nil, fmt.Errorf("decode analysis: %w", err)
		}
		rec.CreatedAt = created.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}
