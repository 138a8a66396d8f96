package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/resume-analyzer/internal/domain/analysis"
)

const schema = `
CREATE TABLE IF NOT EXISTS resume_analyses (
  id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
  resume_text     LONGTEXT    NOT NULL,
  job_description LONGTEXT    NOT NULL,
  analysis        JSON        NOT NULL,
  created_at      DATETIME(6) NOT NULL,
  PRIMARY KEY (id),
  KEY idx_resume_analyses_created_at (created_at, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

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

// Save inserts an analysis record
func (r *AnalysisRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO resume_analyses
  (resume_text, job_description, analysis, created_at)
VALUES (?,?,?,?);
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

// Recent returns up to limit records ordered by created_at desc
func (r *AnalysisRepository) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = 10
	}

	const q = `
SELECT resume_text, job_description, analysis, created_at
FROM resume_analyses
ORDER BY created_at DESC, id DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Record, 0, limit)
	for rows.Next() {
		var rec domain.Record
		var payload []byte
		var created time.Time
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
