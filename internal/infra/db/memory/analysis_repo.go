// Package memory is an in-process analysis store for local runs and tests.
// Data is lost when the process exits.
package memory

import (
	"context"
	"sort"
	"sync"

	domain "github.com/bryanwahyu/resume-analyzer/internal/domain/analysis"
)

type row struct {
	seq int64
	rec domain.Record
}

type AnalysisRepository struct {
	mu   sync.RWMutex
	rows []row
	seq  int64
}

func NewAnalysisRepository() *AnalysisRepository {
	return &AnalysisRepository{}
}

func (r *AnalysisRepository) Migrate(ctx context.Context) error { return nil }

func (r *AnalysisRepository) Save(ctx context.Context, rec *domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.rows = append(r.rows, row{seq: r.seq, rec: copyRecord(*rec)})
	return nil
}

func (r *AnalysisRepository) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	r.mu.RLock()
	sorted := make([]row, len(r.rows))
	copy(sorted, r.rows)
	r.mu.RUnlock()

	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.rec.CreatedAt.Equal(b.rec.CreatedAt) {
			return a.rec.CreatedAt.After(b.rec.CreatedAt)
		}
		return a.seq > b.seq
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]domain.Record, 0, len(sorted))
	for _, rw := range sorted {
		out = append(out, copyRecord(rw.rec))
	}
	return out, nil
}

func copyRecord(rec domain.Record) domain.Record {
	rec.Analysis.MatchedSkills = cloneList(rec.Analysis.MatchedSkills)
	rec.Analysis.MissingSkills = cloneList(rec.Analysis.MissingSkills)
	rec.Analysis.Suggestions = cloneList(rec.Analysis.Suggestions)
	rec.Analysis.Insights = cloneList(rec.Analysis.Insights)
	return rec
}

// cloneList keeps empty lists non-nil so they still encode as [].
func cloneList(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
