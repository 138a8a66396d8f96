package documents

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/bryanwahyu/resume-analyzer/internal/application"
	"github.com/bryanwahyu/resume-analyzer/internal/domain/analysis"
	domain "github.com/bryanwahyu/resume-analyzer/internal/domain/document"
)

// Service implements the text extraction use case.
type Service struct {
	Extractor domain.Extractor
	Archive   domain.Archive // optional
	Clock     application.Clock
	Logger    *slog.Logger
}

// Extract checks the upload, pulls its text and, when an archive is
// configured, keeps a copy of the original file.
func (s *Service) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", &analysis.ValidationError{Field: "file", Message: "No file selected"}
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return "", &analysis.ValidationError{Field: "file", Message: "File must be a PDF"}
	}
	if len(data) == 0 {
		return "", &analysis.ValidationError{Field: "file", Message: "No file provided"}
	}

	text, err := s.Extractor.Extract(ctx, data)
	if err != nil {
		return "", err
	}

	if s.Archive != nil {
		s.archive(ctx, data)
	}
	return text, nil
}

// archive is best effort; a failed upload never fails the extraction.
func (s *Service) archive(ctx context.Context, data []byte) {
	now := s.Clock.Now().UTC()
	key := fmt.Sprintf("resumes/%s/%s.pdf", now.Format("2006/01/02"), uuid.New().String())
	url, err := s.Archive.Put(ctx, key, data, "application/pdf")
	if err != nil {
		s.logger().Warn("failed to archive uploaded document", "key", key, "err", err)
		return
	}
	s.logger().Debug("archived uploaded document", "url", url, "bytes", len(data))
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
