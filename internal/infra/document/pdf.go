package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	domain "github.com/bryanwahyu/resume-analyzer/internal/domain/document"
)

var errMalformed = errors.New("malformed PDF")

// PDFExtractor implements document.Extractor for PDF files.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract returns the text of every page in order, joined by newlines and trimmed.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", &domain.ExtractionError{Err: errors.New("empty file")}
	}

	// parser library bisa panic untuk file yang rusak
	defer recoverMalformed(&text, &err)

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &domain.ExtractionError{Err: err}
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", &domain.ExtractionError{Err: err}
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", &domain.ExtractionError{Err: fmt.Errorf("page %d: %w", i, err)}
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}

	text = strings.TrimSpace(sb.String())
	if text == "" {
		return "", domain.ErrEmptyContent
	}
	return text, nil
}

// recoverMalformed turns a parser panic into an ExtractionError. The panic
// value is dropped so runtime detail never reaches the caller.
func recoverMalformed(text *string, err *error) {
	if r := recover(); r != nil {
		*text = ""
		*err = &domain.ExtractionError{Err: errMalformed}
	}
}
