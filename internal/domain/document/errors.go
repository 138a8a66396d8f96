package document

import (
	"errors"
	"fmt"
)

// ErrEmptyContent means the document parsed fine but holds no selectable text,
// typically a scanned image.
var ErrEmptyContent = errors.New("no text could be extracted from the PDF. Please ensure the PDF contains selectable text and is not a scanned image")

// ExtractionError means the bytes could not be read as a document at all.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return "error extracting text from PDF"
	}
	return fmt.Sprintf("error extracting text from PDF: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
