package analysis

import (
	"errors"
	"fmt"

	"github.com/bryanwahyu/resume-analyzer/internal/domain/document"
)

// ValidationError is a missing or empty required input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransportError is a failed call to the AI endpoint (network, non-2xx, empty reply).
type TransportError struct {
	StatusCode int // zero when no HTTP response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ai request failed with HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("ai request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NormalizationError means the AI replied but the reply could not be coerced
// into a Result. RawResponse is always the untouched reply.
type NormalizationError struct {
	Message       string
	RawResponse   string
	ExtractedJSON string
	Err           error
}

func (e *NormalizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// StorageError is a read or write fault of the analysis store.
type StorageError struct {
	Op  string // save | recent
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Messages returned at the boundary for failures whose details stay in logs.
const (
	MsgExtractionFailed = "Error extracting text from PDF"
	MsgAIUnavailable    = "AI service request failed"
	MsgAIQuota          = "AI service quota exceeded, please try again later"
	MsgStorageFailed    = "failed to access analysis history"
	MsgInternal         = "internal error"
)

// Payload converts err into the boundary error shape. Transport, extraction
// and storage failures carry only a fixed message; the wrapped error is for logs.
func Payload(err error) ErrorPayload {
	var (
		ve *ValidationError
		te *TransportError
		ne *NormalizationError
		se *StorageError
		xe *document.ExtractionError
	)
	switch {
	case err == nil:
		return ErrorPayload{}
	case errors.As(err, &ve):
		return ErrorPayload{Error: ve.Error()}
	case errors.Is(err, document.ErrEmptyContent):
		return ErrorPayload{Error: capitalize(document.ErrEmptyContent.Error())}
	case errors.As(err, &xe):
		return ErrorPayload{Error: MsgExtractionFailed}
	case errors.As(err, &ne):
		return ErrorPayload{
			Error:         ne.Error(),
			RawResponse:   ne.RawResponse,
			ExtractedJSON: ne.ExtractedJSON,
		}
	case errors.Is(err, ErrQuotaExceeded):
		return ErrorPayload{Error: MsgAIQuota}
	case errors.As(err, &te):
		return ErrorPayload{Error: MsgAIUnavailable}
	case errors.As(err, &se):
		return ErrorPayload{Error: MsgStorageFailed}
	default:
		return ErrorPayload{Error: MsgInternal}
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
