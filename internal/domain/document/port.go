package document

import "context"

// Extractor turns document bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Archive port (penyimpanan dokumen asli yang diupload)
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
