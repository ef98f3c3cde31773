package transcribe

import (
	"context"
)

// Transcriber converts an audio clip into text.
type Transcriber interface {
	TranscribeBytes(ctx context.Context, audio []byte, mimeType string) (string, error)
	Close() error
}
