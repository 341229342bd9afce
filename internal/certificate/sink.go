// Package certificate stores downloaded certificate PDFs.
package certificate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog"
)

// Sink is a destination for a downloaded certificate.
type Sink interface {
	// Store writes the certificate body and returns its location.
	Store(ctx context.Context, certificateID string, body io.Reader) (string, error)
}

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileName returns the file name a certificate is saved under.
func FileName(certificateID string) string {
	return "certificate-" + unsafeIDChars.ReplaceAllString(certificateID, "_") + ".pdf"
}

// FileSink writes certificates into a directory.
type FileSink struct {
	dir    string
	logger zerolog.Logger
}

// NewFileSink creates a sink writing into dir.
func NewFileSink(dir string, logger zerolog.Logger) *FileSink {
	return &FileSink{
		dir:    dir,
		logger: logger.With().Str("component", "certificate-file-sink").Logger(),
	}
}

// Store writes the body to <dir>/certificate-<id>.pdf via a temporary file,
// so a failed download never leaves a truncated PDF behind.
func (s *FileSink) Store(ctx context.Context, certificateID string, body io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create certificate directory: %w", err)
	}

	target := filepath.Join(s.dir, FileName(certificateID))
	tmp, err := os.CreateTemp(s.dir, ".certificate-*.part")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, readerWithContext(ctx, body))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to write certificate %s: %w", certificateID, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to save certificate %s: %w", certificateID, err)
	}

	s.logger.Info().
		Str("certificate_id", certificateID).
		Str("path", target).
		Int64("bytes", written).
		Msg("certificate saved")

	return target, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}
