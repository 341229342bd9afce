package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ProgressFunc receives the number of file bytes sent so far and the total.
type ProgressFunc func(sent, total int64)

// Gateway is the part of the API client the uploader needs.
type Gateway interface {
	Upload(ctx context.Context, path string, body io.Reader, contentType string, out any) error
}

// Result is the backend's answer to an upload.
type Result struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// Uploader validates files and streams them as multipart/form-data.
type Uploader struct {
	gateway Gateway
	logger  zerolog.Logger
}

// NewUploader creates a new uploader.
func NewUploader(gateway Gateway, logger zerolog.Logger) *Uploader {
	return &Uploader{
		gateway: gateway,
		logger:  logger.With().Str("component", "uploader").Logger(),
	}
}

// UploadFile validates the file at path against the kind's policy and posts
// it to /upload/<kind>. onProgress may be nil.
func (u *Uploader) UploadFile(ctx context.Context, kind Kind, path string, onProgress ProgressFunc) (*Result, error) {
	policy, err := PolicyFor(kind)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	mimeType, err := policy.Validate(file, info.Size())
	if err != nil {
		u.logger.Warn().Err(err).Str("file", path).Msg("upload rejected")
		return nil, err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind %s: %w", path, err)
	}

	body, contentType := multipartStream(file, filepath.Base(path), mimeType, info.Size(), onProgress)
	defer body.Close()

	var result Result
	endpoint := "/upload/" + string(kind)
	if err := u.gateway.Upload(ctx, endpoint, body, contentType, &result); err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	u.logger.Info().
		Str("file", path).
		Str("kind", string(kind)).
		Int64("size", info.Size()).
		Str("url", result.URL).
		Msg("file uploaded")

	return &result, nil
}

// multipartStream encodes src as the "file" field without buffering it in memory.
func multipartStream(src io.Reader, filename, mimeType string, size int64, onProgress ProgressFunc) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
		header.Set("Content-Type", mimeType)

		part, err := mw.CreatePart(header)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, &progressReader{r: src, total: size, onProgress: onProgress}); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	return pr, mw.FormDataContentType()
}

type progressReader struct {
	r          io.Reader
	sent       int64
	total      int64
	onProgress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.onProgress != nil {
			p.onProgress(p.sent, p.total)
		}
	}
	return n, err
}
