package coupon

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"lms-client/internal/model"

	"github.com/rs/zerolog"
)

// maxLineBytes bounds a single JSON line.
const maxLineBytes = 1024 * 1024

// fileLoader implements Loader for reading gzipped import files from disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based coupon loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "coupon-loader").Logger(),
	}
}

// Load reads a gzipped import file. The file is expected to contain one JSON
// coupon draft per line; blank lines are skipped.
func (l *fileLoader) Load(ctx context.Context, filePath string) (*Batch, error) {
	l.logger.Info().Str("file", filePath).Msg("loading coupon import file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open coupon import file")
		return nil, fmt.Errorf("failed to open coupon file %s: %w", filePath, err)
	}
	defer file.Close()

	batch, err := decodeBatch(ctx, file, filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("error reading coupon import file")
		return nil, err
	}

	l.logger.Info().
		Str("file", filePath).
		Int("lines", len(batch.Lines)).
		Msg("coupon import file loaded successfully")

	return batch, nil
}

// decodeBatch reads gzipped JSON lines from r. Malformed lines are kept with
// their error so the import report can point at them.
func decodeBatch(ctx context.Context, r io.Reader, source string) (*Batch, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	batch := &Batch{Source: source}

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		if lineNumber%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		line := Line{Number: lineNumber}
		var draft model.CouponDraft
		if err := json.Unmarshal([]byte(text), &draft); err != nil {
			line.Err = fmt.Errorf("line %d: invalid JSON: %w", lineNumber, err)
		} else {
			line.Draft = &draft
		}
		batch.Lines = append(batch.Lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading coupon file %s: %w", source, err)
	}

	return batch, nil
}
