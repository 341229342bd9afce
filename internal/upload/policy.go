// Package upload validates media files before they are sent to the backend.
package upload

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"lms-client/internal/model"

	"github.com/gabriel-vasile/mimetype"
)

const megabyte = 1024 * 1024

// Kind selects the backend endpoint and the policy applied.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Policy declares the size ceiling and MIME allow-list for one kind of upload.
type Policy struct {
	Kind         Kind
	MaxBytes     int64
	AllowedTypes []string
}

// ImagePolicy accepts images up to 5MB.
var ImagePolicy = Policy{
	Kind:         KindImage,
	MaxBytes:     5 * megabyte,
	AllowedTypes: []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
}

// VideoPolicy accepts videos up to 150MB.
var VideoPolicy = Policy{
	Kind:         KindVideo,
	MaxBytes:     150 * megabyte,
	AllowedTypes: []string{"video/mp4", "video/webm", "video/ogg", "video/quicktime"},
}

// PolicyFor returns the policy of a kind.
func PolicyFor(kind Kind) (Policy, error) {
	switch kind {
	case KindImage:
		return ImagePolicy, nil
	case KindVideo:
		return VideoPolicy, nil
	default:
		return Policy{}, fmt.Errorf("unknown upload kind %q", kind)
	}
}

// MaxMB is the size ceiling in whole megabytes.
func (p Policy) MaxMB() int64 {
	return p.MaxBytes / megabyte
}

// ValidateSize rejects files above the ceiling with a message naming the limit.
func (p Policy) ValidateSize(size int64) error {
	if size > p.MaxBytes {
		return model.NewDomainError(model.ErrCodeFileTooLarge,
			fmt.Sprintf("File size must be less than %dMB", p.MaxMB()))
	}
	return nil
}

// ValidateType rejects MIME types outside the allow-list.
func (p Policy) ValidateType(mimeType string) error {
	base, _, _ := strings.Cut(mimeType, ";")
	if !slices.Contains(p.AllowedTypes, strings.TrimSpace(strings.ToLower(base))) {
		return model.NewDomainError(model.ErrCodeFileTypeNotAllowed,
			fmt.Sprintf("Invalid file type %s. Allowed types: %s", base, strings.Join(p.AllowedTypes, ", ")))
	}
	return nil
}

// Validate checks size first, then sniffs the content type from r against
// the allow-list. It returns the matching allowed MIME type.
func (p Policy) Validate(r io.Reader, size int64) (string, error) {
	if err := p.ValidateSize(size); err != nil {
		return "", err
	}
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}
	for m := mt; m != nil; m = m.Parent() {
		for _, allowed := range p.AllowedTypes {
			if m.Is(allowed) {
				return allowed, nil
			}
		}
	}
	detected, _, _ := strings.Cut(mt.String(), ";")
	return "", p.ValidateType(detected)
}
