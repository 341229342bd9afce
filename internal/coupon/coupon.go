// Package coupon validates coupon drafts and bulk-imports them from
// gzipped JSON-lines files.
package coupon

import (
	"context"

	"lms-client/internal/model"
)

// Validator checks a coupon draft before it is sent to the backend.
type Validator interface {
	// Validate returns nil or a *model.ValidationError with one message per
	// failing field.
	Validate(draft *model.CouponDraft) error
}

// Line is one decoded line of an import file.
type Line struct {
	// Number is 1-based and counts blank lines too.
	Number int
	Draft  *model.CouponDraft
	// Err is set when the line is not valid JSON.
	Err error
}

// Batch is the content of one import file.
type Batch struct {
	Source string
	Lines  []Line
}

// Loader defines the interface for loading coupon import files.
type Loader interface {
	// Load reads a gzipped JSON-lines file of coupon drafts.
	Load(ctx context.Context, path string) (*Batch, error)
}

// Creator persists a validated draft.
type Creator interface {
	CreateCoupon(ctx context.Context, draft *model.CouponDraft) (*model.Coupon, error)
}
