package coupon

import (
	"context"
	"errors"
	"fmt"

	"lms-client/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultImportConcurrency bounds concurrent create calls during an import.
const DefaultImportConcurrency = 4

// Status is the outcome of one import line.
type Status string

const (
	StatusCreated Status = "created"
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	StatusFailed  Status = "failed"
)

// Outcome reports what happened to one line.
type Outcome struct {
	Line     int
	Code     string
	Status   Status
	Message  string
	CouponID string
}

// Report summarises an import.
type Report struct {
	Source   string
	Outcomes []Outcome
	Created  int
	Valid    int
	Invalid  int
	Failed   int
}

// Importer loads, validates and creates coupons in bulk.
type Importer struct {
	loader      Loader
	validator   Validator
	creator     Creator
	concurrency int
	logger      zerolog.Logger
}

// NewImporter creates a new coupon importer.
func NewImporter(loader Loader, validator Validator, creator Creator, logger zerolog.Logger) *Importer {
	return &Importer{
		loader:      loader,
		validator:   validator,
		creator:     creator,
		concurrency: DefaultImportConcurrency,
		logger:      logger.With().Str("component", "coupon-importer").Logger(),
	}
}

// WithConcurrency overrides the number of concurrent create calls.
func (i *Importer) WithConcurrency(n int) *Importer {
	if n > 0 {
		i.concurrency = n
	}
	return i
}

// Import loads path and creates every valid draft. Invalid or failed lines
// are recorded in the report and never abort the import. With dryRun set,
// drafts are validated only. An error is returned only when the file cannot
// be loaded or ctx is cancelled.
func (i *Importer) Import(ctx context.Context, path string, dryRun bool) (*Report, error) {
	batch, err := i.loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load coupon import %s: %w", path, err)
	}

	outcomes := make([]Outcome, len(batch.Lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)

	for idx, line := range batch.Lines {
		outcome := &outcomes[idx]
		outcome.Line = line.Number

		if line.Err != nil {
			outcome.Status = StatusInvalid
			outcome.Message = line.Err.Error()
			continue
		}

		Normalise(line.Draft)
		outcome.Code = line.Draft.Code

		if err := i.validator.Validate(line.Draft); err != nil {
			outcome.Status = StatusInvalid
			outcome.Message = err.Error()
			continue
		}

		if dryRun {
			outcome.Status = StatusValid
			continue
		}

		draft := line.Draft
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			coupon, err := i.creator.CreateCoupon(gctx, draft)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				outcome.Status = StatusFailed
				outcome.Message = err.Error()
				return nil
			}
			outcome.Status = StatusCreated
			outcome.CouponID = coupon.ID
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("coupon import cancelled: %w", err)
	}

	report := &Report{Source: batch.Source, Outcomes: outcomes}
	for _, o := range outcomes {
		switch o.Status {
		case StatusCreated:
			report.Created++
		case StatusValid:
			report.Valid++
		case StatusInvalid:
			report.Invalid++
		case StatusFailed:
			report.Failed++
		}
	}

	i.logger.Info().
		Str("source", report.Source).
		Int("created", report.Created).
		Int("valid", report.Valid).
		Int("invalid", report.Invalid).
		Int("failed", report.Failed).
		Bool("dry_run", dryRun).
		Msg("coupon import finished")

	return report, nil
}

// CreatorFunc adapts a function to the Creator interface.
type CreatorFunc func(ctx context.Context, draft *model.CouponDraft) (*model.Coupon, error)

// CreateCoupon calls f.
func (f CreatorFunc) CreateCoupon(ctx context.Context, draft *model.CouponDraft) (*model.Coupon, error) {
	return f(ctx, draft)
}
