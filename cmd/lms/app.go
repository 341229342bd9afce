package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"lms-client/internal/apiclient"
	"lms-client/internal/auth"
	"lms-client/internal/certificate"
	"lms-client/internal/checkout"
	"lms-client/internal/config"
	"lms-client/internal/coupon"
	"lms-client/internal/database"
	"lms-client/internal/loopback"
	"lms-client/internal/repository"
	"lms-client/internal/service"
	"lms-client/internal/upload"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// app holds everything a command needs.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	in     *bufio.Reader

	db      *gorm.DB
	session *auth.Session
	client  *apiclient.Client

	auth         service.AuthService
	courses      service.CourseService
	progress     service.ProgressService
	promos       service.PromoService
	payments     service.PaymentService
	enrollments  service.EnrollmentService
	admin        service.AdminService
	certificates service.CertificateService
	coupons      coupon.Validator
	uploader     *upload.Uploader
	checkout     *checkout.Flow

	readPassword func() (string, error)
	now          func() time.Time
}

// streams are the process's standard streams; tests replace them.
type streams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// widgetOverride lets tests drive checkout without a browser.
var widgetOverride checkout.Widget

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, std streams) (*app, error) {
	// Initialize local state store
	db, err := database.Open(ctx, cfg.State.DSN, database.DefaultPoolConfig(cfg.State.DSN), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open local state: %w", err)
	}

	store, err := repository.NewStore(ctx, db)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to prepare local state: %w", err)
	}

	// Restore the session before any call so an expired token is never sent
	session := auth.NewSession(store.Sessions, logger)
	if err := session.Restore(ctx); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	client := apiclient.New(apiclient.Config{
		BaseURL: cfg.API.ResolveBaseURL(),
		Timeout: cfg.API.Timeout,
	}, session, logger)

	couponValidator := coupon.NewValidator(logger)
	payments := service.NewPaymentService(client, logger)
	enrollments := service.NewEnrollmentService(client, session, logger)
	promos := service.NewPromoService(client, logger)

	var widget checkout.Widget = loopback.NewWidget(cfg.Callback, cfg.Payment.ScriptURL, loopback.BrowserOpener(std.stderr), logger)
	if widgetOverride != nil {
		widget = widgetOverride
	}

	verifier := checkout.NewVerifier(payments, checkout.VerifyPolicy{
		MaxRetries: cfg.Payment.VerifyMaxRetries,
		Backoff:    cfg.Payment.VerifyBackoff,
		Timeout:    cfg.Payment.VerifyTimeout,
	}, logger)

	a := &app{
		cfg:          cfg,
		logger:       logger,
		stdin:        std.stdin,
		stdout:       std.stdout,
		stderr:       std.stderr,
		db:           db,
		session:      session,
		client:       client,
		auth:         service.NewAuthService(client, session, logger),
		courses:      service.NewCourseService(client, session, logger),
		progress:     service.NewProgressService(client, session, store.WatchedLessons, store.ReviewPrompts, logger),
		promos:       promos,
		payments:     payments,
		enrollments:  enrollments,
		admin:        service.NewAdminService(client, couponValidator, logger),
		certificates: service.NewCertificateService(client, session, logger),
		coupons:      couponValidator,
		uploader:     upload.NewUploader(client, logger),
		checkout: checkout.NewFlow(checkout.Dependencies{
			Payments:    payments,
			Enrollments: enrollments,
			Promos:      promos,
			Verifier:    verifier,
			Widget:      widget,
			BrandName:   "Ryma Academy",
		}, logger),
		now: time.Now,
	}
	a.readPassword = func() (string, error) { return a.promptPassword() }

	return a, nil
}

// Close releases the local state store.
func (a *app) Close() error {
	return database.Close(a.db)
}

// certificateSink picks the archive bucket when requested and configured,
// otherwise a local directory.
func (a *app) certificateSink(ctx context.Context, dir string, toS3 bool) (certificate.Sink, error) {
	if !toS3 {
		return certificate.NewFileSink(dir, a.logger), nil
	}
	if !a.cfg.S3.Enabled {
		return nil, fmt.Errorf("S3 archive requested but S3_ENABLED is false")
	}
	return certificate.NewS3Sink(ctx, a.cfg.S3.Bucket, a.cfg.S3.Region, a.cfg.S3.Prefix, a.logger)
}

// couponLoader reads import files from S3 with a local fallback when S3 is
// enabled, and from the local file system otherwise.
func (a *app) couponLoader(ctx context.Context) coupon.Loader {
	fileLoader := coupon.NewFileLoader(a.logger)
	if !a.cfg.S3.Enabled {
		a.logger.Debug().Msg("using local file system for coupon files (S3 disabled)")
		return fileLoader
	}

	s3Loader, err := coupon.NewS3Loader(ctx, a.cfg.S3.Bucket, a.cfg.S3.Region, a.logger)
	if err != nil {
		a.logger.Warn().
			Err(err).
			Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader
	}
	return coupon.NewFallbackLoader(s3Loader, fileLoader, a.cfg.S3.Prefix, true, a.logger)
}

func defaultDownloadDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return os.TempDir()
}
