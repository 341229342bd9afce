package service

import (
	"context"
	"fmt"
	"net/url"

	"lms-client/internal/certificate"
	"lms-client/internal/model"

	"github.com/rs/zerolog"
)

// certificateService implements CertificateService.
type certificateService struct {
	gateway Gateway
	session Session
	logger  zerolog.Logger
}

// NewCertificateService creates a new certificate service.
func NewCertificateService(gateway Gateway, session Session, logger zerolog.Logger) CertificateService {
	return &certificateService{
		gateway: gateway,
		session: session,
		logger:  logger.With().Str("service", "certificate").Logger(),
	}
}

func (s *certificateService) List(ctx context.Context) ([]model.Certificate, error) {
	if _, err := s.session.RequireUser(); err != nil {
		return nil, err
	}
	var certs []model.Certificate
	if err := s.gateway.Get(ctx, "/certificates", &certs); err != nil {
		return nil, err
	}
	return certs, nil
}

func (s *certificateService) Download(ctx context.Context, certificateID string, sink certificate.Sink) (string, error) {
	if _, err := s.session.RequireUser(); err != nil {
		return "", err
	}

	body, contentType, err := s.gateway.Download(ctx, "/certificates/"+url.PathEscape(certificateID)+"/download")
	if err != nil {
		return "", err
	}
	defer body.Close()

	location, err := sink.Store(ctx, certificateID, body)
	if err != nil {
		return "", fmt.Errorf("failed to store certificate %s: %w", certificateID, err)
	}

	s.logger.Info().
		Str("certificate_id", certificateID).
		Str("content_type", contentType).
		Str("location", location).
		Msg("certificate downloaded")

	return location, nil
}
