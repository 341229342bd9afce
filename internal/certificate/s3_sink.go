package certificate

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// maxCertificateBytes bounds the in-memory copy taken before upload.
const maxCertificateBytes = 20 * 1024 * 1024

// ObjectPutter is the subset of the S3 client the sink uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink archives certificates in an S3 bucket.
type S3Sink struct {
	client ObjectPutter
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Sink creates an S3 sink using the default AWS credential chain.
func NewS3Sink(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (*S3Sink, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return NewS3SinkWithClient(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

// NewS3SinkWithClient creates an S3 sink around an existing client.
func NewS3SinkWithClient(client ObjectPutter, bucket, prefix string, logger zerolog.Logger) *S3Sink {
	return &S3Sink{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.With().Str("component", "certificate-s3-sink").Logger(),
	}
}

// Store uploads the certificate to <prefix>certificates/certificate-<id>.pdf
// and returns its s3:// URI.
func (s *S3Sink) Store(ctx context.Context, certificateID string, body io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxCertificateBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read certificate %s: %w", certificateID, err)
	}
	if len(data) > maxCertificateBytes {
		return "", fmt.Errorf("certificate %s exceeds %d bytes", certificateID, maxCertificateBytes)
	}

	key := s.prefix + "certificates/" + FileName(certificateID)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/pdf"),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to archive certificate")
		return "", fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", s.bucket, key, err)
	}

	location := "s3://" + s.bucket + "/" + key
	s.logger.Info().
		Str("certificate_id", certificateID).
		Str("location", location).
		Int("bytes", len(data)).
		Msg("certificate archived")

	return location, nil
}
