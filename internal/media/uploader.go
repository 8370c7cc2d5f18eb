// Package media stores product images in S3.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 << 20

// allowedTypes maps accepted image content types to the stored extension.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Uploader stores and removes images.
type Uploader interface {
	// Upload validates and stores an image, returning its id and public URL.
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (*model.Image, error)

	// Delete removes a previously uploaded image by id.
	Delete(ctx context.Context, id string) error
}

// S3API is the subset of the S3 client used by the uploader.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// s3Uploader implements Uploader on an S3 bucket.
type s3Uploader struct {
	client        S3API
	bucket        string
	prefix        string
	publicBaseURL string
	logger        zerolog.Logger
}

// NewS3Uploader loads the default AWS configuration and creates an S3-backed uploader.
func NewS3Uploader(ctx context.Context, cfg config.S3Config, logger zerolog.Logger) (Uploader, error) {
	logger = logger.With().Str("component", "s3-uploader").Logger()

	// Load AWS configuration
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info().
		Str("bucket", cfg.Bucket).
		Str("region", cfg.Region).
		Msg("S3 uploader initialised")

	return NewUploader(client, cfg, logger), nil
}

// NewUploader creates an uploader on an existing S3 client.
func NewUploader(client S3API, cfg config.S3Config, logger zerolog.Logger) Uploader {
	base := cfg.PublicBaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &s3Uploader{
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        cfg.Prefix,
		publicBaseURL: strings.TrimRight(base, "/"),
		logger:        logger,
	}
}

// Upload accepts the declared content type only if the data sniffs as the
// same type.
func (u *s3Uploader) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*model.Image, error) {
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, model.ErrValidationFailed.WithMessage("Only JPEG, PNG, WebP and GIF images are allowed")
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, model.ErrValidationFailed.WithMessage("Image file is empty")
	}
	if len(data) > MaxImageSize {
		return nil, model.ErrValidationFailed.WithMessage("Image must be at most 5 MB")
	}

	if sniffed := http.DetectContentType(data); sniffed != contentType {
		return nil, model.ErrValidationFailed.WithMessage("Image content does not match its declared type")
	}

	id := uuid.NewString() + ext
	key := u.prefix + id

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		u.logger.Error().
			Err(err).
			Str("bucket", u.bucket).
			Str("key", key).
			Msg("failed to put object to S3")
		return nil, fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", u.bucket, key, err)
	}

	u.logger.Info().
		Str("key", key).
		Str("original_name", path.Base(filename)).
		Int("bytes", len(data)).
		Msg("image uploaded")

	return &model.Image{ID: id, URL: u.publicBaseURL + "/" + key}, nil
}

func (u *s3Uploader) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return model.ErrValidationFailed.WithMessage("Invalid image id")
	}

	key := u.prefix + id
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		u.logger.Error().Err(err).Str("key", key).Msg("failed to delete object from S3")
		return fmt.Errorf("failed to delete object from S3 (bucket=%s, key=%s): %w", u.bucket, key, err)
	}

	u.logger.Info().Str("key", key).Msg("image deleted")
	return nil
}

// validID accepts only ids produced by Upload: a UUID plus a known extension.
func validID(id string) bool {
	ext := path.Ext(id)
	known := false
	for _, e := range allowedTypes {
		if e == ext {
			known = true
			break
		}
	}
	if !known {
		return false
	}
	_, err := uuid.Parse(strings.TrimSuffix(id, ext))
	return err == nil
}
