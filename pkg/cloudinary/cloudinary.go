package cloudinary

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Service stores and deletes blobs in a Cloudinary bucket. Keys may contain
// slashes; Cloudinary treats them as folder separators.
type Service struct {
	client *cloudinary.Cloudinary
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: cld,
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload sends the blob to Cloudinary under the given key and returns a
// secure retrieval URL.
func (s *Service) Upload(ctx context.Context, key string, reader io.Reader) (string, error) {
	publicID := sanitizeKey(key)

	params := uploader.UploadParams{
		PublicID:     publicID,
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("file uploaded to cloudinary")

	return result.SecureURL, nil
}

// Delete removes a previously uploaded blob. Missing assets are not an error.
func (s *Service) Delete(ctx context.Context, key string) error {
	publicID := sanitizeKey(key)

	_, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to destroy asset: %w", err)
	}

	s.logger.Info().Str("public_id", publicID).Msg("file deleted from cloudinary")

	return nil
}

func sanitizeKey(key string) string {
	parts := strings.Split(strings.Trim(key, "/"), "/")
	for i, part := range parts {
		parts[i] = strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
				return r
			}
			if r == '-' || r == '_' || r == '.' {
				return r
			}
			return '-'
		}, part)
	}

	return strings.Join(parts, "/")
}
