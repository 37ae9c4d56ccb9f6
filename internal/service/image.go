package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/forkful/backend/config"
)

// ImageStore persists decoded image bytes and returns a public URL.
type ImageStore interface {
	Save(ctx context.Context, data []byte, name, contentType string) (string, error)
}

// S3Store uploads recipe images to the configured bucket.
type S3Store struct {
	cfg *config.S3Config
}

func NewS3Store(cfg *config.S3Config) *S3Store {
	return &S3Store{cfg: cfg}
}

func (s *S3Store) Save(ctx context.Context, data []byte, name, contentType string) (string, error) {
	key := "recipe-images/" + name
	_, err := s.cfg.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.cfg.BucketName, key)
	log.Debug().Str("url", url).Msg("uploaded recipe image to S3")
	return url, nil
}

// LocalStore writes images under a media directory, for development and
// tests where no bucket is configured.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func (s *LocalStore) Save(ctx context.Context, data []byte, name, contentType string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return strings.TrimSuffix(s.BaseURL, "/") + "/" + name, nil
}

// ImageService decodes inline base64 recipe images and hands them to the
// configured store.
type ImageService struct {
	store ImageStore
}

func NewImageService(store ImageStore) *ImageService {
	return &ImageService{store: store}
}

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SaveDataURI accepts a "data:image/<type>;base64,<payload>" value (or a
// bare base64 payload, treated as PNG), stores the decoded bytes and
// returns the public URL. Malformed input is a ValidationError.
func (s *ImageService) SaveDataURI(ctx context.Context, dataURI string) (string, error) {
	contentType := "image/png"
	payload := dataURI

	if strings.HasPrefix(dataURI, "data:") {
		header, rest, found := strings.Cut(dataURI, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return "", validationErrorf("image must be base64 encoded")
		}
		contentType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		payload = rest
	}

	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", validationErrorf("unsupported image type %q", contentType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", validationErrorf("invalid base64 image data")
	}
	if len(data) == 0 {
		return "", validationErrorf("empty image")
	}

	name := uuid.New().String() + ext
	return s.store.Save(ctx, data, name, contentType)
}
