package storage

import (
	"context"
	"fmt"
	"mime"
	"slices"
	"strings"
	"time"

	apperrors "github.com/easystream/server/internal/shared/errors"
	"github.com/easystream/server/internal/shared/metrics"
	"go.uber.org/zap"
)

// Signer abstracts the storage provider's signing primitive so tests can
// substitute a stub.
type Signer interface {
	PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (*PresignedRequest, error)
	PresignDownload(ctx context.Context, key string, expiry time.Duration) (*PresignedRequest, error)
}

// Prober checks object existence in the store.
type Prober interface {
	ObjectExists(ctx context.Context, key string) (bool, error)
}

var (
	_ Signer = (*Client)(nil)
	_ Prober = (*Client)(nil)
)

// ServiceConfig holds presign service configuration.
type ServiceConfig struct {
	// PublicDomain serves uploaded objects; public URLs are built by
	// prefixing it to the object key.
	PublicDomain string
	// Expiry bounds grant validity. The server keeps no record of issued
	// grants; expiry is enforced entirely by the store's signature check.
	Expiry time.Duration
}

// Service issues presigned upload grants.
type Service struct {
	signer  Signer
	cfg     *ServiceConfig
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewService creates a new presign service.
func NewService(signer Signer, cfg *ServiceConfig, logger *zap.Logger, m *metrics.Metrics) *Service {
	if cfg.Expiry <= 0 {
		cfg.Expiry = time.Hour
	}
	return &Service{
		signer:  signer,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
	}
}

// UploadGrant is the ephemeral result of presign issuance. It is never
// persisted; the client holds it until the upload completes or it expires.
type UploadGrant struct {
	URL       string    `json:"url"`
	PublicURL string    `json:"public_url"`
	ObjectKey string    `json:"object_key"`
	FileType  string    `json:"file_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DownloadGrant is a time-boxed URL for reading a private object.
type DownloadGrant struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueUploadGrant validates the request, generates a fresh object key and
// asks the signing primitive for a PUT-method, single-object, content-type
// bound signature.
func (s *Service) IssueUploadGrant(ctx context.Context, fileName, fileType, fileCategory string) (*UploadGrant, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, apperrors.MissingField("file_name")
	}

	if fileCategory == "" {
		fileCategory = string(CategoryUploads)
	}
	category, err := ParseCategory(fileCategory)
	if err != nil {
		return nil, apperrors.InvalidEnum("file_category", Categories)
	}

	if fileType == "" {
		fileType = "application/octet-stream"
	}
	mediaType, _, err := mime.ParseMediaType(fileType)
	if err != nil || !strings.Contains(mediaType, "/") {
		return nil, apperrors.ValidationError(fmt.Sprintf("file_type %q is not a valid MIME type", fileType))
	}

	// Category/MIME mismatch is advisory: the store, not this server, is the
	// upload path, so the content type is only echoed into the signature.
	if allowed := category.AllowedTypes(); allowed != nil && !slices.Contains(allowed, mediaType) {
		s.logger.Warn("file type outside category allow-list",
			zap.String("file_type", mediaType),
			zap.String("file_category", string(category)),
		)
	}

	key, err := GenerateKey(fileName, category)
	if err != nil {
		return nil, apperrors.MissingField("file_name")
	}

	signed, err := s.signer.PresignUpload(ctx, key, mediaType, s.cfg.Expiry)
	if err != nil {
		s.recordGrant(category, "error")
		s.logger.Error("presign upload failed", zap.String("object_key", key), zap.Error(err))
		return nil, apperrors.StorageUnavailable(err)
	}

	s.recordGrant(category, "ok")
	s.logger.Info("issued upload grant",
		zap.String("object_key", key),
		zap.String("file_category", string(category)),
		zap.Time("expires_at", signed.ExpiresAt),
	)

	return &UploadGrant{
		URL:       signed.URL,
		PublicURL: s.PublicURL(key),
		ObjectKey: key,
		FileType:  mediaType,
		ExpiresAt: signed.ExpiresAt,
	}, nil
}

// IssueDownloadGrant presigns a GET for a stored object.
func (s *Service) IssueDownloadGrant(ctx context.Context, key string) (*DownloadGrant, error) {
	if strings.TrimSpace(key) == "" {
		return nil, apperrors.MissingField("object_key")
	}

	signed, err := s.signer.PresignDownload(ctx, key, s.cfg.Expiry)
	if err != nil {
		s.logger.Error("presign download failed", zap.String("object_key", key), zap.Error(err))
		return nil, apperrors.StorageUnavailable(err)
	}

	return &DownloadGrant{
		URL:       signed.URL,
		ExpiresAt: signed.ExpiresAt,
	}, nil
}

// PublicURL resolves an object key to its public URL. Keys that are already
// absolute URLs pass through untouched.
func (s *Service) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	return fmt.Sprintf("https://%s/%s", s.cfg.PublicDomain, key)
}

func (s *Service) recordGrant(category UploadCategory, status string) {
	if s.metrics != nil {
		s.metrics.PresignGrantsTotal.WithLabelValues(string(category), status).Inc()
	}
}
