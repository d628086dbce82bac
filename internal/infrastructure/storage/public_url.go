// Package storage resolves menu image URLs and issues presigned uploads.
package storage

import (
	"context"
	"strings"
	"time"

	catalogapp "github.com/restaurant/backend/internal/application/catalog"
	"github.com/restaurant/backend/internal/domain/shared"
)

// ErrUploadsDisabled is returned when no object store is configured
var ErrUploadsDisabled = shared.NewDomainError("UPLOADS_DISABLED", "Image uploads are not configured")

// publicURL prefixes key with base unless key is already an absolute URL
func publicURL(base, key string) string {
	if key == "" || strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	if base == "" {
		return key
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}

// StaticImageStorage builds image URLs from a fixed base and cannot accept uploads.
type StaticImageStorage struct {
	baseURL string
}

// NewStaticImageStorage creates a new StaticImageStorage
func NewStaticImageStorage(baseURL string) *StaticImageStorage {
	return &StaticImageStorage{baseURL: baseURL}
}

// PublicURL implements catalog.ImageStorage
func (s *StaticImageStorage) PublicURL(key string) string {
	return publicURL(s.baseURL, key)
}

// GenerateUploadURL always fails with ErrUploadsDisabled
func (s *StaticImageStorage) GenerateUploadURL(context.Context, string, string, time.Duration) (string, time.Time, error) {
	return "", time.Time{}, ErrUploadsDisabled
}

var _ catalogapp.ImageStorage = (*StaticImageStorage)(nil)
