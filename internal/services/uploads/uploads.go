// Package uploads hands out object keys and upload targets for images.
// Profile photos live under profile-photos/<subject>.<ext>.
package uploads

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/fastprodman/artmarket/internal/apperr"
)

const (
	ProfilePrefix       = "profile-photos"
	DefaultSubject      = "user"
	DefaultContentType  = "application/octet-stream"
	DefaultPresignTTL   = 900 * time.Second
	MaxProfileImageSize = 5 << 20
)

var ErrNotConfigured = fmt.Errorf("%w: object store not configured", apperr.ErrInternal)

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ObjectStore is satisfied by *objstore.Store.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
}

type Service struct {
	store ObjectStore
	ttl   time.Duration
}

// New returns a gateway over store. A nil store yields a gateway whose
// operations fail with ErrNotConfigured; ttl <= 0 means DefaultPresignTTL.
func New(store ObjectStore, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultPresignTTL
	}

	return &Service{store: store, ttl: ttl}
}

// DeriveKey maps a subject and an image content type to a storage key.
func DeriveKey(subject, contentType string) (string, error) {
	ext, err := extensionFor(contentType)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s.%s", ProfilePrefix, sanitizeSubject(subject), ext), nil
}

// IssueUploadTarget presigns a PUT for key. ttl <= 0 uses the service TTL.
func (s *Service) IssueUploadTarget(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	if s.store == nil {
		return "", ErrNotConfigured
	}

	if ttl <= 0 {
		ttl = s.ttl
	}

	url, err := s.store.PresignPut(ctx, key, contentType, ttl)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrInternal, err)
	}

	return url, nil
}

// UploadProfileImage stores the image for subject and returns its key.
func (s *Service) UploadProfileImage(ctx context.Context, subject, contentType string, body io.Reader, size int64) (string, error) {
	if size <= 0 || size > MaxProfileImageSize {
		return "", fmt.Errorf("%w: image must be between 1 byte and %d bytes", apperr.ErrInvalidInput, MaxProfileImageSize)
	}

	key, err := DeriveKey(subject, contentType)
	if err != nil {
		return "", err
	}

	if s.store == nil {
		return "", ErrNotConfigured
	}

	err = s.store.Put(ctx, key, normalizeType(contentType), body, size)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrInternal, err)
	}

	slog.InfoContext(ctx, "profile image uploaded", "key", key, "size", size)

	return key, nil
}

// PresignProfile returns an upload URL and the key the image will live at.
func (s *Service) PresignProfile(ctx context.Context, subject, contentType string) (string, string, error) {
	key, err := DeriveKey(subject, contentType)
	if err != nil {
		return "", "", err
	}

	url, err := s.IssueUploadTarget(ctx, key, normalizeType(contentType), 0)
	if err != nil {
		return "", "", err
	}

	return url, key, nil
}

// PresignGeneric presigns folder/filename. The filename must be a single
// path segment.
func (s *Service) PresignGeneric(ctx context.Context, folder, filename, contentType string) (string, string, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	filename = strings.TrimSpace(filename)

	if folder == "" || filename == "" {
		return "", "", fmt.Errorf("%w: folder and filename are required", apperr.ErrInvalidInput)
	}

	if strings.Contains(filename, "/") || strings.Contains(filename, "..") || strings.Contains(folder, "..") {
		return "", "", fmt.Errorf("%w: filename must not contain path separators", apperr.ErrInvalidInput)
	}

	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = DefaultContentType
	}

	key := folder + "/" + filename

	url, err := s.IssueUploadTarget(ctx, key, contentType, 0)
	if err != nil {
		return "", "", err
	}

	return url, key, nil
}

func extensionFor(contentType string) (string, error) {
	ext, ok := extensions[normalizeType(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %q, expected image/jpeg, image/png or image/webp",
			apperr.ErrUnsupportedMediaType, contentType)
	}

	return ext, nil
}

// normalizeType drops parameters and case: "Image/PNG; q=1" -> "image/png".
func normalizeType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}

	return mt
}

func sanitizeSubject(subject string) string {
	var b strings.Builder

	for _, r := range strings.ToLower(subject) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return DefaultSubject
	}

	return b.String()
}
