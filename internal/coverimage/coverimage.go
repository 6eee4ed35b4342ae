// Package coverimage uploads and replaces per-event cover images under
// monotonically increasing version tags.
//
// A record at version vN keeps its object at vN. Replacing it uploads v(N+1) and
// deletes v(N-1), so the object the previous URL points at stays readable for one
// more generation.
package coverimage

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/Black-And-White-Club/clubhouse/app/shared/apperrors"
	"github.com/Black-And-White-Club/clubhouse/internal/objectstore"
	"github.com/Black-And-White-Club/clubhouse/internal/observability/attr"
)

// InitialVersion is the version of an event that never had an image.
const InitialVersion = "v0"

// CleanupScheduler retries deleting an object that could not be removed inline.
type CleanupScheduler interface {
	ScheduleCoverCleanup(ctx context.Context, objectPath string) error
}

// Target identifies the event whose image is being replaced.
type Target struct {
	TimeframeID string
	EventID     string
	Version     string
}

// Result is what the caller persists on the event.
type Result struct {
	URL     string
	Version string
	Changed bool
}

// Manager owns the object layout {env}/{timeframe}/{event}/v{N}.
type Manager struct {
	store     objectstore.Store
	envPrefix string
	cleanup   CleanupScheduler
	logger    *slog.Logger
}

// NewManager creates a Manager. cleanup may be nil.
func NewManager(store objectstore.Store, envPrefix string, cleanup CleanupScheduler, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:     store,
		envPrefix: strings.Trim(envPrefix, "/"),
		cleanup:   cleanup,
		logger:    logger,
	}
}

// IsStoredURL reports whether image already points into the store.
func (m *Manager) IsStoredURL(image string) bool {
	prefix := m.store.URLPrefix()
	return prefix != "" && strings.HasPrefix(image, prefix)
}

// Replace uploads image as the next version of target. An image that is already
// a stored URL is returned unchanged.
func (m *Manager) Replace(ctx context.Context, target Target, image string) (Result, error) {
	if m.IsStoredURL(image) {
		return Result{URL: image, Version: target.Version, Changed: false}, nil
	}

	data, contentType, err := DecodeImage(image)
	if err != nil {
		return Result{}, err
	}

	current := ParseVersion(target.Version)
	next := FormatVersion(current + 1)
	prev := max(current-1, 0)

	url, err := m.store.Put(ctx, m.ObjectPath(target.TimeframeID, target.EventID, current+1), data, contentType)
	if err != nil {
		return Result{}, apperrors.Upstream("ReplaceCoverImage", "failed to upload cover image", err)
	}

	m.deleteBestEffort(ctx, m.ObjectPath(target.TimeframeID, target.EventID, prev))

	return Result{URL: url, Version: next, Changed: true}, nil
}

// Remove deletes the objects of target's current and previous versions.
func (m *Manager) Remove(ctx context.Context, target Target) {
	current := ParseVersion(target.Version)
	if current == 0 {
		return
	}
	m.deleteBestEffort(ctx, m.ObjectPath(target.TimeframeID, target.EventID, current))
	if current > 1 {
		m.deleteBestEffort(ctx, m.ObjectPath(target.TimeframeID, target.EventID, current-1))
	}
}

func (m *Manager) deleteBestEffort(ctx context.Context, objectPath string) {
	err := m.store.Delete(ctx, objectPath)
	if err == nil {
		return
	}
	m.logger.WarnContext(ctx, "Failed to delete superseded cover image",
		attr.ExtractCorrelationID(ctx),
		attr.String("path", objectPath),
		attr.Error(err),
	)
	if m.cleanup == nil {
		return
	}
	if err := m.cleanup.ScheduleCoverCleanup(ctx, objectPath); err != nil {
		m.logger.ErrorContext(ctx, "Failed to schedule cover image cleanup",
			attr.String("path", objectPath),
			attr.Error(err),
		)
	}
}

// ObjectPath is the storage path of one version of an event's image.
func (m *Manager) ObjectPath(timeframeID, eventID string, version int) string {
	parts := []string{timeframeID, eventID, FormatVersion(version)}
	if m.envPrefix != "" {
		parts = append([]string{m.envPrefix}, parts...)
	}
	return path.Join(parts...)
}

// ParseVersion reads "v<N>". Anything else is version 0.
func ParseVersion(v string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(v), "v"))
	if err != nil || n < 0 || !strings.HasPrefix(strings.TrimSpace(v), "v") {
		return 0
	}
	return n
}

// FormatVersion writes "v<N>".
func FormatVersion(n int) string {
	return "v" + strconv.Itoa(n)
}

// DecodeImage accepts a data URI or raw base64 and returns the bytes and their
// content type.
func DecodeImage(image string) ([]byte, string, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, "", apperrors.BadRequest("DecodeImage", "image is empty")
	}

	contentType := ""
	payload := image
	if strings.HasPrefix(image, "data:") {
		meta, body, ok := strings.Cut(strings.TrimPrefix(image, "data:"), ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return nil, "", apperrors.BadRequest("DecodeImage", "image data URI must be base64 encoded")
		}
		contentType = strings.TrimSuffix(meta, ";base64")
		payload = body
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, "", apperrors.BadRequest("DecodeImage", fmt.Sprintf("image is not valid base64: %v", err))
	}
	if len(data) == 0 {
		return nil, "", apperrors.BadRequest("DecodeImage", "image is empty")
	}

	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", apperrors.BadRequest("DecodeImage", "payload is not an image: "+contentType)
	}
	return data, contentType, nil
}
