package interfaces

import (
	"context"

	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
)

// ReleaseStore defines the durable record of releases, analyses and
// notification history. All operations are atomic per call; no transaction
// spans components.
type ReleaseStore interface {
	// PutRelease upserts the record for version, replacing any existing row
	// wholesale and refreshing updated_at.
	PutRelease(ctx context.Context, version string, data *model.Release, analysis *model.Analysis) error

	// GetRelease returns the record for version, or a
	// types.ErrTagMissingVersion tagged error when absent.
	GetRelease(ctx context.Context, version string) (*model.StoredRelease, error)

	// GetLatestRelease returns the record with the maximum created_at.
	GetLatestRelease(ctx context.Context) (*model.StoredRelease, error)

	// ListReleases returns up to limit records, most recent first. A limit of
	// zero or less applies the default bound of 100.
	ListReleases(ctx context.Context, limit int) ([]*model.ReleaseSummary, error)

	// SearchReleases substring-matches query against version and serialized
	// analysis text, bound to 50 results, most recent first.
	SearchReleases(ctx context.Context, query string) ([]*model.ReleaseSummary, error)

	// RecordNotification appends one notification log entry.
	RecordNotification(ctx context.Context, version, channel string) error

	// NotificationHistory returns entries for version, or the global history
	// bound to 100 when version is empty. Most recent first.
	NotificationHistory(ctx context.Context, version string) ([]*model.NotificationRecord, error)

	// Stats summarizes the store.
	Stats(ctx context.Context) (*model.StoreStats, error)

	Close() error
}
