package interfaces

import (
	"context"

	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
)

// ReleaseFeed defines read-only access to the upstream release feed.
type ReleaseFeed interface {
	// ListReleases fetches the current upstream release list in feed order.
	ListReleases(ctx context.Context) ([]*model.Release, error)

	// GetRelease fetches a single release by version regardless of store
	// state. Returns a types.ErrTagMissingVersion tagged error when upstream
	// has no such version.
	GetRelease(ctx context.Context, version string) (*model.Release, error)
}
