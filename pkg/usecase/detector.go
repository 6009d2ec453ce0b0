package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/types"
)

type detector struct {
	feed  interfaces.ReleaseFeed
	store interfaces.ReleaseStore
}

var _ interfaces.DetectorUseCase = (*detector)(nil)

// NewDetector creates a DetectorUseCase. Both the feed and the store are
// only read; detection never mutates either side.
func NewDetector(feed interfaces.ReleaseFeed, store interfaces.ReleaseStore) interfaces.DetectorUseCase {
	return &detector{
		feed:  feed,
		store: store,
	}
}

// CheckForNewReleases returns upstream releases whose versions are absent
// from the store, preserving feed order.
func (uc *detector) CheckForNewReleases(ctx context.Context) ([]*model.Release, error) {
	logger := ctxlog.From(ctx)

	upstream, err := uc.feed.ListReleases(ctx)
	if err != nil {
		return nil, err
	}

	var fresh []*model.Release
	for _, release := range upstream {
		_, err := uc.store.GetRelease(ctx, release.Version)
		if err == nil {
			continue
		}
		if !goerr.HasTag(err, types.ErrTagMissingVersion) {
			return nil, goerr.Wrap(err, "failed to check store for release", goerr.V("version", release.Version))
		}
		fresh = append(fresh, release)
	}

	logger.Info("Checked upstream feed",
		"upstream_count", len(upstream),
		"new_count", len(fresh),
	)

	return fresh, nil
}

// FetchRelease fetches one release from upstream regardless of store state.
func (uc *detector) FetchRelease(ctx context.Context, version string) (*model.Release, error) {
	return uc.feed.GetRelease(ctx, version)
}
