package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/types"
	"github.com/sadhugit/rancher-release-bot/pkg/infra/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "releases.db"))
	gt.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func testAnalysis(version string, severity model.Severity) *model.Analysis {
	return &model.Analysis{
		Version:     version,
		ReleaseType: model.ReleaseTypeMinor,
		Severity:    severity,
		Summary:     "Adds cluster autoscaler improvements",
		NewFeatures: []model.Feature{
			{Title: "Autoscaler v2", Description: "Faster scale-up decisions", Impact: "medium"},
		},
	}
}

func TestStore_PutAndGetRelease(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	release := &model.Release{
		Version:      "v2.9.0",
		ReleaseNotes: "Release notes body",
		BuildConfig:  "kubernetes: v1.30.1",
	}
	analysis := testAnalysis("v2.9.0", model.SeverityImportant)

	gt.NoError(t, store.PutRelease(ctx, "v2.9.0", release, analysis))

	rec, err := store.GetRelease(ctx, "v2.9.0")
	gt.NoError(t, err)
	gt.Equal(t, rec.Version, "v2.9.0")
	gt.Equal(t, rec.ReleaseData.ReleaseNotes, "Release notes body")
	gt.Equal(t, rec.Analysis.Severity, model.SeverityImportant)
	gt.Equal(t, rec.Analysis.NewFeatures[0].Title, "Autoscaler v2")
	gt.B(t, rec.CreatedAt.IsZero()).False()
}

func TestStore_GetRelease_Missing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.GetRelease(ctx, "v0.0.0")
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, types.ErrTagMissingVersion)).True()
}

func TestStore_PutRelease_OverwritesNotDuplicates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	release := &model.Release{Version: "v2.9.0", ReleaseNotes: "first"}
	gt.NoError(t, store.PutRelease(ctx, "v2.9.0", release, testAnalysis("v2.9.0", model.SeverityNormal)))

	release.ReleaseNotes = "second"
	gt.NoError(t, store.PutRelease(ctx, "v2.9.0", release, testAnalysis("v2.9.0", model.SeverityCritical)))

	rec, err := store.GetRelease(ctx, "v2.9.0")
	gt.NoError(t, err)
	gt.Equal(t, rec.ReleaseData.ReleaseNotes, "second")
	gt.Equal(t, rec.Analysis.Severity, model.SeverityCritical)

	summaries, err := store.ListReleases(ctx, 0)
	gt.NoError(t, err)
	gt.A(t, summaries).Length(1)
}

func TestStore_ListReleases(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, v := range []string{"v2.8.0", "v2.8.1", "v2.9.0"} {
		release := &model.Release{Version: v, ReleaseNotes: "notes for " + v}
		gt.NoError(t, store.PutRelease(ctx, v, release, testAnalysis(v, model.SeverityNormal)))
	}

	summaries, err := store.ListReleases(ctx, 2)
	gt.NoError(t, err)
	gt.A(t, summaries).Length(2)
	// Most recent insert first
	gt.Equal(t, summaries[0].Version, "v2.9.0")
	gt.Equal(t, summaries[0].Summary, "Adds cluster autoscaler improvements")
}

func TestStore_GetLatestRelease(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.GetLatestRelease(ctx)
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, types.ErrTagMissingVersion)).True()

	for _, v := range []string{"v2.8.0", "v2.9.0"} {
		gt.NoError(t, store.PutRelease(ctx, v, &model.Release{Version: v}, testAnalysis(v, model.SeverityNormal)))
	}

	latest, err := store.GetLatestRelease(ctx)
	gt.NoError(t, err)
	gt.Equal(t, latest.Version, "v2.9.0")
}

func TestStore_SearchReleases(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	a1 := testAnalysis("v2.8.0", model.SeverityNormal)
	a1.Summary = "Routine maintenance release"
	gt.NoError(t, store.PutRelease(ctx, "v2.8.0", &model.Release{Version: "v2.8.0"}, a1))

	a2 := testAnalysis("v2.9.0", model.SeverityCritical)
	a2.Summary = "Fixes CVE-2026-1234 in the API server"
	gt.NoError(t, store.PutRelease(ctx, "v2.9.0", &model.Release{Version: "v2.9.0"}, a2))

	t.Run("match against analysis text", func(t *testing.T) {
		results, err := store.SearchReleases(ctx, "CVE-2026")
		gt.NoError(t, err)
		gt.A(t, results).Length(1)
		gt.Equal(t, results[0].Version, "v2.9.0")
	})

	t.Run("match against version string", func(t *testing.T) {
		results, err := store.SearchReleases(ctx, "v2.8")
		gt.NoError(t, err)
		gt.A(t, results).Length(1)
		gt.Equal(t, results[0].Version, "v2.8.0")
	})

	t.Run("case insensitive", func(t *testing.T) {
		results, err := store.SearchReleases(ctx, "cve-2026")
		gt.NoError(t, err)
		gt.A(t, results).Length(1)
	})

	t.Run("no matches", func(t *testing.T) {
		results, err := store.SearchReleases(ctx, "no-such-thing")
		gt.NoError(t, err)
		gt.A(t, results).Length(0)
	})
}

func TestStore_NotificationHistory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	gt.NoError(t, store.PutRelease(ctx, "v2.9.0", &model.Release{Version: "v2.9.0"}, testAnalysis("v2.9.0", model.SeverityCritical)))
	gt.NoError(t, store.RecordNotification(ctx, "v2.9.0", "#rancher-critical"))
	gt.NoError(t, store.RecordNotification(ctx, "v2.9.0", "#rancher-releases"))

	records, err := store.NotificationHistory(ctx, "v2.9.0")
	gt.NoError(t, err)
	gt.A(t, records).Length(2)

	all, err := store.NotificationHistory(ctx, "")
	gt.NoError(t, err)
	gt.A(t, all).Length(2)

	none, err := store.NotificationHistory(ctx, "v0.0.0")
	gt.NoError(t, err)
	gt.A(t, none).Length(0)
}

func TestStore_Stats(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	empty, err := store.Stats(ctx)
	gt.NoError(t, err)
	gt.Equal(t, empty.TotalReleases, 0)
	gt.Equal(t, empty.LatestRelease, "")

	gt.NoError(t, store.PutRelease(ctx, "v2.9.0", &model.Release{Version: "v2.9.0"}, testAnalysis("v2.9.0", model.SeverityNormal)))
	gt.NoError(t, store.RecordNotification(ctx, "v2.9.0", "#rancher-releases"))

	stats, err := store.Stats(ctx)
	gt.NoError(t, err)
	gt.Equal(t, stats.TotalReleases, 1)
	gt.Equal(t, stats.TotalNotifications, 1)
	gt.Equal(t, stats.LatestRelease, "v2.9.0")
	gt.Number(t, stats.DatabaseSizeBytes).Greater(int64(0))
}
