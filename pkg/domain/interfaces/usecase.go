package interfaces

import (
	"context"

	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
	"github.com/slack-go/slack"
)

// DetectorUseCase diffs the upstream release feed against the store.
type DetectorUseCase interface {
	// CheckForNewReleases returns feed releases absent from the store, in
	// feed order. Read-only against both sides.
	CheckForNewReleases(ctx context.Context) ([]*model.Release, error)

	// FetchRelease fetches one release from upstream regardless of store
	// state, for forced reanalysis.
	FetchRelease(ctx context.Context, version string) (*model.Release, error)
}

// AnalyzerUseCase turns raw release text into validated structured records.
type AnalyzerUseCase interface {
	// AnalyzeRelease always returns a usable Analysis; unrecoverable
	// failures yield the canonical fallback record with Error set.
	AnalyzeRelease(ctx context.Context, release *model.Release) *model.Analysis

	// FindResources derives supplementary links for a release; failures
	// yield empty resource lists.
	FindResources(ctx context.Context, version string, analysis *model.Analysis) *model.Resources

	// CompareVersions contrasts two stored analyses. Missing versions and
	// parse failures are reported in the result's Error field.
	CompareVersions(ctx context.Context, v1, v2 string) *model.Comparison
}

// NotifierUseCase routes stored analyses to chat channels.
type NotifierUseCase interface {
	// NotifyNewRelease posts the rendered analysis to the severity-selected
	// channel, then records the notification. The two steps are independent
	// with no rollback.
	NotifyNewRelease(ctx context.Context, version string, analysis *model.Analysis) error

	// NotifyError posts a plain-text alert to the team channel. Failures are
	// logged only, never propagated.
	NotifyError(ctx context.Context, message string)

	// RenderSearchResults and RenderComparison build display blocks with no
	// side effects.
	RenderSearchResults(results []*model.ReleaseSummary, query string) []slack.Block
	RenderComparison(cmp *model.Comparison, v1, v2 string) []slack.Block
	RenderRelease(rec *model.StoredRelease) []slack.Block
}

// EscalatorUseCase opens tickets in external tracking systems for critical
// releases. Per-system failures are logged and the remaining systems are
// still attempted; escalation never fails the pipeline.
type EscalatorUseCase interface {
	CreateTickets(ctx context.Context, version string, analysis *model.Analysis)
}

// PipelineUseCase sequences the release-intelligence workflow.
type PipelineUseCase interface {
	// Run processes every newly detected release, one at a time, in
	// upstream-reported order. Returns an error only for upstream fetch
	// failures; per-release failures are handled per the error taxonomy.
	Run(ctx context.Context) error

	// ForceReanalyze fetches version from upstream, reanalyzes it and
	// replaces the stored record idempotently.
	ForceReanalyze(ctx context.Context, version string) (*model.StoredRelease, error)
}
