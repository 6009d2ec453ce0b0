package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/types"
)

type pipeline struct {
	detector  interfaces.DetectorUseCase
	analyzer  interfaces.AnalyzerUseCase
	store     interfaces.ReleaseStore
	notifier  interfaces.NotifierUseCase
	escalator interfaces.EscalatorUseCase

	// inFlight guards against two concurrently triggered runs notifying the
	// same version twice. The store upsert alone cannot prevent that.
	mu       sync.Mutex
	inFlight map[string]struct{}
}

var _ interfaces.PipelineUseCase = (*pipeline)(nil)

// NewPipeline creates a PipelineUseCase wiring the full workflow:
// Detected -> Analyzed -> Stored -> Notified -> (Escalated if critical).
func NewPipeline(
	detector interfaces.DetectorUseCase,
	analyzer interfaces.AnalyzerUseCase,
	store interfaces.ReleaseStore,
	notifier interfaces.NotifierUseCase,
	escalator interfaces.EscalatorUseCase,
) interfaces.PipelineUseCase {
	return &pipeline{
		detector:  detector,
		analyzer:  analyzer,
		store:     store,
		notifier:  notifier,
		escalator: escalator,
		inFlight:  map[string]struct{}{},
	}
}

// Run processes every newly detected release sequentially, in
// upstream-reported order. Each step's side effects are individually
// irreversible, so the per-release workflow is never parallelized.
func (uc *pipeline) Run(ctx context.Context) error {
	logger := ctxlog.From(ctx)

	fresh, err := uc.detector.CheckForNewReleases(ctx)
	if err != nil {
		logger.Error("Release check failed", "error", err)
		uc.notifier.NotifyError(ctx, err.Error())
		return err
	}

	if len(fresh) == 0 {
		logger.Info("No new releases found")
		return nil
	}

	for _, release := range fresh {
		if err := ctx.Err(); err != nil {
			// Shutdown mid-batch: unprocessed versions stay absent from the
			// store and the next run picks them up.
			logger.Info("Run cancelled, leaving remaining releases for next run",
				"remaining_from", release.Version)
			return nil
		}

		uc.processRelease(ctx, release)
	}

	return nil
}

// ForceReanalyze fetches version from upstream regardless of store state,
// reanalyzes it, and replaces the stored record.
func (uc *pipeline) ForceReanalyze(ctx context.Context, version string) (*model.StoredRelease, error) {
	logger := ctxlog.From(ctx)

	release, err := uc.detector.FetchRelease(ctx, version)
	if err != nil {
		return nil, err
	}

	analysis := uc.analyzer.AnalyzeRelease(ctx, release)
	analysis.Resources = uc.analyzer.FindResources(ctx, version, analysis)

	if err := uc.store.PutRelease(ctx, version, release, analysis); err != nil {
		return nil, err
	}

	logger.Info("Reanalyzed release", "version", version, "severity", analysis.Severity)

	return uc.store.GetRelease(ctx, version)
}

// processRelease walks one release through the state machine. Analysis never
// fails (fallback record), delivery failures are logged and skipped, and a
// persistence failure is fatal for this release only: notification and
// escalation are skipped so the unstored version is retried next run.
func (uc *pipeline) processRelease(ctx context.Context, release *model.Release) {
	logger := ctxlog.From(ctx)
	version := release.Version

	if !uc.markInFlight(version) {
		logger.Warn("Release already being processed, skipping", "version", version)
		return
	}
	defer uc.clearInFlight(version)

	logger.Info("Processing new release", "version", version)

	analysis := uc.analyzer.AnalyzeRelease(ctx, release)
	analysis.Resources = uc.analyzer.FindResources(ctx, version, analysis)

	if err := uc.store.PutRelease(ctx, version, release, analysis); err != nil {
		logger.Error("Failed to store release", "error", err, "version", version)
		uc.notifier.NotifyError(ctx, goerr.Wrap(err, "release not persisted", goerr.V("version", version)).Error())
		return
	}

	if err := uc.notifier.NotifyNewRelease(ctx, version, analysis); err != nil {
		if goerr.HasTag(err, types.ErrTagDelivery) {
			logger.Error("Failed to send release notification", "error", err, "version", version)
		} else {
			logger.Error("Unexpected notification error", "error", err, "version", version)
		}
	}

	if analysis.Severity == model.SeverityCritical {
		logger.Info("Critical release, escalating", "version", version)
		uc.escalator.CreateTickets(ctx, version, analysis)
	}

	logger.Info("Finished processing release", "version", version, "severity", analysis.Severity)
}

func (uc *pipeline) markInFlight(version string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, busy := uc.inFlight[version]; busy {
		return false
	}
	uc.inFlight[version] = struct{}{}
	return true
}

func (uc *pipeline) clearInFlight(version string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inFlight, version)
}
