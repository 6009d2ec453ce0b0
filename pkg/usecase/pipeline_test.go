package usecase_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/types"
	"github.com/sadhugit/rancher-release-bot/pkg/usecase"
)

// fakeFeed serves a fixed upstream release list
type fakeFeed struct {
	releases []*model.Release
	listErr  error
}

func (f *fakeFeed) ListReleases(ctx context.Context) ([]*model.Release, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.releases, nil
}

func (f *fakeFeed) GetRelease(ctx context.Context, version string) (*model.Release, error) {
	for _, r := range f.releases {
		if r.Version == version {
			return r, nil
		}
	}
	return nil, goerr.New("release not found upstream",
		goerr.V("version", version), goerr.T(types.ErrTagMissingVersion))
}

// newTestPipeline wires real use cases over fakes, returning the pipeline
// alongside everything the test inspects.
func newTestPipeline(t *testing.T, feed *fakeFeed, store *memStore, llmTexts []string) (interfaces.PipelineUseCase, *fakeChat, *stubTicket) {
	t.Helper()

	llm, _ := mockLLM(llmTexts, nil)
	analyzerUC, err := usecase.NewAnalyzer(llm, store)
	gt.NoError(t, err)

	chat := &fakeChat{}
	ticket := &stubTicket{name: "jira", enabled: true}

	pipelineUC := usecase.NewPipeline(
		usecase.NewDetector(feed, store),
		analyzerUC,
		store,
		usecase.NewNotifier(chat, store, testChannels),
		usecase.NewEscalator([]interfaces.TicketSystem{ticket}),
	)

	return pipelineUC, chat, ticket
}

func analysisJSON(t *testing.T, severity model.Severity) string {
	t.Helper()
	raw, err := json.Marshal(&model.Analysis{
		Version:  "v2.9.0",
		Severity: severity,
		Summary:  "pipeline test analysis",
	})
	gt.NoError(t, err)
	return string(raw)
}

const emptyResourcesJSON = `{"documentation":[],"kb_articles":[],"videos":[]}`

func TestPipeline_Run_CriticalRelease(t *testing.T) {
	ctx := context.Background()

	feed := &fakeFeed{releases: []*model.Release{{Version: "v2.9.0", ReleaseNotes: "security fix"}}}
	store := newMemStore()
	pipelineUC, chat, ticket := newTestPipeline(t, feed, store,
		[]string{analysisJSON(t, model.SeverityCritical), emptyResourcesJSON})

	gt.NoError(t, pipelineUC.Run(ctx))

	// Stored with the analysis and attached resources
	rec, err := store.GetRelease(ctx, "v2.9.0")
	gt.NoError(t, err)
	gt.Equal(t, rec.Analysis.Severity, model.SeverityCritical)
	gt.V(t, rec.Analysis.Resources).NotNil()

	// Notified on the critical channel, recorded, and escalated
	gt.A(t, chat.posts).Length(1)
	gt.Equal(t, chat.posts[0].Channel, "#rancher-critical")
	gt.A(t, store.notifications).Length(1)
	gt.Equal(t, ticket.calls, 1)
}

func TestPipeline_Run_NormalRelease(t *testing.T) {
	ctx := context.Background()

	feed := &fakeFeed{releases: []*model.Release{{Version: "v2.9.0"}}}
	store := newMemStore()
	pipelineUC, chat, ticket := newTestPipeline(t, feed, store,
		[]string{analysisJSON(t, model.SeverityNormal), emptyResourcesJSON})

	gt.NoError(t, pipelineUC.Run(ctx))

	gt.A(t, chat.posts).Length(1)
	gt.Equal(t, chat.posts[0].Channel, "#rancher-releases")
	// No escalation below critical
	gt.Equal(t, ticket.calls, 0)
}

func TestPipeline_Run_SkipsKnownReleases(t *testing.T) {
	ctx := context.Background()

	feed := &fakeFeed{releases: []*model.Release{{Version: "v2.9.0"}}}
	store := newMemStore()
	gt.NoError(t, store.PutRelease(ctx, "v2.9.0", &model.Release{Version: "v2.9.0"}, &model.Analysis{Severity: model.SeverityNormal}))

	pipelineUC, chat, ticket := newTestPipeline(t, feed, store, nil)

	gt.NoError(t, pipelineUC.Run(ctx))

	gt.A(t, chat.posts).Length(0)
	gt.Equal(t, ticket.calls, 0)
}

func TestPipeline_Run_FeedFailure(t *testing.T) {
	ctx := context.Background()

	feed := &fakeFeed{listErr: goerr.New("rate limited", goerr.T(types.ErrTagUpstreamFetch))}
	store := newMemStore()
	pipelineUC, chat, _ := newTestPipeline(t, feed, store, nil)

	err := pipelineUC.Run(ctx)
	gt.Error(t, err)

	// Operational alert on the team channel
	gt.A(t, chat.posts).Length(1)
	gt.Equal(t, chat.posts[0].Channel, "#rancher-team")
}

func TestPipeline_Run_PersistenceFailureSkipsNotification(t *testing.T) {
	ctx := context.Background()

	feed := &fakeFeed{releases: []*model.Release{{Version: "v2.9.0"}}}
	store := newMemStore()
	store.putErr = goerr.New("disk full", goerr.T(types.ErrTagPersistence))
	pipelineUC, chat, ticket := newTestPipeline(t, feed, store,
		[]string{analysisJSON(t, model.SeverityCritical), emptyResourcesJSON})

	gt.NoError(t, pipelineUC.Run(ctx))

	// Only the error alert went out; the unstored release was neither
	// announced nor escalated, so it is retried next run
	gt.A(t, chat.posts).Length(1)
	gt.Equal(t, chat.posts[0].Channel, "#rancher-team")
	gt.Equal(t, ticket.calls, 0)
}

func TestPipeline_Run_DeliveryFailureStillEscalates(t *testing.T) {
	ctx := context.Background()

	feed := &fakeFeed{releases: []*model.Release{{Version: "v2.9.0"}}}
	store := newMemStore()
	pipelineUC, chat, ticket := newTestPipeline(t, feed, store,
		[]string{analysisJSON(t, model.SeverityCritical), emptyResourcesJSON})
	chat.postErr = goerr.New("channel_not_found", goerr.T(types.ErrTagDelivery))

	gt.NoError(t, pipelineUC.Run(ctx))

	// Stored despite the failed notification, and escalation still ran
	_, err := store.GetRelease(ctx, "v2.9.0")
	gt.NoError(t, err)
	gt.Equal(t, ticket.calls, 1)
}

func TestPipeline_ForceReanalyze(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites the stored record", func(t *testing.T) {
		feed := &fakeFeed{releases: []*model.Release{{Version: "v2.9.0", ReleaseNotes: "updated notes"}}}
		store := newMemStore()
		gt.NoError(t, store.PutRelease(ctx, "v2.9.0", &model.Release{Version: "v2.9.0"}, &model.Analysis{Severity: model.SeverityNormal}))

		pipelineUC, chat, ticket := newTestPipeline(t, feed, store,
			[]string{analysisJSON(t, model.SeverityCritical), emptyResourcesJSON})

		rec, err := pipelineUC.ForceReanalyze(ctx, "v2.9.0")
		gt.NoError(t, err)
		gt.Equal(t, rec.Analysis.Severity, model.SeverityCritical)

		// Reanalysis is silent: no notification, no escalation
		gt.A(t, chat.posts).Length(0)
		gt.Equal(t, ticket.calls, 0)
	})

	t.Run("unknown version", func(t *testing.T) {
		feed := &fakeFeed{}
		pipelineUC, _, _ := newTestPipeline(t, feed, newMemStore(), nil)

		_, err := pipelineUC.ForceReanalyze(ctx, "v0.0.0")
		gt.Error(t, err)
		gt.B(t, goerr.HasTag(err, types.ErrTagMissingVersion)).True()
	})
}
