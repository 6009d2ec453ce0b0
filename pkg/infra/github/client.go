package github

import (
	"context"
	"net/http"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/types"
)

const feedPageSize = 50

type client struct {
	gh    *github.Client
	owner string
	repo  string
}

var _ interfaces.ReleaseFeed = (*client)(nil)

// NewClient creates a release feed client for owner/repo. An empty token uses
// unauthenticated access, which is enough for public release feeds.
func NewClient(owner, repo, token string) interfaces.ReleaseFeed {
	gh := github.NewClient(nil)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}

	return &client{
		gh:    gh,
		owner: owner,
		repo:  repo,
	}
}

// ListReleases fetches the current upstream release list. Feed order (newest
// first) is preserved; it is stable for a fixed upstream state.
func (c *client) ListReleases(ctx context.Context) ([]*model.Release, error) {
	ghReleases, _, err := c.gh.Repositories.ListReleases(ctx, c.owner, c.repo, &github.ListOptions{
		PerPage: feedPageSize,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list upstream releases",
			goerr.V("owner", c.owner), goerr.V("repo", c.repo), goerr.T(types.ErrTagUpstreamFetch))
	}

	releases := make([]*model.Release, 0, len(ghReleases))
	for _, r := range ghReleases {
		if r.GetDraft() || r.GetTagName() == "" {
			continue
		}
		releases = append(releases, c.toRelease(ctx, r))
	}

	return releases, nil
}

// GetRelease fetches a single release by tag regardless of store state.
func (c *client) GetRelease(ctx context.Context, version string) (*model.Release, error) {
	r, resp, err := c.gh.Repositories.GetReleaseByTag(ctx, c.owner, c.repo, version)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, goerr.Wrap(err, "release not found upstream",
				goerr.V("version", version), goerr.T(types.ErrTagMissingVersion))
		}
		return nil, goerr.Wrap(err, "failed to fetch upstream release",
			goerr.V("version", version), goerr.T(types.ErrTagUpstreamFetch))
	}

	return c.toRelease(ctx, r), nil
}

// toRelease maps an upstream release to the internal payload. Build config
// and changelog live as files in the repository at the release tag; both are
// best-effort and an absent file leaves the field empty.
func (c *client) toRelease(ctx context.Context, r *github.RepositoryRelease) *model.Release {
	tag := r.GetTagName()

	return &model.Release{
		Version:      tag,
		ReleaseNotes: r.GetBody(),
		BuildConfig:  c.fetchFile(ctx, "build.yaml", tag),
		Changelog:    c.fetchFile(ctx, "CHANGELOG.md", tag),
	}
}

func (c *client) fetchFile(ctx context.Context, path, ref string) string {
	content, _, _, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, path, &github.RepositoryContentGetOptions{
		Ref: ref,
	})
	if err != nil || content == nil {
		ctxlog.From(ctx).Debug("repository file not available",
			"path", path, "ref", ref, "error", err)
		return ""
	}

	text, err := content.GetContent()
	if err != nil {
		ctxlog.From(ctx).Debug("failed to decode repository file",
			"path", path, "ref", ref, "error", err)
		return ""
	}

	return text
}
