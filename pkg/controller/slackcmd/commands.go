package slackcmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/types"
	"github.com/slack-go/slack"
)

// Handler serves Slack slash commands. Commands are answered
// synchronously in the HTTP response rather than via response_url.
type Handler struct {
	analyzer      interfaces.AnalyzerUseCase
	notifier      interfaces.NotifierUseCase
	store         interfaces.ReleaseStore
	signingSecret string

	commands map[string]func(ctx context.Context, args []string) *response
}

// New creates a slash command handler
func New(
	analyzer interfaces.AnalyzerUseCase,
	notifier interfaces.NotifierUseCase,
	store interfaces.ReleaseStore,
	signingSecret string,
) *Handler {
	h := &Handler{
		analyzer:      analyzer,
		notifier:      notifier,
		store:         store,
		signingSecret: signingSecret,
	}
	h.commands = map[string]func(ctx context.Context, args []string) *response{
		"/rancher-release": h.handleRelease,
		"/rancher-compare": h.handleCompare,
		"/rancher-search":  h.handleSearch,
	}
	return h
}

// response is the Slack slash command response payload
type response struct {
	ResponseType string        `json:"response_type"`
	Text         string        `json:"text,omitempty"`
	Blocks       []slack.Block `json:"blocks,omitempty"`
}

func inChannel(blocks []slack.Block) *response {
	return &response{ResponseType: slack.ResponseTypeInChannel, Blocks: blocks}
}

func ephemeral(text string) *response {
	return &response{ResponseType: slack.ResponseTypeEphemeral, Text: text}
}

const helpMessage = `*Rancher Release Bot - Commands*

*Available Commands:*
• ` + "`/rancher-release latest`" + ` - Get the latest release
• ` + "`/rancher-release <version>`" + ` - Get specific version details
• ` + "`/rancher-compare <v1> <v2>`" + ` - Compare two versions
• ` + "`/rancher-search <keyword>`" + ` - Search releases

*Examples:*
• ` + "`/rancher-release v2.13.0`" + `
• ` + "`/rancher-compare v2.12.0 v2.13.0`" + `
• ` + "`/rancher-search security`" + `

*Notifications:*
• Critical releases → #rancher-critical
• Normal releases → #rancher-releases

*Need help?* Contact your DevOps team.`

// ServeHTTP verifies the request signature, parses the slash command and
// dispatches it to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	// A verifier that cannot be constructed means the signature headers are
	// missing or malformed, which is an authentication failure like any other.
	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		logger.Warn("Failed to create Slack request verifier", "error", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	r.Body = io.NopCloser(io.TeeReader(r.Body, &verifier))
	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		logger.Warn("Failed to parse slash command", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := verifier.Ensure(); err != nil {
		logger.Warn("Invalid Slack request signature", "error", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	handler, ok := h.commands[cmd.Command]
	if !ok {
		logger.Warn("Unknown slash command", "command", cmd.Command)
		handler = func(ctx context.Context, args []string) *response {
			return ephemeral(helpMessage)
		}
	}

	logger.Info("Slash command received",
		"command", cmd.Command,
		"text", cmd.Text,
		"user", cmd.UserName,
	)

	resp := handler(ctx, strings.Fields(cmd.Text))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("Failed to encode command response", "error", err)
	}
}

// handleRelease shows the analysis for the given version, or the latest
// tracked release when no version is given.
func (h *Handler) handleRelease(ctx context.Context, args []string) *response {
	if len(args) == 0 || args[0] == "latest" {
		stored, err := h.store.GetLatestRelease(ctx)
		if err != nil {
			if goerr.HasTag(err, types.ErrTagMissingVersion) {
				return ephemeral("No releases tracked yet.")
			}
			ctxlog.From(ctx).Error("Failed to load latest release", "error", err)
			return ephemeral("Failed to look up the latest release. Please try again.")
		}
		return inChannel(h.notifier.RenderRelease(stored))
	}

	version := args[0]
	stored, err := h.store.GetRelease(ctx, version)
	if err != nil {
		if goerr.HasTag(err, types.ErrTagMissingVersion) {
			return ephemeral("Version " + version + " not found. Try `/rancher-search` to list tracked releases.")
		}
		ctxlog.From(ctx).Error("Failed to load release", "error", err, "version", version)
		return ephemeral("Failed to look up " + version + ". Please try again.")
	}

	return inChannel(h.notifier.RenderRelease(stored))
}

// handleCompare contrasts two stored versions
func (h *Handler) handleCompare(ctx context.Context, args []string) *response {
	if len(args) != 2 {
		return ephemeral("Usage: `/rancher-compare <version1> <version2>`")
	}

	cmp := h.analyzer.CompareVersions(ctx, args[0], args[1])
	return inChannel(h.notifier.RenderComparison(cmp, args[0], args[1]))
}

// handleSearch lists stored releases matching the query
func (h *Handler) handleSearch(ctx context.Context, args []string) *response {
	if len(args) == 0 {
		return ephemeral("Usage: `/rancher-search <query>`")
	}

	query := strings.Join(args, " ")
	results, err := h.store.SearchReleases(ctx, query)
	if err != nil {
		ctxlog.From(ctx).Error("Release search failed", "error", err, "query", query)
		return ephemeral("Search failed. Please try again.")
	}

	return &response{
		ResponseType: slack.ResponseTypeEphemeral,
		Blocks:       h.notifier.RenderSearchResults(results, query),
	}
}
