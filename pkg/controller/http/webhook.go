package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
	"github.com/sadhugit/rancher-release-bot/pkg/utils/async"
)

// WebhookHandler handles GitHub release webhooks
type WebhookHandler struct {
	secret     string
	pipelineUC interfaces.PipelineUseCase
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(secret string, pipelineUC interfaces.PipelineUseCase) *WebhookHandler {
	return &WebhookHandler{
		secret:     secret,
		pipelineUC: pipelineUC,
	}
}

// Handle processes webhook requests. A published release event triggers
// the pipeline in the background; the request is acknowledged
// immediately so GitHub does not time out waiting for LLM analysis.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	// Read payload
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// Verify signature
	signature := r.Header.Get("X-Hub-Signature-256")
	if !h.verifySignature(body, signature) {
		logger.Warn("Invalid webhook signature")
		writeError(w, goerr.New("invalid signature"), http.StatusUnauthorized)
		return
	}

	// Parse event using GitHub SDK
	eventType := r.Header.Get("X-GitHub-Event")
	payload, err := github.ParseWebHook(eventType, body)
	if err != nil {
		logger.Error("Failed to parse webhook payload", "error", err)
		writeError(w, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
		return
	}

	event, ok := payload.(*github.ReleaseEvent)
	if !ok || event.GetAction() != "published" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	logger.Info("Release webhook received",
		"repository", event.GetRepo().GetFullName(),
		"tag", event.GetRelease().GetTagName(),
	)

	async.Dispatch(ctx, h.pipelineUC.Run)

	writeJSON(w, http.StatusOK, map[string]string{"status": "processing"})
}

// verifySignature verifies the webhook signature
func (h *WebhookHandler) verifySignature(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}

	// Remove "sha256=" prefix if present
	signature = strings.TrimPrefix(signature, "sha256=")

	// Calculate HMAC-SHA256
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(payload)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expectedMAC))
}
