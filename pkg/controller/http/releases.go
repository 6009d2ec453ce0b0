package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/types"
)

// ReleaseHandler serves stored release data
type ReleaseHandler struct {
	store      interfaces.ReleaseStore
	pipelineUC interfaces.PipelineUseCase
}

// List returns summaries of stored releases, newest first
func (h *ReleaseHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, goerr.New("limit must be a positive integer"), http.StatusBadRequest)
			return
		}
		limit = n
	}

	summaries, err := h.store.ListReleases(r.Context(), limit)
	if err != nil {
		ctxlog.From(r.Context()).Error("Failed to list releases", "error", err)
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"releases": summaries,
		"count":    len(summaries),
	})
}

// Get returns a single stored release with its full analysis
func (h *ReleaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	version := chi.URLParam(r, "version")

	stored, err := h.store.GetRelease(r.Context(), version)
	if err != nil {
		if goerr.HasTag(err, types.ErrTagMissingVersion) {
			writeError(w, err, http.StatusNotFound)
			return
		}
		ctxlog.From(r.Context()).Error("Failed to get release", "error", err, "version", version)
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stored)
}

// Stats returns store statistics
func (h *ReleaseHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		ctxlog.From(r.Context()).Error("Failed to read store stats", "error", err)
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Reanalyze re-runs analysis for a version and overwrites the stored
// record. Unlike the webhook path this is synchronous: the caller asked
// for the result.
func (h *ReleaseHandler) Reanalyze(w http.ResponseWriter, r *http.Request) {
	version := chi.URLParam(r, "version")

	stored, err := h.pipelineUC.ForceReanalyze(r.Context(), version)
	if err != nil {
		if goerr.HasTag(err, types.ErrTagMissingVersion) {
			writeError(w, err, http.StatusNotFound)
			return
		}
		ctxlog.From(r.Context()).Error("Failed to reanalyze release", "error", err, "version", version)
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stored)
}
