package http

import (
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/types"
)

// handleHealth handles health check requests. The store is queried for
// the tracked release count; a store failure still reports healthy with
// a zero count rather than failing the probe.
func handleHealth(store interfaces.ReleaseStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := &model.HealthStatus{
			Status:  "healthy",
			Service: types.ServiceName,
			Version: types.Version,
		}

		if stats, err := store.Stats(r.Context()); err != nil {
			ctxlog.From(r.Context()).Warn("Failed to read store stats for health check", "error", err)
		} else {
			status.ReleasesTracked = stats.TotalReleases
		}

		writeJSON(w, http.StatusOK, status)
	}
}
