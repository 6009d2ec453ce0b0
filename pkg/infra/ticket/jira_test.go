package ticket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/types"
	"github.com/sadhugit/rancher-release-bot/pkg/infra/ticket"
)

func TestJira_Enabled(t *testing.T) {
	gt.B(t, ticket.NewJira("", "a@example.com", "token", "RANCHER").Enabled()).False()
	gt.B(t, ticket.NewJira("https://example.atlassian.net", "a@example.com", "token", "RANCHER").Enabled()).True()
}

func TestJira_CreateTicket(t *testing.T) {
	ctx := context.Background()

	analysis := &model.Analysis{
		Version:  "v2.9.0",
		Severity: model.SeverityCritical,
		Summary:  "Security release",
	}

	t.Run("successful creation", func(t *testing.T) {
		var gotPayload map[string]any
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.Equal(t, r.Method, http.MethodPost)
			gt.Equal(t, r.URL.Path, "/rest/api/2/issue")

			user, token, ok := r.BasicAuth()
			gt.B(t, ok).True()
			gt.Equal(t, user, "a@example.com")
			gt.Equal(t, token, "api-token")

			gt.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"10001","key":"RANCHER-42"}`))
		}))
		defer ts.Close()

		j := ticket.NewJira(ts.URL, "a@example.com", "api-token", "RANCHER")

		key, err := j.CreateTicket(ctx, "v2.9.0", analysis, "ticket body")
		gt.NoError(t, err)
		gt.Equal(t, key, "RANCHER-42")

		fields := gt.Cast[map[string]any](t, gotPayload["fields"])
		gt.Equal(t, gt.Cast[map[string]any](t, fields["project"])["key"], "RANCHER")
		gt.Equal(t, fields["summary"], "Rancher v2.9.0 - Critical Release")
		gt.Equal(t, fields["description"], "ticket body")
		gt.Equal(t, gt.Cast[map[string]any](t, fields["priority"])["name"], "Highest")
	})

	t.Run("priority follows severity", func(t *testing.T) {
		tests := []struct {
			severity model.Severity
			want     string
		}{
			{model.SeverityCritical, "Highest"},
			{model.SeverityImportant, "High"},
			{model.SeverityNormal, "Medium"},
			{model.SeverityLow, "Low"},
			{model.SeverityUnknown, "Medium"},
		}

		for _, tt := range tests {
			var gotPriority string
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var payload struct {
					Fields struct {
						Priority struct {
							Name string `json:"name"`
						} `json:"priority"`
					} `json:"fields"`
				}
				gt.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
				gotPriority = payload.Fields.Priority.Name

				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"key":"RANCHER-1"}`))
			}))

			j := ticket.NewJira(ts.URL, "a@example.com", "api-token", "RANCHER")
			_, err := j.CreateTicket(ctx, "v2.9.0", &model.Analysis{Severity: tt.severity}, "body")
			gt.NoError(t, err)
			gt.Equal(t, gotPriority, tt.want)

			ts.Close()
		}
	})

	t.Run("non-201 response is a delivery error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errorMessages":["bad credentials"]}`))
		}))
		defer ts.Close()

		j := ticket.NewJira(ts.URL, "a@example.com", "wrong", "RANCHER")

		_, err := j.CreateTicket(ctx, "v2.9.0", analysis, "body")
		gt.Error(t, err)
		gt.B(t, goerr.HasTag(err, types.ErrTagDelivery)).True()
	})
}
