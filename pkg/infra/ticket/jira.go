package ticket

import (
	"context"
	"net/http"
	"strings"

	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
)

// jiraPriority maps the shared severity ranking into Jira's priority names.
var jiraPriority = map[model.Severity]string{
	model.SeverityCritical:  "Highest",
	model.SeverityImportant: "High",
	model.SeverityNormal:    "Medium",
	model.SeverityLow:       "Low",
}

// Jira opens tickets via the Jira REST API with basic auth.
type Jira struct {
	baseURL    string
	email      string
	apiToken   string
	projectKey string
	httpClient *http.Client
}

var _ interfaces.TicketSystem = (*Jira)(nil)

// NewJira creates a Jira ticket system. An empty baseURL leaves it disabled.
func NewJira(baseURL, email, apiToken, projectKey string) *Jira {
	return &Jira{
		baseURL:    baseURL,
		email:      email,
		apiToken:   apiToken,
		projectKey: projectKey,
		httpClient: newHTTPClient(),
	}
}

func (j *Jira) Name() string { return "jira" }

func (j *Jira) Enabled() bool { return j.baseURL != "" }

// CreateTicket creates a Jira Task for the release and returns its key.
func (j *Jira) CreateTicket(ctx context.Context, version string, analysis *model.Analysis, body string) (string, error) {
	priority, ok := jiraPriority[analysis.Severity]
	if !ok {
		priority = jiraPriority[model.SeverityNormal]
	}

	payload := map[string]any{
		"fields": map[string]any{
			"project":     map[string]string{"key": j.projectKey},
			"summary":     "Rancher " + version + " - " + titleCase(string(analysis.Severity)) + " Release",
			"description": body,
			"issuetype":   map[string]string{"name": "Task"},
			"priority":    map[string]string{"name": priority},
			"labels":      []string{"rancher", "release", version, string(analysis.Severity)},
		},
	}

	var created struct {
		Key string `json:"key"`
	}
	if err := postJSON(ctx, j.httpClient, j.baseURL+"/rest/api/2/issue", j.email, j.apiToken, payload, &created); err != nil {
		return "", err
	}

	return created.Key, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
