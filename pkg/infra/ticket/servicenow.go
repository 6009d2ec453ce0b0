package ticket

import (
	"context"
	"net/http"

	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
)

// ServiceNow uses numeric urgency/impact codes: 1 is high, 3 is low. Normal
// and low severities intentionally share code 3.
var (
	snowUrgency = map[model.Severity]string{
		model.SeverityCritical:  "1",
		model.SeverityImportant: "2",
		model.SeverityNormal:    "3",
		model.SeverityLow:       "3",
	}
	snowImpact = map[model.Severity]string{
		model.SeverityCritical:  "1",
		model.SeverityImportant: "2",
		model.SeverityNormal:    "3",
		model.SeverityLow:       "3",
	}
)

// ServiceNow opens incidents via the ServiceNow table API with basic auth.
type ServiceNow struct {
	instance   string
	username   string
	password   string
	httpClient *http.Client
}

var _ interfaces.TicketSystem = (*ServiceNow)(nil)

// NewServiceNow creates a ServiceNow ticket system. An empty instance leaves
// it disabled.
func NewServiceNow(instance, username, password string) *ServiceNow {
	return &ServiceNow{
		instance:   instance,
		username:   username,
		password:   password,
		httpClient: newHTTPClient(),
	}
}

func (s *ServiceNow) Name() string { return "servicenow" }

func (s *ServiceNow) Enabled() bool { return s.instance != "" }

// CreateTicket creates a ServiceNow incident and returns its number.
func (s *ServiceNow) CreateTicket(ctx context.Context, version string, analysis *model.Analysis, body string) (string, error) {
	urgency, ok := snowUrgency[analysis.Severity]
	if !ok {
		urgency = snowUrgency[model.SeverityNormal]
	}
	impact, ok := snowImpact[analysis.Severity]
	if !ok {
		impact = snowImpact[model.SeverityNormal]
	}

	payload := map[string]string{
		"short_description": "Rancher " + version + " Release - Action Required",
		"description":       body,
		"urgency":           urgency,
		"impact":            impact,
		"category":          "Software",
		"subcategory":       "Infrastructure",
	}

	var created struct {
		Result struct {
			Number string `json:"number"`
		} `json:"result"`
	}
	url := "https://" + s.instance + "/api/now/table/incident"
	if err := postJSON(ctx, s.httpClient, url, s.username, s.password, payload, &created); err != nil {
		return "", err
	}

	return created.Result.Number, nil
}
