package interfaces

import (
	"context"

	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
)

// TicketSystem defines one external tracking system the escalation manager
// can open tickets in. Each system maps the shared severity ranking into its
// own priority/urgency/impact vocabulary.
type TicketSystem interface {
	// Name identifies the system in logs ("jira", "servicenow").
	Name() string

	// Enabled reports whether the system is configured for use.
	Enabled() bool

	// CreateTicket issues a create request carrying the shared plain-text
	// body and returns the created identifier on success.
	CreateTicket(ctx context.Context, version string, analysis *model.Analysis, body string) (string, error)
}
