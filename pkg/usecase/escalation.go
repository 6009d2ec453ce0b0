package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"

	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
)

type escalator struct {
	systems []interfaces.TicketSystem
}

var _ interfaces.EscalatorUseCase = (*escalator)(nil)

// NewEscalator creates an EscalatorUseCase over the configured tracking
// systems. Disabled systems are skipped at escalation time, not here, so the
// set of attempts always reflects current configuration.
func NewEscalator(systems []interfaces.TicketSystem) interfaces.EscalatorUseCase {
	return &escalator{systems: systems}
}

// CreateTickets independently attempts ticket creation in every enabled
// system. A failure in one system is logged and the rest are still
// attempted; escalation never fails the pipeline.
func (uc *escalator) CreateTickets(ctx context.Context, version string, analysis *model.Analysis) {
	logger := ctxlog.From(ctx)

	body := buildTicketBody(version, analysis)

	for _, system := range uc.systems {
		if !system.Enabled() {
			continue
		}

		id, err := system.CreateTicket(ctx, version, analysis, body)
		if err != nil {
			logger.Error("Failed to create ticket",
				"error", err, "system", system.Name(), "version", version)
			continue
		}

		logger.Info("Created ticket",
			"system", system.Name(), "ticket", id, "version", version)
	}
}

// buildTicketBody renders the shared plain-text ticket description used by
// every tracking system.
func buildTicketBody(version string, analysis *model.Analysis) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Rancher %s has been released.\n\n", version)
	fmt.Fprintf(&sb, "SEVERITY: %s\n", strings.ToUpper(string(analysis.Severity)))
	fmt.Fprintf(&sb, "TYPE: %s\n\n", titleWord(orFallback(string(analysis.ReleaseType), "Unknown")))
	fmt.Fprintf(&sb, "SUMMARY:\n%s\n\nNEW FEATURES:\n", orFallback(analysis.Summary, "No summary available"))

	for i, feature := range bound(analysis.NewFeatures, 5) {
		fmt.Fprintf(&sb, "\n%d. %s\n   %s\n", i+1, feature.Title, feature.Description)
	}

	if breaking := bound(analysis.BreakingChanges, 3); len(breaking) > 0 {
		sb.WriteString("\n\nBREAKING CHANGES:\n")
		for _, change := range breaking {
			fmt.Fprintf(&sb, "\n- %s\n  Impact: %s\n", change.Change, orFallback(change.Impact, "N/A"))
		}
	}

	if security := bound(analysis.SecurityUpdates, 3); len(security) > 0 {
		sb.WriteString("\n\nSECURITY UPDATES:\n")
		for _, update := range security {
			fmt.Fprintf(&sb, "\n- %s\n", orFallback(update.Description, "N/A"))
		}
	}

	if actions := bound(analysis.RecommendedActions, 5); len(actions) > 0 {
		sb.WriteString("\n\nRECOMMENDED ACTIONS:\n")
		for i, action := range actions {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, action)
		}
	}

	sb.WriteString("\n\nUPGRADE NOTES:\n")
	fmt.Fprintf(&sb, "Estimated Downtime: %s\n", orFallback(analysis.UpgradeNotes.EstimatedDowntime, "Unknown"))
	if issues := bound(analysis.UpgradeNotes.KnownIssues, 3); len(issues) > 0 {
		sb.WriteString("\nKnown Issues:\n")
		for _, issue := range issues {
			fmt.Fprintf(&sb, "- %s\n", issue)
		}
	}

	fmt.Fprintf(&sb, "\n\nCreated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString("Source: Rancher Release Bot")

	return sb.String()
}
