package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/slack-go/slack"

	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
)

// Channels holds the notification channel names. Severity routing is
// two-tier: critical gets its own channel, everything else shares the
// releases channel. Team receives operational error alerts.
type Channels struct {
	Critical string
	Releases string
	Team     string
}

type notifier struct {
	chat     interfaces.ChatClient
	store    interfaces.ReleaseStore
	channels Channels
}

var _ interfaces.NotifierUseCase = (*notifier)(nil)

// NewNotifier creates a NotifierUseCase.
func NewNotifier(chat interfaces.ChatClient, store interfaces.ReleaseStore, channels Channels) interfaces.NotifierUseCase {
	return &notifier{
		chat:     chat,
		store:    store,
		channels: channels,
	}
}

// NotifyNewRelease posts the rendered analysis to the severity-selected
// channel, then records the notification. Posting and recording are
// independent steps with no rollback between them.
func (uc *notifier) NotifyNewRelease(ctx context.Context, version string, analysis *model.Analysis) error {
	logger := ctxlog.From(ctx)

	var (
		channel string
		prefix  string
	)
	switch analysis.Severity {
	case model.SeverityCritical:
		channel = uc.channels.Critical
		prefix = "CRITICAL"
	case model.SeverityImportant:
		channel = uc.channels.Releases
		prefix = "IMPORTANT"
	default:
		channel = uc.channels.Releases
		prefix = "NEW RELEASE"
	}

	blocks := buildReleaseBlocks(version, analysis)
	fallback := fmt.Sprintf("%s %s: Rancher %s", analysis.Severity.Icon(), prefix, version)

	if err := uc.chat.PostMessage(ctx, channel, blocks, fallback); err != nil {
		return err
	}

	if err := uc.store.RecordNotification(ctx, version, channel); err != nil {
		// The message is already out; an unrecorded notification is logged
		// rather than failing the release.
		logger.Error("Failed to record notification",
			"error", err, "version", version, "channel", channel)
		return nil
	}

	logger.Info("Sent release notification", "version", version, "channel", channel)

	return nil
}

// NotifyError posts a plain-text alert to the team channel. Failures are
// logged only, never propagated.
func (uc *notifier) NotifyError(ctx context.Context, message string) {
	text := "⚠️ *Rancher Bot Error*\n```" + message + "```"
	if err := uc.chat.PostMessage(ctx, uc.channels.Team, nil, text); err != nil {
		ctxlog.From(ctx).Error("Failed to send error notification", "error", err)
	}
}

// RenderRelease builds display blocks for a stored release. No side effects.
func (uc *notifier) RenderRelease(rec *model.StoredRelease) []slack.Block {
	return buildReleaseBlocks(rec.Version, rec.Analysis)
}

// RenderSearchResults builds display blocks for store search hits.
func (uc *notifier) RenderSearchResults(results []*model.ReleaseSummary, query string) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(plainText(fmt.Sprintf("🔍 Found %d releases matching '%s'", len(results), query))),
	}

	shown := results
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, r := range shown {
		blocks = append(blocks, slack.NewSectionBlock(
			mrkdwn(fmt.Sprintf("%s *%s*\n_%s_", r.Severity.Icon(), r.Version, truncate(r.Summary, 150))),
			nil, nil,
		))
	}

	if len(results) > 10 {
		blocks = append(blocks, slack.NewContextBlock("",
			mrkdwn(fmt.Sprintf("_Showing first 10 of %d results_", len(results)))))
	}

	return blocks
}

// RenderComparison builds display blocks for a version comparison.
func (uc *notifier) RenderComparison(cmp *model.Comparison, v1, v2 string) []slack.Block {
	if cmp.Error != "" {
		return []slack.Block{
			slack.NewSectionBlock(mrkdwn("❌ *Error:* "+cmp.Error), nil, nil),
		}
	}

	return []slack.Block{
		slack.NewHeaderBlock(plainText(fmt.Sprintf("📊 Comparison: %s → %s", v1, v2))),
		slack.NewSectionBlock(mrkdwn("*Summary:*\n"+orFallback(cmp.Summary, "No summary available")), nil, nil),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			mrkdwn("*Complexity:*\n" + titleWord(orFallback(cmp.UpgradeComplexity, "Unknown"))),
			mrkdwn("*Risk Level:*\n" + titleWord(orFallback(cmp.RiskLevel, "Unknown"))),
			mrkdwn("*Estimated Time:*\n" + orFallback(cmp.MigrationTime, "Unknown")),
			mrkdwn(fmt.Sprintf("*Breaking Changes:*\n%d", cmp.BreakingChangesCount)),
		}, nil),
		slack.NewSectionBlock(mrkdwn("*Recommended Path:*\n"+orFallback(cmp.RecommendedPath, "Not specified")), nil, nil),
	}
}

// buildReleaseBlocks renders an analysis into the ordered display blocks:
// header, type/severity fields, summary, then bounded category sections.
func buildReleaseBlocks(version string, analysis *model.Analysis) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(plainText(fmt.Sprintf("%s Rancher %s", analysis.Severity.Icon(), version))),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			mrkdwn("*Type:* " + orFallback(string(analysis.ReleaseType), "Unknown")),
			mrkdwn("*Severity:* " + titleWord(string(analysis.Severity))),
		}, nil),
		slack.NewSectionBlock(mrkdwn("*Summary:*\n"+orFallback(analysis.Summary, "No summary available")), nil, nil),
		slack.NewDividerBlock(),
	}

	if features := bound(analysis.NewFeatures, 3); len(features) > 0 {
		var lines []string
		for i, f := range features {
			lines = append(lines, fmt.Sprintf("*%d. %s*\n%s", i+1, f.Title, f.Description))
		}
		blocks = append(blocks, slack.NewSectionBlock(
			mrkdwn("*🎉 New Features:*\n"+strings.Join(lines, "\n\n")), nil, nil))
	}

	// Only critical and high severity fixes make the notification view.
	var criticalBugs []model.BugFix
	for _, b := range analysis.BugFixes {
		if b.Severity == "critical" || b.Severity == "high" {
			criticalBugs = append(criticalBugs, b)
		}
	}
	if criticalBugs = bound(criticalBugs, 3); len(criticalBugs) > 0 {
		var lines []string
		for _, b := range criticalBugs {
			lines = append(lines, "• "+b.Issue)
		}
		blocks = append(blocks, slack.NewSectionBlock(
			mrkdwn("*🐛 Critical Bug Fixes:*\n"+strings.Join(lines, "\n")), nil, nil))
	}

	if breaking := bound(analysis.BreakingChanges, 2); len(breaking) > 0 {
		var lines []string
		for _, b := range breaking {
			lines = append(lines, fmt.Sprintf("*%s*\n_%s_", b.Change, orFallback(b.Impact, "N/A")))
		}
		blocks = append(blocks, slack.NewSectionBlock(
			mrkdwn("*⚠️ Breaking Changes:*\n"+strings.Join(lines, "\n\n")), nil, nil))
	}

	if security := bound(analysis.SecurityUpdates, 3); len(security) > 0 {
		var lines []string
		for _, s := range security {
			lines = append(lines, fmt.Sprintf("• *%s:* %s", strings.ToUpper(orFallback(s.Severity, "unknown")), orFallback(s.Description, "N/A")))
		}
		blocks = append(blocks, slack.NewSectionBlock(
			mrkdwn("*🔒 Security Updates:*\n"+strings.Join(lines, "\n")), nil, nil))
	}

	if actions := bound(analysis.RecommendedActions, 5); len(actions) > 0 {
		var lines []string
		for i, a := range actions {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, a))
		}
		blocks = append(blocks, slack.NewSectionBlock(
			mrkdwn("*📋 Recommended Actions:*\n"+strings.Join(lines, "\n")), nil, nil))
	}

	if res := analysis.Resources; res != nil && res.Error == "" {
		var lines []string
		for _, doc := range bound(res.Documentation, 2) {
			lines = append(lines, fmt.Sprintf("• <%s|%s>", doc.URL, doc.Title))
		}
		for _, video := range bound(res.Videos, 2) {
			lines = append(lines, fmt.Sprintf("• 🎥 <%s|%s>", video.URL, video.Title))
		}
		if len(lines) > 0 {
			blocks = append(blocks, slack.NewSectionBlock(
				mrkdwn("*📚 Resources:*\n"+strings.Join(lines, "\n")), nil, nil))
		}
	}

	return blocks
}

func mrkdwn(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, true, false)
}

func orFallback(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
