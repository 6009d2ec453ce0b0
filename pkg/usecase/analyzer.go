package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/types"
)

//go:embed prompts/analysis_system.md
var analysisSystemPrompt string

//go:embed prompts/analysis_user.md
var analysisUserTemplate string

//go:embed prompts/resources_user.md
var resourcesUserTemplate string

//go:embed prompts/comparison_user.md
var comparisonUserTemplate string

// Prompt input bounds, matching the completion contract.
const (
	maxReleaseNotesChars = 2500
	maxBuildConfigChars  = 800
	maxSummaryChars      = 200
	maxSeedFeatures      = 3
)

type analyzer struct {
	llmClient    gollem.LLMClient
	store        interfaces.ReleaseStore
	analysisTmpl *template.Template
	resourceTmpl *template.Template
	compareTmpl  *template.Template
}

var _ interfaces.AnalyzerUseCase = (*analyzer)(nil)

// NewAnalyzer creates an AnalyzerUseCase instance. The store is only read,
// for cross-version comparisons.
func NewAnalyzer(llmClient gollem.LLMClient, store interfaces.ReleaseStore) (interfaces.AnalyzerUseCase, error) {
	analysisTmpl, err := template.New("analysis").Parse(analysisUserTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse analysis prompt template")
	}
	resourceTmpl, err := template.New("resources").Parse(resourcesUserTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse resources prompt template")
	}
	compareTmpl, err := template.New("comparison").Parse(comparisonUserTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse comparison prompt template")
	}

	return &analyzer{
		llmClient:    llmClient,
		store:        store,
		analysisTmpl: analysisTmpl,
		resourceTmpl: resourceTmpl,
		compareTmpl:  compareTmpl,
	}, nil
}

// AnalyzeRelease turns raw release text into a structured Analysis. It never
// fails: any error along the way yields the canonical fallback record with
// Error set, so every stored release carries a well-formed analysis.
func (uc *analyzer) AnalyzeRelease(ctx context.Context, release *model.Release) *model.Analysis {
	logger := ctxlog.From(ctx)

	var buf bytes.Buffer
	if err := uc.analysisTmpl.Execute(&buf, map[string]string{
		"Version":      release.Version,
		"ReleaseNotes": orUnavailable(truncate(release.ReleaseNotes, maxReleaseNotesChars)),
		"BuildConfig":  orUnavailable(truncate(release.BuildConfig, maxBuildConfigChars)),
	}); err != nil {
		logger.Error("Failed to build analysis prompt", "error", err, "version", release.Version)
		return fallbackAnalysis(release.Version, err.Error())
	}

	logger.Debug("Calling completion service for release analysis",
		"version", release.Version, "prompt_length", buf.Len())

	respText, err := uc.generate(ctx, buf.String(), analysisSystemPrompt)
	if err != nil {
		logger.Error("Completion call failed", "error", err, "version", release.Version)
		return fallbackAnalysis(release.Version, err.Error())
	}

	var analysis model.Analysis
	if err := decodeRepairable(respText, &analysis); err != nil {
		logger.Warn("Unparseable analysis response, using fallback",
			"error", err, "version", release.Version)
		return fallbackAnalysis(release.Version, err.Error())
	}
	if analysis.Version == "" {
		analysis.Version = release.Version
	}

	logger.Info("Analysis complete",
		"version", release.Version,
		"severity", analysis.Severity,
		"release_type", analysis.ReleaseType,
	)

	return &analysis
}

// FindResources derives supplementary links for a release, seeded by up to
// the first three feature titles of its analysis. Failures yield empty
// resource lists, never an error.
func (uc *analyzer) FindResources(ctx context.Context, version string, analysis *model.Analysis) *model.Resources {
	logger := ctxlog.From(ctx)

	var titles []string
	for _, f := range analysis.NewFeatures {
		if len(titles) == maxSeedFeatures {
			break
		}
		titles = append(titles, f.Title)
	}
	features := "general"
	if len(titles) > 0 {
		features = strings.Join(titles, ", ")
	}

	var buf bytes.Buffer
	if err := uc.resourceTmpl.Execute(&buf, map[string]string{
		"Version":  version,
		"Features": features,
	}); err != nil {
		logger.Error("Failed to build resources prompt", "error", err, "version", version)
		return emptyResources()
	}

	respText, err := uc.generate(ctx, buf.String(), "")
	if err != nil {
		logger.Warn("Resource lookup failed", "error", err, "version", version)
		return emptyResources()
	}

	var resources model.Resources
	if err := decodeRepairable(respText, &resources); err != nil {
		logger.Warn("Unparseable resources response", "error", err, "version", version)
		return emptyResources()
	}

	resources.Documentation = bound(resources.Documentation, 3)
	resources.KBArticles = bound(resources.KBArticles, 3)
	resources.Videos = bound(resources.Videos, 3)

	logger.Info("Found resources",
		"version", version,
		"docs", len(resources.Documentation),
		"videos", len(resources.Videos),
	)

	return &resources
}

// CompareVersions contrasts two stored analyses. When either version is
// absent every missing version is named in the error result, and the
// completion service is not called.
func (uc *analyzer) CompareVersions(ctx context.Context, v1, v2 string) *model.Comparison {
	logger := ctxlog.From(ctx)

	rec1, err1 := uc.store.GetRelease(ctx, v1)
	rec2, err2 := uc.store.GetRelease(ctx, v2)

	var missing []string
	if err1 != nil {
		if !goerr.HasTag(err1, types.ErrTagMissingVersion) {
			logger.Error("Failed to load release for comparison", "error", err1, "version", v1)
		}
		missing = append(missing, v1)
	}
	if err2 != nil {
		if !goerr.HasTag(err2, types.ErrTagMissingVersion) {
			logger.Error("Failed to load release for comparison", "error", err2, "version", v2)
		}
		missing = append(missing, v2)
	}
	if len(missing) > 0 {
		return &model.Comparison{
			Error:   "Version(s) not found: " + strings.Join(missing, ", "),
			Summary: "Cannot compare - versions not in database",
		}
	}

	var buf bytes.Buffer
	if err := uc.compareTmpl.Execute(&buf, map[string]any{
		"Version1":  v1,
		"Summary1":  truncate(rec1.Analysis.Summary, maxSummaryChars),
		"Features1": len(rec1.Analysis.NewFeatures),
		"Severity1": rec1.Analysis.Severity,
		"Version2":  v2,
		"Summary2":  truncate(rec2.Analysis.Summary, maxSummaryChars),
		"Features2": len(rec2.Analysis.NewFeatures),
		"Severity2": rec2.Analysis.Severity,
	}); err != nil {
		logger.Error("Failed to build comparison prompt", "error", err)
		return &model.Comparison{Error: err.Error(), Summary: "Failed to generate comparison"}
	}

	respText, err := uc.generate(ctx, buf.String(), "")
	if err != nil {
		logger.Error("Comparison call failed", "error", err, "v1", v1, "v2", v2)
		return &model.Comparison{Error: err.Error(), Summary: "Failed to generate comparison"}
	}

	var cmp model.Comparison
	if err := decodeRepairable(respText, &cmp); err != nil {
		logger.Warn("Unparseable comparison response", "error", err, "v1", v1, "v2", v2)
		return &model.Comparison{Error: err.Error(), Summary: "Failed to generate comparison"}
	}

	logger.Info("Comparison complete", "v1", v1, "v2", v2, "risk_level", cmp.RiskLevel)

	return &cmp
}

// generate runs one JSON-mode completion call and returns the response text.
func (uc *analyzer) generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	opts := []gollem.SessionOption{
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
	}
	if systemPrompt != "" {
		opts = append(opts, gollem.WithSessionSystemPrompt(systemPrompt))
	}

	session, err := uc.llmClient.NewSession(ctx, opts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create completion session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate completion")
	}
	if len(resp.Texts) == 0 {
		return "", goerr.New("empty completion response")
	}

	return resp.Texts[0], nil
}

// fallbackAnalysis is the canonical record substituted when analysis fails.
// Severity stays normal so a misbehaving completion service neither pages
// anyone nor hides the release.
func fallbackAnalysis(version, errMsg string) *model.Analysis {
	return &model.Analysis{
		Version:            version,
		ReleaseType:        model.ReleaseTypeUnknown,
		Severity:           model.SeverityNormal,
		Summary:            "Failed to parse analysis. Please check logs.",
		NewFeatures:        []model.Feature{},
		BugFixes:           []model.BugFix{},
		BreakingChanges:    []model.BreakingChange{},
		SecurityUpdates:    []model.SecurityUpdate{},
		RecommendedActions: []string{"Review release manually"},
		UpgradeNotes: model.UpgradeNotes{
			Prerequisites:     []string{},
			KnownIssues:       []string{},
			EstimatedDowntime: "Unknown",
		},
		Error: errMsg,
	}
}

func emptyResources() *model.Resources {
	return &model.Resources{
		Documentation: []model.ResourceLink{},
		KBArticles:    []model.ResourceLink{},
		Videos:        []model.ResourceLink{},
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func orUnavailable(s string) string {
	if s == "" {
		return "Not available"
	}
	return s
}

func bound[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
