package model

// Severity is the ordinal release classification driving notification routing
// and escalation.
type Severity string

const (
	SeverityCritical  Severity = "critical"
	SeverityImportant Severity = "important"
	SeverityNormal    Severity = "normal"
	SeverityLow       Severity = "low"
	SeverityUnknown   Severity = "unknown"
)

// Rank orders severities from most to least urgent. Unknown values rank with
// normal so a malformed LLM response never escalates or gets buried.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityImportant:
		return 1
	case SeverityNormal:
		return 2
	case SeverityLow:
		return 3
	default:
		return 2
	}
}

// Icon returns the emoji used in chat headers for this severity.
func (s Severity) Icon() string {
	switch s {
	case SeverityCritical:
		return "🚨"
	case SeverityImportant:
		return "⚠️"
	case SeverityLow:
		return "ℹ️"
	default:
		return "📦"
	}
}

// ReleaseType classifies the scale of a release.
type ReleaseType string

const (
	ReleaseTypeMajor   ReleaseType = "major"
	ReleaseTypeMinor   ReleaseType = "minor"
	ReleaseTypePatch   ReleaseType = "patch"
	ReleaseTypeUnknown ReleaseType = "unknown"
)

// Analysis is the structured, LLM-derived summary of a release. List fields
// are bounded to the top 5 items per category by the prompt contract.
type Analysis struct {
	Version            string           `json:"version"`
	ReleaseType        ReleaseType      `json:"release_type"`
	Severity           Severity         `json:"severity"`
	Summary            string           `json:"summary"`
	NewFeatures        []Feature        `json:"new_features"`
	BugFixes           []BugFix         `json:"bug_fixes"`
	BreakingChanges    []BreakingChange `json:"breaking_changes"`
	SecurityUpdates    []SecurityUpdate `json:"security_updates"`
	RecommendedActions []string         `json:"recommended_actions"`
	UpgradeNotes       UpgradeNotes     `json:"upgrade_notes"`
	Resources          *Resources       `json:"resources,omitempty"`

	// Error is set only when the analysis failed or was repaired from a
	// malformed response.
	Error string `json:"error,omitempty"`
}

// Feature describes one new capability in a release.
type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

// BugFix describes one resolved issue.
type BugFix struct {
	Issue       string `json:"issue"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// BreakingChange describes one incompatible change and how to adapt.
type BreakingChange struct {
	Change         string `json:"change"`
	Impact         string `json:"impact"`
	MigrationSteps string `json:"migration_steps"`
}

// SecurityUpdate describes one security fix.
type SecurityUpdate struct {
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// UpgradeNotes carries upgrade prerequisites and expectations.
type UpgradeNotes struct {
	Prerequisites     []string `json:"prerequisites"`
	KnownIssues       []string `json:"known_issues"`
	EstimatedDowntime string   `json:"estimated_downtime"`
}

// Resources holds supplementary links, bounded to the top 3 per category.
type Resources struct {
	Documentation []ResourceLink `json:"documentation"`
	KBArticles    []ResourceLink `json:"kb_articles"`
	Videos        []ResourceLink `json:"videos"`

	Error string `json:"error,omitempty"`
}

// ResourceLink is one external reference. Description is used for docs,
// Summary for KB articles and Channel for videos.
type ResourceLink struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Channel     string `json:"channel,omitempty"`
}
