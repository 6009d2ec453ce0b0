package model

// Comparison is an ephemeral report contrasting two stored analyses. It is
// never persisted. Error is set when either input version is absent from the
// store or when the comparison response could not be parsed.
type Comparison struct {
	Summary              string   `json:"summary"`
	MajorChanges         []string `json:"major_changes"`
	UpgradeComplexity    string   `json:"upgrade_complexity"`
	RecommendedPath      string   `json:"recommended_path"`
	MigrationTime        string   `json:"migration_time"`
	BreakingChangesCount int      `json:"breaking_changes_count"`
	RiskLevel            string   `json:"risk_level"`

	Error string `json:"error,omitempty"`
}
