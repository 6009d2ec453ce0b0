package model

import "time"

// Release is the raw upstream payload for one version announcement.
// Immutable once upstream assigns the version string.
type Release struct {
	Version      string `json:"version"`
	ReleaseNotes string `json:"release_notes"`
	BuildConfig  string `json:"build_config"`
	Changelog    string `json:"changelog"`
}

// StoredRelease is a release record as persisted: raw payload plus its
// analysis. Every stored release has a non-nil Analysis; failed analyses are
// stored as the fallback record, never omitted.
type StoredRelease struct {
	Version     string    `json:"version"`
	ReleaseData *Release  `json:"release_data"`
	Analysis    *Analysis `json:"analysis"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ReleaseSummary is the reduced row returned by list and search queries.
type ReleaseSummary struct {
	Version   string    `json:"version"`
	Summary   string    `json:"summary"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}
