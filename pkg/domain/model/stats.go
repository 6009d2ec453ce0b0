package model

// StoreStats summarizes the persistence store.
type StoreStats struct {
	TotalReleases      int    `json:"total_releases"`
	TotalNotifications int    `json:"total_notifications"`
	LatestRelease      string `json:"latest_release,omitempty"`
	DatabaseSizeBytes  int64  `json:"database_size_bytes"`
}
