package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"

	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/model"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/types"
)

const (
	defaultListLimit   = 100
	searchLimit        = 50
	historyGlobalLimit = 100
	timeFormat         = time.RFC3339Nano
)

const schema = `
CREATE TABLE IF NOT EXISTS releases (
	version TEXT PRIMARY KEY,
	release_data TEXT NOT NULL,
	analysis TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	version TEXT NOT NULL,
	channel TEXT NOT NULL,
	sent_at TEXT NOT NULL,
	FOREIGN KEY (version) REFERENCES releases(version)
);

CREATE INDEX IF NOT EXISTS idx_releases_created ON releases(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_version ON notifications(version);
`

// Store is the SQLite-backed release store.
type Store struct {
	conn *sql.DB
	path string
}

var _ interfaces.ReleaseStore = (*Store)(nil)

// New opens or creates the database at path and applies the schema.
func New(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", path), goerr.T(types.ErrTagPersistence))
	}

	// WAL mode for concurrent readers during pipeline writes
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, goerr.Wrap(err, "failed to set journal mode", goerr.T(types.ErrTagPersistence))
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = conn.Close()
		return nil, goerr.Wrap(err, "failed to enable foreign keys", goerr.T(types.ErrTagPersistence))
	}

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, goerr.Wrap(err, "failed to apply schema", goerr.T(types.ErrTagPersistence))
	}

	return &Store{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// PutRelease upserts the record for version. An existing row is replaced
// wholesale, keeping its created_at and refreshing updated_at.
func (s *Store) PutRelease(ctx context.Context, version string, data *model.Release, analysis *model.Analysis) error {
	rawJSON, err := json.Marshal(data)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal release data", goerr.V("version", version), goerr.T(types.ErrTagPersistence))
	}
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal analysis", goerr.V("version", version), goerr.T(types.ErrTagPersistence))
	}

	now := time.Now().UTC().Format(timeFormat)
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO releases (version, release_data, analysis, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(version) DO UPDATE SET
			release_data = excluded.release_data,
			analysis = excluded.analysis,
			updated_at = excluded.updated_at
	`, version, string(rawJSON), string(analysisJSON), now, now)
	if err != nil {
		return goerr.Wrap(err, "failed to store release", goerr.V("version", version), goerr.T(types.ErrTagPersistence))
	}

	return nil
}

// GetRelease returns the record for version.
func (s *Store) GetRelease(ctx context.Context, version string) (*model.StoredRelease, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT version, release_data, analysis, created_at, updated_at
		FROM releases WHERE version = ?
	`, version)

	rec, err := scanStoredRelease(row)
	if err == sql.ErrNoRows {
		return nil, goerr.New("release not found", goerr.V("version", version), goerr.T(types.ErrTagMissingVersion))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get release", goerr.V("version", version), goerr.T(types.ErrTagPersistence))
	}

	return rec, nil
}

// GetLatestRelease returns the record with the maximum created_at.
func (s *Store) GetLatestRelease(ctx context.Context) (*model.StoredRelease, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT version, release_data, analysis, created_at, updated_at
		FROM releases ORDER BY created_at DESC LIMIT 1
	`)

	rec, err := scanStoredRelease(row)
	if err == sql.ErrNoRows {
		return nil, goerr.New("no releases stored", goerr.T(types.ErrTagMissingVersion))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get latest release", goerr.T(types.ErrTagPersistence))
	}

	return rec, nil
}

// ListReleases returns up to limit summaries, most recent first.
func (s *Store) ListReleases(ctx context.Context, limit int) ([]*model.ReleaseSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT version, analysis, created_at
		FROM releases ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list releases", goerr.T(types.ErrTagPersistence))
	}
	defer rows.Close()

	return collectSummaries(rows)
}

// SearchReleases substring-matches query against the version string and the
// serialized analysis text. SQLite LIKE is case-insensitive for ASCII, which
// matches the original behavior.
func (s *Store) SearchReleases(ctx context.Context, query string) ([]*model.ReleaseSummary, error) {
	pattern := "%" + query + "%"

	rows, err := s.conn.QueryContext(ctx, `
		SELECT version, analysis, created_at
		FROM releases
		WHERE version LIKE ? OR analysis LIKE ?
		ORDER BY created_at DESC
		LIMIT ?
	`, pattern, pattern, searchLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search releases", goerr.V("query", query), goerr.T(types.ErrTagPersistence))
	}
	defer rows.Close()

	return collectSummaries(rows)
}

// RecordNotification appends one notification log entry. No uniqueness
// constraint: reruns may record the same (version, channel) pair again.
func (s *Store) RecordNotification(ctx context.Context, version, channel string) error {
	sentAt := time.Now().UTC().Format(timeFormat)
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO notifications (version, channel, sent_at) VALUES (?, ?, ?)
	`, version, channel, sentAt)
	if err != nil {
		return goerr.Wrap(err, "failed to record notification",
			goerr.V("version", version), goerr.V("channel", channel), goerr.T(types.ErrTagPersistence))
	}

	return nil
}

// NotificationHistory returns entries for version, or the bounded global
// history when version is empty.
func (s *Store) NotificationHistory(ctx context.Context, version string) ([]*model.NotificationRecord, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if version != "" {
		rows, err = s.conn.QueryContext(ctx, `
			SELECT id, version, channel, sent_at FROM notifications
			WHERE version = ? ORDER BY sent_at DESC
		`, version)
	} else {
		rows, err = s.conn.QueryContext(ctx, `
			SELECT id, version, channel, sent_at FROM notifications
			ORDER BY sent_at DESC LIMIT ?
		`, historyGlobalLimit)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get notification history", goerr.V("version", version), goerr.T(types.ErrTagPersistence))
	}
	defer rows.Close()

	var records []*model.NotificationRecord
	for rows.Next() {
		var (
			rec    model.NotificationRecord
			sentAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Version, &rec.Channel, &sentAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan notification", goerr.T(types.ErrTagPersistence))
		}
		rec.SentAt = parseTime(sentAt)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate notifications", goerr.T(types.ErrTagPersistence))
	}

	return records, nil
}

// Stats summarizes the store, including the database file size in bytes.
func (s *Store) Stats(ctx context.Context) (*model.StoreStats, error) {
	stats := &model.StoreStats{}

	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM releases").Scan(&stats.TotalReleases); err != nil {
		return nil, goerr.Wrap(err, "failed to count releases", goerr.T(types.ErrTagPersistence))
	}
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM notifications").Scan(&stats.TotalNotifications); err != nil {
		return nil, goerr.Wrap(err, "failed to count notifications", goerr.T(types.ErrTagPersistence))
	}

	latest, err := s.GetLatestRelease(ctx)
	if err == nil {
		stats.LatestRelease = latest.Version
	} else if !goerr.HasTag(err, types.ErrTagMissingVersion) {
		return nil, err
	}

	if info, err := os.Stat(s.path); err == nil {
		stats.DatabaseSizeBytes = info.Size()
	}

	return stats, nil
}

func scanStoredRelease(row *sql.Row) (*model.StoredRelease, error) {
	var (
		rec                  model.StoredRelease
		rawJSON              string
		analysisJSON         string
		createdAt, updatedAt string
	)
	if err := row.Scan(&rec.Version, &rawJSON, &analysisJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	rec.ReleaseData = &model.Release{}
	if err := json.Unmarshal([]byte(rawJSON), rec.ReleaseData); err != nil {
		return nil, err
	}
	rec.Analysis = &model.Analysis{}
	if err := json.Unmarshal([]byte(analysisJSON), rec.Analysis); err != nil {
		return nil, err
	}
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)

	return &rec, nil
}

func collectSummaries(rows *sql.Rows) ([]*model.ReleaseSummary, error) {
	var summaries []*model.ReleaseSummary
	for rows.Next() {
		var (
			version      string
			analysisJSON string
			createdAt    string
		)
		if err := rows.Scan(&version, &analysisJSON, &createdAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan release row", goerr.T(types.ErrTagPersistence))
		}

		var analysis model.Analysis
		if err := json.Unmarshal([]byte(analysisJSON), &analysis); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal analysis", goerr.V("version", version), goerr.T(types.ErrTagPersistence))
		}

		summary := analysis.Summary
		if summary == "" {
			summary = "No summary"
		}
		severity := analysis.Severity
		if severity == "" {
			severity = model.SeverityNormal
		}

		summaries = append(summaries, &model.ReleaseSummary{
			Version:   version,
			Summary:   summary,
			Severity:  severity,
			CreatedAt: parseTime(createdAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate release rows", goerr.T(types.ErrTagPersistence))
	}

	return summaries, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
