package model

import "time"

// NotificationRecord is one append-only log entry of a sent notification.
// The same (version, channel) pair may appear more than once when the
// pipeline reruns; delivery is at-least-once.
type NotificationRecord struct {
	ID      int64     `json:"id"`
	Version string    `json:"version"`
	Channel string    `json:"channel"`
	SentAt  time.Time `json:"sent_at"`
}
