// Package queue defines message payloads exchanged over the message broker.
package queue

// ScanQueueName is the durable queue carrying scan events.
const ScanQueueName = "tag.scanned"

// TagScannedEvent is published after public resolution records a scan.
// It carries enough for downstream consumers to log or notify without
// querying the primary database. The database row written during
// resolution remains the source of truth; this event is best-effort
// fan-out.
type TagScannedEvent struct {
	EventID     string `json:"event_id"`
	TagID       uint64 `json:"tag_id"`
	Code        string `json:"code"`
	PlateNumber string `json:"plate_number"`
	Location    string `json:"location"`
	ScannedAt   string `json:"scanned_at"`
}
