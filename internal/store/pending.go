// Package store holds the ephemeral pending-change keyspace backing
// the OTP gate. Entries are keyed by (tagID, phone): a second send for
// the same key silently replaces the first (last-send-wins, which is
// what makes "resend code" work), and a successful verify consumes the
// entry.
package store

import (
	"context"
	"time"

	"github.com/iliyamo/vehicle-tag-registry/internal/model"
)

// Grace is how long an entry outlives its own expiry before the
// backing store drops it entirely. Within the grace window a verify
// still finds the entry and can report "expired" instead of the less
// helpful "no pending verification".
const Grace = time.Minute

// PendingChange is everything captured when a phone-change OTP is sent:
// a bcrypt hash of the code (never the plaintext), the expiry, the
// proposed new phone and the full multi-field patch submitted alongside
// it. Capturing the whole patch lets a verified OTP commit one
// consistent edit instead of forcing two save actions.
type PendingChange struct {
	OTPHash   string         `json:"otp_hash"`
	Phone     string         `json:"phone"`
	ExpiresAt time.Time      `json:"expires_at"`
	Patch     model.TagPatch `json:"patch"`
}

// Expired reports whether the entry's verification window has closed.
func (p PendingChange) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// PendingChangeStore is the TTL-capable keyed store behind the OTP
// gate. The Redis implementation survives restarts and scales across
// instances; the in-memory one is a single-process fallback used when
// no Redis is configured.
type PendingChangeStore interface {
	// Put stores an entry under (tagID, phone), overwriting any
	// previous entry for the same key.
	Put(ctx context.Context, tagID uint64, phone string, entry PendingChange) error
	// Get returns the entry for (tagID, phone). The boolean is false
	// when no entry exists (never sent, already consumed, or dropped
	// after expiry plus grace).
	Get(ctx context.Context, tagID uint64, phone string) (PendingChange, bool, error)
	// Delete removes the entry for (tagID, phone). Deleting a missing
	// entry is not an error.
	Delete(ctx context.Context, tagID uint64, phone string) error
}
