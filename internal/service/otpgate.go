package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/vehicle-tag-registry/internal/metrics"
	"github.com/iliyamo/vehicle-tag-registry/internal/model"
	"github.com/iliyamo/vehicle-tag-registry/internal/repository"
	"github.com/iliyamo/vehicle-tag-registry/internal/store"
	"github.com/iliyamo/vehicle-tag-registry/internal/utils"
)

// ErrNoPendingOTP is returned by verify when no entry exists for
// (tagID, phone): either no code was ever sent, it was already
// consumed, or it expired long enough ago that the store dropped it.
var ErrNoPendingOTP = errors.New("no pending verification for this number")

// ErrOTPExpired is returned when the entry exists but its window has
// closed. The stale entry is deleted as a side effect, so the caller
// must request a fresh code.
var ErrOTPExpired = errors.New("verification code expired")

// ErrInvalidOTP is returned when the submitted code does not match.
// The entry is kept so the user may retry within the window.
var ErrInvalidOTP = errors.New("invalid verification code")

// ErrPhoneRequired is returned when a send request omits the new number.
var ErrPhoneRequired = errors.New("phone number is required")

// DefaultOTPTTL is the verification window for a phone-change code.
const DefaultOTPTTL = 5 * time.Minute

// OTPGate intercepts emergency-contact phone changes. Nothing is
// written on send: the full proposed edit is parked in the pending
// store next to a hash of the code, and only a successful verify
// commits it - phone included - as a single update.
type OTPGate struct {
	store    TagStore
	pending  store.PendingChangeStore
	sender   Sender
	ttl      time.Duration
	hashCost int
	now      func() time.Time
}

// NewOTPGate wires the gate to the tag store, the pending keyspace and
// an SMS sender. hashCost is the bcrypt cost used for codes at rest.
func NewOTPGate(tags TagStore, pending store.PendingChangeStore, sender Sender, ttl time.Duration, hashCost int) *OTPGate {
	if tags == nil || pending == nil || sender == nil {
		panic("nil dependency passed to NewOTPGate")
	}
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &OTPGate{
		store:    tags,
		pending:  pending,
		sender:   sender,
		ttl:      ttl,
		hashCost: hashCost,
		now:      time.Now,
	}
}

func (g *OTPGate) ownedTag(ctx context.Context, tagID, callerID uint64) (model.Tag, error) {
	tag, err := g.store.GetByID(ctx, tagID)
	if err != nil {
		return model.Tag{}, err
	}
	if tag.OwnerID == nil || *tag.OwnerID != callerID {
		return model.Tag{}, repository.ErrForbidden
	}
	return tag, nil
}

// SendOTP issues a fresh 6-digit code for changing the tag's emergency
// phone to newPhone and parks the full pending patch alongside it. A
// second send for the same (tag, phone) replaces the first entry
// outright - new code, new expiry, new captured patch - which is what
// "resend code" relies on. Success means the send step succeeded,
// nothing more.
func (g *OTPGate) SendOTP(ctx context.Context, tagID, callerID uint64, newPhone string, patch model.TagPatch) error {
	newPhone = strings.TrimSpace(newPhone)
	if newPhone == "" {
		return ErrPhoneRequired
	}
	if _, err := g.ownedTag(ctx, tagID, callerID); err != nil {
		return err
	}
	code, err := utils.GenerateOTP()
	if err != nil {
		return err
	}
	hash, err := utils.HashOTP(code, g.hashCost)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}
	entry := store.PendingChange{
		OTPHash:   hash,
		Phone:     newPhone,
		ExpiresAt: g.now().Add(g.ttl),
		Patch:     patch,
	}
	if err := g.pending.Put(ctx, tagID, newPhone, entry); err != nil {
		return err
	}
	msg := fmt.Sprintf("Your vehicle tag verification code is %s. It expires in %d minutes.",
		code, int(g.ttl.Minutes()))
	if err := g.sender.Send(newPhone, msg); err != nil {
		return fmt.Errorf("dispatch otp: %w", err)
	}
	metrics.OTPSentTotal.Inc()
	return nil
}

// VerifyAndCommit checks the submitted code against the pending entry
// for (tagID, phone) and, on success, consumes the entry and persists
// the merged patch plus the verified phone as one update. The patch
// submitted now wins field by field over the copy captured at send
// time. This is the only path that writes the emergency phone.
func (g *OTPGate) VerifyAndCommit(ctx context.Context, tagID, callerID uint64, phone, code string, patch model.TagPatch) (model.Tag, error) {
	phone = strings.TrimSpace(phone)
	if _, err := g.ownedTag(ctx, tagID, callerID); err != nil {
		return model.Tag{}, err
	}
	entry, ok, err := g.pending.Get(ctx, tagID, phone)
	if err != nil {
		return model.Tag{}, err
	}
	if !ok {
		return model.Tag{}, ErrNoPendingOTP
	}
	if entry.Expired(g.now()) {
		_ = g.pending.Delete(ctx, tagID, phone)
		return model.Tag{}, ErrOTPExpired
	}
	if !utils.CompareOTP(entry.OTPHash, code) {
		return model.Tag{}, ErrInvalidOTP
	}
	if err := g.pending.Delete(ctx, tagID, phone); err != nil {
		return model.Tag{}, err
	}
	merged := entry.Patch.MergedWith(patch)
	merged.EmergencyContactPhone = nil // the verified number is written explicitly
	tag, err := g.store.CommitVerifiedPatch(ctx, tagID, merged, phone)
	if err != nil {
		return model.Tag{}, err
	}
	metrics.OTPVerifiedTotal.Inc()
	return tag, nil
}
