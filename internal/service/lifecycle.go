package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/vehicle-tag-registry/internal/metrics"
	"github.com/iliyamo/vehicle-tag-registry/internal/model"
	"github.com/iliyamo/vehicle-tag-registry/internal/repository"
)

// ErrOTPRequired signals that an update names a new emergency-contact
// phone and must go through the OTP gate before anything is persisted.
// It is a control signal rather than a failure: the handler answers
// with otp_required and the client resubmits the same patch to the
// gate.
var ErrOTPRequired = errors.New("otp verification required")

// ErrPlateRequired is returned when a claim omits the plate number.
var ErrPlateRequired = errors.New("plate number is required")

// defaultNickname is applied when a claim leaves the nickname blank.
const defaultNickname = "My Vehicle"

// Lifecycle owns the tag state machine (created -> active -> disabled)
// and enforces ownership on every mutation.
type Lifecycle struct {
	store TagStore
}

// NewLifecycle constructs the lifecycle controller.
func NewLifecycle(store TagStore) *Lifecycle {
	if store == nil {
		panic("nil store passed to NewLifecycle")
	}
	return &Lifecycle{store: store}
}

// Claim binds a blank tag to ownerID and activates it. The atomic
// check-and-set lives in the store; two concurrent claims on the same
// code resolve to exactly one winner, the loser receiving
// repository.ErrAlreadyClaimed.
func (s *Lifecycle) Claim(ctx context.Context, code string, ownerID uint64, nickname, plateNumber, vehicleType string) (model.Tag, error) {
	plateNumber = strings.TrimSpace(plateNumber)
	if plateNumber == "" {
		return model.Tag{}, ErrPlateRequired
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = defaultNickname
	}
	tag, err := s.store.Claim(ctx, strings.TrimSpace(code), ownerID, nickname, plateNumber, vehicleType)
	if err != nil {
		return model.Tag{}, err
	}
	metrics.ClaimsTotal.Inc()
	return tag, nil
}

// UpdateFields applies a partial edit of the caller's tag. When the
// patch carries an emergency-contact phone that is non-empty and
// differs from the stored value, nothing at all is applied and
// ErrOTPRequired is returned; the entire patch must then travel through
// the OTP gate so the eventual commit stays atomic. A phone equal to
// the stored value (or empty) is ignored rather than written, since no
// path outside the gate may touch that column.
func (s *Lifecycle) UpdateFields(ctx context.Context, tagID, callerID uint64, patch model.TagPatch) (model.Tag, error) {
	tag, err := s.store.GetByID(ctx, tagID)
	if err != nil {
		return model.Tag{}, err
	}
	if tag.OwnerID == nil || *tag.OwnerID != callerID {
		return model.Tag{}, repository.ErrForbidden
	}
	if p := patch.EmergencyContactPhone; p != nil {
		if *p != "" && *p != tag.EmergencyContact.Phone {
			return model.Tag{}, ErrOTPRequired
		}
		patch.EmergencyContactPhone = nil
	}
	return s.store.UpdateFields(ctx, tagID, patch)
}

// ToggleFlag flips one of the closed set of privacy flags on the
// caller's tag. Ownership is required; the looser behavior of letting
// any viewer toggle flags was a bug, not a feature.
func (s *Lifecycle) ToggleFlag(ctx context.Context, tagID, callerID uint64, flag string) (model.Tag, error) {
	return s.store.ToggleFlag(ctx, tagID, callerID, flag)
}

// Disable deactivates the caller's active tag. The transition is
// terminal for owners; only an administrator can reactivate.
func (s *Lifecycle) Disable(ctx context.Context, tagID, callerID uint64) error {
	return s.store.Disable(ctx, tagID, callerID)
}

// Reactivate returns a disabled tag to active and reports the updated
// row. The router restricts this to administrators.
func (s *Lifecycle) Reactivate(ctx context.Context, tagID uint64) (model.Tag, error) {
	if err := s.store.Reactivate(ctx, tagID); err != nil {
		return model.Tag{}, err
	}
	return s.store.GetByID(ctx, tagID)
}

// ListTags returns all tags bound to the caller.
func (s *Lifecycle) ListTags(ctx context.Context, ownerID uint64) ([]model.Tag, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// Scans returns the caller's tag scan history: the most recent events
// capped at limit, plus the total count.
func (s *Lifecycle) Scans(ctx context.Context, tagID, callerID uint64, limit int) ([]model.ScanEvent, int64, error) {
	tag, err := s.store.GetByID(ctx, tagID)
	if err != nil {
		return nil, 0, err
	}
	if tag.OwnerID == nil || *tag.OwnerID != callerID {
		return nil, 0, repository.ErrForbidden
	}
	return s.store.ScansByTag(ctx, tagID, limit)
}
