package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/vehicle-tag-registry/internal/metrics"
	"github.com/iliyamo/vehicle-tag-registry/internal/model"
	q "github.com/iliyamo/vehicle-tag-registry/internal/queue"
	"github.com/iliyamo/vehicle-tag-registry/internal/qrtag"
	"github.com/iliyamo/vehicle-tag-registry/internal/repository"
)

// ErrLocked is the policy response for a blank tag resolved by anything
// other than the companion app: the caller is told to get the app and
// no tag data leaves the service. Not an error condition from the
// system's perspective.
var ErrLocked = errors.New("tag locked")

// PublicEmergencyContact is the emergency block as exposed to
// scanners. Present only when the owner opted in.
type PublicEmergencyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// PublicTagView is the privacy-filtered projection served to anonymous
// scanners. It never carries the owner id or anything beyond what the
// tag's privacy flags permit. For a blank tag resolved by the trusted
// app only Code and IsBlank are set, so the app can route to the claim
// flow.
type PublicTagView struct {
	Code             string                  `json:"code"`
	IsBlank          bool                    `json:"is_blank,omitempty"`
	Nickname         string                  `json:"nickname,omitempty"`
	PlateNumber      string                  `json:"plate_number,omitempty"`
	VehicleType      string                  `json:"vehicle_type,omitempty"`
	VehicleColor     string                  `json:"vehicle_color,omitempty"`
	VehicleMake      string                  `json:"vehicle_make,omitempty"`
	VehicleModel     string                  `json:"vehicle_model,omitempty"`
	AllowMaskedCall  bool                    `json:"allow_masked_call"`
	AllowWhatsapp    bool                    `json:"allow_whatsapp"`
	AllowSMS         bool                    `json:"allow_sms"`
	EmergencyContact *PublicEmergencyContact `json:"emergency_contact,omitempty"`
}

// Resolver serves the scan-time read path: it decodes obfuscated
// identifiers, applies privacy redaction and records the scan event.
type Resolver struct {
	store   TagStore
	secret  string
	publish func(ctx context.Context, event q.TagScannedEvent) error
	now     func() time.Time
}

// NewResolver constructs the public resolution service. secret is the
// shared payload-obfuscation key. publish may be nil to disable event
// fan-out (the database append still happens).
func NewResolver(store TagStore, secret string, publish func(ctx context.Context, event q.TagScannedEvent) error) *Resolver {
	if store == nil {
		panic("nil store passed to NewResolver")
	}
	return &Resolver{store: store, secret: secret, publish: publish, now: time.Now}
}

// lookup resolves an identifier that may be an obfuscated payload, a
// printed code or an internal id, in that order of preference.
func (r *Resolver) lookup(ctx context.Context, identifier string) (model.Tag, error) {
	if decoded, err := qrtag.DecodePayload(identifier, r.secret); err == nil {
		identifier = decoded
	}
	if qrtag.IsCodeShaped(identifier) {
		return r.store.GetByCode(ctx, identifier)
	}
	if id, err := strconv.ParseUint(identifier, 10, 64); err == nil && id > 0 {
		return r.store.GetByID(ctx, id)
	}
	return model.Tag{}, repository.ErrTagNotFound
}

// Resolve returns the privacy-filtered view of a tag and appends a
// scan event - exactly once per call, regardless of which contact
// channels the viewer goes on to use. Blank tags are only revealed to
// the trusted companion app; everyone else gets ErrLocked with no tag
// data. Disabled tags resolve as not found so a deactivated sticker
// leaks nothing.
func (r *Resolver) Resolve(ctx context.Context, identifier string, appTrusted bool, location string) (PublicTagView, error) {
	tag, err := r.lookup(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return PublicTagView{}, err
	}

	if tag.IsBlank() {
		if !appTrusted {
			metrics.LockedTotal.Inc()
			return PublicTagView{}, ErrLocked
		}
		return PublicTagView{Code: tag.Code, IsBlank: true}, nil
	}
	if tag.Status == model.TagStatusDisabled {
		return PublicTagView{}, repository.ErrTagNotFound
	}

	location = strings.TrimSpace(location)
	if location == "" {
		location = "Unknown"
	}
	scannedAt := r.now().UTC()
	if err := r.store.AppendScan(ctx, tag.ID, scannedAt, location); err != nil {
		return PublicTagView{}, err
	}
	metrics.ScansTotal.Inc()

	if r.publish != nil {
		// Best-effort fan-out; the scan row above is the record.
		_ = r.publish(ctx, q.TagScannedEvent{
			EventID:     uuid.NewString(),
			TagID:       tag.ID,
			Code:        tag.Code,
			PlateNumber: tag.PlateNumber,
			Location:    location,
			ScannedAt:   scannedAt.Format(time.RFC3339),
		})
	}

	view := PublicTagView{
		Code:            tag.Code,
		Nickname:        tag.Nickname,
		PlateNumber:     tag.PlateNumber,
		VehicleType:     tag.VehicleType,
		VehicleColor:    tag.VehicleColor,
		VehicleMake:     tag.VehicleMake,
		VehicleModel:    tag.VehicleModel,
		AllowMaskedCall: tag.Privacy.AllowMaskedCall,
		AllowWhatsapp:   tag.Privacy.AllowWhatsapp,
		AllowSMS:        tag.Privacy.AllowSMS,
	}
	if tag.Privacy.ShowEmergencyContact {
		view.EmergencyContact = &PublicEmergencyContact{
			Name:  tag.EmergencyContact.Name,
			Phone: tag.EmergencyContact.Phone,
		}
	}
	return view, nil
}
