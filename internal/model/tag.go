// Package model defines the persistent entities of the tag registry.
package model

import "time"

// TagStatus enumerates the lifecycle states of a tag. A tag is created
// blank by batch issuance, becomes active when an owner claims it and
// may later be disabled. Disabled tags can only be reactivated by an
// administrator.
type TagStatus string

const (
	TagStatusCreated  TagStatus = "created"
	TagStatusActive   TagStatus = "active"
	TagStatusDisabled TagStatus = "disabled"
)

// PrivacyFlags controls which contact channels and identity fields a
// public scanner may use or see. Contact channels default to open;
// exposing the emergency contact defaults to closed.
type PrivacyFlags struct {
	AllowMaskedCall      bool `json:"allow_masked_call"`
	AllowWhatsapp        bool `json:"allow_whatsapp"`
	AllowSMS             bool `json:"allow_sms"`
	ShowEmergencyContact bool `json:"show_emergency_contact"`
}

// DefaultPrivacyFlags returns the flag values applied to freshly issued tags.
func DefaultPrivacyFlags() PrivacyFlags {
	return PrivacyFlags{
		AllowMaskedCall:      true,
		AllowWhatsapp:        true,
		AllowSMS:             true,
		ShowEmergencyContact: false,
	}
}

// EmergencyContact is the person reached when the owner cannot be.
// The phone number may only be written through the verified OTP flow.
type EmergencyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Tag mirrors the 'tags' table. Code is the human-readable identifier
// printed on the physical sticker and is immutable once assigned.
// OwnerID is nil while the tag is blank.
type Tag struct {
	ID               uint64           `json:"id"`
	Code             string           `json:"code"`
	BatchID          string           `json:"batch_id,omitempty"`
	OwnerID          *uint64          `json:"owner_id,omitempty"`
	Status           TagStatus        `json:"status"`
	Nickname         string           `json:"nickname"`
	PlateNumber      string           `json:"plate_number"`
	VehicleType      string           `json:"vehicle_type"`
	VehicleColor     string           `json:"vehicle_color"`
	VehicleMake      string           `json:"vehicle_make"`
	VehicleModel     string           `json:"vehicle_model"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
	Privacy          PrivacyFlags     `json:"privacy"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// IsBlank reports whether the tag has been issued but never claimed.
func (t *Tag) IsBlank() bool {
	return t.Status == TagStatusCreated && t.OwnerID == nil
}

// ScanEvent mirrors one row of the append-only 'tag_scans' table.
type ScanEvent struct {
	ID        uint64    `json:"id"`
	TagID     uint64    `json:"tag_id"`
	ScannedAt time.Time `json:"scanned_at"`
	Location  string    `json:"location"`
}

// TagPatch carries a partial update of owner-editable fields. Nil
// pointers leave the stored value untouched. EmergencyContactPhone is
// special: when it names a new non-empty number the whole patch is
// deferred to the OTP gate instead of being applied.
type TagPatch struct {
	Nickname              *string `json:"nickname,omitempty"`
	PlateNumber           *string `json:"plate_number,omitempty"`
	VehicleType           *string `json:"vehicle_type,omitempty"`
	VehicleColor          *string `json:"vehicle_color,omitempty"`
	VehicleMake           *string `json:"vehicle_make,omitempty"`
	VehicleModel          *string `json:"vehicle_model,omitempty"`
	EmergencyContactName  *string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string `json:"emergency_contact_phone,omitempty"`
}

// IsEmpty reports whether the patch touches no field at all.
func (p TagPatch) IsEmpty() bool {
	return p.Nickname == nil && p.PlateNumber == nil && p.VehicleType == nil &&
		p.VehicleColor == nil && p.VehicleMake == nil && p.VehicleModel == nil &&
		p.EmergencyContactName == nil && p.EmergencyContactPhone == nil
}

// MergedWith overlays other on top of p field by field. Fields present
// in other win; fields absent from other fall back to p. The OTP gate
// uses this so that values submitted at verify time take precedence
// over the copy captured at send time.
func (p TagPatch) MergedWith(other TagPatch) TagPatch {
	out := p
	if other.Nickname != nil {
		out.Nickname = other.Nickname
	}
	if other.PlateNumber != nil {
		out.PlateNumber = other.PlateNumber
	}
	if other.VehicleType != nil {
		out.VehicleType = other.VehicleType
	}
	if other.VehicleColor != nil {
		out.VehicleColor = other.VehicleColor
	}
	if other.VehicleMake != nil {
		out.VehicleMake = other.VehicleMake
	}
	if other.VehicleModel != nil {
		out.VehicleModel = other.VehicleModel
	}
	if other.EmergencyContactName != nil {
		out.EmergencyContactName = other.EmergencyContactName
	}
	if other.EmergencyContactPhone != nil {
		out.EmergencyContactPhone = other.EmergencyContactPhone
	}
	return out
}
