package service

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/vehicle-tag-registry/internal/model"
	"github.com/iliyamo/vehicle-tag-registry/internal/repository"
)

// fakeStore is an in-memory TagStore mirroring the repository's
// semantics: conditional claim, closed flag set, append-only scans.
type fakeStore struct {
	mu     sync.Mutex
	nextID uint64
	tags   map[uint64]model.Tag
	scans  map[uint64][]model.ScanEvent

	// failAppendScan forces AppendScan to return this error.
	failAppendScan error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID: 1,
		tags:   make(map[uint64]model.Tag),
		scans:  make(map[uint64][]model.ScanEvent),
	}
}

// addBlank seeds one freshly issued tag and returns it.
func (f *fakeStore) addBlank(code string) model.Tag {
	f.mu.Lock()
	defer f.mu.Unlock()
	tag := model.Tag{
		ID:      f.nextID,
		Code:    code,
		Status:  model.TagStatusCreated,
		Privacy: model.DefaultPrivacyFlags(),
	}
	f.nextID++
	f.tags[tag.ID] = tag
	return tag
}

// addActive seeds a claimed tag owned by ownerID.
func (f *fakeStore) addActive(code string, ownerID uint64) model.Tag {
	tag := f.addBlank(code)
	f.mu.Lock()
	defer f.mu.Unlock()
	tag.OwnerID = &ownerID
	tag.Status = model.TagStatusActive
	tag.Nickname = "My Vehicle"
	tag.PlateNumber = "KA-01-1234"
	f.tags[tag.ID] = tag
	return tag
}

func (f *fakeStore) GetByID(_ context.Context, id uint64) (model.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tag, ok := f.tags[id]
	if !ok {
		return model.Tag{}, repository.ErrTagNotFound
	}
	return tag, nil
}

func (f *fakeStore) GetByCode(_ context.Context, code string) (model.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tag := range f.tags {
		if tag.Code == code {
			return tag, nil
		}
	}
	return model.Tag{}, repository.ErrTagNotFound
}

func (f *fakeStore) ListByOwner(_ context.Context, ownerID uint64) ([]model.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Tag
	for _, tag := range f.tags {
		if tag.OwnerID != nil && *tag.OwnerID == ownerID {
			out = append(out, tag)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateBatch(_ context.Context, batchID string, codes []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing := make(map[string]struct{}, len(f.tags))
	for _, tag := range f.tags {
		existing[tag.Code] = struct{}{}
	}
	for _, code := range codes {
		if _, dup := existing[code]; dup {
			return repository.ErrDuplicateCode
		}
	}
	for _, code := range codes {
		f.tags[f.nextID] = model.Tag{
			ID:      f.nextID,
			Code:    code,
			BatchID: batchID,
			Status:  model.TagStatusCreated,
			Privacy: model.DefaultPrivacyFlags(),
		}
		f.nextID++
	}
	return nil
}

func (f *fakeStore) ListByBatch(_ context.Context, batchID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var codes []string
	for id := uint64(1); id < f.nextID; id++ {
		if tag, ok := f.tags[id]; ok && tag.BatchID == batchID {
			codes = append(codes, tag.Code)
		}
	}
	return codes, nil
}

func (f *fakeStore) Claim(_ context.Context, code string, ownerID uint64, nickname, plateNumber, vehicleType string) (model.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, tag := range f.tags {
		if tag.Code != code {
			continue
		}
		if tag.Status != model.TagStatusCreated || tag.OwnerID != nil {
			return model.Tag{}, repository.ErrAlreadyClaimed
		}
		tag.OwnerID = &ownerID
		tag.Status = model.TagStatusActive
		tag.Nickname = nickname
		tag.PlateNumber = plateNumber
		tag.VehicleType = vehicleType
		f.tags[id] = tag
		return tag, nil
	}
	return model.Tag{}, repository.ErrTagNotFound
}

func applyPatch(tag *model.Tag, patch model.TagPatch) {
	if patch.Nickname != nil {
		tag.Nickname = *patch.Nickname
	}
	if patch.PlateNumber != nil {
		tag.PlateNumber = *patch.PlateNumber
	}
	if patch.VehicleType != nil {
		tag.VehicleType = *patch.VehicleType
	}
	if patch.VehicleColor != nil {
		tag.VehicleColor = *patch.VehicleColor
	}
	if patch.VehicleMake != nil {
		tag.VehicleMake = *patch.VehicleMake
	}
	if patch.VehicleModel != nil {
		tag.VehicleModel = *patch.VehicleModel
	}
	if patch.EmergencyContactName != nil {
		tag.EmergencyContact.Name = *patch.EmergencyContactName
	}
}

func (f *fakeStore) UpdateFields(_ context.Context, id uint64, patch model.TagPatch) (model.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tag, ok := f.tags[id]
	if !ok {
		return model.Tag{}, repository.ErrTagNotFound
	}
	applyPatch(&tag, patch)
	f.tags[id] = tag
	return tag, nil
}

func (f *fakeStore) CommitVerifiedPatch(_ context.Context, id uint64, patch model.TagPatch, verifiedPhone string) (model.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tag, ok := f.tags[id]
	if !ok {
		return model.Tag{}, repository.ErrTagNotFound
	}
	applyPatch(&tag, patch)
	tag.EmergencyContact.Phone = verifiedPhone
	f.tags[id] = tag
	return tag, nil
}

func (f *fakeStore) ToggleFlag(_ context.Context, id, ownerID uint64, flag string) (model.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tag, ok := f.tags[id]
	if !ok {
		return model.Tag{}, repository.ErrTagNotFound
	}
	if tag.OwnerID == nil || *tag.OwnerID != ownerID {
		return model.Tag{}, repository.ErrForbidden
	}
	switch flag {
	case "allow_masked_call":
		tag.Privacy.AllowMaskedCall = !tag.Privacy.AllowMaskedCall
	case "allow_whatsapp":
		tag.Privacy.AllowWhatsapp = !tag.Privacy.AllowWhatsapp
	case "allow_sms":
		tag.Privacy.AllowSMS = !tag.Privacy.AllowSMS
	case "show_emergency_contact":
		tag.Privacy.ShowEmergencyContact = !tag.Privacy.ShowEmergencyContact
	default:
		return model.Tag{}, repository.ErrUnknownFlag
	}
	f.tags[id] = tag
	return tag, nil
}

func (f *fakeStore) Disable(_ context.Context, id, ownerID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tag, ok := f.tags[id]
	if !ok {
		return repository.ErrTagNotFound
	}
	if tag.OwnerID == nil || *tag.OwnerID != ownerID {
		return repository.ErrForbidden
	}
	tag.Status = model.TagStatusDisabled
	f.tags[id] = tag
	return nil
}

func (f *fakeStore) Reactivate(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tag, ok := f.tags[id]
	if !ok {
		return repository.ErrTagNotFound
	}
	if tag.Status != model.TagStatusDisabled {
		return repository.ErrConflict
	}
	tag.Status = model.TagStatusActive
	f.tags[id] = tag
	return nil
}

func (f *fakeStore) AppendScan(_ context.Context, tagID uint64, at time.Time, location string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAppendScan != nil {
		return f.failAppendScan
	}
	events := f.scans[tagID]
	f.scans[tagID] = append(events, model.ScanEvent{
		ID:        uint64(len(events) + 1),
		TagID:     tagID,
		ScannedAt: at,
		Location:  location,
	})
	return nil
}

func (f *fakeStore) ScansByTag(_ context.Context, tagID uint64, limit int) ([]model.ScanEvent, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := f.scans[tagID]
	total := int64(len(events))
	// Newest first, as the repository orders them.
	out := make([]model.ScanEvent, 0, limit)
	for i := len(events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, events[i])
	}
	return out, total, nil
}

func (f *fakeStore) scanCount(tagID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scans[tagID])
}
