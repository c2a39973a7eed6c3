package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/vehicle-tag-registry/internal/model"
	"github.com/iliyamo/vehicle-tag-registry/internal/repository"
)

func strPtr(s string) *string { return &s }

func TestLifecycle_Claim(t *testing.T) {
	ctx := context.Background()

	t.Run("claims a blank tag and activates it", func(t *testing.T) {
		store := newFakeStore()
		store.addBlank("TAG-AAAA2222")
		lc := NewLifecycle(store)

		tag, err := lc.Claim(ctx, "TAG-AAAA2222", 7, "Red Swift", "KA-05-5555", "car")
		require.NoError(t, err)
		assert.Equal(t, model.TagStatusActive, tag.Status)
		require.NotNil(t, tag.OwnerID)
		assert.EqualValues(t, 7, *tag.OwnerID)
		assert.Equal(t, "Red Swift", tag.Nickname)
	})

	t.Run("defaults the nickname when left blank", func(t *testing.T) {
		store := newFakeStore()
		store.addBlank("TAG-AAAA2222")
		lc := NewLifecycle(store)

		tag, err := lc.Claim(ctx, "TAG-AAAA2222", 7, "  ", "KA-05-5555", "car")
		require.NoError(t, err)
		assert.Equal(t, "My Vehicle", tag.Nickname)
	})

	t.Run("rejects a claim without a plate number", func(t *testing.T) {
		store := newFakeStore()
		store.addBlank("TAG-AAAA2222")
		lc := NewLifecycle(store)

		_, err := lc.Claim(ctx, "TAG-AAAA2222", 7, "Swift", "   ", "car")
		assert.ErrorIs(t, err, ErrPlateRequired)
	})

	t.Run("second claim loses with already claimed", func(t *testing.T) {
		store := newFakeStore()
		store.addBlank("TAG-AAAA2222")
		lc := NewLifecycle(store)

		_, err := lc.Claim(ctx, "TAG-AAAA2222", 7, "", "KA-05-5555", "car")
		require.NoError(t, err)
		_, err = lc.Claim(ctx, "TAG-AAAA2222", 8, "", "KA-06-6666", "car")
		assert.ErrorIs(t, err, repository.ErrAlreadyClaimed)
	})

	t.Run("unknown code is not found", func(t *testing.T) {
		lc := NewLifecycle(newFakeStore())
		_, err := lc.Claim(ctx, "TAG-NOPE9999", 7, "", "KA-05-5555", "car")
		assert.ErrorIs(t, err, repository.ErrTagNotFound)
	})
}

func TestLifecycle_UpdateFields(t *testing.T) {
	ctx := context.Background()

	t.Run("applies a plain patch", func(t *testing.T) {
		store := newFakeStore()
		seeded := store.addActive("TAG-AAAA2222", 7)
		lc := NewLifecycle(store)

		tag, err := lc.UpdateFields(ctx, seeded.ID, 7, model.TagPatch{
			Nickname:     strPtr("Blue Thar"),
			VehicleColor: strPtr("blue"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Blue Thar", tag.Nickname)
		assert.Equal(t, "blue", tag.VehicleColor)
		assert.Equal(t, seeded.PlateNumber, tag.PlateNumber)
	})

	t.Run("rejects edits by a non-owner", func(t *testing.T) {
		store := newFakeStore()
		seeded := store.addActive("TAG-AAAA2222", 7)
		lc := NewLifecycle(store)

		_, err := lc.UpdateFields(ctx, seeded.ID, 8, model.TagPatch{Nickname: strPtr("mine now")})
		assert.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("a new emergency phone defers the whole patch", func(t *testing.T) {
		store := newFakeStore()
		seeded := store.addActive("TAG-AAAA2222", 7)
		lc := NewLifecycle(store)

		_, err := lc.UpdateFields(ctx, seeded.ID, 7, model.TagPatch{
			Nickname:              strPtr("Blue Thar"),
			EmergencyContactPhone: strPtr("+919900112233"),
		})
		assert.ErrorIs(t, err, ErrOTPRequired)

		// Nothing at all was applied, not even the nickname.
		after, err := store.GetByID(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, seeded.Nickname, after.Nickname)
		assert.Empty(t, after.EmergencyContact.Phone)
	})

	t.Run("a phone equal to the stored value is ignored", func(t *testing.T) {
		store := newFakeStore()
		seeded := store.addActive("TAG-AAAA2222", 7)
		store.mu.Lock()
		tag := store.tags[seeded.ID]
		tag.EmergencyContact.Phone = "+919900112233"
		store.tags[seeded.ID] = tag
		store.mu.Unlock()
		lc := NewLifecycle(store)

		got, err := lc.UpdateFields(ctx, seeded.ID, 7, model.TagPatch{
			Nickname:              strPtr("Blue Thar"),
			EmergencyContactPhone: strPtr("+919900112233"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Blue Thar", got.Nickname)
		assert.Equal(t, "+919900112233", got.EmergencyContact.Phone)
	})
}

func TestLifecycle_DisableAndReactivate(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seeded := store.addActive("TAG-AAAA2222", 7)
	lc := NewLifecycle(store)

	require.ErrorIs(t, lc.Disable(ctx, seeded.ID, 8), repository.ErrForbidden)
	require.NoError(t, lc.Disable(ctx, seeded.ID, 7))

	tag, err := store.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TagStatusDisabled, tag.Status)

	tag, err = lc.Reactivate(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TagStatusActive, tag.Status)

	// Reactivating an already active tag is a conflict.
	_, err = lc.Reactivate(ctx, seeded.ID)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestLifecycle_Scans(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seeded := store.addActive("TAG-AAAA2222", 7)
	lc := NewLifecycle(store)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.AppendScan(ctx, seeded.ID, time.Now().UTC(), "MG Road"))
	}

	events, total, err := lc.Scans(ctx, seeded.ID, 7, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, events, 3)

	_, _, err = lc.Scans(ctx, seeded.ID, 8, 3)
	assert.ErrorIs(t, err, repository.ErrForbidden)
}
