// Package service implements the tag lifecycle, the OTP gate, public
// resolution and batch issuance on top of the storage boundary.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/vehicle-tag-registry/internal/model"
)

// TagStore is the single boundary through which every controller
// mutates tag state. repository.TagRepo is the production
// implementation; tests substitute an in-memory fake. Keeping all
// mutations behind one interface is what makes the claim-exclusivity
// and append-only invariants enforceable in one place.
type TagStore interface {
	GetByID(ctx context.Context, id uint64) (model.Tag, error)
	GetByCode(ctx context.Context, code string) (model.Tag, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Tag, error)

	CreateBatch(ctx context.Context, batchID string, codes []string) error
	ListByBatch(ctx context.Context, batchID string) ([]string, error)

	Claim(ctx context.Context, code string, ownerID uint64, nickname, plateNumber, vehicleType string) (model.Tag, error)
	UpdateFields(ctx context.Context, id uint64, patch model.TagPatch) (model.Tag, error)
	CommitVerifiedPatch(ctx context.Context, id uint64, patch model.TagPatch, verifiedPhone string) (model.Tag, error)
	ToggleFlag(ctx context.Context, id, ownerID uint64, flag string) (model.Tag, error)
	Disable(ctx context.Context, id, ownerID uint64) error
	Reactivate(ctx context.Context, id uint64) error

	AppendScan(ctx context.Context, tagID uint64, at time.Time, location string) error
	ScansByTag(ctx context.Context, tagID uint64, limit int) ([]model.ScanEvent, int64, error)
}
