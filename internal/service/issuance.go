package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/vehicle-tag-registry/internal/qrtag"
	"github.com/iliyamo/vehicle-tag-registry/internal/repository"
)

// ErrBatchSize is returned when a batch request falls outside the
// allowed range.
var ErrBatchSize = errors.New("batch size out of range")

// ErrBatchNotFound is returned when a sheet is requested for an
// unknown batch id.
var ErrBatchNotFound = errors.New("batch not found")

// batchInsertAttempts bounds how often a whole batch is regenerated
// when the database reports a code collision. Collisions are
// astronomically rare at the code space in use, so hitting the bound
// indicates something else is wrong.
const batchInsertAttempts = 5

// IssuedTag pairs a printed code with the obfuscated payload destined
// for its QR image.
type IssuedTag struct {
	Code    string `json:"code"`
	Payload string `json:"payload"`
}

// BatchResult describes one issuance run.
type BatchResult struct {
	BatchID string      `json:"batch_id"`
	Created int         `json:"created"`
	Tags    []IssuedTag `json:"tags"`
}

// Issuer bulk-generates blank tags and the data for their printable
// sheet. Issuance is a synchronous job; it is never concurrent with
// itself.
type Issuer struct {
	store    TagStore
	secret   string
	maxBatch int
}

// NewIssuer constructs the batch issuance service.
func NewIssuer(store TagStore, secret string, maxBatch int) *Issuer {
	if store == nil {
		panic("nil store passed to NewIssuer")
	}
	if maxBatch <= 0 {
		maxBatch = 1000
	}
	return &Issuer{store: store, secret: secret, maxBatch: maxBatch}
}

// generateCodes draws count fresh codes, retrying any intra-batch
// duplicate against the in-memory set. The database uniqueness
// constraint remains the final authority against codes issued by
// earlier batches.
func generateCodes(count int) ([]string, error) {
	seen := make(map[string]struct{}, count)
	codes := make([]string, 0, count)
	for len(codes) < count {
		code, err := qrtag.GenerateCode()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}

// IssueBatch creates count blank tags under a fresh batch id and
// returns their codes paired with obfuscated QR payloads. On a code
// collision with existing tags the whole batch is regenerated and
// re-inserted.
func (i *Issuer) IssueBatch(ctx context.Context, count int) (BatchResult, error) {
	if count < 1 || count > i.maxBatch {
		return BatchResult{}, fmt.Errorf("%w: want 1..%d, got %d", ErrBatchSize, i.maxBatch, count)
	}
	batchID := uuid.NewString()
	var codes []string
	for attempt := 0; ; attempt++ {
		var err error
		codes, err = generateCodes(count)
		if err != nil {
			return BatchResult{}, err
		}
		err = i.store.CreateBatch(ctx, batchID, codes)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicateCode) || attempt+1 >= batchInsertAttempts {
			return BatchResult{}, err
		}
	}
	return BatchResult{
		BatchID: batchID,
		Created: len(codes),
		Tags:    i.payloads(codes),
	}, nil
}

// SheetForBatch re-resolves the codes of a past batch so its printable
// sheet can be rendered again.
func (i *Issuer) SheetForBatch(ctx context.Context, batchID string) ([]IssuedTag, error) {
	codes, err := i.store.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, ErrBatchNotFound
	}
	return i.payloads(codes), nil
}

func (i *Issuer) payloads(codes []string) []IssuedTag {
	tags := make([]IssuedTag, 0, len(codes))
	for _, code := range codes {
		tags = append(tags, IssuedTag{
			Code:    code,
			Payload: qrtag.EncodePayload(code, i.secret),
		})
	}
	return tags
}
