package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/vehicle-tag-registry/internal/qrtag"
)

func TestIssuer_IssueBatch(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	issuer := NewIssuer(store, testSecret, 100)

	result, err := issuer.IssueBatch(ctx, 25)
	require.NoError(t, err)
	assert.NotEmpty(t, result.BatchID)
	assert.Equal(t, 25, result.Created)
	require.Len(t, result.Tags, 25)

	seen := make(map[string]struct{})
	for _, tag := range result.Tags {
		assert.True(t, strings.HasPrefix(tag.Code, qrtag.CodePrefix))
		_, dup := seen[tag.Code]
		assert.False(t, dup, "codes within a batch must be unique")
		seen[tag.Code] = struct{}{}

		// Every payload decodes back to its own code.
		decoded, err := qrtag.DecodePayload(tag.Payload, testSecret)
		require.NoError(t, err)
		assert.Equal(t, tag.Code, decoded)
	}

	// Every issued tag is persisted blank under the batch.
	codes, err := store.ListByBatch(ctx, result.BatchID)
	require.NoError(t, err)
	assert.Len(t, codes, 25)
	blank, err := store.GetByCode(ctx, result.Tags[0].Code)
	require.NoError(t, err)
	assert.True(t, blank.IsBlank())
	assert.False(t, blank.Privacy.ShowEmergencyContact)
	assert.True(t, blank.Privacy.AllowMaskedCall)
}

func TestIssuer_BatchSizeBounds(t *testing.T) {
	ctx := context.Background()
	issuer := NewIssuer(newFakeStore(), testSecret, 100)

	_, err := issuer.IssueBatch(ctx, 0)
	assert.ErrorIs(t, err, ErrBatchSize)
	_, err = issuer.IssueBatch(ctx, 101)
	assert.ErrorIs(t, err, ErrBatchSize)
}

func TestIssuer_SheetForBatch(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	issuer := NewIssuer(store, testSecret, 100)

	result, err := issuer.IssueBatch(ctx, 4)
	require.NoError(t, err)

	tags, err := issuer.SheetForBatch(ctx, result.BatchID)
	require.NoError(t, err)
	require.Len(t, tags, 4)

	var buf bytes.Buffer
	require.NoError(t, WriteSheet(&buf, result.BatchID, tags))
	html := buf.String()
	assert.Contains(t, html, result.BatchID)
	for _, tag := range tags {
		assert.Contains(t, html, tag.Code)
		assert.Contains(t, html, "data-qr-payload=")
	}

	_, err = issuer.SheetForBatch(ctx, "no-such-batch")
	assert.ErrorIs(t, err, ErrBatchNotFound)
}
