package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptocheckout/internal/models"
)

func TestMemoryOrdersRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrders()

	_, found, err := repo.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	record := models.OrderRecord{
		Identifier: "ord-1",
		Amount:     "10.00",
		Currency:   "BTC",
		Concept:    "coffee",
	}
	require.NoError(t, repo.Save(ctx, record))

	loaded, found, err := repo.Load(ctx, "ord-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, record, loaded)
}

func TestMemoryDeadlines(t *testing.T) {
	ctx := context.Background()
	deadlines := NewMemoryDeadlines()

	_, found, err := deadlines.Get(ctx, "ord-1")
	require.NoError(t, err)
	assert.False(t, found)

	deadline := time.Now().Add(900 * time.Second).Truncate(time.Millisecond)
	require.NoError(t, deadlines.Put(ctx, "ord-1", deadline))

	got, found, err := deadlines.Get(ctx, "ord-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, deadline, got)
}
