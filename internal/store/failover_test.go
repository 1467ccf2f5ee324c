package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-cafe/internal/domain"
	"knowledge-cafe/internal/logger"
)

// brokenStore fails every operation, standing in for an unreachable primary.
type brokenStore struct{}

func (brokenStore) Insert(context.Context, *domain.Order) error {
	return domain.StoreFailed("insert", errors.New("connection refused"))
}

func (brokenStore) Find(context.Context, string) (domain.Order, error) {
	return domain.Order{}, domain.StoreFailed("find", errors.New("connection refused"))
}

func (brokenStore) List(context.Context, Filter) ([]domain.Order, error) {
	return nil, domain.StoreFailed("list", errors.New("connection refused"))
}

func (brokenStore) Advance(context.Context, string, string) (domain.Status, domain.Status, error) {
	return "", "", domain.StoreFailed("advance", errors.New("connection refused"))
}

func (brokenStore) SetPaymentStatus(context.Context, string, domain.PaymentStatus) error {
	return domain.StoreFailed("payment", errors.New("connection refused"))
}

func TestFailoverInsertFallsBack(t *testing.T) {
	fo := NewFailover(brokenStore{}, newLocal(t), logger.New("test"))
	ctx := context.Background()

	fellBack, err := fo.InsertWithFallback(ctx, testOrder("o1", time.Now().UTC()))
	require.NoError(t, err)
	assert.True(t, fellBack)

	got, err := fo.Find(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)
}

func TestFailoverInsertPrefersPrimary(t *testing.T) {
	primary := newLocal(t)
	fallback := newLocal(t)
	fo := NewFailover(primary, fallback, logger.New("test"))
	ctx := context.Background()

	fellBack, err := fo.InsertWithFallback(ctx, testOrder("o1", time.Now().UTC()))
	require.NoError(t, err)
	assert.False(t, fellBack)

	_, err = fallback.Find(ctx, "o1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFailoverBothStoresDown(t *testing.T) {
	fo := NewFailover(brokenStore{}, brokenStore{}, logger.New("test"))
	_, err := fo.InsertWithFallback(context.Background(), testOrder("o1", time.Now().UTC()))
	assert.True(t, domain.IsStoreError(err))
}

func TestFailoverFindChecksFallbackOnNotFound(t *testing.T) {
	primary := newLocal(t)
	fallback := newLocal(t)
	fo := NewFailover(primary, fallback, logger.New("test"))
	ctx := context.Background()

	require.NoError(t, fallback.Insert(ctx, testOrder("stranded", time.Now().UTC())))

	got, err := fo.Find(ctx, "stranded")
	require.NoError(t, err)
	assert.Equal(t, "stranded", got.ID)

	_, err = fo.Find(ctx, "nowhere")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFailoverListMergesStrandedOrders(t *testing.T) {
	primary := newLocal(t)
	fallback := newLocal(t)
	fo := NewFailover(primary, fallback, logger.New("test"))
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, primary.Insert(ctx, testOrder("remote", now)))
	require.NoError(t, fallback.Insert(ctx, testOrder("stranded", now)))
	// A duplicated write present on both sides shows up once.
	require.NoError(t, primary.Insert(ctx, testOrder("dup", now)))
	require.NoError(t, fallback.Insert(ctx, testOrder("dup", now)))

	out, err := fo.List(ctx, Filter{})
	require.NoError(t, err)

	ids := map[string]int{}
	for _, o := range out {
		ids[o.ID]++
	}
	assert.Equal(t, map[string]int{"remote": 1, "stranded": 1, "dup": 1}, ids)
}

func TestFailoverAdvanceFallsThroughOnNotFound(t *testing.T) {
	primary := newLocal(t)
	fallback := newLocal(t)
	fo := NewFailover(primary, fallback, logger.New("test"))
	ctx := context.Background()

	require.NoError(t, fallback.Insert(ctx, testOrder("stranded", time.Now().UTC())))

	old, next, err := fo.Advance(ctx, "stranded", "barista")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, old)
	assert.Equal(t, domain.StatusPreparing, next)
}
