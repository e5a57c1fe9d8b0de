package billing

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "billing.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUpsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	missing, err := store.Get(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	sub := Subscription{
		Email:                "pro@example.com",
		StripeCustomerID:     "cus_123",
		StripeSubscriptionID: "sub_123",
		Status:               "active",
		CurrentPeriodEnd:     time.Now().Add(30 * 24 * time.Hour).Unix(),
	}
	require.NoError(t, store.Upsert(ctx, sub))

	got, err := store.Get(ctx, "pro@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "cus_123", got.StripeCustomerID)
	assert.Equal(t, "active", got.Status)
	assert.NotZero(t, got.UpdatedAt)
}

func TestUpsertReplacesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sub := Subscription{Email: "pro@example.com", Status: "active", CurrentPeriodEnd: time.Now().Add(time.Hour).Unix()}
	require.NoError(t, store.Upsert(ctx, sub))

	sub.Status = "canceled"
	require.NoError(t, store.Upsert(ctx, sub))

	got, err := store.Get(ctx, "pro@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "canceled", got.Status)
}

func TestIsActive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	future := time.Now().Add(time.Hour).Unix()
	past := time.Now().Add(-time.Hour).Unix()

	require.NoError(t, store.Upsert(ctx, Subscription{Email: "current@example.com", Status: "active", CurrentPeriodEnd: future}))
	require.NoError(t, store.Upsert(ctx, Subscription{Email: "lapsed@example.com", Status: "active", CurrentPeriodEnd: past}))
	require.NoError(t, store.Upsert(ctx, Subscription{Email: "canceled@example.com", Status: "canceled", CurrentPeriodEnd: future}))

	active, err := store.IsActive(ctx, "current@example.com")
	require.NoError(t, err)
	assert.True(t, active)

	lapsed, err := store.IsActive(ctx, "lapsed@example.com")
	require.NoError(t, err)
	assert.False(t, lapsed)

	canceled, err := store.IsActive(ctx, "canceled@example.com")
	require.NoError(t, err)
	assert.False(t, canceled)

	unknown, err := store.IsActive(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, unknown)
}
