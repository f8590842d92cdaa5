package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RostrDating/internal/kvstore"
	"RostrDating/internal/model"
	"RostrDating/pkg/errors"
)

func newInviteService(store kvstore.Store, clock *fakeClock, opts ...Option) *InviteService {
	return NewInviteService(store, model.DefaultInviteTTL, append(opts, WithClock(clock.Now))...)
}

func TestInviteStoreThenGet(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	svc := newInviteService(kvstore.NewMemoryStore(), clock)

	_, err := svc.StorePendingInvite(ctx, testDevice, "c42", "Sam")
	require.NoError(t, err)

	got := svc.GetPendingInvite(ctx, testDevice)
	require.NotNil(t, got)
	assert.Equal(t, "c42", got.CircleID)
	assert.Equal(t, "Sam", got.InviterName)
	assert.Equal(t, clock.Now().UnixMilli(), got.Timestamp)
	assert.True(t, svc.HasPendingInvite(ctx, testDevice))
}

func TestInviteSingleSlotOverwrites(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	svc := newInviteService(kvstore.NewMemoryStore(), clock)

	_, err := svc.StorePendingInvite(ctx, testDevice, "c1", "Ann")
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = svc.StorePendingInvite(ctx, testDevice, "c2", "")
	require.NoError(t, err)

	got := svc.GetPendingInvite(ctx, testDevice)
	require.NotNil(t, got)
	assert.Equal(t, "c2", got.CircleID)
	assert.Empty(t, got.InviterName)
}

func TestInviteExpiresLazily(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := kvstore.NewMemoryStore()
	svc := newInviteService(store, clock)

	_, err := svc.StorePendingInvite(ctx, testDevice, "c42", "Sam")
	require.NoError(t, err)

	// 恰好 7 天仍有效
	clock.Advance(model.DefaultInviteTTL)
	require.NotNil(t, svc.GetPendingInvite(ctx, testDevice))

	clock.Advance(time.Millisecond)
	assert.Nil(t, svc.GetPendingInvite(ctx, testDevice))
	assert.Nil(t, svc.GetPendingInvite(ctx, testDevice))

	_, found, err := store.Get(ctx, pendingInviteKey(testDevice))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInviteStaleRecordWrittenDirectly(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := kvstore.NewMemoryStore()
	svc := newInviteService(store, clock)

	stale := clock.Now().Add(-8 * 24 * time.Hour).UnixMilli()
	require.NoError(t, store.Set(ctx, pendingInviteKey(testDevice),
		`{"circleId":"c1","inviterName":"Old","timestamp":`+strconv.FormatInt(stale, 10)+`}`, 0))

	assert.Nil(t, svc.GetPendingInvite(ctx, testDevice))
	assert.Equal(t, 0, store.Len())
}

func TestInviteClearAndConsume(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	pub := &recordingPublisher{}
	svc := newInviteService(kvstore.NewMemoryStore(), clock, WithPublisher(pub))

	_, err := svc.StorePendingInvite(ctx, testDevice, "c42", "Sam")
	require.NoError(t, err)
	svc.ClearPendingInvite(ctx, testDevice)
	assert.False(t, svc.HasPendingInvite(ctx, testDevice))

	_, err = svc.StorePendingInvite(ctx, testDevice, "c43", "")
	require.NoError(t, err)
	got := svc.ConsumePendingInvite(ctx, testDevice, "user-1")
	require.NotNil(t, got)
	assert.Equal(t, "c43", got.CircleID)
	assert.Nil(t, svc.ConsumePendingInvite(ctx, testDevice, "user-1"))

	assert.Equal(t, []string{
		model.EventInviteCaptured,
		model.EventInviteCaptured,
		model.EventInviteConsumed,
	}, pub.types())
}

func TestInviteRequiresCircle(t *testing.T) {
	svc := newInviteService(kvstore.NewMemoryStore(), newFakeClock())

	_, err := svc.StorePendingInvite(context.Background(), testDevice, " ", "Sam")
	assert.ErrorIs(t, err, errors.InviteInvalid)
}

func TestInviteMalformedRecordIsAbsent(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	svc := newInviteService(store, newFakeClock())

	require.NoError(t, store.Set(ctx, pendingInviteKey(testDevice), "[]", 0))
	assert.Nil(t, svc.GetPendingInvite(ctx, testDevice))
}

func TestInviteFailsOpenOnStoreErrors(t *testing.T) {
	ctx := context.Background()
	svc := newInviteService(brokenStore{}, newFakeClock())

	invite, err := svc.StorePendingInvite(ctx, testDevice, "c1", "")
	assert.NoError(t, err)
	assert.NotNil(t, invite)
	assert.Nil(t, svc.GetPendingInvite(ctx, testDevice))
	assert.False(t, svc.HasPendingInvite(ctx, testDevice))
	svc.ClearPendingInvite(ctx, testDevice)
}
