package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RostrDating/internal/kvstore"
)

func newLaunchFixture(store kvstore.Store) (*LaunchService, *ReferralService, *InviteService) {
	clock := newFakeClock()
	referrals := NewReferralService(store, "US", WithClock(clock.Now))
	invites := NewInviteService(store, 0, WithClock(clock.Now))
	return NewLaunchService(store, referrals, invites, "rostrdating"), referrals, invites
}

func TestLaunchCapturesInviteFromURL(t *testing.T) {
	ctx := context.Background()
	svc, referrals, invites := newLaunchFixture(kvstore.NewMemoryStore())

	result := svc.Capture(ctx, testDevice, LaunchInput{
		URL: "rostrdating://invite?circle=c42&invited_by=Sam",
	})

	assert.Equal(t, []string{SourceURL}, result.Sources)
	require.NotNil(t, result.Invite)
	assert.Equal(t, "c42", result.Invite.CircleID)
	assert.Nil(t, result.Referral)

	assert.True(t, invites.HasPendingInvite(ctx, testDevice))
	assert.False(t, referrals.HasReferralData(ctx, testDevice))
	assert.False(t, result.ClipboardChecked)
}

func TestLaunchCapturesReferralFromWebURL(t *testing.T) {
	ctx := context.Background()
	svc, referrals, _ := newLaunchFixture(kvstore.NewMemoryStore())

	result := svc.Capture(ctx, testDevice, LaunchInput{
		URL: "https://rostr.app/join?ref=u1&phone=555&invited_by=Sam",
	})

	require.NotNil(t, result.Referral)
	got := referrals.GetReferralData(ctx, testDevice)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.Ref)
	assert.Equal(t, "555", got.Phone)
}

func TestLaunchLaterSourceWins(t *testing.T) {
	ctx := context.Background()
	svc, _, invites := newLaunchFixture(kvstore.NewMemoryStore())

	result := svc.Capture(ctx, testDevice, LaunchInput{
		URL:            "rostrdating://invite?circle=c1",
		AppStoreParams: map[string]string{"circle": "c2", "invited_by": "Max"},
	})

	assert.Equal(t, []string{SourceURL, SourceAppStore}, result.Sources)
	got := invites.GetPendingInvite(ctx, testDevice)
	require.NotNil(t, got)
	assert.Equal(t, "c2", got.CircleID)
}

func TestLaunchClipboardReadOncePerInstallation(t *testing.T) {
	ctx := context.Background()
	svc, _, invites := newLaunchFixture(kvstore.NewMemoryStore())

	first := svc.Capture(ctx, testDevice, LaunchInput{Clipboard: "circle=c9 invited_by=Jo"})
	assert.Equal(t, []string{SourceClipboard}, first.Sources)
	assert.True(t, first.ClipboardChecked)
	require.True(t, invites.HasPendingInvite(ctx, testDevice))

	invites.ClearPendingInvite(ctx, testDevice)

	second := svc.Capture(ctx, testDevice, LaunchInput{Clipboard: "circle=c10"})
	assert.Empty(t, second.Sources)
	assert.True(t, second.ClipboardChecked)
	assert.False(t, invites.HasPendingInvite(ctx, testDevice))
}

func TestLaunchClipboardSkippedWhenURLCaptured(t *testing.T) {
	ctx := context.Background()
	svc, _, invites := newLaunchFixture(kvstore.NewMemoryStore())

	result := svc.Capture(ctx, testDevice, LaunchInput{
		URL:       "rostrdating://invite?circle=c1",
		Clipboard: "circle=c2",
	})

	assert.Equal(t, []string{SourceURL}, result.Sources)
	assert.False(t, result.ClipboardChecked)
	assert.Equal(t, "c1", invites.GetPendingInvite(ctx, testDevice).CircleID)

	// 剪贴板机会还保留着
	later := svc.Capture(ctx, testDevice, LaunchInput{Clipboard: "circle=c3"})
	assert.Equal(t, []string{SourceClipboard}, later.Sources)
}

func TestLaunchNothingToCapture(t *testing.T) {
	svc, _, _ := newLaunchFixture(kvstore.NewMemoryStore())

	result := svc.Capture(context.Background(), testDevice, LaunchInput{})
	assert.Empty(t, result.Sources)
	assert.Nil(t, result.Referral)
	assert.Nil(t, result.Invite)
}

func TestLaunchFailsOpenOnStoreErrors(t *testing.T) {
	svc, _, _ := newLaunchFixture(brokenStore{})

	result := svc.Capture(context.Background(), testDevice, LaunchInput{
		Clipboard: "circle=c9",
	})
	assert.Equal(t, []string{SourceClipboard}, result.Sources)
}
