package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RostrDating/internal/kvstore"
	"RostrDating/internal/model"
	"RostrDating/pkg/errors"
	"RostrDating/pkg/sms"
)

func newCircleInviteFixture(max int) (*CircleInviteService, *sms.MockClient, *OnboardingService, *recordingPublisher) {
	client := sms.NewMockClient()
	pub := &recordingPublisher{}
	onboarding := NewOnboardingService(kvstore.NewMemoryStore())
	svc := NewCircleInviteService(client, onboarding, CircleInviteConfig{
		Scheme:        "rostrdating",
		SignName:      "RostrDating",
		TemplateCode:  "SMS_INVITE",
		MaxRecipients: max,
		PhoneRegion:   "US",
	}, WithPublisher(pub))
	return svc, client, onboarding, pub
}

func TestCircleInviteSend(t *testing.T) {
	ctx := context.Background()
	svc, client, onboarding, pub := newCircleInviteFixture(5)

	data, err := svc.Send(ctx, testDevice, "user-1", CircleInviteRequest{
		CircleID:    "c42",
		InviterName: "Sam",
		Phones:      []string{"(201) 555-0123", "+12015550123", "555", "+12025550187"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"+12015550123", "+12025550187"}, data.Sent)
	assert.Equal(t, []string{"555"}, data.Rejected)
	assert.Equal(t, "rostrdating://invite?circle=c42&invited_by=Sam", data.InviteURL)

	calls := client.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "SMS_INVITE", calls[0].TemplateCode)
	assert.Contains(t, calls[0].TemplateParam, "c42")

	assert.True(t, onboarding.GetProgress(ctx, testDevice).Has(model.StepFriends))
	assert.Equal(t, []string{model.EventCircleInvitesSent}, pub.types())
}

func TestCircleInviteValidation(t *testing.T) {
	ctx := context.Background()
	svc, client, _, _ := newCircleInviteFixture(1)

	_, err := svc.Send(ctx, testDevice, "user-1", CircleInviteRequest{Phones: []string{"+12015550123"}})
	assert.ErrorIs(t, err, errors.InviteInvalid)

	_, err = svc.Send(ctx, testDevice, "user-1", CircleInviteRequest{CircleID: "c1", Phones: []string{"nope"}})
	assert.ErrorIs(t, err, errors.SMSNoRecipients)

	_, err = svc.Send(ctx, testDevice, "user-1", CircleInviteRequest{
		CircleID: "c1",
		Phones:   []string{"+12015550123", "+12025550187"},
	})
	assert.ErrorIs(t, err, errors.SMSTooManyTargets)

	assert.Empty(t, client.Calls())
}

func TestCircleInviteSendFailureDoesNotMarkStep(t *testing.T) {
	ctx := context.Background()
	svc, client, onboarding, _ := newCircleInviteFixture(5)
	client.FailNext = true

	_, err := svc.Send(ctx, testDevice, "user-1", CircleInviteRequest{
		CircleID: "c1",
		Phones:   []string{"+12015550123"},
	})
	assert.ErrorIs(t, err, errors.SMSSendFailed)
	assert.False(t, onboarding.GetProgress(ctx, testDevice).Has(model.StepFriends))
}
