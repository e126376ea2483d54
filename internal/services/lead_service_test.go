package services

import (
	"context"
	"testing"

	"usina-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLeadFixture() (*LeadService, *fakeAssigner, *fakeLeadStore, *fakeConversionStore) {
	assigner := &fakeAssigner{}
	leads := newFakeLeadStore()
	conversions := &fakeConversionStore{}
	return NewLeadService(leads, conversions, assigner), assigner, leads, conversions
}

func TestLeadCreateAssignsAutomatically(t *testing.T) {
	svc, assigner, _, _ := newLeadFixture()

	lead, err := svc.Create(context.Background(), &models.CreateLeadRequest{})
	require.NoError(t, err)
	require.NotNil(t, lead.FranchiseID)
	assert.Equal(t, 10, *lead.FranchiseID)
	assert.Equal(t, models.LeadStatusPending, lead.Status)

	call := assigner.lastCall()
	assert.Equal(t, "auto", call.method)
	assert.Equal(t, KindLead, call.kind)
}

func TestLeadCreateWithExplicitFranchise(t *testing.T) {
	svc, assigner, _, _ := newLeadFixture()
	franchise := 42

	lead, err := svc.Create(context.Background(), &models.CreateLeadRequest{FranchiseID: &franchise})
	require.NoError(t, err)
	require.NotNil(t, lead.FranchiseID)
	assert.Equal(t, 42, *lead.FranchiseID)
	assert.Equal(t, "franchise", assigner.lastCall().method)
}

func TestLeadCreateDegradesWithoutCapacity(t *testing.T) {
	svc, assigner, leads, _ := newLeadFixture()
	assigner.err = ErrNoActivePhones

	lead, err := svc.Create(context.Background(), &models.CreateLeadRequest{})
	require.NoError(t, err)
	assert.Nil(t, lead.FranchiseID)

	stored, err := leads.Get(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusPending, stored.Status)
}

func TestLeadStatusTransitions(t *testing.T) {
	svc, _, _, _ := newLeadFixture()
	ctx := context.Background()

	lead, err := svc.Create(ctx, &models.CreateLeadRequest{})
	require.NoError(t, err)

	// pending cannot jump straight to converted
	_, err = svc.UpdateStatus(ctx, lead.ID, &models.UpdateLeadStatusRequest{Status: models.LeadStatusConverted})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err := svc.UpdateStatus(ctx, lead.ID, &models.UpdateLeadStatusRequest{Status: models.LeadStatusContacted})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusContacted, updated.Status)

	// lost is terminal
	updated, err = svc.UpdateStatus(ctx, lead.ID, &models.UpdateLeadStatusRequest{Status: models.LeadStatusLost})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, updated.ID, &models.UpdateLeadStatusRequest{Status: models.LeadStatusContacted})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestLeadConversionCreatesConversionOnce(t *testing.T) {
	svc, assigner, _, conversions := newLeadFixture()
	ctx := context.Background()

	lead, err := svc.Create(ctx, &models.CreateLeadRequest{})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, lead.ID, &models.UpdateLeadStatusRequest{Status: models.LeadStatusContacted})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, lead.ID, &models.UpdateLeadStatusRequest{
		Status: models.LeadStatusConverted,
		Amount: 150,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusConverted, updated.Status)

	require.Len(t, conversions.conversions, 1)
	conv := conversions.conversions[0]
	require.NotNil(t, conv.LeadID)
	assert.Equal(t, lead.ID, *conv.LeadID)
	assert.Equal(t, 150.0, conv.Amount)

	// Conversion bumps the counter on the lead's own phone
	call := assigner.lastCall()
	assert.Equal(t, "phone", call.method)
	assert.Equal(t, KindConversion, call.kind)

	// Terminal: cannot convert again
	_, err = svc.UpdateStatus(ctx, lead.ID, &models.UpdateLeadStatusRequest{Status: models.LeadStatusConverted})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestLeadConversionAssignsUnassignedLead(t *testing.T) {
	svc, assigner, leads, conversions := newLeadFixture()
	ctx := context.Background()

	// Lead recorded during a capacity shortage
	assigner.err = ErrNoDistributionTarget
	lead, err := svc.Create(ctx, &models.CreateLeadRequest{})
	require.NoError(t, err)
	require.Nil(t, lead.FranchiseID)
	assigner.err = nil

	_, err = svc.UpdateStatus(ctx, lead.ID, &models.UpdateLeadStatusRequest{Status: models.LeadStatusContacted})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, lead.ID, &models.UpdateLeadStatusRequest{Status: models.LeadStatusConverted})
	require.NoError(t, err)

	// Assignment happened at conversion time
	stored, err := leads.Get(ctx, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.FranchiseID)
	assert.Equal(t, 10, *stored.FranchiseID)

	require.Len(t, conversions.conversions, 1)
	require.NotNil(t, conversions.conversions[0].FranchiseID)
	assert.Equal(t, 10, *conversions.conversions[0].FranchiseID)
}

func TestLeadGetNotFound(t *testing.T) {
	svc, _, _, _ := newLeadFixture()
	_, err := svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
