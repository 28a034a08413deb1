package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballotworks/electoral-api/internal/domain/common"
	"github.com/ballotworks/electoral-api/internal/domain/election"
	"github.com/ballotworks/electoral-api/internal/domain/voter"
	"github.com/ballotworks/electoral-api/internal/services"
	"github.com/ballotworks/electoral-api/internal/storage/memory"
)

func newElectionFixture() (*memory.Store, *services.ElectionService) {
	store := memory.NewStore()
	svc := services.NewElectionService(store.Elections(), store.Candidates(), store.Voters())
	return store, svc
}

func registerVoter(t *testing.T, store *memory.Store, city, state string) *voter.Voter {
	t.Helper()

	vtr := voter.NewVoter(uuid.New().String()+"@example.com", "hash", "Voter", time.Time{})
	vtr.City = city
	vtr.State = state
	require.NoError(t, store.Voters().Create(context.Background(), vtr))
	return vtr
}

func createRequest() services.CreateElectionRequest {
	return services.CreateElectionRequest{
		Name:      "General Election 2026",
		Type:      "GENERAL",
		StartDate: time.Now(),
		EndDate:   time.Now().Add(48 * time.Hour),
	}
}

func TestCreateElectionWithCandidateSlate(t *testing.T) {
	store, svc := newElectionFixture()
	ctx := context.Background()

	a := registerVoter(t, store, "", "")
	b := registerVoter(t, store, "", "")

	req := createRequest()
	req.Candidates = []services.CandidateRequest{
		{VoterID: a.ID.String(), PartyName: "Progress Party"},
		{VoterID: b.ID.String(), PartyName: "Unity Party"},
	}

	elec, err := svc.CreateElection(ctx, req, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, election.StatusDraft, elec.Status)
	assert.Len(t, elec.Candidates, 2)

	stored, err := svc.GetCandidates(ctx, elec.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestCreateElectionRejectsBadInput(t *testing.T) {
	_, svc := newElectionFixture()
	ctx := context.Background()
	adminID := uuid.New()

	noName := createRequest()
	noName.Name = "  "
	_, err := svc.CreateElection(ctx, noName, adminID)
	assert.Error(t, err)

	badType := createRequest()
	badType.Type = "MUNICIPAL"
	_, err = svc.CreateElection(ctx, badType, adminID)
	assert.Error(t, err)

	badDates := createRequest()
	badDates.EndDate = badDates.StartDate.Add(-time.Hour)
	_, err = svc.CreateElection(ctx, badDates, adminID)
	assert.Error(t, err)
}

func TestAddCandidateOnlyWhileDraft(t *testing.T) {
	store, svc := newElectionFixture()
	ctx := context.Background()

	elec, err := svc.CreateElection(ctx, createRequest(), uuid.New())
	require.NoError(t, err)

	vtr := registerVoter(t, store, "", "")

	_, err = svc.AddCandidate(ctx, elec.ID, services.CandidateRequest{
		VoterID: vtr.ID.String(), PartyName: "Progress Party",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, elec.ID, election.StatusActive)
	require.NoError(t, err)

	other := registerVoter(t, store, "", "")
	_, err = svc.AddCandidate(ctx, elec.ID, services.CandidateRequest{
		VoterID: other.ID.String(), PartyName: "Late Party",
	})
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestAddCandidateUnknownVoter(t *testing.T) {
	_, svc := newElectionFixture()
	ctx := context.Background()

	elec, err := svc.CreateElection(ctx, createRequest(), uuid.New())
	require.NoError(t, err)

	_, err = svc.AddCandidate(ctx, elec.ID, services.CandidateRequest{
		VoterID: uuid.New().String(), PartyName: "Ghost Party",
	})
	assert.ErrorIs(t, err, common.ErrVoterNotFound)
}

func TestAddCandidateTwiceRejected(t *testing.T) {
	store, svc := newElectionFixture()
	ctx := context.Background()

	elec, err := svc.CreateElection(ctx, createRequest(), uuid.New())
	require.NoError(t, err)

	vtr := registerVoter(t, store, "", "")
	req := services.CandidateRequest{VoterID: vtr.ID.String(), PartyName: "Progress Party"}

	_, err = svc.AddCandidate(ctx, elec.ID, req)
	require.NoError(t, err)

	_, err = svc.AddCandidate(ctx, elec.ID, req)
	assert.ErrorIs(t, err, common.ErrDuplicateCandidate)
}

func TestUpdateStatusRejectsBackwardTransition(t *testing.T) {
	_, svc := newElectionFixture()
	ctx := context.Background()

	elec, err := svc.CreateElection(ctx, createRequest(), uuid.New())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, elec.ID, election.StatusActive)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, elec.ID, election.StatusDraft)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)

	// A failed transition is not persisted
	stored, err := svc.GetElection(ctx, elec.ID)
	require.NoError(t, err)
	assert.Equal(t, election.StatusActive, stored.Status)
}

func TestTogglePublication(t *testing.T) {
	_, svc := newElectionFixture()
	ctx := context.Background()
	adminID := uuid.New()

	elec, err := svc.CreateElection(ctx, createRequest(), adminID)
	require.NoError(t, err)

	// Publication is gated on COMPLETED
	_, err = svc.TogglePublication(ctx, elec.ID, adminID)
	assert.ErrorIs(t, err, common.ErrElectionNotComplete)

	_, err = svc.UpdateStatus(ctx, elec.ID, election.StatusActive)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, elec.ID, election.StatusCompleted)
	require.NoError(t, err)

	published, err := svc.TogglePublication(ctx, elec.ID, adminID)
	require.NoError(t, err)
	assert.True(t, published.ResultPublished)

	listed, err := svc.GetPublishedElections(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	unpublished, err := svc.TogglePublication(ctx, elec.ID, adminID)
	require.NoError(t, err)
	assert.False(t, unpublished.ResultPublished)

	listed, err = svc.GetPublishedElections(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestGetActiveElectionsForVoterFiltersByEligibility(t *testing.T) {
	store, svc := newElectionFixture()
	ctx := context.Background()
	adminID := uuid.New()

	mkActive := func(req services.CreateElectionRequest) *election.Election {
		elec, err := svc.CreateElection(ctx, req, adminID)
		require.NoError(t, err)
		_, err = svc.UpdateStatus(ctx, elec.ID, election.StatusActive)
		require.NoError(t, err)
		return elec
	}

	general := createRequest()

	local := createRequest()
	local.Name = "Mumbai Municipal Election"
	local.Type = "LOCAL"
	local.City = "Mumbai"
	local.State = "Maharashtra"

	stateWide := createRequest()
	stateWide.Name = "Kerala Assembly Election"
	stateWide.Type = "STATE"
	stateWide.State = "Kerala"

	generalElec := mkActive(general)
	localElec := mkActive(local)
	mkActive(stateWide)

	mumbaiVoter := registerVoter(t, store, "Mumbai", "Maharashtra")
	kochiVoter := registerVoter(t, store, "Kochi", "Kerala")

	forMumbai, err := svc.GetActiveElectionsForVoter(ctx, mumbaiVoter.ID)
	require.NoError(t, err)
	require.Len(t, forMumbai, 2)
	ids := []uuid.UUID{forMumbai[0].ID, forMumbai[1].ID}
	assert.Contains(t, ids, generalElec.ID)
	assert.Contains(t, ids, localElec.ID)

	forKochi, err := svc.GetActiveElectionsForVoter(ctx, kochiVoter.ID)
	require.NoError(t, err)
	assert.Len(t, forKochi, 2, "general plus the Kerala state election")
}

func TestGetElectionNotFound(t *testing.T) {
	_, svc := newElectionFixture()

	_, err := svc.GetElection(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrElectionNotFound)
}
