package election

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestElection(t Type) *Election {
	return NewElection("Test Election", t, uuid.New(), time.Now(), time.Now().Add(24*time.Hour))
}

func TestNewElectionStartsAsDraft(t *testing.T) {
	e := newTestElection(TypeGeneral)

	assert.Equal(t, StatusDraft, e.Status)
	assert.False(t, e.ResultPublished)
	assert.NotEqual(t, uuid.Nil, e.ID)
}

func TestStatusTransitionsAreForwardOnly(t *testing.T) {
	e := newTestElection(TypeGeneral)

	require.NoError(t, e.UpdateStatus(StatusActive))
	assert.Equal(t, StatusActive, e.Status)

	// Backward transition is rejected and leaves the status untouched
	err := e.UpdateStatus(StatusDraft)
	assert.Error(t, err)
	assert.Equal(t, StatusActive, e.Status)

	require.NoError(t, e.UpdateStatus(StatusCompleted))
	assert.Equal(t, StatusCompleted, e.Status)

	// COMPLETED is terminal
	assert.Error(t, e.UpdateStatus(StatusActive))
	assert.Error(t, e.UpdateStatus(StatusDraft))
}

func TestDraftCannotSkipToCompleted(t *testing.T) {
	e := newTestElection(TypeGeneral)

	err := e.UpdateStatus(StatusCompleted)
	assert.Error(t, err)
	assert.Equal(t, StatusDraft, e.Status)
}

func TestIsOpenForVoting(t *testing.T) {
	e := newTestElection(TypeGeneral)
	assert.False(t, e.IsOpenForVoting())

	require.NoError(t, e.UpdateStatus(StatusActive))
	assert.True(t, e.IsOpenForVoting())

	require.NoError(t, e.UpdateStatus(StatusCompleted))
	assert.False(t, e.IsOpenForVoting())
}

func TestPublishRequiresCompletedElection(t *testing.T) {
	e := newTestElection(TypeGeneral)
	adminID := uuid.New()

	assert.Error(t, e.Publish(adminID))

	require.NoError(t, e.UpdateStatus(StatusActive))
	assert.Error(t, e.Publish(adminID))

	require.NoError(t, e.UpdateStatus(StatusCompleted))
	require.NoError(t, e.Publish(adminID))

	assert.True(t, e.ResultPublished)
	require.NotNil(t, e.ResultPublishedBy)
	assert.Equal(t, adminID, *e.ResultPublishedBy)
	assert.NotNil(t, e.ResultPublishedAt)
}

func TestUnpublishClearsPublicationStamp(t *testing.T) {
	e := newTestElection(TypeGeneral)
	require.NoError(t, e.UpdateStatus(StatusActive))
	require.NoError(t, e.UpdateStatus(StatusCompleted))
	require.NoError(t, e.Publish(uuid.New()))

	require.NoError(t, e.Unpublish())

	assert.False(t, e.ResultPublished)
	assert.Nil(t, e.ResultPublishedAt)
	assert.Nil(t, e.ResultPublishedBy)
}

func TestEligibleForScopesByElectionType(t *testing.T) {
	local := newTestElection(TypeLocal)
	local.City = "Mumbai"
	local.State = "Maharashtra"

	assert.True(t, local.EligibleFor("Mumbai", "Maharashtra"))
	assert.True(t, local.EligibleFor("mumbai", "maharashtra"), "city/state match is case-insensitive")
	assert.False(t, local.EligibleFor("Pune", "Maharashtra"))
	assert.False(t, local.EligibleFor("", "Maharashtra"))

	state := newTestElection(TypeState)
	state.State = "Kerala"

	assert.True(t, state.EligibleFor("Kochi", "Kerala"))
	assert.True(t, state.EligibleFor("", "Kerala"))
	assert.False(t, state.EligibleFor("Kochi", "Tamil Nadu"))
	assert.False(t, state.EligibleFor("Kochi", ""))

	general := newTestElection(TypeGeneral)
	assert.True(t, general.EligibleFor("", ""))
	assert.True(t, general.EligibleFor("Anywhere", "Anything"))

	special := newTestElection(TypeSpecial)
	assert.True(t, special.EligibleFor("", ""))
}

func TestStatusFromString(t *testing.T) {
	for _, want := range []Status{StatusDraft, StatusActive, StatusCompleted} {
		got, ok := StatusFromString(want.String())
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := StatusFromString("PENDING")
	assert.False(t, ok)
}

func TestTypeFromString(t *testing.T) {
	for _, want := range []Type{TypeGeneral, TypeState, TypeLocal, TypeSpecial} {
		got, ok := TypeFromString(want.String())
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := TypeFromString("MUNICIPAL")
	assert.False(t, ok)
}

func TestElectionValidate(t *testing.T) {
	e := newTestElection(TypeGeneral)
	assert.NoError(t, e.Validate())

	noName := newTestElection(TypeGeneral)
	noName.Name = ""
	assert.Error(t, noName.Validate())

	badDates := newTestElection(TypeGeneral)
	badDates.EndDate = badDates.StartDate.Add(-time.Hour)
	assert.Error(t, badDates.Validate())

	noCreator := newTestElection(TypeGeneral)
	noCreator.CreatedBy = uuid.Nil
	assert.Error(t, noCreator.Validate())
}

func TestCandidateBelongsTo(t *testing.T) {
	electionID := uuid.New()
	cand := NewCandidate(electionID, uuid.New(), "Progress Party", "sun", "manifesto")

	assert.True(t, cand.BelongsTo(electionID))
	assert.False(t, cand.BelongsTo(uuid.New()))
}
