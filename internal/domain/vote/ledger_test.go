package vote_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballotworks/electoral-api/internal/domain/common"
	"github.com/ballotworks/electoral-api/internal/domain/election"
	"github.com/ballotworks/electoral-api/internal/domain/tally"
	"github.com/ballotworks/electoral-api/internal/domain/vote"
	"github.com/ballotworks/electoral-api/internal/domain/voter"
	"github.com/ballotworks/electoral-api/internal/storage/memory"
)

type ledgerFixture struct {
	store     *memory.Store
	engine    *tally.Engine
	ledger    *vote.Ledger
	election  *election.Election
	candidate *election.Candidate
	voter     *voter.Voter
}

func newLedgerFixture(t *testing.T, faceMatch vote.FaceMatcher) *ledgerFixture {
	t.Helper()

	store := memory.NewStore()
	engine := tally.NewEngine(
		store.Elections(),
		store.Candidates(),
		store.Votes(),
		store.Voters(),
		store.Results(),
		store.Reports(),
	)
	ledger := vote.NewLedger(
		store.Elections(),
		store.Candidates(),
		store.Voters(),
		store.Votes(),
		store.Votes(),
		engine,
		faceMatch,
	)

	ctx := context.Background()

	elec := election.NewElection("Ledger Test Election", election.TypeGeneral, uuid.New(),
		time.Now(), time.Now().Add(24*time.Hour))
	elec.Status = election.StatusActive
	require.NoError(t, store.Create(ctx, elec))

	cand := election.NewCandidate(elec.ID, uuid.New(), "Party", "symbol", "")
	require.NoError(t, store.Candidates().Create(ctx, cand))

	vtr := voter.NewVoter("voter@example.com", "hash", "Test Voter", time.Time{})
	vtr.ProfileImageKey = "voters/reference-image"
	require.NoError(t, store.Voters().Create(ctx, vtr))

	return &ledgerFixture{
		store:     store,
		engine:    engine,
		ledger:    ledger,
		election:  elec,
		candidate: cand,
		voter:     vtr,
	}
}

func TestCastVoteSucceeds(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	v, err := f.ledger.CastVote(ctx, f.election.ID, f.voter.ID, f.candidate.ID, "")
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, f.election.ID, v.ElectionID)
	assert.Equal(t, f.voter.ID, v.VoterID)
	assert.Equal(t, f.candidate.ID, v.CandidateID)
	assert.NotEmpty(t, v.VoteHash)

	hasVoted, err := f.ledger.HasVoted(ctx, f.election.ID, f.voter.ID)
	require.NoError(t, err)
	assert.True(t, hasVoted)

	// The synchronous recompute has already refreshed the results
	results, err := f.engine.Results(ctx, f.election.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].VoteCount)
	assert.Equal(t, 100.0, results[0].VotePercentage)
}

func TestCastVoteUnknownElection(t *testing.T) {
	f := newLedgerFixture(t, nil)

	_, err := f.ledger.CastVote(context.Background(), uuid.New(), f.voter.ID, f.candidate.ID, "")
	assert.ErrorIs(t, err, common.ErrElectionNotFound)
}

func TestCastVoteElectionNotOpen(t *testing.T) {
	for _, status := range []election.Status{election.StatusDraft, election.StatusCompleted} {
		t.Run(status.String(), func(t *testing.T) {
			f := newLedgerFixture(t, nil)
			ctx := context.Background()

			f.election.Status = status
			require.NoError(t, f.store.Update(ctx, f.election))

			_, err := f.ledger.CastVote(ctx, f.election.ID, f.voter.ID, f.candidate.ID, "")
			assert.ErrorIs(t, err, common.ErrElectionNotOpen)
		})
	}
}

func TestCastVoteUnknownCandidate(t *testing.T) {
	f := newLedgerFixture(t, nil)

	_, err := f.ledger.CastVote(context.Background(), f.election.ID, f.voter.ID, uuid.New(), "")
	assert.ErrorIs(t, err, common.ErrCandidateNotFound)
}

func TestCastVoteCandidateFromOtherElection(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	other := election.NewElection("Other Election", election.TypeGeneral, uuid.New(),
		time.Now(), time.Now().Add(24*time.Hour))
	other.Status = election.StatusActive
	require.NoError(t, f.store.Create(ctx, other))

	stranger := election.NewCandidate(other.ID, uuid.New(), "Other Party", "", "")
	require.NoError(t, f.store.Candidates().Create(ctx, stranger))

	_, err := f.ledger.CastVote(ctx, f.election.ID, f.voter.ID, stranger.ID, "")
	assert.ErrorIs(t, err, common.ErrCandidateNotFound)
}

func TestCastVoteUnknownVoter(t *testing.T) {
	f := newLedgerFixture(t, nil)

	_, err := f.ledger.CastVote(context.Background(), f.election.ID, uuid.New(), f.candidate.ID, "")
	assert.ErrorIs(t, err, common.ErrVoterNotFound)
}

func TestCastVoteTwiceIsRejected(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	_, err := f.ledger.CastVote(ctx, f.election.ID, f.voter.ID, f.candidate.ID, "")
	require.NoError(t, err)

	_, err = f.ledger.CastVote(ctx, f.election.ID, f.voter.ID, f.candidate.ID, "")
	assert.ErrorIs(t, err, common.ErrAlreadyVoted)

	// The rejected attempt must not move the tally
	count, err := f.store.Votes().CountByElection(ctx, f.election.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestConcurrentDoubleVoteCommitsExactlyOnce(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	const attempts = 16

	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.ledger.CastVote(ctx, f.election.ID, f.voter.ID, f.candidate.ID, "")
		}(i)
	}
	wg.Wait()

	var succeeded, alreadyVoted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, common.ErrAlreadyVoted):
			alreadyVoted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one racing request must win")
	assert.Equal(t, attempts-1, alreadyVoted)

	count, err := f.store.Votes().CountByElection(ctx, f.election.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

type stubFaceMatcher struct {
	matched bool
	err     error
}

func (s *stubFaceMatcher) Match(ctx context.Context, referenceImageKey, capturedImage string) (bool, error) {
	return s.matched, s.err
}

func TestCastVoteFaceMatchPositive(t *testing.T) {
	f := newLedgerFixture(t, &stubFaceMatcher{matched: true})

	_, err := f.ledger.CastVote(context.Background(), f.election.ID, f.voter.ID, f.candidate.ID, "captured")
	assert.NoError(t, err)
}

func TestCastVoteFaceMatchNegative(t *testing.T) {
	f := newLedgerFixture(t, &stubFaceMatcher{matched: false})
	ctx := context.Background()

	_, err := f.ledger.CastVote(ctx, f.election.ID, f.voter.ID, f.candidate.ID, "captured")
	assert.ErrorIs(t, err, common.ErrVoteRejected)

	// A rejected vote leaves no trace
	count, err := f.store.Votes().CountByElection(ctx, f.election.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCastVoteFaceMatchErrorFailsClosed(t *testing.T) {
	f := newLedgerFixture(t, &stubFaceMatcher{err: errors.New("collaborator down")})
	ctx := context.Background()

	_, err := f.ledger.CastVote(ctx, f.election.ID, f.voter.ID, f.candidate.ID, "captured")
	assert.ErrorIs(t, err, common.ErrVoteRejected)

	count, err := f.store.Votes().CountByElection(ctx, f.election.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

type failingRecomputer struct{}

func (failingRecomputer) Recompute(ctx context.Context, electionID uuid.UUID) ([]*tally.ElectionResult, *tally.ElectionReport, error) {
	return nil, nil, errors.New("recompute failed")
}

func TestCastVoteSurvivesRecomputeFailure(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	ledger := vote.NewLedger(
		f.store.Elections(),
		f.store.Candidates(),
		f.store.Voters(),
		f.store.Votes(),
		f.store.Votes(),
		failingRecomputer{},
		nil,
	)

	// The vote is authoritative even when the post-commit tally pass fails
	v, err := ledger.CastVote(ctx, f.election.ID, f.voter.ID, f.candidate.ID, "")
	require.NoError(t, err)
	require.NotNil(t, v)

	hasVoted, err := ledger.HasVoted(ctx, f.election.ID, f.voter.ID)
	require.NoError(t, err)
	assert.True(t, hasVoted)
}
