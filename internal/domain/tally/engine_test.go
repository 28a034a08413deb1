package tally_test

import (
	"bytes"
	"context"
	"errors"
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

type engineFixture struct {
	store    *memory.Store
	engine   *tally.Engine
	election *election.Election
}

func newEngineFixture(t *testing.T) *engineFixture {
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

	elec := election.NewElection("General Election", election.TypeGeneral, uuid.New(),
		time.Now(), time.Now().Add(24*time.Hour))
	elec.Status = election.StatusActive
	require.NoError(t, store.Create(context.Background(), elec))

	return &engineFixture{store: store, engine: engine, election: elec}
}

func (f *engineFixture) addCandidate(t *testing.T) *election.Candidate {
	t.Helper()

	cand := election.NewCandidate(f.election.ID, uuid.New(), "Party", "symbol", "")
	require.NoError(t, f.store.Candidates().Create(context.Background(), cand))
	return cand
}

// addVotes registers count fresh voters and commits one vote each for the
// candidate.
func (f *engineFixture) addVotes(t *testing.T, candidateID uuid.UUID, count int) {
	t.Helper()

	ctx := context.Background()
	for i := 0; i < count; i++ {
		vtr := voter.NewVoter(uuid.New().String()+"@example.com", "hash", "Voter", time.Time{})
		require.NoError(t, f.store.Voters().Create(ctx, vtr))

		v := vote.NewVote(f.election.ID, vtr.ID, candidateID)
		st := vote.NewStatus(f.election.ID, vtr.ID, v.VotedAt)
		require.NoError(t, f.store.Votes().Commit(ctx, v, st))
	}
}

func TestRecomputeCountsPercentagesAndRanks(t *testing.T) {
	f := newEngineFixture(t)
	a := f.addCandidate(t)
	b := f.addCandidate(t)
	c := f.addCandidate(t)

	f.addVotes(t, a.ID, 5)
	f.addVotes(t, b.ID, 3)
	f.addVotes(t, c.ID, 2)

	results, report, err := f.engine.Recompute(context.Background(), f.election.ID)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, a.ID, results[0].CandidateID)
	assert.Equal(t, int64(5), results[0].VoteCount)
	assert.Equal(t, 50.0, results[0].VotePercentage)
	assert.Equal(t, 1, results[0].RankPosition)

	assert.Equal(t, b.ID, results[1].CandidateID)
	assert.Equal(t, int64(3), results[1].VoteCount)
	assert.Equal(t, 30.0, results[1].VotePercentage)
	assert.Equal(t, 2, results[1].RankPosition)

	assert.Equal(t, c.ID, results[2].CandidateID)
	assert.Equal(t, int64(2), results[2].VoteCount)
	assert.Equal(t, 20.0, results[2].VotePercentage)
	assert.Equal(t, 3, results[2].RankPosition)

	require.NotNil(t, report)
	assert.Equal(t, int64(10), report.TotalVotesCast)
	assert.Equal(t, int64(10), report.TotalRegisteredVoters)
	assert.Equal(t, 100.0, report.VoterTurnoutPercentage)
	assert.Equal(t, 3, report.TotalCandidates)
	require.NotNil(t, report.WinningCandidateID)
	assert.Equal(t, a.ID, *report.WinningCandidateID)
	assert.Equal(t, int64(2), report.WinningMargin)
}

func TestUpsertResultPreservesRank(t *testing.T) {
	// The count pass writes rows before ranks are known. A row that
	// already holds a rank from an earlier recompute must keep it until
	// the rank pass rewrites it, so concurrent readers never see rank 0.
	f := newEngineFixture(t)
	a := f.addCandidate(t)
	f.addVotes(t, a.ID, 2)

	ctx := context.Background()
	_, _, err := f.engine.Recompute(ctx, f.election.ID)
	require.NoError(t, err)

	results, err := f.store.Results().GetByElectionID(ctx, f.election.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 1, results[0].RankPosition)

	// A counts-only upsert, as issued mid-recompute, carries no rank
	refreshed := &tally.ElectionResult{
		ElectionID:     f.election.ID,
		CandidateID:    a.ID,
		VoteCount:      3,
		VotePercentage: 100.0,
		LastUpdated:    time.Now(),
	}
	require.NoError(t, f.store.Results().UpsertResult(ctx, refreshed))

	results, err = f.store.Results().GetByElectionID(ctx, f.election.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(3), results[0].VoteCount)
	assert.Equal(t, 1, results[0].RankPosition)
}

func TestRecomputeWithNoVotes(t *testing.T) {
	f := newEngineFixture(t)
	f.addCandidate(t)
	f.addCandidate(t)

	results, report, err := f.engine.Recompute(context.Background(), f.election.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.Equal(t, int64(0), r.VoteCount)
		assert.Equal(t, 0.0, r.VotePercentage)
	}
	// Even with zero votes every candidate gets a distinct rank
	assert.Equal(t, 1, results[0].RankPosition)
	assert.Equal(t, 2, results[1].RankPosition)

	assert.Equal(t, int64(0), report.TotalVotesCast)
	assert.Equal(t, 0.0, report.VoterTurnoutPercentage)
	require.NotNil(t, report.WinningCandidateID)
	assert.Equal(t, int64(0), report.WinningMargin)
}

func TestRecomputeBreaksTiesByCandidateID(t *testing.T) {
	f := newEngineFixture(t)
	a := f.addCandidate(t)
	b := f.addCandidate(t)

	f.addVotes(t, a.ID, 2)
	f.addVotes(t, b.ID, 2)

	results, _, err := f.engine.Recompute(context.Background(), f.election.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Tied candidates rank in ascending candidate ID order
	assert.True(t, bytes.Compare(results[0].CandidateID[:], results[1].CandidateID[:]) < 0)
	assert.Equal(t, 1, results[0].RankPosition)
	assert.Equal(t, 2, results[1].RankPosition)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	f := newEngineFixture(t)
	a := f.addCandidate(t)
	b := f.addCandidate(t)

	f.addVotes(t, a.ID, 3)
	f.addVotes(t, b.ID, 1)

	first, firstReport, err := f.engine.Recompute(context.Background(), f.election.ID)
	require.NoError(t, err)

	second, secondReport, err := f.engine.Recompute(context.Background(), f.election.ID)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].CandidateID, second[i].CandidateID)
		assert.Equal(t, first[i].VoteCount, second[i].VoteCount)
		assert.Equal(t, first[i].VotePercentage, second[i].VotePercentage)
		assert.Equal(t, first[i].RankPosition, second[i].RankPosition)
	}

	assert.Equal(t, firstReport.TotalVotesCast, secondReport.TotalVotesCast)
	assert.Equal(t, firstReport.WinningMargin, secondReport.WinningMargin)
}

func TestRecomputeUnknownElection(t *testing.T) {
	f := newEngineFixture(t)

	_, _, err := f.engine.Recompute(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrElectionNotFound)
}

func TestResultsOrderedByRank(t *testing.T) {
	f := newEngineFixture(t)
	a := f.addCandidate(t)
	b := f.addCandidate(t)

	f.addVotes(t, a.ID, 1)
	f.addVotes(t, b.ID, 4)

	_, _, err := f.engine.Recompute(context.Background(), f.election.ID)
	require.NoError(t, err)

	results, err := f.engine.Results(context.Background(), f.election.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, b.ID, results[0].CandidateID)
	assert.Equal(t, a.ID, results[1].CandidateID)
}

func TestReportNotFoundBeforeFirstRecompute(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Report(context.Background(), f.election.ID)
	assert.True(t, errors.Is(err, common.ErrReportNotFound))
}
