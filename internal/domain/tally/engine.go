package tally

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ballotworks/electoral-api/internal/domain/common"
	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/storage"
)

// Engine recomputes per-candidate results and the election summary report
// from the vote log. Recompute is a pure function of the current vote log,
// so running it twice with no new votes yields identical rows.
//
// Recomputes are serialized per election with a keyed mutex: concurrent
// recomputes triggered by near-simultaneous votes cannot interleave their
// read-rewrite cycles, so a later-starting pass is never overwritten by an
// earlier-starting one.
type Engine struct {
	elections  ElectionRepository
	candidates CandidateRepository
	votes      VoteCounter
	voters     VoterCounter
	results    ResultRepository
	reports    ReportRepository
	log        *log.Logger

	locks sync.Map // election ID -> *sync.Mutex
}

// NewEngine creates a tally engine over the given repositories
func NewEngine(
	elections ElectionRepository,
	candidates CandidateRepository,
	votes VoteCounter,
	voters VoterCounter,
	results ResultRepository,
	reports ReportRepository,
) *Engine {
	return &Engine{
		elections:  elections,
		candidates: candidates,
		votes:      votes,
		voters:     voters,
		results:    results,
		reports:    reports,
		log:        logger.Tally(),
	}
}

func (e *Engine) lockFor(electionID uuid.UUID) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(electionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Recompute rebuilds all ElectionResult rows and the ElectionReport for
// the election from the current vote log. Returns the results ordered by
// rank together with the refreshed report.
func (e *Engine) Recompute(ctx context.Context, electionID uuid.UUID) ([]*ElectionResult, *ElectionReport, error) {
	mu := e.lockFor(electionID)
	mu.Lock()
	defer mu.Unlock()

	started := time.Now()
	e.log.Debug("recomputing election results", "election_id", electionID)

	elec, err := e.elections.GetByID(ctx, electionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, common.ErrElectionNotFound
		}
		return nil, nil, fmt.Errorf("failed to load election: %w", err)
	}

	// Candidates come back ordered by ascending ID, which fixes both the
	// row-update order and the rank tie-break.
	candidates, err := e.candidates.GetByElectionID(ctx, electionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	totalVotes, err := e.votes.CountByElection(ctx, electionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count election votes: %w", err)
	}

	for _, cand := range candidates {
		candidateVotes, err := e.votes.CountByCandidate(ctx, cand.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to count candidate votes: %w", err)
		}

		result := &ElectionResult{
			ElectionID:     electionID,
			CandidateID:    cand.ID,
			VoteCount:      candidateVotes,
			VotePercentage: Percentage(candidateVotes, totalVotes),
			LastUpdated:    time.Now(),
		}

		if err := e.results.UpsertResult(ctx, result); err != nil {
			return nil, nil, fmt.Errorf("failed to upsert result for candidate %s: %w", cand.ID, err)
		}
	}

	// Reload, order by vote count descending with candidate ID ascending
	// as the deterministic tie-break, then assign ranks 1..N.
	results, err := e.results.GetByElectionID(ctx, electionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload results: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].VoteCount != results[j].VoteCount {
			return results[i].VoteCount > results[j].VoteCount
		}
		return bytes.Compare(results[i].CandidateID[:], results[j].CandidateID[:]) < 0
	})

	for i, result := range results {
		result.RankPosition = i + 1
		if err := e.results.UpdateRank(ctx, electionID, result.CandidateID, result.RankPosition); err != nil {
			return nil, nil, fmt.Errorf("failed to persist rank for candidate %s: %w", result.CandidateID, err)
		}
	}

	report, err := e.generateReport(ctx, elec.ID, elec.CreatedBy, totalVotes, len(candidates), results)
	if err != nil {
		return nil, nil, err
	}

	e.log.Info("election results recomputed",
		"election_id", electionID,
		"total_votes", totalVotes,
		"candidates", len(candidates),
		"duration", time.Since(started))

	return results, report, nil
}

// generateReport refreshes the per-election summary. The turnout
// denominator is the count of all registered voters, matching the
// reference behavior (no per-election eligibility scoping).
func (e *Engine) generateReport(
	ctx context.Context,
	electionID uuid.UUID,
	generatedBy uuid.UUID,
	totalVotes int64,
	totalCandidates int,
	sortedResults []*ElectionResult,
) (*ElectionReport, error) {
	totalRegistered, err := e.voters.CountVoters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count registered voters: %w", err)
	}

	report := &ElectionReport{
		ElectionID:             electionID,
		TotalRegisteredVoters:  totalRegistered,
		TotalVotesCast:         totalVotes,
		VoterTurnoutPercentage: Percentage(totalVotes, totalRegistered),
		TotalCandidates:        totalCandidates,
		GeneratedBy:            &generatedBy,
		GeneratedAt:            time.Now(),
	}

	if len(sortedResults) > 0 {
		winnerID := sortedResults[0].CandidateID
		report.WinningCandidateID = &winnerID

		first := sortedResults[0].VoteCount
		var second int64
		if len(sortedResults) > 1 {
			second = sortedResults[1].VoteCount
		}
		report.WinningMargin = first - second
	}

	if err := e.reports.UpsertReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to upsert election report: %w", err)
	}

	return report, nil
}

// Results returns the persisted results for an election ordered by rank
func (e *Engine) Results(ctx context.Context, electionID uuid.UUID) ([]*ElectionResult, error) {
	results, err := e.results.GetByElectionID(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RankPosition < results[j].RankPosition
	})

	return results, nil
}

// Report returns the persisted report for an election
func (e *Engine) Report(ctx context.Context, electionID uuid.UUID) (*ElectionReport, error) {
	report, err := e.reports.GetByElectionID(ctx, electionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, common.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return report, nil
}
