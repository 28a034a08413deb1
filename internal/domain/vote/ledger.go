package vote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ballotworks/electoral-api/internal/domain/common"
	"github.com/ballotworks/electoral-api/internal/domain/tally"
	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/storage"
)

// Recomputer is the tally engine surface the ledger invokes after every
// committed vote.
type Recomputer interface {
	Recompute(ctx context.Context, electionID uuid.UUID) ([]*tally.ElectionResult, *tally.ElectionReport, error)
}

// FaceMatcher is the optional face-verification collaborator. A negative
// match AND any collaborator error both block the vote (fails closed).
type FaceMatcher interface {
	Match(ctx context.Context, referenceImageKey, capturedImage string) (bool, error)
}

const retryQueueSize = 64

// Ledger owns validation and commit of a single vote. The has-voted
// pre-check is a latency optimization only; correctness rests on the
// storage uniqueness constraint on (election, voter), whose violation is
// translated back into the already-voted domain error.
type Ledger struct {
	elections  ElectionRepository
	candidates CandidateRepository
	voters     VoterRepository
	votes      VoteRepository
	statuses   StatusRepository
	tally      Recomputer
	faceMatch  FaceMatcher // nil when the collaborator is disabled
	log        *log.Logger

	// retryQueue holds election IDs whose post-commit recompute failed.
	// The committed vote is authoritative either way.
	retryQueue chan uuid.UUID
}

// NewLedger creates a vote ledger. faceMatch may be nil to disable the
// face-verification gate.
func NewLedger(
	elections ElectionRepository,
	candidates CandidateRepository,
	voters VoterRepository,
	votes VoteRepository,
	statuses StatusRepository,
	recomputer Recomputer,
	faceMatch FaceMatcher,
) *Ledger {
	return &Ledger{
		elections:  elections,
		candidates: candidates,
		voters:     voters,
		votes:      votes,
		statuses:   statuses,
		tally:      recomputer,
		faceMatch:  faceMatch,
		log:        logger.Ledger(),
		retryQueue: make(chan uuid.UUID, retryQueueSize),
	}
}

// CastVote validates and commits a single vote, then recomputes the
// election tally synchronously. capturedImage is only consulted when the
// face-match collaborator is enabled.
func (l *Ledger) CastVote(ctx context.Context, electionID, voterID, candidateID uuid.UUID, capturedImage string) (*Vote, error) {
	l.log.Debug("processing vote", "election_id", electionID, "voter_id", voterID, "candidate_id", candidateID)

	elec, err := l.elections.GetByID(ctx, electionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, common.ErrElectionNotFound
		}
		return nil, fmt.Errorf("failed to load election: %w", err)
	}

	if !elec.IsOpenForVoting() {
		l.log.Warn("vote against non-active election rejected",
			"election_id", electionID, "status", elec.Status.String())
		return nil, common.ErrElectionNotOpen
	}

	cand, err := l.candidates.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, common.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}

	if !cand.BelongsTo(electionID) {
		l.log.Warn("candidate does not belong to election",
			"candidate_id", candidateID, "election_id", electionID)
		return nil, common.ErrCandidateNotFound
	}

	vtr, err := l.voters.GetByID(ctx, voterID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, common.ErrVoterNotFound
		}
		return nil, fmt.Errorf("failed to load voter: %w", err)
	}

	if l.faceMatch != nil {
		matched, err := l.faceMatch.Match(ctx, vtr.ProfileImageKey, capturedImage)
		if err != nil {
			// Collaborator failure blocks the vote; never fail open.
			l.log.Error("face match collaborator failed", "voter_id", voterID, "error", err)
			return nil, fmt.Errorf("%w: face verification unavailable", common.ErrVoteRejected)
		}
		if !matched {
			l.log.Warn("face match negative", "voter_id", voterID)
			return nil, fmt.Errorf("%w: face verification failed", common.ErrVoteRejected)
		}
	}

	// Fast-path check. Two concurrent requests can both pass this; the
	// unique constraint on (election, voter) is the actual guarantee.
	hasVoted, err := l.statuses.HasVoted(ctx, electionID, voterID)
	if err != nil {
		return nil, fmt.Errorf("failed to check voting status: %w", err)
	}
	if hasVoted {
		return nil, common.ErrAlreadyVoted
	}

	newVote := NewVote(electionID, voterID, candidateID)
	status := NewStatus(electionID, voterID, newVote.VotedAt)

	if err := l.votes.Commit(ctx, newVote, status); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Lost the race: another request committed first.
			l.log.Info("duplicate vote blocked by constraint",
				"election_id", electionID, "voter_id", voterID)
			return nil, common.ErrAlreadyVoted
		}
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}

	l.log.Info("vote committed",
		"vote_id", newVote.ID,
		"election_id", electionID,
		"voter_id", voterID,
		"candidate_id", candidateID)

	// Synchronous recompute keeps results fresh at the cost of per-vote
	// latency. The vote stays committed if the recompute fails; the
	// election is queued for a background retry instead.
	if _, _, err := l.tally.Recompute(ctx, electionID); err != nil {
		l.log.Error("post-vote recompute failed, queueing retry",
			"election_id", electionID, "error", err)
		l.enqueueRetry(electionID)
	}

	return newVote, nil
}

// HasVoted reports whether the voter has a committed vote in the election
func (l *Ledger) HasVoted(ctx context.Context, electionID, voterID uuid.UUID) (bool, error) {
	hasVoted, err := l.statuses.HasVoted(ctx, electionID, voterID)
	if err != nil {
		return false, fmt.Errorf("failed to check voting status: %w", err)
	}
	return hasVoted, nil
}

func (l *Ledger) enqueueRetry(electionID uuid.UUID) {
	select {
	case l.retryQueue <- electionID:
	default:
		// Queue full. The next committed vote for this election triggers a
		// fresh recompute anyway, so dropping here loses freshness, not
		// correctness; still worth shouting about.
		l.log.Error("recompute retry queue full, dropping retry", "election_id", electionID)
	}
}

// StartRetryWorker drains the recompute retry queue until ctx is done.
// Recompute is idempotent, so retrying is always safe.
func (l *Ledger) StartRetryWorker(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case electionID := <-l.retryQueue:
				l.retryRecompute(ctx, electionID)
			}
		}
	}()
}

func (l *Ledger) retryRecompute(ctx context.Context, electionID uuid.UUID) {
	const maxAttempts = 5
	delay := time.Second

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if _, _, err := l.tally.Recompute(ctx, electionID); err == nil {
			l.log.Info("recompute retry succeeded", "election_id", electionID, "attempt", attempt)
			return
		} else if attempt == maxAttempts {
			l.log.Error("recompute retry exhausted",
				"election_id", electionID, "attempts", maxAttempts, "error", err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
			delay *= 2
		}
	}
}
