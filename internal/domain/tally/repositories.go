package tally

import (
	"context"

	"github.com/google/uuid"

	"github.com/ballotworks/electoral-api/internal/domain/election"
)

// Repository interfaces consumed by the tally engine

// ElectionRepository resolves the election being tallied
type ElectionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*election.Election, error)
}

// CandidateRepository lists candidates in deterministic order
type CandidateRepository interface {
	// GetByElectionID returns all candidates of the election ordered by
	// ascending candidate ID. The ordering doubles as the deterministic
	// tie-break for rank assignment.
	GetByElectionID(ctx context.Context, electionID uuid.UUID) ([]*election.Candidate, error)
}

// VoteCounter exposes the vote log aggregates the engine needs
type VoteCounter interface {
	CountByElection(ctx context.Context, electionID uuid.UUID) (int64, error)
	CountByCandidate(ctx context.Context, candidateID uuid.UUID) (int64, error)
}

// VoterCounter supplies the turnout denominator
type VoterCounter interface {
	CountVoters(ctx context.Context) (int64, error)
}

// ResultRepository persists per-candidate derived results
type ResultRepository interface {
	// UpsertResult inserts or replaces the counts for (election, candidate).
	// An existing row keeps its rank: ranks are only meaningful relative to
	// the other rows and are rewritten separately once all counts are in.
	UpsertResult(ctx context.Context, result *ElectionResult) error
	// UpdateRank sets the rank of an existing (election, candidate) row
	UpdateRank(ctx context.Context, electionID, candidateID uuid.UUID, rank int) error
	GetByElectionID(ctx context.Context, electionID uuid.UUID) ([]*ElectionResult, error)
}

// ReportRepository persists the per-election summary report
type ReportRepository interface {
	// UpsertReport inserts or replaces the report row for the election
	UpsertReport(ctx context.Context, report *ElectionReport) error
	GetByElectionID(ctx context.Context, electionID uuid.UUID) (*ElectionReport, error)
}
