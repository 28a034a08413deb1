package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ballotworks/electoral-api/internal/domain/vote"
	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/storage"
)

// PostgresVoteRepository implements VoteRepository using GORM
type PostgresVoteRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresVoteRepository creates a new PostgreSQL vote repository
func NewPostgresVoteRepository(db *gorm.DB) *PostgresVoteRepository {
	return &PostgresVoteRepository{
		db:  db,
		log: logger.Repository("vote"),
	}
}

// Commit appends the vote and upserts the voter's has-voted marker in one
// transaction. The unique index on (election_id, voter_id) is the final
// authority: if two commits race, the second one fails here with
// storage.ErrDuplicateKey no matter what the caller checked beforehand.
func (r *PostgresVoteRepository) Commit(ctx context.Context, v *vote.Vote, s *vote.VoterElectionStatus) error {
	r.log.Debug("committing vote", "election_id", v.ElectionID, "candidate_id", v.CandidateID)

	if err := v.Validate(); err != nil {
		r.log.Error("vote validation failed", "error", err)
		return fmt.Errorf("vote validation failed: %w", err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(v).Error; err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "election_id"}, {Name: "voter_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"has_voted", "voted_at"}),
		}).Create(s).Error
	})
	if err != nil {
		if translated := translateError(err); errors.Is(translated, storage.ErrDuplicateKey) {
			r.log.Warn("duplicate vote rejected by constraint",
				"election_id", v.ElectionID, "voter_id", v.VoterID)
			return translated
		}
		r.log.Error("failed to commit vote", "error", err, "election_id", v.ElectionID)
		return fmt.Errorf("failed to commit vote: %w", err)
	}

	r.log.Info("vote committed successfully",
		"vote_id", v.ID, "election_id", v.ElectionID, "candidate_id", v.CandidateID)
	return nil
}

func (r *PostgresVoteRepository) GetByElectionID(ctx context.Context, electionID uuid.UUID) ([]*vote.Vote, error) {
	var votes []*vote.Vote
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("voted_at ASC").
		Find(&votes).Error; err != nil {
		r.log.Error("failed to get votes by election", "election_id", electionID, "error", err)
		return nil, fmt.Errorf("failed to get votes by election: %w", err)
	}

	r.log.Debug("retrieved votes for election", "election_id", electionID, "count", len(votes))
	return votes, nil
}

func (r *PostgresVoteRepository) CountByElection(ctx context.Context, electionID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&vote.Vote{}).
		Where("election_id = ?", electionID).
		Count(&count).Error; err != nil {
		r.log.Error("failed to count votes by election", "election_id", electionID, "error", err)
		return 0, fmt.Errorf("failed to count votes by election: %w", err)
	}

	return count, nil
}

func (r *PostgresVoteRepository) CountByCandidate(ctx context.Context, candidateID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&vote.Vote{}).
		Where("candidate_id = ?", candidateID).
		Count(&count).Error; err != nil {
		r.log.Error("failed to count votes by candidate", "candidate_id", candidateID, "error", err)
		return 0, fmt.Errorf("failed to count votes by candidate: %w", err)
	}

	return count, nil
}

// HasVoted answers the optimistic pre-check from the status mirror. A
// missing row means the voter has not voted yet.
func (r *PostgresVoteRepository) HasVoted(ctx context.Context, electionID, voterID uuid.UUID) (bool, error) {
	r.log.Debug("checking has-voted status", "election_id", electionID, "voter_id", voterID)

	var status vote.VoterElectionStatus
	if err := r.db.WithContext(ctx).
		Where("election_id = ? AND voter_id = ?", electionID, voterID).
		First(&status).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		r.log.Error("failed to check has-voted status",
			"election_id", electionID, "voter_id", voterID, "error", err)
		return false, fmt.Errorf("failed to check has-voted status: %w", err)
	}

	return status.HasVoted, nil
}
