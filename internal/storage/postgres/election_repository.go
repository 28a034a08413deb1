package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ballotworks/electoral-api/internal/domain/election"
	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/storage"
)

// PostgresElectionRepository implements ElectionRepository using GORM
type PostgresElectionRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresElectionRepository creates a new PostgreSQL election repository
func NewPostgresElectionRepository(db *gorm.DB) *PostgresElectionRepository {
	return &PostgresElectionRepository{
		db:  db,
		log: logger.Repository("election"),
	}
}

func (r *PostgresElectionRepository) Create(ctx context.Context, e *election.Election) error {
	r.log.Debug("creating election", "name", e.Name, "type", e.Type.String())

	if err := e.Validate(); err != nil {
		r.log.Error("election validation failed", "error", err)
		return fmt.Errorf("election validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		r.log.Error("failed to create election", "error", err, "name", e.Name)
		return fmt.Errorf("failed to create election: %w", translateError(err))
	}

	r.log.Info("election created successfully", "election_id", e.ID, "name", e.Name)
	return nil
}

func (r *PostgresElectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*election.Election, error) {
	r.log.Debug("retrieving election by ID", "election_id", id)

	var e election.Election
	if err := r.db.WithContext(ctx).Preload("Candidates").First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("election not found", "election_id", id)
			return nil, storage.ErrNotFound
		}
		r.log.Error("failed to get election by ID", "election_id", id, "error", err)
		return nil, fmt.Errorf("failed to get election by ID: %w", err)
	}

	return &e, nil
}

func (r *PostgresElectionRepository) GetAll(ctx context.Context) ([]*election.Election, error) {
	var elections []*election.Election
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&elections).Error; err != nil {
		r.log.Error("failed to get all elections", "error", err)
		return nil, fmt.Errorf("failed to get all elections: %w", err)
	}

	r.log.Debug("retrieved all elections", "count", len(elections))
	return elections, nil
}

func (r *PostgresElectionRepository) GetByStatus(ctx context.Context, status election.Status) ([]*election.Election, error) {
	r.log.Debug("retrieving elections by status", "status", status.String())

	var elections []*election.Election
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("start_date ASC").
		Find(&elections).Error; err != nil {
		r.log.Error("failed to get elections by status", "status", status.String(), "error", err)
		return nil, fmt.Errorf("failed to get elections by status: %w", err)
	}

	r.log.Debug("elections retrieved by status", "status", status.String(), "count", len(elections))
	return elections, nil
}

func (r *PostgresElectionRepository) GetPublished(ctx context.Context) ([]*election.Election, error) {
	var elections []*election.Election
	if err := r.db.WithContext(ctx).
		Where("result_published = ?", true).
		Order("result_published_at DESC").
		Find(&elections).Error; err != nil {
		r.log.Error("failed to get published elections", "error", err)
		return nil, fmt.Errorf("failed to get published elections: %w", err)
	}

	r.log.Debug("retrieved published elections", "count", len(elections))
	return elections, nil
}

func (r *PostgresElectionRepository) Update(ctx context.Context, e *election.Election) error {
	r.log.Debug("updating election", "election_id", e.ID, "status", e.Status.String())

	if err := e.Validate(); err != nil {
		r.log.Error("election validation failed", "error", err)
		return fmt.Errorf("election validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Save(e).Error; err != nil {
		r.log.Error("failed to update election", "election_id", e.ID, "error", err)
		return fmt.Errorf("failed to update election: %w", translateError(err))
	}

	r.log.Info("election updated successfully", "election_id", e.ID, "status", e.Status.String())
	return nil
}

// PostgresCandidateRepository implements CandidateRepository using GORM
type PostgresCandidateRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresCandidateRepository creates a new PostgreSQL candidate repository
func NewPostgresCandidateRepository(db *gorm.DB) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{
		db:  db,
		log: logger.Repository("candidate"),
	}
}

func (r *PostgresCandidateRepository) Create(ctx context.Context, c *election.Candidate) error {
	r.log.Debug("creating candidate", "election_id", c.ElectionID, "party", c.PartyName)

	if err := c.Validate(); err != nil {
		r.log.Error("candidate validation failed", "error", err)
		return fmt.Errorf("candidate validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if translated := translateError(err); errors.Is(translated, storage.ErrDuplicateKey) {
			r.log.Warn("candidate already registered for election",
				"election_id", c.ElectionID, "voter_id", c.VoterID)
			return translated
		}
		r.log.Error("failed to create candidate", "error", err, "election_id", c.ElectionID)
		return fmt.Errorf("failed to create candidate: %w", err)
	}

	r.log.Info("candidate created successfully",
		"candidate_id", c.ID, "election_id", c.ElectionID, "party", c.PartyName)
	return nil
}

func (r *PostgresCandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*election.Candidate, error) {
	r.log.Debug("retrieving candidate by ID", "candidate_id", id)

	var c election.Candidate
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("candidate not found", "candidate_id", id)
			return nil, storage.ErrNotFound
		}
		r.log.Error("failed to get candidate by ID", "candidate_id", id, "error", err)
		return nil, fmt.Errorf("failed to get candidate by ID: %w", err)
	}

	return &c, nil
}

// GetByElectionID returns candidates ordered by ID so tally traversal is
// deterministic.
func (r *PostgresCandidateRepository) GetByElectionID(ctx context.Context, electionID uuid.UUID) ([]*election.Candidate, error) {
	var candidates []*election.Candidate
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("id ASC").
		Find(&candidates).Error; err != nil {
		r.log.Error("failed to get candidates by election", "election_id", electionID, "error", err)
		return nil, fmt.Errorf("failed to get candidates by election: %w", err)
	}

	r.log.Debug("retrieved candidates for election", "election_id", electionID, "count", len(candidates))
	return candidates, nil
}

func (r *PostgresCandidateRepository) UpdatePhotoKey(ctx context.Context, id uuid.UUID, photoKey string) error {
	r.log.Debug("updating candidate photo key", "candidate_id", id)

	result := r.db.WithContext(ctx).
		Model(&election.Candidate{}).
		Where("id = ?", id).
		Update("photo_key", photoKey)
	if result.Error != nil {
		r.log.Error("failed to update candidate photo key", "candidate_id", id, "error", result.Error)
		return fmt.Errorf("failed to update candidate photo key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		r.log.Debug("candidate not found for photo update", "candidate_id", id)
		return storage.ErrNotFound
	}

	r.log.Info("candidate photo key updated", "candidate_id", id)
	return nil
}
