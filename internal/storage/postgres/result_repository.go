package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ballotworks/electoral-api/internal/domain/tally"
	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/storage"
)

// PostgresResultRepository implements ResultRepository using GORM
type PostgresResultRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresResultRepository creates a new PostgreSQL result repository
func NewPostgresResultRepository(db *gorm.DB) *PostgresResultRepository {
	return &PostgresResultRepository{
		db:  db,
		log: logger.Repository("result"),
	}
}

// UpsertResult writes the derived counts for one (election, candidate)
// pair. The rank column is deliberately absent from the conflict update
// list: an existing row keeps its previous rank until the rank pass
// rewrites it, so readers never observe a rank of zero mid-recompute.
func (r *PostgresResultRepository) UpsertResult(ctx context.Context, result *tally.ElectionResult) error {
	r.log.Debug("upserting election result",
		"election_id", result.ElectionID, "candidate_id", result.CandidateID)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "election_id"}, {Name: "candidate_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"vote_count", "vote_percentage", "last_updated",
		}),
	}).Create(result).Error
	if err != nil {
		r.log.Error("failed to upsert election result",
			"election_id", result.ElectionID, "candidate_id", result.CandidateID, "error", err)
		return fmt.Errorf("failed to upsert election result: %w", err)
	}

	return nil
}

// UpdateRank sets the rank of an existing result row
func (r *PostgresResultRepository) UpdateRank(ctx context.Context, electionID, candidateID uuid.UUID, rank int) error {
	err := r.db.WithContext(ctx).
		Model(&tally.ElectionResult{}).
		Where("election_id = ? AND candidate_id = ?", electionID, candidateID).
		Update("rank_position", rank).Error
	if err != nil {
		r.log.Error("failed to update result rank",
			"election_id", electionID, "candidate_id", candidateID, "error", err)
		return fmt.Errorf("failed to update result rank: %w", err)
	}

	return nil
}

func (r *PostgresResultRepository) GetByElectionID(ctx context.Context, electionID uuid.UUID) ([]*tally.ElectionResult, error) {
	var results []*tally.ElectionResult
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("rank_position ASC").
		Find(&results).Error; err != nil {
		r.log.Error("failed to get results by election", "election_id", electionID, "error", err)
		return nil, fmt.Errorf("failed to get results by election: %w", err)
	}

	r.log.Debug("retrieved election results", "election_id", electionID, "count", len(results))
	return results, nil
}

// PostgresReportRepository implements ReportRepository using GORM
type PostgresReportRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresReportRepository creates a new PostgreSQL report repository
func NewPostgresReportRepository(db *gorm.DB) *PostgresReportRepository {
	return &PostgresReportRepository{
		db:  db,
		log: logger.Repository("report"),
	}
}

// UpsertReport writes the per-election summary report. One row per
// election; recomputes overwrite it.
func (r *PostgresReportRepository) UpsertReport(ctx context.Context, report *tally.ElectionReport) error {
	r.log.Debug("upserting election report", "election_id", report.ElectionID)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "election_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_registered_voters", "total_votes_cast", "voter_turnout_percentage",
			"total_candidates", "winning_candidate_id", "winning_margin",
			"generated_by", "generated_at",
		}),
	}).Create(report).Error
	if err != nil {
		r.log.Error("failed to upsert election report", "election_id", report.ElectionID, "error", err)
		return fmt.Errorf("failed to upsert election report: %w", err)
	}

	r.log.Info("election report upserted", "election_id", report.ElectionID,
		"total_votes", report.TotalVotesCast)
	return nil
}

func (r *PostgresReportRepository) GetByElectionID(ctx context.Context, electionID uuid.UUID) (*tally.ElectionReport, error) {
	r.log.Debug("retrieving election report", "election_id", electionID)

	var report tally.ElectionReport
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("election report not found", "election_id", electionID)
			return nil, storage.ErrNotFound
		}
		r.log.Error("failed to get election report", "election_id", electionID, "error", err)
		return nil, fmt.Errorf("failed to get election report: %w", err)
	}

	return &report, nil
}
