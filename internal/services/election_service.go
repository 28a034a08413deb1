package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ballotworks/electoral-api/internal/domain/common"
	"github.com/ballotworks/electoral-api/internal/domain/election"
	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/storage"
	"github.com/ballotworks/electoral-api/internal/storage/postgres"
	"github.com/ballotworks/electoral-api/internal/validation"
)

// ElectionService owns election CRUD, lifecycle transitions, candidate
// registration and the result-publication gate.
type ElectionService struct {
	electionRepo  postgres.ElectionRepository
	candidateRepo postgres.CandidateRepository
	voterRepo     postgres.VoterRepository
	validator     validation.ElectionValidation
	log           *log.Logger
}

// NewElectionService creates a new election service
func NewElectionService(
	electionRepo postgres.ElectionRepository,
	candidateRepo postgres.CandidateRepository,
	voterRepo postgres.VoterRepository,
) *ElectionService {
	return &ElectionService{
		electionRepo:  electionRepo,
		candidateRepo: candidateRepo,
		voterRepo:     voterRepo,
		validator:     validation.ElectionValidation{},
		log:           logger.Service("election"),
	}
}

// CandidateRequest describes one candidate in an election creation request
type CandidateRequest struct {
	VoterID     string `json:"voter_id" binding:"required"`
	PartyName   string `json:"party_name" binding:"required"`
	PartySymbol string `json:"party_symbol"`
	Manifesto   string `json:"manifesto"`
}

// CreateElectionRequest represents a request to create an election
type CreateElectionRequest struct {
	Name       string             `json:"name" binding:"required"`
	Type       string             `json:"type" binding:"required"`
	StartDate  time.Time          `json:"start_date" binding:"required"`
	EndDate    time.Time          `json:"end_date" binding:"required"`
	City       string             `json:"city"`
	State      string             `json:"state"`
	Candidates []CandidateRequest `json:"candidates"`
}

// CreateElection creates a DRAFT election, optionally with its initial
// candidate slate.
func (s *ElectionService) CreateElection(ctx context.Context, req CreateElectionRequest, createdBy uuid.UUID) (*election.Election, error) {
	if err := s.validator.ValidateElectionName(req.Name); err != nil {
		return nil, err
	}

	if err := validation.ValidateDateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	electionType, valid := election.TypeFromString(req.Type)
	if !valid {
		return nil, fmt.Errorf("invalid election type: %s", req.Type)
	}

	elec := election.NewElection(req.Name, electionType, createdBy, req.StartDate, req.EndDate)
	elec.City = req.City
	elec.State = req.State

	if err := elec.Validate(); err != nil {
		return nil, err
	}

	if err := s.electionRepo.Create(ctx, elec); err != nil {
		return nil, fmt.Errorf("failed to create election: %w", err)
	}

	for _, candReq := range req.Candidates {
		cand, err := s.addCandidate(ctx, elec, candReq)
		if err != nil {
			return nil, err
		}
		elec.Candidates = append(elec.Candidates, *cand)
	}

	s.log.Info("election created",
		"election_id", elec.ID,
		"name", elec.Name,
		"type", elec.Type.String(),
		"candidates", len(elec.Candidates))

	return elec, nil
}

// AddCandidate registers a candidate on a DRAFT election
func (s *ElectionService) AddCandidate(ctx context.Context, electionID uuid.UUID, req CandidateRequest) (*election.Candidate, error) {
	elec, err := s.getElection(ctx, electionID)
	if err != nil {
		return nil, err
	}

	if elec.Status != election.StatusDraft {
		return nil, fmt.Errorf("%w: candidates may only be added while the election is DRAFT",
			common.ErrInvalidTransition)
	}

	return s.addCandidate(ctx, elec, req)
}

func (s *ElectionService) addCandidate(ctx context.Context, elec *election.Election, req CandidateRequest) (*election.Candidate, error) {
	if err := s.validator.ValidatePartyName(req.PartyName); err != nil {
		return nil, err
	}

	voterID, err := uuid.Parse(req.VoterID)
	if err != nil {
		return nil, fmt.Errorf("invalid voter_id format: %w", err)
	}

	if _, err := s.voterRepo.GetByID(ctx, voterID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, common.ErrVoterNotFound
		}
		return nil, fmt.Errorf("failed to load voter: %w", err)
	}

	cand := election.NewCandidate(elec.ID, voterID, req.PartyName, req.PartySymbol, req.Manifesto)
	if err := s.candidateRepo.Create(ctx, cand); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, common.ErrDuplicateCandidate
		}
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}

	s.log.Info("candidate registered",
		"candidate_id", cand.ID,
		"election_id", elec.ID,
		"party", cand.PartyName)

	return cand, nil
}

// UpdateStatus advances the election lifecycle. Backward transitions are
// rejected.
func (s *ElectionService) UpdateStatus(ctx context.Context, electionID uuid.UUID, newStatus election.Status) (*election.Election, error) {
	elec, err := s.getElection(ctx, electionID)
	if err != nil {
		return nil, err
	}

	if err := elec.UpdateStatus(newStatus); err != nil {
		return nil, err
	}

	if err := s.electionRepo.Update(ctx, elec); err != nil {
		return nil, fmt.Errorf("failed to update election status: %w", err)
	}

	s.log.Info("election status updated",
		"election_id", electionID,
		"status", newStatus.String())

	return elec, nil
}

// TogglePublication flips the result-publication flag. Only COMPLETED
// elections may be published; turning publication on stamps the publisher
// and time, turning it off clears both.
func (s *ElectionService) TogglePublication(ctx context.Context, electionID, adminID uuid.UUID) (*election.Election, error) {
	elec, err := s.getElection(ctx, electionID)
	if err != nil {
		return nil, err
	}

	if elec.ResultPublished {
		err = elec.Unpublish()
	} else {
		err = elec.Publish(adminID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.electionRepo.Update(ctx, elec); err != nil {
		return nil, fmt.Errorf("failed to update publication state: %w", err)
	}

	s.log.Info("result publication toggled",
		"election_id", electionID,
		"published", elec.ResultPublished)

	return elec, nil
}

// GetElection returns one election by ID
func (s *ElectionService) GetElection(ctx context.Context, electionID uuid.UUID) (*election.Election, error) {
	return s.getElection(ctx, electionID)
}

// GetAllElections returns every election
func (s *ElectionService) GetAllElections(ctx context.Context) ([]*election.Election, error) {
	elections, err := s.electionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load elections: %w", err)
	}
	return elections, nil
}

// GetActiveElectionsForVoter returns ACTIVE elections the voter is
// eligible for: LOCAL scoped by (city, state), STATE by state, GENERAL
// and SPECIAL open to all.
func (s *ElectionService) GetActiveElectionsForVoter(ctx context.Context, voterID uuid.UUID) ([]*election.Election, error) {
	vtr, err := s.voterRepo.GetByID(ctx, voterID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, common.ErrVoterNotFound
		}
		return nil, fmt.Errorf("failed to load voter: %w", err)
	}

	active, err := s.electionRepo.GetByStatus(ctx, election.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to load active elections: %w", err)
	}

	eligible := make([]*election.Election, 0, len(active))
	for _, elec := range active {
		if elec.EligibleFor(vtr.City, vtr.State) {
			eligible = append(eligible, elec)
		}
	}

	return eligible, nil
}

// GetCompletedElections returns COMPLETED elections
func (s *ElectionService) GetCompletedElections(ctx context.Context) ([]*election.Election, error) {
	completed, err := s.electionRepo.GetByStatus(ctx, election.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to load completed elections: %w", err)
	}
	return completed, nil
}

// GetPublishedElections returns elections whose results are public
func (s *ElectionService) GetPublishedElections(ctx context.Context) ([]*election.Election, error) {
	published, err := s.electionRepo.GetPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load published elections: %w", err)
	}
	return published, nil
}

// GetCandidate returns one candidate by ID
func (s *ElectionService) GetCandidate(ctx context.Context, candidateID uuid.UUID) (*election.Candidate, error) {
	cand, err := s.candidateRepo.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, common.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}
	return cand, nil
}

// GetCandidates returns the candidates of an election
func (s *ElectionService) GetCandidates(ctx context.Context, electionID uuid.UUID) ([]*election.Candidate, error) {
	if _, err := s.getElection(ctx, electionID); err != nil {
		return nil, err
	}

	candidates, err := s.candidateRepo.GetByElectionID(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	return candidates, nil
}

func (s *ElectionService) getElection(ctx context.Context, electionID uuid.UUID) (*election.Election, error) {
	elec, err := s.electionRepo.GetByID(ctx, electionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, common.ErrElectionNotFound
		}
		return nil, fmt.Errorf("failed to load election: %w", err)
	}
	return elec, nil
}
