package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ballotworks/electoral-api/internal/domain/common"
	"github.com/ballotworks/electoral-api/internal/domain/voter"
	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/storage"
	"github.com/ballotworks/electoral-api/internal/storage/postgres"
	"github.com/ballotworks/electoral-api/internal/verification"
)

// Authentication error sentinels. Registration and login failures are
// deliberately vague toward the client; the reasons are logged server-side.
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrIdentityUnverified  = errors.New("identity could not be verified against the registry")
	ErrEmailAlreadyInUse   = errors.New("a voter with this email already exists")
	ErrIDProofAlreadyInUse = errors.New("this ID proof is already registered")
)

// AuthService owns voter registration and login. Registration verifies the
// applicant against the seeded identity registries before any row is
// written.
type AuthService struct {
	voterRepo postgres.VoterRepository
	identity  *verification.IdentityService
	log       *log.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(voterRepo postgres.VoterRepository, identity *verification.IdentityService) *AuthService {
	return &AuthService{
		voterRepo: voterRepo,
		identity:  identity,
		log:       logger.Service("auth"),
	}
}

// RegisterRequest represents a voter registration request
type RegisterRequest struct {
	Email         string    `json:"email" binding:"required,email"`
	Password      string    `json:"password" binding:"required,min=8"`
	FullName      string    `json:"full_name" binding:"required"`
	DateOfBirth   time.Time `json:"date_of_birth" binding:"required"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	IDProofType   string    `json:"id_proof_type" binding:"required"`
	IDProofNumber string    `json:"id_proof_number" binding:"required"`
}

// Register verifies the applicant's identity and creates the voter
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*voter.Voter, error) {
	proofType := verification.IDProofType(req.IDProofType)

	verified, err := s.identity.VerifyVoter(ctx, proofType, req.IDProofNumber, req.FullName, req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("identity verification failed: %w", err)
	}
	if !verified {
		s.log.Warn("registration rejected, identity not verified", "email", req.Email)
		return nil, ErrIdentityUnverified
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	vtr := voter.NewVoter(req.Email, string(hash), req.FullName, req.DateOfBirth)
	vtr.City = req.City
	vtr.State = req.State
	switch proofType {
	case verification.ProofAadhar:
		vtr.AadharNumber = req.IDProofNumber
	case verification.ProofVoterID:
		vtr.VoterIDNumber = req.IDProofNumber
	}
	vtr.MarkVerified()

	if err := s.voterRepo.Create(ctx, vtr); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, s.classifyDuplicate(ctx, req.Email)
		}
		return nil, fmt.Errorf("failed to create voter: %w", err)
	}

	s.log.Info("voter registered", "voter_id", vtr.ID, "email", vtr.Email)
	return vtr, nil
}

// classifyDuplicate decides which unique constraint a rejected insert hit.
// Voters are unique on email and on each ID-proof number; looking the email
// up after the fact tells the two cases apart without parsing driver errors.
func (s *AuthService) classifyDuplicate(ctx context.Context, email string) error {
	if _, err := s.voterRepo.GetByEmail(ctx, email); err == nil {
		return ErrEmailAlreadyInUse
	}
	return ErrIDProofAlreadyInUse
}

// SetProfileImage records the object-store key of the voter's reference
// photo. The face-match gate at vote time compares the captured frame
// against this image, so a voter must upload one before face matching
// can pass for them.
func (s *AuthService) SetProfileImage(ctx context.Context, voterID uuid.UUID, key string) (*voter.Voter, error) {
	vtr, err := s.voterRepo.GetByID(ctx, voterID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, common.ErrVoterNotFound
		}
		return nil, fmt.Errorf("failed to load voter: %w", err)
	}

	vtr.ProfileImageKey = key
	if err := s.voterRepo.Update(ctx, vtr); err != nil {
		return nil, fmt.Errorf("failed to update voter: %w", err)
	}

	s.log.Info("profile image updated", "voter_id", voterID)
	return vtr, nil
}

// Login checks credentials and returns the authenticated voter
func (s *AuthService) Login(ctx context.Context, email, password string) (*voter.Voter, error) {
	vtr, err := s.voterRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load voter: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(vtr.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("login rejected, bad password", "email", email)
		return nil, ErrInvalidCredentials
	}

	s.log.Info("voter logged in", "voter_id", vtr.ID)
	return vtr, nil
}
