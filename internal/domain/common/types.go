package common

import "github.com/google/uuid"

// SharedElection represents the minimal Election structure used across domains
type SharedElection struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name string    `json:"name"`
}

// SharedVoter represents the minimal Voter structure used across domains
type SharedVoter struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	FullName string    `json:"full_name"`
}

// SharedCandidate represents the minimal Candidate structure used across domains
type SharedCandidate struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	VoterID   uuid.UUID `json:"voter_id"`
	PartyName string    `json:"party_name"`
}

// Interfaces for type safety without circular imports

type ElectionInterface interface {
	GetID() uuid.UUID
	GetName() string
}

type VoterInterface interface {
	GetID() uuid.UUID
	GetFullName() string
}

type CandidateInterface interface {
	GetID() uuid.UUID
	GetVoterID() uuid.UUID
}

func (e SharedElection) GetID() uuid.UUID   { return e.ID }
func (e SharedElection) GetName() string    { return e.Name }
func (v SharedVoter) GetID() uuid.UUID      { return v.ID }
func (v SharedVoter) GetFullName() string   { return v.FullName }
func (c SharedCandidate) GetID() uuid.UUID  { return c.ID }
func (c SharedCandidate) GetVoterID() uuid.UUID { return c.VoterID }

// TableName overrides for the shared read models so GORM resolves the
// relation tables correctly when preloading.
func (SharedElection) TableName() string  { return "elections" }
func (SharedVoter) TableName() string     { return "voters" }
func (SharedCandidate) TableName() string { return "candidates" }
