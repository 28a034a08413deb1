package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ballotworks/electoral-api/internal/domain/election"
	"github.com/ballotworks/electoral-api/internal/domain/tally"
	"github.com/ballotworks/electoral-api/internal/domain/vote"
	"github.com/ballotworks/electoral-api/internal/domain/voter"
	"github.com/ballotworks/electoral-api/internal/storage"
	"github.com/ballotworks/electoral-api/internal/verification"
)

// Store is an in-memory implementation of every repository, used by unit
// tests and local development without PostgreSQL. It enforces the same
// uniqueness rules the database constraints do, including the one-vote
// (election, voter) constraint.
type Store struct {
	mu sync.Mutex

	elections  map[uuid.UUID]*election.Election
	candidates map[uuid.UUID]*election.Candidate
	voters     map[uuid.UUID]*voter.Voter
	votes      map[uuid.UUID]*vote.Vote
	statuses   map[statusKey]*vote.VoterElectionStatus
	results    map[resultKey]*tally.ElectionResult
	reports    map[uuid.UUID]*tally.ElectionReport
	aadhar     map[string]*verification.AadharRecord
	voterIDs   map[string]*verification.VoterIDRecord

	voteKeys map[statusKey]struct{}
}

type statusKey struct {
	electionID uuid.UUID
	voterID    uuid.UUID
}

type resultKey struct {
	electionID  uuid.UUID
	candidateID uuid.UUID
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		elections:  make(map[uuid.UUID]*election.Election),
		candidates: make(map[uuid.UUID]*election.Candidate),
		voters:     make(map[uuid.UUID]*voter.Voter),
		votes:      make(map[uuid.UUID]*vote.Vote),
		statuses:   make(map[statusKey]*vote.VoterElectionStatus),
		results:    make(map[resultKey]*tally.ElectionResult),
		reports:    make(map[uuid.UUID]*tally.ElectionReport),
		aadhar:     make(map[string]*verification.AadharRecord),
		voterIDs:   make(map[string]*verification.VoterIDRecord),
		voteKeys:   make(map[statusKey]struct{}),
	}
}

// --- elections ---

func (s *Store) Create(ctx context.Context, e *election.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	s.elections[e.ID] = &cp
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*election.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.elections[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *Store) GetAll(ctx context.Context) ([]*election.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*election.Election, 0, len(s.elections))
	for _, e := range s.elections {
		cp := *e
		out = append(out, &cp)
	}
	sortElections(out)
	return out, nil
}

func (s *Store) GetByStatus(ctx context.Context, status election.Status) ([]*election.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*election.Election
	for _, e := range s.elections {
		if e.Status == status {
			cp := *e
			out = append(out, &cp)
		}
	}
	sortElections(out)
	return out, nil
}

func (s *Store) GetPublished(ctx context.Context) ([]*election.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*election.Election
	for _, e := range s.elections {
		if e.ResultPublished {
			cp := *e
			out = append(out, &cp)
		}
	}
	sortElections(out)
	return out, nil
}

func (s *Store) Update(ctx context.Context, e *election.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.elections[e.ID]; !ok {
		return storage.ErrNotFound
	}
	cp := *e
	s.elections[e.ID] = &cp
	return nil
}

func sortElections(elections []*election.Election) {
	sort.Slice(elections, func(i, j int) bool {
		return strings.Compare(elections[i].ID.String(), elections[j].ID.String()) < 0
	})
}

// Elections returns the election repository view of the store
func (s *Store) Elections() *Store { return s }

// --- candidates ---

// CandidateStore implements the candidate repository over a shared Store
type CandidateStore struct{ s *Store }

// Candidates returns the candidate repository view of the store
func (s *Store) Candidates() *CandidateStore { return &CandidateStore{s: s} }

func (c *CandidateStore) Create(ctx context.Context, cand *election.Candidate) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	for _, existing := range c.s.candidates {
		if existing.ElectionID == cand.ElectionID && existing.VoterID == cand.VoterID {
			return storage.ErrDuplicateKey
		}
	}
	cp := *cand
	c.s.candidates[cand.ID] = &cp
	return nil
}

func (c *CandidateStore) GetByID(ctx context.Context, id uuid.UUID) (*election.Candidate, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	cand, ok := c.s.candidates[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *cand
	return &cp, nil
}

func (c *CandidateStore) GetByElectionID(ctx context.Context, electionID uuid.UUID) ([]*election.Candidate, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	var out []*election.Candidate
	for _, cand := range c.s.candidates {
		if cand.ElectionID == electionID {
			cp := *cand
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].ID.String(), out[j].ID.String()) < 0
	})
	return out, nil
}

func (c *CandidateStore) UpdatePhotoKey(ctx context.Context, id uuid.UUID, photoKey string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	cand, ok := c.s.candidates[id]
	if !ok {
		return storage.ErrNotFound
	}
	cand.PhotoKey = photoKey
	return nil
}

// --- voters ---

// VoterStore implements the voter repository over a shared Store
type VoterStore struct{ s *Store }

// Voters returns the voter repository view of the store
func (s *Store) Voters() *VoterStore { return &VoterStore{s: s} }

func (v *VoterStore) Create(ctx context.Context, vtr *voter.Voter) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for _, existing := range v.s.voters {
		if existing.Email == vtr.Email {
			return storage.ErrDuplicateKey
		}
		if vtr.AadharNumber != "" && existing.AadharNumber == vtr.AadharNumber {
			return storage.ErrDuplicateKey
		}
		if vtr.VoterIDNumber != "" && existing.VoterIDNumber == vtr.VoterIDNumber {
			return storage.ErrDuplicateKey
		}
	}
	cp := *vtr
	v.s.voters[vtr.ID] = &cp
	return nil
}

func (v *VoterStore) GetByID(ctx context.Context, id uuid.UUID) (*voter.Voter, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	vtr, ok := v.s.voters[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *vtr
	return &cp, nil
}

func (v *VoterStore) GetByEmail(ctx context.Context, email string) (*voter.Voter, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for _, vtr := range v.s.voters {
		if vtr.Email == email {
			cp := *vtr
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (v *VoterStore) CountVoters(ctx context.Context) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	return int64(len(v.s.voters)), nil
}

func (v *VoterStore) Update(ctx context.Context, vtr *voter.Voter) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if _, ok := v.s.voters[vtr.ID]; !ok {
		return storage.ErrNotFound
	}
	cp := *vtr
	v.s.voters[vtr.ID] = &cp
	return nil
}

// --- votes ---

// VoteStore implements the vote repository over a shared Store
type VoteStore struct{ s *Store }

// Votes returns the vote repository view of the store
func (s *Store) Votes() *VoteStore { return &VoteStore{s: s} }

// Commit enforces the one-vote constraint the way the database unique
// index does: the check and the insert happen under one lock, so exactly
// one of two racing commits succeeds.
func (v *VoteStore) Commit(ctx context.Context, vt *vote.Vote, st *vote.VoterElectionStatus) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	key := statusKey{electionID: vt.ElectionID, voterID: vt.VoterID}
	if _, exists := v.s.voteKeys[key]; exists {
		return storage.ErrDuplicateKey
	}

	vcp := *vt
	scp := *st
	v.s.votes[vt.ID] = &vcp
	v.s.voteKeys[key] = struct{}{}
	v.s.statuses[key] = &scp
	return nil
}

func (v *VoteStore) GetByElectionID(ctx context.Context, electionID uuid.UUID) ([]*vote.Vote, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var out []*vote.Vote
	for _, vt := range v.s.votes {
		if vt.ElectionID == electionID {
			cp := *vt
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].VotedAt.Before(out[j].VotedAt)
	})
	return out, nil
}

func (v *VoteStore) CountByElection(ctx context.Context, electionID uuid.UUID) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var count int64
	for _, vt := range v.s.votes {
		if vt.ElectionID == electionID {
			count++
		}
	}
	return count, nil
}

func (v *VoteStore) CountByCandidate(ctx context.Context, candidateID uuid.UUID) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var count int64
	for _, vt := range v.s.votes {
		if vt.CandidateID == candidateID {
			count++
		}
	}
	return count, nil
}

func (v *VoteStore) HasVoted(ctx context.Context, electionID, voterID uuid.UUID) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	st, ok := v.s.statuses[statusKey{electionID: electionID, voterID: voterID}]
	if !ok {
		return false, nil
	}
	return st.HasVoted, nil
}

// --- results ---

// ResultStore implements the result repository over a shared Store
type ResultStore struct{ s *Store }

// Results returns the result repository view of the store
func (s *Store) Results() *ResultStore { return &ResultStore{s: s} }

func (r *ResultStore) UpsertResult(ctx context.Context, result *tally.ElectionResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := resultKey{electionID: result.ElectionID, candidateID: result.CandidateID}
	if existing, ok := r.s.results[key]; ok {
		// Ranks survive a counts-only upsert; they are rewritten by
		// UpdateRank once every candidate's counts are in.
		existing.VoteCount = result.VoteCount
		existing.VotePercentage = result.VotePercentage
		existing.LastUpdated = time.Now()
		return nil
	}
	cp := *result
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	r.s.results[key] = &cp
	return nil
}

func (r *ResultStore) UpdateRank(ctx context.Context, electionID, candidateID uuid.UUID, rank int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := resultKey{electionID: electionID, candidateID: candidateID}
	existing, ok := r.s.results[key]
	if !ok {
		return storage.ErrNotFound
	}
	existing.RankPosition = rank
	return nil
}

func (r *ResultStore) GetByElectionID(ctx context.Context, electionID uuid.UUID) ([]*tally.ElectionResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*tally.ElectionResult
	for key, res := range r.s.results {
		if key.electionID == electionID {
			cp := *res
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RankPosition < out[j].RankPosition
	})
	return out, nil
}

// --- reports ---

// ReportStore implements the report repository over a shared Store
type ReportStore struct{ s *Store }

// Reports returns the report repository view of the store
func (s *Store) Reports() *ReportStore { return &ReportStore{s: s} }

func (r *ReportStore) UpsertReport(ctx context.Context, report *tally.ElectionReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *report
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	r.s.reports[report.ElectionID] = &cp
	return nil
}

func (r *ReportStore) GetByElectionID(ctx context.Context, electionID uuid.UUID) (*tally.ElectionReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	report, ok := r.s.reports[electionID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *report
	return &cp, nil
}

// --- identity registries ---

// RegistryStore implements the registry repository over a shared Store
type RegistryStore struct{ s *Store }

// Registry returns the identity registry view of the store
func (s *Store) Registry() *RegistryStore { return &RegistryStore{s: s} }

// SeedAadhar adds an Aadhar registry entry
func (s *Store) SeedAadhar(record *verification.AadharRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *record
	s.aadhar[record.AadharNumber] = &cp
}

// SeedVoterID adds an electoral-roll registry entry
func (s *Store) SeedVoterID(record *verification.VoterIDRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *record
	s.voterIDs[record.VoterIDNumber] = &cp
}

func (r *RegistryStore) FindAadhar(ctx context.Context, number, fullName string, dateOfBirth time.Time) (*verification.AadharRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	record, ok := r.s.aadhar[number]
	if !ok || record.FullName != fullName || !record.DateOfBirth.Equal(dateOfBirth) {
		return nil, storage.ErrNotFound
	}
	cp := *record
	return &cp, nil
}

func (r *RegistryStore) FindVoterID(ctx context.Context, number, fullName string, dateOfBirth time.Time) (*verification.VoterIDRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	record, ok := r.s.voterIDs[number]
	if !ok || record.FullName != fullName || !record.DateOfBirth.Equal(dateOfBirth) {
		return nil, storage.ErrNotFound
	}
	cp := *record
	return &cp, nil
}
