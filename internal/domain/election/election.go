package election

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ballotworks/electoral-api/internal/domain/common"
)

// Election represents a single election with its lifecycle state and
// result-publication gate.
type Election struct {
	ID                uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name              string     `json:"name" gorm:"not null"`
	Type              Type       `json:"type" gorm:"type:election_type;not null;default:'GENERAL'"`
	StartDate         time.Time  `json:"start_date" gorm:"not null"`
	EndDate           time.Time  `json:"end_date" gorm:"not null"`
	City              string     `json:"city"`
	State             string     `json:"state"`
	Status            Status     `json:"status" gorm:"type:election_status;not null;default:'DRAFT'"`
	ResultPublished   bool       `json:"result_published" gorm:"not null;default:false"`
	ResultPublishedAt *time.Time `json:"result_published_at"`
	ResultPublishedBy *uuid.UUID `json:"result_published_by" gorm:"type:uuid"`
	CreatedBy         uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Candidates []Candidate `json:"candidates,omitempty" gorm:"foreignKey:ElectionID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name used by GORM
func (Election) TableName() string {
	return "elections"
}

// BeforeCreate sets a UUID before creating the record
func (e *Election) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// NewElection creates a new election in DRAFT status
func NewElection(name string, electionType Type, createdBy uuid.UUID, startDate, endDate time.Time) *Election {
	return &Election{
		ID:        uuid.New(),
		Name:      name,
		Type:      electionType,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    StatusDraft,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
}

// CanTransitionTo checks if the election can move to a new status.
// Transitions are strictly forward: DRAFT -> ACTIVE -> COMPLETED.
func (e *Election) CanTransitionTo(newStatus Status) bool {
	transitions := map[Status][]Status{
		StatusDraft:     {StatusActive},
		StatusActive:    {StatusCompleted},
		StatusCompleted: {},
	}

	allowed, exists := transitions[e.Status]
	if !exists {
		return false
	}

	return slices.Contains(allowed, newStatus)
}

// UpdateStatus updates the status if the transition is valid
func (e *Election) UpdateStatus(newStatus Status) error {
	if !e.CanTransitionTo(newStatus) {
		return fmt.Errorf("%w: cannot transition from %s to %s",
			common.ErrInvalidTransition, e.Status, newStatus)
	}
	e.Status = newStatus
	return nil
}

// IsOpenForVoting reports whether votes are currently accepted
func (e *Election) IsOpenForVoting() bool {
	return e.Status == StatusActive
}

// EligibleFor reports whether a voter in the given city/state may see and
// vote in this election. LOCAL elections are scoped to (city, state), STATE
// elections to state; GENERAL and SPECIAL are open to all voters.
func (e *Election) EligibleFor(city, state string) bool {
	switch e.Type {
	case TypeLocal:
		return city != "" && strings.EqualFold(city, e.City) &&
			state != "" && strings.EqualFold(state, e.State)
	case TypeState:
		return state != "" && strings.EqualFold(state, e.State)
	default:
		return true
	}
}

// Publish marks results as published, stamping publisher and time
func (e *Election) Publish(adminID uuid.UUID) error {
	if e.Status != StatusCompleted {
		return common.ErrElectionNotComplete
	}
	now := time.Now()
	e.ResultPublished = true
	e.ResultPublishedAt = &now
	e.ResultPublishedBy = &adminID
	return nil
}

// Unpublish hides results again and clears the publication stamp
func (e *Election) Unpublish() error {
	if e.Status != StatusCompleted {
		return common.ErrElectionNotComplete
	}
	e.ResultPublished = false
	e.ResultPublishedAt = nil
	e.ResultPublishedBy = nil
	return nil
}

// Validate checks if the election data is valid
func (e *Election) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	if e.CreatedBy == uuid.Nil {
		return fmt.Errorf("created_by is required")
	}
	if e.EndDate.Before(e.StartDate) {
		return fmt.Errorf("end_date must be after start_date")
	}
	if _, valid := TypeFromString(e.Type.String()); !valid {
		return fmt.Errorf("invalid election type")
	}
	return nil
}

// Implement common.ElectionInterface for consistency with other domains
func (e *Election) GetID() uuid.UUID {
	return e.ID
}

func (e *Election) GetName() string {
	return e.Name
}

// Status represents the lifecycle status of an election
type Status byte

const (
	StatusDraft Status = iota
	StatusActive
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "DRAFT"
	case StatusActive:
		return "ACTIVE"
	case StatusCompleted:
		return "COMPLETED"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *Status) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	status, valid := StatusFromString(str)
	if !valid {
		return fmt.Errorf("invalid election status: %s", str)
	}
	*s = status
	return nil
}

// StatusFromString converts a string to a Status
func StatusFromString(s string) (Status, bool) {
	switch s {
	case "DRAFT":
		return StatusDraft, true
	case "ACTIVE":
		return StatusActive, true
	case "COMPLETED":
		return StatusCompleted, true
	default:
		return StatusDraft, false
	}
}

// Scan implements the sql.Scanner interface for database deserialization
func (s *Status) Scan(value interface{}) error {
	if value == nil {
		*s = StatusDraft
		return nil
	}

	str, ok := value.(string)
	if !ok {
		if b, isBytes := value.([]byte); isBytes {
			str = string(b)
		} else {
			return fmt.Errorf("cannot scan %T into Status", value)
		}
	}

	status, valid := StatusFromString(str)
	if !valid {
		return fmt.Errorf("invalid election status value: %s", str)
	}
	*s = status
	return nil
}

// Value implements the driver.Valuer interface for database serialization
func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// Type scopes which voters an election applies to
type Type byte

const (
	TypeGeneral Type = iota
	TypeState
	TypeLocal
	TypeSpecial
)

func (t Type) String() string {
	switch t {
	case TypeGeneral:
		return "GENERAL"
	case TypeState:
		return "STATE"
	case TypeLocal:
		return "LOCAL"
	case TypeSpecial:
		return "SPECIAL"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface
func (t Type) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (t *Type) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	typ, valid := TypeFromString(str)
	if !valid {
		return fmt.Errorf("invalid election type: %s", str)
	}
	*t = typ
	return nil
}

// TypeFromString converts a string to a Type
func TypeFromString(s string) (Type, bool) {
	switch s {
	case "GENERAL":
		return TypeGeneral, true
	case "STATE":
		return TypeState, true
	case "LOCAL":
		return TypeLocal, true
	case "SPECIAL":
		return TypeSpecial, true
	default:
		return TypeGeneral, false
	}
}

// Scan implements the sql.Scanner interface for database deserialization
func (t *Type) Scan(value interface{}) error {
	if value == nil {
		*t = TypeGeneral
		return nil
	}

	str, ok := value.(string)
	if !ok {
		if b, isBytes := value.([]byte); isBytes {
			str = string(b)
		} else {
			return fmt.Errorf("cannot scan %T into Type", value)
		}
	}

	typ, valid := TypeFromString(str)
	if !valid {
		return fmt.Errorf("invalid election type value: %s", str)
	}
	*t = typ
	return nil
}

// Value implements the driver.Valuer interface for database serialization
func (t Type) Value() (driver.Value, error) {
	return t.String(), nil
}
