package migrations

import (
	"github.com/ballotworks/electoral-api/internal/domain/election"
	"github.com/ballotworks/electoral-api/internal/domain/tally"
	"github.com/ballotworks/electoral-api/internal/domain/vote"
	"github.com/ballotworks/electoral-api/internal/domain/voter"
	"github.com/ballotworks/electoral-api/internal/verification"
)

// AllModels returns every persisted entity in dependency order for
// AutoMigrate. Voters first since elections, candidates and votes all
// reference them.
func AllModels() []any {
	return []any{
		&voter.Voter{},
		&election.Election{},
		&election.Candidate{},
		&vote.Vote{},
		&vote.VoterElectionStatus{},
		&tally.ElectionResult{},
		&tally.ElectionReport{},
		&verification.AadharRecord{},
		&verification.VoterIDRecord{},
	}
}
