package common

import "errors"

// Domain error sentinels. Handlers classify these with errors.Is and map
// them to client-error responses; anything else is a server error.
var (
	ErrElectionNotFound    = errors.New("election not found")
	ErrElectionNotOpen     = errors.New("election is not open for voting")
	ErrElectionNotComplete = errors.New("election is not completed")
	ErrCandidateNotFound   = errors.New("candidate not found")
	ErrVoterNotFound       = errors.New("voter not found")
	ErrAlreadyVoted        = errors.New("voter has already voted in this election")
	ErrVoteRejected        = errors.New("vote rejected")
	ErrReportNotFound      = errors.New("election report not found")
	ErrInvalidTransition   = errors.New("invalid election status transition")
	ErrDuplicateCandidate  = errors.New("candidate already registered for this election")
)
