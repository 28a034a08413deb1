package handlers

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ballotworks/electoral-api/internal/config"
	"github.com/ballotworks/electoral-api/internal/domain/common"
	"github.com/ballotworks/electoral-api/internal/domain/election"
	"github.com/ballotworks/electoral-api/internal/domain/tally"
	"github.com/ballotworks/electoral-api/internal/domain/vote"
	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/middleware"
	"github.com/ballotworks/electoral-api/internal/response"
	"github.com/ballotworks/electoral-api/internal/services"
	"github.com/ballotworks/electoral-api/internal/storage/blob"
)

// photoURLExpiry bounds how long a presigned photo link stays valid
const photoURLExpiry = 15 * time.Minute

// VoteHandler exposes the voter-facing API: eligible elections, candidate
// listings, vote casting and completed-election results.
type VoteHandler struct {
	ledger          *vote.Ledger
	engine          *tally.Engine
	electionService *services.ElectionService
	photos          *blob.PhotoStore
	config          *config.Config
	log             *log.Logger
}

// NewVoteHandler creates a new vote handler. photos may be nil when the
// object store is not configured.
func NewVoteHandler(
	ledger *vote.Ledger,
	engine *tally.Engine,
	electionService *services.ElectionService,
	photos *blob.PhotoStore,
	cfg *config.Config,
) *VoteHandler {
	return &VoteHandler{
		ledger:          ledger,
		engine:          engine,
		electionService: electionService,
		photos:          photos,
		config:          cfg,
		log:             logger.Handler("vote_handler"),
	}
}

// GetActiveElections handles GET /api/v1/elections/active, returning only
// elections the authenticated voter is eligible for.
func (h *VoteHandler) GetActiveElections(c *gin.Context) {
	voterID, ok := middleware.VoterID(c)
	if !ok {
		response.UnauthorizedError(c, "missing authenticated voter")
		return
	}

	elections, err := h.electionService.GetActiveElectionsForVoter(c.Request.Context(), voterID)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "active elections retrieved", gin.H{
		"elections": elections,
		"count":     len(elections),
	})
}

// GetCompletedElections handles GET /api/v1/elections/completed
func (h *VoteHandler) GetCompletedElections(c *gin.Context) {
	elections, err := h.electionService.GetCompletedElections(c.Request.Context())
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "completed elections retrieved", gin.H{
		"elections": elections,
		"count":     len(elections),
	})
}

// GetCandidates handles GET /api/v1/elections/:id/candidates
func (h *VoteHandler) GetCandidates(c *gin.Context) {
	electionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	candidates, err := h.electionService.GetCandidates(c.Request.Context(), electionID)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "candidates retrieved", gin.H{
		"election_id": electionID,
		"candidates":  candidates,
	})
}

// CastVoteRequest represents a vote submission
type CastVoteRequest struct {
	CandidateID   string `json:"candidate_id" binding:"required"`
	CapturedImage string `json:"captured_image"`
}

// CastVote handles POST /api/v1/elections/:id/vote
func (h *VoteHandler) CastVote(c *gin.Context) {
	electionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	voterID, okAuth := middleware.VoterID(c)
	if !okAuth {
		response.UnauthorizedError(c, "missing authenticated voter")
		return
	}

	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	candidateID, err := uuid.Parse(req.CandidateID)
	if err != nil {
		response.BadRequestError(c, "invalid candidate_id format")
		return
	}

	committed, err := h.ledger.CastVote(c.Request.Context(), electionID, voterID, candidateID, req.CapturedImage)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "vote cast successfully", gin.H{
		"vote_id":     committed.ID,
		"election_id": committed.ElectionID,
		"voted_at":    committed.VotedAt,
	})
}

// HasVoted handles GET /api/v1/elections/:id/has-voted
func (h *VoteHandler) HasVoted(c *gin.Context) {
	electionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	voterID, okAuth := middleware.VoterID(c)
	if !okAuth {
		response.UnauthorizedError(c, "missing authenticated voter")
		return
	}

	hasVoted, err := h.ledger.HasVoted(c.Request.Context(), electionID, voterID)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "voting status retrieved", gin.H{
		"election_id": electionID,
		"has_voted":   hasVoted,
	})
}

// GetResults handles GET /api/v1/elections/:id/results. Voters only see
// results once the election is COMPLETED.
func (h *VoteHandler) GetResults(c *gin.Context) {
	electionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	elec, err := h.electionService.GetElection(c.Request.Context(), electionID)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	if elec.Status != election.StatusCompleted {
		response.DomainError(c, common.ErrElectionNotComplete)
		return
	}

	results, err := h.engine.Results(c.Request.Context(), electionID)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "results retrieved", gin.H{
		"election_id":   electionID,
		"election_name": elec.Name,
		"results":       results,
	})
}

// GetCandidatePhoto handles GET /api/v1/candidates/:id/photo, returning a
// short-lived download URL for the stored photo.
func (h *VoteHandler) GetCandidatePhoto(c *gin.Context) {
	candidateID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if h.photos == nil {
		response.InternalServerError(c, "photo storage is not configured")
		return
	}

	cand, err := h.electionService.GetCandidate(c.Request.Context(), candidateID)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	if cand.PhotoKey == "" {
		response.NotFoundError(c, "candidate has no photo")
		return
	}

	url, err := h.photos.PresignedURL(c.Request.Context(), cand.PhotoKey, photoURLExpiry)
	if err != nil {
		h.log.Error("failed to presign photo URL", "candidate_id", candidateID, "error", err)
		response.InternalServerError(c, "failed to generate photo URL")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "photo URL generated", gin.H{
		"candidate_id": candidateID,
		"url":          url,
		"expires_in":   photoURLExpiry.String(),
	})
}

func (h *VoteHandler) parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequestError(c, "invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
