package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ballotworks/electoral-api/internal/domain/common"
	"github.com/ballotworks/electoral-api/internal/domain/tally"
	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/response"
	"github.com/ballotworks/electoral-api/internal/services"
)

// PublicHandler exposes published results without authentication. The
// publication flag on the election is the only gate.
type PublicHandler struct {
	electionService *services.ElectionService
	engine          *tally.Engine
	log             *log.Logger
}

// NewPublicHandler creates a new public results handler
func NewPublicHandler(electionService *services.ElectionService, engine *tally.Engine) *PublicHandler {
	return &PublicHandler{
		electionService: electionService,
		engine:          engine,
		log:             logger.Handler("public_handler"),
	}
}

// GetPublishedElections handles GET /api/v1/public/elections
func (h *PublicHandler) GetPublishedElections(c *gin.Context) {
	elections, err := h.electionService.GetPublishedElections(c.Request.Context())
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "published elections retrieved", gin.H{
		"elections": elections,
		"count":     len(elections),
	})
}

// GetPublishedResults handles GET /api/v1/public/elections/:id/results.
// Unpublished elections answer 404 so their existence is not revealed.
func (h *PublicHandler) GetPublishedResults(c *gin.Context) {
	electionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequestError(c, "invalid id format")
		return
	}

	elec, err := h.electionService.GetElection(c.Request.Context(), electionID)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	if !elec.ResultPublished {
		response.DomainError(c, common.ErrElectionNotFound)
		return
	}

	results, err := h.engine.Results(c.Request.Context(), electionID)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	report, err := h.engine.Report(c.Request.Context(), electionID)
	if err != nil && !errors.Is(err, common.ErrReportNotFound) {
		response.DomainError(c, err)
		return
	}

	payload := gin.H{
		"election_id":   electionID,
		"election_name": elec.Name,
		"published_at":  elec.ResultPublishedAt,
		"results":       results,
	}
	if report != nil {
		payload["report"] = report
	}

	response.SuccessResponse(c, http.StatusOK, "published results retrieved", payload)
}
