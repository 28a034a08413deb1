package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ballotworks/electoral-api/internal/config"
	"github.com/ballotworks/electoral-api/internal/domain/election"
	"github.com/ballotworks/electoral-api/internal/domain/tally"
	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/middleware"
	"github.com/ballotworks/electoral-api/internal/response"
	"github.com/ballotworks/electoral-api/internal/services"
	"github.com/ballotworks/electoral-api/internal/storage/blob"
	"github.com/ballotworks/electoral-api/internal/storage/postgres"
)

// maxPhotoSizeBytes caps candidate photo uploads at 5 MiB
const maxPhotoSizeBytes = 5 << 20

// ElectionHandler exposes the administrative election API: CRUD, lifecycle
// transitions, candidate registration, tally triggers and publication.
type ElectionHandler struct {
	electionService *services.ElectionService
	engine          *tally.Engine
	candidateRepo   postgres.CandidateRepository
	photos          *blob.PhotoStore
	config          *config.Config
	log             *log.Logger
}

// NewElectionHandler creates a new election handler. photos may be nil
// when the object store is not configured.
func NewElectionHandler(
	electionService *services.ElectionService,
	engine *tally.Engine,
	candidateRepo postgres.CandidateRepository,
	photos *blob.PhotoStore,
	cfg *config.Config,
) *ElectionHandler {
	return &ElectionHandler{
		electionService: electionService,
		engine:          engine,
		candidateRepo:   candidateRepo,
		photos:          photos,
		config:          cfg,
		log:             logger.Handler("election_handler"),
	}
}

// CreateElection handles POST /api/v1/admin/elections
func (h *ElectionHandler) CreateElection(c *gin.Context) {
	var req services.CreateElectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	adminID, ok := middleware.VoterID(c)
	if !ok {
		response.UnauthorizedError(c, "missing authenticated voter")
		return
	}

	elec, err := h.electionService.CreateElection(c.Request.Context(), req, adminID)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "election created successfully", elec)
}

// GetAllElections handles GET /api/v1/admin/elections
func (h *ElectionHandler) GetAllElections(c *gin.Context) {
	elections, err := h.electionService.GetAllElections(c.Request.Context())
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "elections retrieved", gin.H{
		"elections": elections,
		"count":     len(elections),
	})
}

// GetElection handles GET /api/v1/admin/elections/:id
func (h *ElectionHandler) GetElection(c *gin.Context) {
	electionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	elec, err := h.electionService.GetElection(c.Request.Context(), electionID)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "election retrieved", elec)
}

// AddCandidate handles POST /api/v1/admin/elections/:id/candidates
func (h *ElectionHandler) AddCandidate(c *gin.Context) {
	electionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	cand, err := h.electionService.AddCandidate(c.Request.Context(), electionID, req)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "candidate registered successfully", cand)
}

// UploadCandidatePhoto handles POST /api/v1/admin/candidates/:id/photo
func (h *ElectionHandler) UploadCandidatePhoto(c *gin.Context) {
	candidateID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if h.photos == nil {
		response.InternalServerError(c, "photo storage is not configured")
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		response.BadRequestError(c, "photo file is required")
		return
	}
	defer file.Close()

	if header.Size > maxPhotoSizeBytes {
		response.BadRequestError(c, "photo exceeds maximum size")
		return
	}

	key, err := h.photos.Put(c.Request.Context(), "candidates", file, header.Size,
		header.Header.Get("Content-Type"))
	if err != nil {
		h.log.Error("photo upload failed", "candidate_id", candidateID, "error", err)
		response.InternalServerError(c, "failed to store photo")
		return
	}

	if err := h.candidateRepo.UpdatePhotoKey(c.Request.Context(), candidateID, key); err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "photo uploaded successfully", gin.H{
		"candidate_id": candidateID,
		"photo_key":    key,
	})
}

// UpdateStatusRequest represents a lifecycle transition request
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /api/v1/admin/elections/:id/status
func (h *ElectionHandler) UpdateStatus(c *gin.Context) {
	electionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	newStatus, valid := election.StatusFromString(req.Status)
	if !valid {
		response.BadRequestError(c, "invalid election status: "+req.Status)
		return
	}

	elec, err := h.electionService.UpdateStatus(c.Request.Context(), electionID, newStatus)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "election status updated", elec)
}

// CalculateResults handles POST /api/v1/admin/elections/:id/calculate-results.
// Recompute is idempotent, so an admin may trigger it at any time to refresh
// the derived rows from the vote log.
func (h *ElectionHandler) CalculateResults(c *gin.Context) {
	electionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	results, report, err := h.engine.Recompute(c.Request.Context(), electionID)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "results recomputed", gin.H{
		"results": results,
		"report":  report,
	})
}

// GetResults handles GET /api/v1/admin/elections/:id/results
func (h *ElectionHandler) GetResults(c *gin.Context) {
	electionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	results, err := h.engine.Results(c.Request.Context(), electionID)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "results retrieved", gin.H{
		"election_id": electionID,
		"results":     results,
	})
}

// GetReport handles GET /api/v1/admin/elections/:id/report
func (h *ElectionHandler) GetReport(c *gin.Context) {
	electionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	report, err := h.engine.Report(c.Request.Context(), electionID)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "report retrieved", report)
}

// TogglePublication handles POST /api/v1/admin/elections/:id/publish
func (h *ElectionHandler) TogglePublication(c *gin.Context) {
	electionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	adminID, okAuth := middleware.VoterID(c)
	if !okAuth {
		response.UnauthorizedError(c, "missing authenticated voter")
		return
	}

	elec, err := h.electionService.TogglePublication(c.Request.Context(), electionID, adminID)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	message := "results unpublished"
	if elec.ResultPublished {
		message = "results published"
	}
	response.SuccessResponse(c, http.StatusOK, message, elec)
}

func (h *ElectionHandler) parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequestError(c, "invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
