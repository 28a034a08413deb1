package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/ballotworks/electoral-api/internal/config"
	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/middleware"
	"github.com/ballotworks/electoral-api/internal/response"
	"github.com/ballotworks/electoral-api/internal/services"
	"github.com/ballotworks/electoral-api/internal/storage/blob"
)

// AuthHandler exposes voter registration, login and profile management
type AuthHandler struct {
	authService *services.AuthService
	photos      *blob.PhotoStore
	config      *config.Config
	log         *log.Logger
}

// NewAuthHandler creates a new authentication handler. photos may be nil
// when the object store is not configured.
func NewAuthHandler(authService *services.AuthService, photos *blob.PhotoStore, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		photos:      photos,
		config:      cfg,
		log:         logger.Handler("auth_handler"),
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	vtr, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrIdentityUnverified):
			response.ForbiddenError(c, err.Error())
		case errors.Is(err, services.ErrEmailAlreadyInUse),
			errors.Is(err, services.ErrIDProofAlreadyInUse):
			response.ConflictError(c, err.Error())
		default:
			h.log.Error("registration failed", "error", err)
			response.InternalServerError(c, "registration failed")
		}
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "voter registered successfully", gin.H{
		"voter_id":  vtr.ID,
		"email":     vtr.Email,
		"full_name": vtr.FullName,
		"verified":  vtr.IsVerified,
	})
}

// UploadProfilePhoto handles POST /api/v1/profile/photo. The stored image
// is the reference the face-match check compares against when the voter
// casts a vote.
func (h *AuthHandler) UploadProfilePhoto(c *gin.Context) {
	voterID, ok := middleware.VoterID(c)
	if !ok {
		response.UnauthorizedError(c, "missing authenticated voter")
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

	key, err := h.photos.Put(c.Request.Context(), "voters", file, header.Size,
		header.Header.Get("Content-Type"))
	if err != nil {
		h.log.Error("profile photo upload failed", "voter_id", voterID, "error", err)
		response.InternalServerError(c, "failed to store photo")
		return
	}

	vtr, err := h.authService.SetProfileImage(c.Request.Context(), voterID, key)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "profile photo uploaded successfully", gin.H{
		"voter_id":  vtr.ID,
		"photo_key": vtr.ProfileImageKey,
	})
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	vtr, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.UnauthorizedError(c, err.Error())
			return
		}
		h.log.Error("login failed", "error", err)
		response.InternalServerError(c, "login failed")
		return
	}

	token, err := middleware.IssueToken(h.config, vtr.ID, vtr.Role)
	if err != nil {
		h.log.Error("failed to issue token", "voter_id", vtr.ID, "error", err)
		response.InternalServerError(c, "failed to issue token")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "login successful", gin.H{
		"token":     token,
		"voter_id":  vtr.ID,
		"full_name": vtr.FullName,
		"role":      vtr.Role,
	})
}
