package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ballotworks/electoral-api/internal/domain/common"
)

// Response is the standard API response envelope
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorResponse is the standard error envelope
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    int    `json:"code"`
}

// SuccessResponse sends a successful response
func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponseWithMessage sends an error response with a custom message
func ErrorResponseWithMessage(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    status,
	})
}

// BadRequestError sends a 400 error
func BadRequestError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusBadRequest, message)
}

// NotFoundError sends a 404 error
func NotFoundError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusNotFound, message)
}

// InternalServerError sends a 500 error
func InternalServerError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusInternalServerError, message)
}

// UnauthorizedError sends a 401 error
func UnauthorizedError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusUnauthorized, message)
}

// ForbiddenError sends a 403 error
func ForbiddenError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusForbidden, message)
}

// ConflictError sends a 409 error
func ConflictError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusConflict, message)
}

// DomainError maps a domain error sentinel to its HTTP status and sends
// the envelope. Unclassified errors become a generic 500 so an ambiguous
// failure is never reported as a committed vote.
func DomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrElectionNotFound),
		errors.Is(err, common.ErrCandidateNotFound),
		errors.Is(err, common.ErrVoterNotFound),
		errors.Is(err, common.ErrReportNotFound):
		NotFoundError(c, err.Error())
	case errors.Is(err, common.ErrElectionNotOpen),
		errors.Is(err, common.ErrElectionNotComplete),
		errors.Is(err, common.ErrInvalidTransition):
		BadRequestError(c, err.Error())
	case errors.Is(err, common.ErrAlreadyVoted),
		errors.Is(err, common.ErrDuplicateCandidate):
		ConflictError(c, err.Error())
	case errors.Is(err, common.ErrVoteRejected):
		ForbiddenError(c, err.Error())
	default:
		InternalServerError(c, "internal server error")
	}
}
