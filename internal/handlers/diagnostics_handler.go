package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/response"
	"github.com/ballotworks/electoral-api/internal/storage/postgres"
)

// DiagnosticsHandler exposes database performance diagnostics to
// administrators. Only available on the PostgreSQL backend.
type DiagnosticsHandler struct {
	optimizer *postgres.QueryOptimizer
	db        *gorm.DB
	log       *log.Logger
}

// NewDiagnosticsHandler creates a diagnostics handler over a live database
// connection
func NewDiagnosticsHandler(db *gorm.DB) *DiagnosticsHandler {
	return &DiagnosticsHandler{
		optimizer: postgres.NewQueryOptimizer(db),
		db:        db,
		log:       logger.Handler("diagnostics_handler"),
	}
}

// GetPerformance handles GET /api/v1/admin/diagnostics/performance
func (h *DiagnosticsHandler) GetPerformance(c *gin.Context) {
	metrics, err := h.optimizer.AnalyzePerformance(c.Request.Context())
	if err != nil {
		h.log.Error("performance analysis failed", "error", err)
		response.InternalServerError(c, "failed to analyze database performance")
		return
	}

	pool := postgres.GetDatabaseMetrics(h.db)

	response.SuccessResponse(c, http.StatusOK, "performance metrics retrieved", gin.H{
		"metrics": metrics,
		"pool":    pool,
	})
}

// GetIndexHints handles GET /api/v1/admin/diagnostics/indexes
func (h *DiagnosticsHandler) GetIndexHints(c *gin.Context) {
	hints, err := h.optimizer.OptimizeIndexes(c.Request.Context())
	if err != nil {
		h.log.Error("index analysis failed", "error", err)
		response.InternalServerError(c, "failed to analyze indexes")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "index hints retrieved", gin.H{
		"hints": hints,
		"count": len(hints),
	})
}
