package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ballotworks/electoral-api/internal/config"
	"github.com/ballotworks/electoral-api/internal/domain/tally"
	"github.com/ballotworks/electoral-api/internal/domain/vote"
	"github.com/ballotworks/electoral-api/internal/handlers"
	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/middleware"
	"github.com/ballotworks/electoral-api/internal/services"
	"github.com/ballotworks/electoral-api/internal/storage/blob"
	"github.com/ballotworks/electoral-api/internal/storage/postgres"
	"github.com/ballotworks/electoral-api/internal/verification"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	config     *config.Config
	repos      postgres.RepositoryContainer
	photos     *blob.PhotoStore
	ledger     *vote.Ledger
	engine     *tally.Engine
}

// New wires the domain services over the repository container and returns
// a server ready to start. photos may be nil when no object store is
// configured; the photo endpoints then answer with an error.
func New(cfg *config.Config, repos postgres.RepositoryContainer, photos *blob.PhotoStore) *Server {
	engine := tally.NewEngine(
		repos.Elections(),
		repos.Candidates(),
		repos.Votes(),
		repos.Voters(),
		repos.Results(),
		repos.Reports(),
	)

	var faceMatch vote.FaceMatcher
	if cfg.FaceMatch.Enabled {
		faceMatch = verification.NewFaceMatchClient(cfg)
	}

	ledger := vote.NewLedger(
		repos.Elections(),
		repos.Candidates(),
		repos.Voters(),
		repos.Votes(),
		repos.Votes(),
		engine,
		faceMatch,
	)

	return &Server{
		config: cfg,
		repos:  repos,
		photos: photos,
		ledger: ledger,
		engine: engine,
	}
}

// Start starts the HTTP server and the ledger's recompute retry worker.
// It blocks until the listener fails or the server is stopped.
func (s *Server) Start(ctx context.Context) error {
	s.ledger.StartRetryWorker(ctx)

	router := s.setupRouter()

	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: router,

		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(s.config.CORS.AllowOrigins, ",")
	corsConfig.AllowMethods = strings.Split(s.config.CORS.AllowMethods, ",")
	corsConfig.AllowHeaders = strings.Split(s.config.CORS.AllowHeaders, ",")
	if s.config.CORS.AllowOrigins == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowOrigins = nil
	} else {
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	identity := verification.NewIdentityService(s.repos.Registry())
	authService := services.NewAuthService(s.repos.Voters(), identity)
	electionService := services.NewElectionService(s.repos.Elections(), s.repos.Candidates(), s.repos.Voters())

	authHandler := handlers.NewAuthHandler(authService, s.photos, s.config)
	electionHandler := handlers.NewElectionHandler(electionService, s.engine, s.repos.Candidates(), s.photos, s.config)
	voteHandler := handlers.NewVoteHandler(s.ledger, s.engine, electionService, s.photos, s.config)
	publicHandler := handlers.NewPublicHandler(electionService, s.engine)

	// Database diagnostics need the raw connection, so they only exist on
	// the PostgreSQL backend.
	var diagnosticsHandler *handlers.DiagnosticsHandler
	if pg, ok := s.repos.(*postgres.Container); ok {
		diagnosticsHandler = handlers.NewDiagnosticsHandler(pg.GetDB())
	}

	// Health check
	router.GET("/ping", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if err := s.repos.Health(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"message": "Electoral API is running",
			"status":  status,
		})
	})

	s.setupAPIRoutes(router, authHandler, electionHandler, voteHandler, publicHandler, diagnosticsHandler)

	return router
}

// setupAPIRoutes configures all API routes
func (s *Server) setupAPIRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	electionHandler *handlers.ElectionHandler,
	voteHandler *handlers.VoteHandler,
	publicHandler *handlers.PublicHandler,
	diagnosticsHandler *handlers.DiagnosticsHandler,
) {
	api := router.Group("/api/v1")
	{
		// Unauthenticated routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		public := api.Group("/public")
		{
			public.GET("/elections", publicHandler.GetPublishedElections)
			public.GET("/elections/:id/results", publicHandler.GetPublishedResults)
		}

		// Voter routes
		voter := api.Group("", middleware.RequireAuth(s.config))
		{
			voter.GET("/elections/active", voteHandler.GetActiveElections)
			voter.GET("/elections/completed", voteHandler.GetCompletedElections)
			voter.GET("/elections/:id/candidates", voteHandler.GetCandidates)
			voter.POST("/elections/:id/vote", voteHandler.CastVote)
			voter.GET("/elections/:id/has-voted", voteHandler.HasVoted)
			voter.GET("/elections/:id/results", voteHandler.GetResults)
			voter.GET("/candidates/:id/photo", voteHandler.GetCandidatePhoto)
			voter.POST("/profile/photo", authHandler.UploadProfilePhoto)
		}

		// Administrative routes
		admin := api.Group("/admin", middleware.RequireAuth(s.config), middleware.RequireRole("admin"))
		{
			admin.POST("/elections", electionHandler.CreateElection)
			admin.GET("/elections", electionHandler.GetAllElections)
			admin.GET("/elections/:id", electionHandler.GetElection)
			admin.POST("/elections/:id/candidates", electionHandler.AddCandidate)
			admin.PATCH("/elections/:id/status", electionHandler.UpdateStatus)
			admin.POST("/elections/:id/calculate-results", electionHandler.CalculateResults)
			admin.GET("/elections/:id/results", electionHandler.GetResults)
			admin.GET("/elections/:id/report", electionHandler.GetReport)
			admin.POST("/elections/:id/publish", electionHandler.TogglePublication)
			admin.POST("/candidates/:id/photo", electionHandler.UploadCandidatePhoto)

			if diagnosticsHandler != nil {
				admin.GET("/diagnostics/performance", diagnosticsHandler.GetPerformance)
				admin.GET("/diagnostics/indexes", diagnosticsHandler.GetIndexHints)
			}
		}
	}
}
