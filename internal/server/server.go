// Package server provides the HTTP REST API over the checkpoint/branch store
// and the status sync layer.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/video-pipeline/internal/config"
	"github.com/jonathan/video-pipeline/internal/continuation"
	"github.com/jonathan/video-pipeline/internal/db"
	"github.com/jonathan/video-pipeline/internal/phases"
	"github.com/jonathan/video-pipeline/internal/server/middleware"
	"github.com/jonathan/video-pipeline/internal/status"
)

// checkpointAPI is the checkpoint read/approve surface handlers use. It is
// satisfied by *db.DB; tests substitute fakes.
type checkpointAPI interface {
	GetCheckpoint(ctx context.Context, id uuid.UUID) (*db.Checkpoint, error)
	GetCheckpointWithArtifacts(ctx context.Context, id uuid.UUID) (*db.CheckpointWithArtifacts, error)
	GetCurrentCheckpoint(ctx context.Context, videoID, userID uuid.UUID) (*db.CheckpointWithArtifacts, error)
	ListCheckpoints(ctx context.Context, videoID, userID uuid.UUID, branch *string) ([]db.Checkpoint, error)
	ListBranches(ctx context.Context, videoID, userID uuid.UUID) ([]db.BranchSummary, error)
	GetCheckpointTree(ctx context.Context, videoID, userID uuid.UUID) ([]*db.CheckpointNode, error)
	ApproveCheckpoint(ctx context.Context, id uuid.UUID) (*db.Checkpoint, error)
}

// continuer dispatches pipeline continuations.
type continuer interface {
	Continue(ctx context.Context, videoID, checkpointID, userID uuid.UUID) (*continuation.Result, error)
}

// statusAPI is the two-tier status surface.
type statusAPI interface {
	Get(ctx context.Context, videoID, userID uuid.UUID) (*status.Snapshot, error)
	Write(ctx context.Context, videoID, userID uuid.UUID, fields status.Fields) error
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	checkpoints checkpointAPI
	dispatcher  continuer
	statuses    statusAPI
	watcher     *status.Watcher
	submitter   *continuation.AsyncSubmitter
	validate    *validator.Validate
}

// Config holds server configuration. Executor is the external phase runner;
// when nil, a minimal shim that only marks the video as processing is wired
// in its place.
type Config struct {
	Port                int
	DatabaseURL         string
	CacheTTL            time.Duration
	PollInterval        time.Duration
	MaxConcurrentPhases int
	Executor            continuation.Executor
}

// New creates a server instance: database pool, both status tiers, the
// continuation dispatcher, and the route table.
func New(cfg Config) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	jwtService := NewJWTService(jwtConfig)

	statuses := status.NewSyncedStore(status.NewMemoryCache(cfg.CacheTTL), database.Status())

	executor := cfg.Executor
	if executor == nil {
		executor = markProcessingExecutor(statuses)
	}
	submitter := continuation.NewAsyncSubmitter(executor, cfg.MaxConcurrentPhases)

	s := &Server{
		db:          database,
		checkpoints: database,
		dispatcher:  continuation.NewDispatcher(database, submitter),
		statuses:    statuses,
		watcher:     status.NewWatcher(statuses, cfg.PollInterval),
		submitter:   submitter,
		validate:    validator.New(),
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.routes(jwtService),
	}
	return s, nil
}

// routes builds the route table. User-facing routes sit behind the JWT
// middleware; the /internal status write surface is for co-deployed phase
// executors and carries the user explicitly.
func (s *Server) routes(jwtService *JWTService) http.Handler {
	mux := http.NewServeMux()

	authed := s.authMiddleware(jwtService)
	mux.Handle("GET /videos/{video_id}/checkpoints", authed(s.handleListCheckpoints))
	mux.Handle("GET /videos/{video_id}/checkpoints/current", authed(s.handleCurrentCheckpoint))
	mux.Handle("GET /videos/{video_id}/checkpoints/tree", authed(s.handleCheckpointTree))
	mux.Handle("GET /videos/{video_id}/branches", authed(s.handleListBranches))
	mux.Handle("GET /checkpoints/{id}", authed(s.handleGetCheckpoint))
	mux.Handle("POST /checkpoints/{id}/approve", authed(s.handleApproveCheckpoint))
	mux.Handle("POST /videos/{video_id}/checkpoints/{id}/continue", authed(s.handleContinue))
	mux.Handle("GET /videos/{video_id}/status", authed(s.handleGetStatus))
	mux.Handle("GET /videos/{video_id}/status/stream", authed(s.handleStreamStatus))

	mux.HandleFunc("POST /internal/videos/{video_id}/status", s.handleWriteStatus)
	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

// Start runs the server until SIGINT/SIGTERM, then drains connections and
// in-flight phase tasks.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		log.Printf("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	if err := s.submitter.Close(); err != nil {
		log.Printf("Phase task drain failed: %v", err)
	}
	s.db.Close()
	return nil
}

// handleHealth reports liveness, including a database ping.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// markProcessingExecutor is the default handoff shim: it records that the
// next phase started. Real executors replace it via Config.Executor.
func markProcessingExecutor(statuses statusAPI) continuation.Executor {
	return continuation.ExecutorFunc(func(ctx context.Context, task continuation.Task) error {
		processing := status.StatusProcessing
		phase := phases.Name(task.PhaseNumber)
		return statuses.Write(ctx, task.VideoID, task.UserID, status.Fields{
			Status:       &processing,
			CurrentPhase: &phase,
		})
	})
}

// authMiddleware returns a helper wrapping handler funcs in JWT validation.
func (s *Server) authMiddleware(jwtService *JWTService) func(http.HandlerFunc) http.Handler {
	auth := middleware.Auth(jwtService.AsTokenValidator())
	return func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.jsonResponse(w, statusCode, map[string]string{"error": message})
}

// coreError maps a core error onto the response.
func (s *Server) coreError(w http.ResponseWriter, err error) {
	statusCode, message := errorKind(err)
	if statusCode == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
	}
	s.errorResponse(w, statusCode, message)
}
