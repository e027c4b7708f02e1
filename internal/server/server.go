package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/calvinschedulo/schedulo/internal/auth"
	"github.com/calvinschedulo/schedulo/internal/canvas"
	"github.com/calvinschedulo/schedulo/internal/chat"
	"github.com/calvinschedulo/schedulo/internal/database"
	"github.com/calvinschedulo/schedulo/internal/event"
	"github.com/calvinschedulo/schedulo/internal/gcal"
	"github.com/calvinschedulo/schedulo/internal/schedule"
)

// ChatService is the conversation boundary for the /calvin endpoint.
type ChatService interface {
	Send(ctx context.Context, userID, input, calendarState string) (*chat.Reply, error)
}

// PlannerService runs the synthesis pipeline and calendar reads.
type PlannerService interface {
	Synthesize(ctx context.Context, planText string) (*schedule.ApplyResult, error)
	CreateEvents(ctx context.Context, drafts []event.Record) (*schedule.ApplyResult, error)
	CalendarHint(ctx context.Context) (string, error)
	Upcoming(ctx context.Context, days int) ([]event.Record, error)
}

// CleanupService handles provenance-scoped bulk deletion.
type CleanupService interface {
	DeleteByAssignment(ctx context.Context, courseID, assignmentName string) (int, error)
	DeleteByName(ctx context.Context, name string) (int, error)
}

// AssignmentFeed lists the user's outstanding coursework.
type AssignmentFeed interface {
	IsConfigured() bool
	AllUnsubmitted(ctx context.Context) ([]canvas.Assignment, error)
}

type Server struct {
	db          *database.DB
	authService *auth.Service
	gcalClient  *gcal.Client
	chatService ChatService
	planner     PlannerService
	cleaner     CleanupService
	assignments AssignmentFeed
	httpSrv     *http.Server
	port        int
}

// Config holds everything the server needs to route requests.
type Config struct {
	DB          *database.DB
	AuthService *auth.Service
	GCalClient  *gcal.Client
	ChatService ChatService
	Planner     PlannerService
	Cleaner     CleanupService
	Assignments AssignmentFeed
	Port        int
}

func New(cfg Config) *Server {
	s := &Server{
		db:          cfg.DB,
		authService: cfg.AuthService,
		gcalClient:  cfg.GCalClient,
		chatService: cfg.ChatService,
		planner:     cfg.Planner,
		cleaner:     cfg.Cleaner,
		assignments: cfg.Assignments,
		port:        cfg.Port,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.corsMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // synthesis waits on the LLM
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", s.handleHealthCheck)

	// Conversation API
	mux.HandleFunc("POST /calvin", s.handlePromptCalvin)

	// Events API
	mux.HandleFunc("GET /events/", s.handleListEvents)
	mux.HandleFunc("POST /events/", s.handleCreateEvents)
	mux.HandleFunc("DELETE /events/", s.handleDeleteEvents)

	// Canvas API
	mux.HandleFunc("GET /api/assignments", s.handleListAssignments)

	// Accounts API
	mux.HandleFunc("POST /api/signup", s.handleSignup)
	mux.HandleFunc("POST /api/login", s.handleLogin)

	// Google Calendar API
	mux.HandleFunc("GET /api/gcal/status", s.handleGCalStatus)
	mux.HandleFunc("POST /api/gcal/connect", s.handleGCalConnect)
	mux.HandleFunc("GET /oauth/callback", s.handleOAuthCallback)
}

func (s *Server) Start() error {
	fmt.Printf("Starting HTTP server on http://localhost:%d\n", s.port)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the server's HTTP handler for testing purposes
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// corsMiddleware adds CORS headers so the frontend can talk to us
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
