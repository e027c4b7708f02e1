package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calvinschedulo/schedulo/internal/auth"
	"github.com/calvinschedulo/schedulo/internal/canvas"
	"github.com/calvinschedulo/schedulo/internal/chat"
	"github.com/calvinschedulo/schedulo/internal/config"
	"github.com/calvinschedulo/schedulo/internal/database"
	"github.com/calvinschedulo/schedulo/internal/extract"
	"github.com/calvinschedulo/schedulo/internal/gcal"
	"github.com/calvinschedulo/schedulo/internal/groq"
	"github.com/calvinschedulo/schedulo/internal/schedule"
	"github.com/calvinschedulo/schedulo/internal/server"
)

func main() {
	cfg := config.LoadFromEnv()

	db, err := database.New(cfg.DBPath)
	if err != nil {
		fatal("creating database", err)
	}
	defer db.Close()

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		fatal("loading timezone", err)
	}

	llm := initGroq(cfg)
	gcalClient := initGCal(cfg)
	canvasClient := initCanvas(cfg)

	extractor := extract.NewExtractor(llm, location)
	planner := schedule.NewPlanner(gcalClient, extractor, location)
	cleaner := schedule.NewCleaner(gcalClient)
	chatManager := chat.NewManager(llm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	chatManager.StartJanitor(ctx, 5*time.Minute)

	srv := server.New(server.Config{
		DB:          db,
		AuthService: auth.NewService(db),
		GCalClient:  gcalClient,
		ChatService: chatManager,
		Planner:     planner,
		Cleaner:     cleaner,
		Assignments: canvasClient,
		Port:        cfg.HTTPPort,
	})
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "HTTP server error: %v\n", err)
		}
	}()

	waitForShutdown(srv, cancel)
}

func initGroq(cfg *config.Config) *groq.Client {
	if cfg.GroqAPIKey == "" {
		fmt.Println("Warning: GROQ_API_KEY not set, conversation and extraction disabled")
	}
	return groq.NewClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqTemperature)
}

func initGCal(cfg *config.Config) *gcal.Client {
	client, err := gcal.NewClient(cfg.GoogleCredentialsFile, cfg.GoogleTokenFile)
	if err != nil {
		fmt.Printf("Warning: Google Calendar not available: %v\n", err)
		return nil
	}
	if client.IsAuthenticated() {
		fmt.Println("Google Calendar client initialized")
	} else {
		fmt.Println("Google Calendar: not authenticated, connect via /api/gcal/connect")
	}
	return client
}

func initCanvas(cfg *config.Config) *canvas.Client {
	client := canvas.NewClient(cfg.CanvasBaseURL, cfg.CanvasAPIToken)
	if !client.IsConfigured() {
		fmt.Println("Canvas: Not configured (CANVAS_BASE_URL and CANVAS_API_TOKEN required)")
	} else {
		fmt.Println("Canvas client initialized")
	}
	return client
}

func fatal(context string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", context, err)
	os.Exit(1)
}

func waitForShutdown(srv *server.Server, cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	fmt.Println("Shutting down...")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	cancel()
	srv.Shutdown(ctx)
}
