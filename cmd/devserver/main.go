package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chaladshare/client-go/internal/devserver"
	"github.com/chaladshare/client-go/pkg/config"
	"github.com/chaladshare/client-go/pkg/logging"
	"github.com/chaladshare/client-go/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting ChaladShare dev server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Create Gin router
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	state := devserver.NewState()
	seed(state)
	devserver.NewServer(state, cfg.API.CookieName).SetupRoutes(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// seed fills the dataset with a small fixture so the CLI has something to
// talk to out of the box. Log in as ann@chalad.dev.
func seed(state *devserver.State) {
	ann := state.AddUser("ann", "ann@chalad.dev")
	bob := state.AddUser("bob", "bob@chalad.dev")
	cid := state.AddUser("cid", "cid@chalad.dev")
	dee := state.AddUser("dee", "dee@chalad.dev")

	state.MakeFriends(ann, bob)

	state.AddPost(bob, "Debugging goroutine leaks", []string{"golang", "concurrency"})
	state.AddPost(bob, "Street photography basics", []string{"photo"})
	state.AddPost(cid, "Sourdough starter notes", []string{"baking"})
	state.AddPost(dee, "Reading list for distributed systems", []string{"distsys", "books"})
}
