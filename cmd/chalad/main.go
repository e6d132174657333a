// Command chalad is a terminal client for the ChaladShare backend. It
// drives the same reconciliation layer the UI uses: the engagement store,
// the relationship resolver, and the debounced search streams.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/chaladshare/client-go/internal/cache"
	"github.com/chaladshare/client-go/internal/engagement"
	"github.com/chaladshare/client-go/internal/posts"
	"github.com/chaladshare/client-go/internal/rest"
	"github.com/chaladshare/client-go/internal/search"
	"github.com/chaladshare/client-go/internal/social"
	"github.com/chaladshare/client-go/pkg/config"
	"github.com/chaladshare/client-go/pkg/logging"
	"github.com/chaladshare/client-go/pkg/telemetry"
)

// app holds the wired client, built once in the root PersistentPreRunE.
type app struct {
	cfg      *config.Config
	client   *rest.Client
	sessions *cache.Sessions
	social   *social.API
	posts    *posts.API
	service  *posts.Service
	queries  *search.Controller
	shutdown func()
}

var cli app

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup wires config, logging, telemetry, transport, and the service
// layer, in that order.
func setup() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if err := logging.InitLogger(&cfg.Logging); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	client, err := rest.New(&cfg.API)
	if err != nil {
		return fmt.Errorf("building API client: %w", err)
	}
	client.OnAuthExpired(func() {
		fmt.Fprintln(os.Stderr, "Session expired. Run `chalad login <email>` to sign in again.")
	})

	// Redis keeps the session cookie across CLI invocations; without it
	// every command needs a fresh login.
	sessions, err := cache.New(&cfg.Redis)
	if err != nil {
		logging.GetLogger().Warn("Session cache unavailable, sessions will not persist", zap.Error(err))
	} else if sessions != nil {
		if err := client.UseSessionStore(context.Background(), sessions); err != nil {
			logging.GetLogger().Warn("Failed to restore stored session", zap.Error(err))
		}
	}

	store := engagement.NewStore()
	postsAPI := posts.NewAPI(client)

	cli = app{
		cfg:      cfg,
		client:   client,
		sessions: sessions,
		social:   social.NewAPI(client),
		posts:    postsAPI,
		service:  posts.NewService(postsAPI, store, cfg.Engagement.RollbackOnError),
		queries:  search.NewController(cfg.Search.Debounce()),
		shutdown: telemetryShutdown,
	}
	return nil
}

func teardown() {
	if cli.queries != nil {
		cli.queries.Close()
	}
	if cli.sessions != nil {
		cli.sessions.Close()
	}
	if cli.shutdown != nil {
		cli.shutdown()
	}
	if logger := logging.GetLogger(); logger != nil {
		logger.Sync()
	}
}
