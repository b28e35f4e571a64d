package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/wrapforge/internal/ai"
	"github.com/wrapforge/internal/api"
	"github.com/wrapforge/internal/chat"
	"github.com/wrapforge/internal/config"
	"github.com/wrapforge/internal/logging"
	"github.com/wrapforge/internal/storage"
)

// APICommand returns the CLI command for starting the API server
func APICommand() *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Start the WrapForge API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the API server (overrides config)",
			},
		},
		Action: runAPI,
	}
}

func runAPI(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Setup(cfg.Log.Level)

	port := cfg.Server.Port
	if c.IsSet("port") {
		port = c.Int("port")
	}

	ctx := context.Background()

	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, cfg.Database.AutoMigrate)
	if err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer store.Close()

	provider, err := ai.NewGoogleAI(ctx, ai.GoogleAIConfig{
		APIKey:  cfg.AI.APIKey,
		Timeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize AI provider: %w", err)
	}

	chatSvc := chat.NewService(store, provider)

	fmt.Printf("Starting WrapForge API server on port %d...\n", port)
	server := api.NewServer(port, store, chatSvc, cfg.Demo.UserID)
	return server.Start()
}
