package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nidhogg/commandpost/internal/api"
	"github.com/nidhogg/commandpost/internal/command"
	"github.com/nidhogg/commandpost/internal/config"
	"github.com/nidhogg/commandpost/internal/gateway"
	msgrouter "github.com/nidhogg/commandpost/internal/router"
	pgstore "github.com/nidhogg/commandpost/internal/store"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/commandpost.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Server.LogLevel)
	defer logger.Sync()
	logger.Info("Starting Commandpost...", zap.String("config", cfgPath))

	confirmExpiry, err := cfg.Engine.ConfirmExpiryDuration()
	if err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	// Build the command engine. Registration completes before any gateway
	// starts delivering messages.
	registry := command.NewRegistry(cfg.Engine.CommandPrefix, logger)
	dispatcher := command.NewDispatcher(registry, command.NewConfirmationTable(), logger)
	if err := command.RegisterBuiltins(dispatcher); err != nil {
		logger.Fatal("builtin registration failed", zap.Error(err))
	}

	shutdownRequests := make(chan string, 1)
	registerServerCommands(logger, registry, confirmExpiry, shutdownRequests)

	// Optional dispatch history.
	var store *pgstore.Store
	if cfg.Database.Postgres.DSN != "" {
		s, pgErr := pgstore.New(cfg.Database.Postgres.DSN, logger)
		if pgErr != nil {
			logger.Warn("PostgreSQL unavailable, running without dispatch history", zap.Error(pgErr))
		} else {
			if mErr := s.Migrate(context.Background(), "migrations"); mErr != nil {
				logger.Fatal("migration failed", zap.Error(mErr))
			}
			store = s
		}
	}

	// Gateway fan-in. Wire the router before registering adapters;
	// Register captures the handler.
	gw := gateway.New(logger)
	router := msgrouter.New(dispatcher, gw, store, nil, logger)
	gw.SetHandler(router.Handle)

	restAdapter := gateway.NewRESTAdapter(logger)
	gw.Register(restAdapter)

	if cfg.Gateway.Slack.Enabled && cfg.Gateway.Slack.BotToken != "" {
		gw.Register(gateway.NewSlackAdapter(cfg.Gateway.Slack.BotToken, cfg.Gateway.Slack.AppToken, logger))
	}
	if cfg.Gateway.Discord.Enabled && cfg.Gateway.Discord.BotToken != "" {
		gw.Register(gateway.NewDiscordAdapter(cfg.Gateway.Discord.BotToken, logger))
	}

	if err := gw.ConnectAll(context.Background()); err != nil {
		logger.Warn("some gateway adapters failed to connect", zap.Error(err))
	}

	handler := api.NewHandler(registry, gw, restAdapter, store, logger)

	port := cfg.Server.Port
	if port == 0 {
		port = 3210
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("Commandpost listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Run until a signal or a confirmed /stop command.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case actor := <-shutdownRequests:
		logger.Info("shutdown requested via command", zap.String("actor", actor))
	}

	logger.Info("Shutting down Commandpost...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
	gw.Close()
	if store != nil {
		store.Close()
	}
}

// newLogger builds a zap logger for the configured level.
func newLogger(level string) *zap.Logger {
	if strings.EqualFold(level, "debug") || level == "" {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}

// registerServerCommands adds the server's own command set: an echo check
// and a queued stop command that takes effect only after confirmation.
func registerServerCommands(logger *zap.Logger, registry *command.Registry,
	confirmExpiry time.Duration, shutdownRequests chan<- string) {
	err := registry.Register(&command.Descriptor{
		PrimaryAlias: "echo",
		Aliases:      []string{"say"},
		Usage:        "{text}",
		Min:          1,
		Max:          command.UnboundedArgs,
		Desc:         "Echoes its arguments back.",
		New:          func() command.Handler { return echoCommand{} },
	})
	if err != nil {
		logger.Fatal("register echo failed", zap.Error(err))
	}

	err = registry.Register(&command.Descriptor{
		PrimaryAlias:  "stop",
		PrefixPrimary: true,
		Min:           0,
		Max:           0,
		Desc:          "Stops the server after confirmation.",
		Permission:    "cmd.stop",
		New: func() command.Handler {
			return &stopCommand{expiry: confirmExpiry, requests: shutdownRequests}
		},
	})
	if err != nil {
		logger.Fatal("register stop failed", zap.Error(err))
	}
}

type echoCommand struct{}

func (echoCommand) Run(actor command.Actor, ctx *command.Context) bool {
	actor.Reply(strings.Join(ctx.Args(), " "))
	return true
}

// stopCommand is queued: Run only arms it, Confirm pulls the trigger.
type stopCommand struct {
	expiry   time.Duration
	requests chan<- string
}

func (c *stopCommand) Run(actor command.Actor, _ *command.Context) bool {
	actor.Reply("This will stop the server for everyone.")
	return true
}

func (c *stopCommand) Confirm(actor command.Actor) {
	actor.Reply("Stopping the server.")
	select {
	case c.requests <- actor.ID():
	default:
	}
}

func (c *stopCommand) Expiration() time.Duration { return c.expiry }

func (c *stopCommand) ConfirmPrompt() string { return "" }
