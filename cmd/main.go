package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-relay/runtime"
	"chat-relay/runtime/workers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes
// error reporting. This pattern is preferred over calling os.Exit or panic
// directly because it ensures deferred cleanup executes before the process
// exits and keeps the initialization logic testable.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Shared state: the registry is the only cross-session structure.
	registry := runtime.NewRegistry()
	relay := runtime.NewRelay(log, registry)

	server := runtime.NewServer(log, registry, relay, runtime.ServerConfig{
		Host: config.Host,
		Port: config.Port,
		Session: runtime.SessionConfig{
			RegisterTimeout: config.RegisterTimeout,
			PollTimeout:     config.PollTimeout,
			SendTimeout:     config.SendTimeout,
			MaxLineLen:      config.MaxLineLength,
			MaxNameLen:      config.MaxNameLength,
		},
	})
	// Bind before serving: an unavailable address must stop the process
	// before any session starts.
	if err := server.Listen(); err != nil {
		return err
	}

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(server, workers.NewTelemetryWorker(log, config.MetricInterval, registry))

	log.Info("Chat relay started", "addr", server.Addr())
	sup.Run(ctx)

	log.Info("Program stopped cleanly")
	return nil
}
