package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `env:"CHAT_SERVER_ADDR,default=localhost:12345"`
	Name          string `env:"CHAT_NAME,required=true"`
	LogLevel      string `env:"LOG_LEVEL,default=INFO"`
	Colours       bool   `env:"CHAT_COLOURS,default=true"`
}

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run handles the TCP client lifecycle: configuration loading, the name
// handshake, and two loops (server reception, stdin sending).
func run() (int, error) {
	// 1. Load configuration from environment variables.
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Connect and introduce ourselves: the first line is the name.
	conn, err := net.Dial("tcp", config.ServerAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	if _, err := fmt.Fprintf(conn, "%s\n", config.Name); err != nil {
		return exitRuntime, fmt.Errorf("name handshake failed: %w", err)
	}

	log.Info("Connected", "server", config.ServerAddress, "name", config.Name)

	// 4. Reception loop: print every server line until the peer closes.
	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			fmt.Println(colorize(scanner.Text(), config.Colours))
		}
	}()

	// 5. Sending loop: each stdin line goes out verbatim.
	go func() {
		stdin := bufio.NewScanner(os.Stdin)
		for stdin.Scan() {
			if _, err := fmt.Fprintf(conn, "%s\n", stdin.Text()); err != nil {
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		return exitOK, nil
	case <-done:
		return exitRuntime, fmt.Errorf("server closed the connection")
	}
}

// colorize highlights system notices and direct messages in terminal output.
func colorize(line string, enabled bool) string {
	if !enabled {
		return line
	}
	switch {
	case strings.HasPrefix(line, "[System]"):
		return color.New(color.FgYellow).Render(line)
	case strings.HasPrefix(line, "[DM from "), strings.HasPrefix(line, "[DM to "):
		return color.New(color.FgCyan).Render(line)
	default:
		return line
	}
}
