package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgrandy/pybox/internal/stubserver"
)

var (
	stubPort        int
	stubStartDelay  time.Duration
	stubRunDuration time.Duration
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run a local stub server for offline development",
	Long: `Start a local fake of the pybox service.

The stub accepts the full API surface and walks executions through the
pending/running/completed lifecycle on a timer, but it does not run any
code: every execution completes with exit code 0 and empty output. Use it
to develop against the API without a real server.

Example:
  pybox stub --port 8080 --start-delay 200ms --run-duration 1s`,
	Args: cobra.NoArgs,
	RunE: runStub,
}

func init() {
	stubCmd.Flags().IntVar(&stubPort, "port", 8080, "Port to listen on")
	stubCmd.Flags().DurationVar(&stubStartDelay, "start-delay", 200*time.Millisecond, "Time async executions stay pending")
	stubCmd.Flags().DurationVar(&stubRunDuration, "run-duration", time.Second, "Time async executions stay running")
	rootCmd.AddCommand(stubCmd)
}

func runStub(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	srv := stubserver.New(stubserver.Config{
		StartDelay:  stubStartDelay,
		RunDuration: stubRunDuration,
		Logger:      logger,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		srv.Shutdown(context.Background())
	}()

	if err := srv.Start(stubPort); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
