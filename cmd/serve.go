package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/matcher"
	"github.com/kozaktomas/face-attendance/internal/store"
	"github.com/kozaktomas/face-attendance/internal/store/postgres"
	"github.com/kozaktomas/face-attendance/internal/store/sqlite"
	"github.com/kozaktomas/face-attendance/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance API server",
	Long: `Start the Face Attendance API server.
The server exposes face registration and matching, attendance recording
and reporting, and employee management over HTTP.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides SERVER_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides SERVER_HOST)")
}

// openStore opens the backend selected by the configuration.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		fmt.Printf("Using SQLite backend (%s)\n", cfg.Store.SQLitePath)
		return sqlite.Open(cfg.Store.SQLitePath, cfg.Attendance.Windows)
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL environment variable is required for the postgres backend")
		}
		fmt.Printf("Using PostgreSQL backend\n")
		return postgres.Open(cfg.Store.DatabaseURL, cfg.Store.EmbeddingDim, cfg.Attendance.Windows)
	default:
		return nil, fmt.Errorf("unknown store driver %q (want sqlite or postgres)", cfg.Store.Driver)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Server.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Server.Host = host
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	m := matcher.New(st, matcher.Thresholds{
		High:   cfg.Matching.HighThreshold,
		Medium: cfg.Matching.MediumThreshold,
	})

	server := web.NewServer(st, m, cfg.Server.Host, cfg.Server.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Attendance API on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
