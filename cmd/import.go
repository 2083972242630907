package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/legacy"
	"github.com/kozaktomas/face-attendance/internal/store/sqlite"
)

var importCmd = &cobra.Command{
	Use:   "import <data-dir>",
	Short: "Import a legacy CSV export into the SQLite database",
	Long: `Import the CSV files of the original deployment (employees.csv,
face_encodings.csv, attendance_records.csv) into the SQLite database,
preserving the original record ids. Meant for one-shot migration into a
fresh database file.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Store.Driver != "sqlite" {
		return fmt.Errorf("import only supports the sqlite backend, configured driver is %q", cfg.Store.Driver)
	}

	data, err := legacy.Load(args[0])
	if err != nil {
		return fmt.Errorf("reading legacy export: %w", err)
	}

	s, err := sqlite.Open(cfg.Store.SQLitePath, cfg.Attendance.Windows)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	if err := s.ImportLegacy(context.Background(), data); err != nil {
		return fmt.Errorf("importing: %w", err)
	}

	fmt.Printf("Imported %d employees, %d face encodings, %d attendance records into %s\n",
		len(data.Employees), len(data.Encodings), len(data.Attendance), cfg.Store.SQLitePath)
	if data.Skipped > 0 {
		fmt.Printf("Skipped %d unparsable rows\n", data.Skipped)
	}
	return nil
}
