package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ankit-iitb/sandstorm-simulator/infra/history"
	"github.com/ankit-iitb/sandstorm-simulator/pkg/export"
)

var (
	historyLimit int
	exportFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded runs",
}

var historyLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recorded runs, newest first",
	RunE:  runHistoryLs,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print one recorded run report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all recorded runs to stdout",
	RunE:  runHistoryExport,
}

func init() {
	historyLsCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to list, 0 for all")
	historyExportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or json")
	historyCmd.AddCommand(historyLsCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

// openStore opens the database the configuration points at. The read
// commands work even when history recording is disabled.
func openStore() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.History.Path)
}

func runHistoryLs(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	runs, err := store.List(ctx, historyLimit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("%s  %-8s  %-8s  %s  recv=%d  p50=%.1fus  p99=%.1fus\n",
			r.RunID, r.Mode, r.Policy, r.StartedAt.Format(time.RFC3339), r.Received, r.MedianMicros, r.P99Micros)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rep, err := store.Get(ctx, args[0])
	if err != nil {
		return err
	}
	return printReport(rep)
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	runs, err := store.List(ctx, 0)
	if err != nil {
		return err
	}
	switch exportFormat {
	case "csv":
		return export.WriteCSV(os.Stdout, runs)
	case "json":
		return export.WriteJSON(os.Stdout, runs)
	default:
		return fmt.Errorf("unknown export format %q", exportFormat)
	}
}
