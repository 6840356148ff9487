package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ankit-iitb/sandstorm-simulator/app"
	"github.com/ankit-iitb/sandstorm-simulator/config"
	"github.com/ankit-iitb/sandstorm-simulator/core/report"
	"github.com/ankit-iitb/sandstorm-simulator/infra/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the UDP server and dispatch driver until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(func(ctx context.Context, svc *app.Service) (report.Report, error) {
			return svc.Serve(ctx)
		})
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay a synthetic arrival stream on the virtual clock",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(func(ctx context.Context, svc *app.Service) (report.Report, error) {
			return svc.Simulate(ctx)
		})
	},
}

var loadgenCmd = &cobra.Command{
	Use:   "loadgen",
	Short: "Fire timestamped UDP load at a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(func(ctx context.Context, svc *app.Service) (report.Report, error) {
			return svc.Loadgen(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, simulateCmd, loadgenCmd)
}

func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// runMode builds the service, runs one mode until it finishes or a
// signal arrives, and prints the report on stdout.
func runMode(mode func(context.Context, *app.Service) (report.Report, error)) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	rep, err := mode(ctx, svc)
	if err != nil {
		return err
	}
	return printReport(rep)
}

func printReport(rep report.Report) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
