// Package cmd wires the CLI. The root command runs the coordination
// service; simulate drives a demo matching round against the same wiring.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Medic423/medport-sub003/app"
	"github.com/Medic423/medport-sub003/config"
	"github.com/Medic423/medport-sub003/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "medport",
	Short:        "Medical transport coordination service",
	Long:         "Coordinates inter-facility patient transports: requests, agency bids, matching and ETA tracking.",
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := buildService()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			logger.New("main").Errorf("service close: %v", cerr)
		}
	}()
	return svc.Run(ctx)
}

// buildService loads the configuration and assembles the service. Shared by
// serve and simulate so both exercise identical wiring.
func buildService() (*app.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(cfg)
}
