package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/video-pipeline/internal/config"
	"github.com/jonathan/video-pipeline/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing the checkpoint, branch, continuation, and status endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	srv, err := server.New(server.Config{
		Port:                cfg.Port,
		DatabaseURL:         cfg.DatabaseURL,
		CacheTTL:            cfg.CacheTTL,
		PollInterval:        cfg.PollInterval,
		MaxConcurrentPhases: cfg.MaxConcurrentPhases,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
