// Package main provides the entry point for the video pipeline API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "video_agent",
	Short: "AI video pipeline checkpoint service",
	Long:  "video_agent serves the checkpoint/branch versioning engine and status API for the multi-phase AI video pipeline.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
