package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/video-pipeline/internal/config"
	"github.com/jonathan/video-pipeline/internal/db"
	"github.com/jonathan/video-pipeline/internal/observability"
)

var (
	treeVideoID string
	treeUserID  string
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print a video's checkpoint tree and branches",
	RunE:  runTree,
}

func init() {
	treeCmd.Flags().StringVar(&treeVideoID, "video", "", "Video UUID (required)")
	treeCmd.Flags().StringVar(&treeUserID, "user", "", "Owning user UUID (required)")
	_ = treeCmd.MarkFlagRequired("video")
	_ = treeCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(treeCmd)
}

func runTree(_ *cobra.Command, _ []string) error {
	videoID, err := uuid.Parse(treeVideoID)
	if err != nil {
		return fmt.Errorf("invalid --video: %w", err)
	}
	userID, err := uuid.Parse(treeUserID)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	forest, err := database.GetCheckpointTree(ctx, videoID, userID)
	if err != nil {
		return err
	}
	branches, err := database.ListBranches(ctx, videoID, userID)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintCheckpointTree(forest)
	printer.PrintBranches(branches)
	return nil
}
