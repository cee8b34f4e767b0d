package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// NewCmdSeed creates the seed command running the definitions stage
func NewCmdSeed() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed badge and aggregate definitions from the embedded catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()

			return app.pipeline.SeedDefinitions()
		},
	}
}

// NewCmdSync creates the sync command running the activities stage
func NewCmdSync() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch activity from the configured GitHub repositories",
		Long: `Fetches issues, pull requests, reviews, comments and commits from
the repositories listed in SYNC_REPOS and persists them as contributor
activity. With --full, the remaining pipeline stages (aggregates and
badges) run afterwards in their fixed order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()

			ctx := context.Background()
			if full {
				return app.pipeline.RunAll(ctx)
			}
			return app.pipeline.Run(ctx, "sync")
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "run the full pipeline after syncing")

	return cmd
}

// NewCmdAggregate creates the aggregate command
func NewCmdAggregate() *cobra.Command {
	return &cobra.Command{
		Use:   "aggregate",
		Short: "Recompute statistical aggregates from the activity log",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()

			return app.pipeline.Run(context.Background(), "aggregate")
		},
	}
}

// NewCmdBadges creates the badges command
func NewCmdBadges() *cobra.Command {
	return &cobra.Command{
		Use:   "badges",
		Short: "Evaluate badge ladders and award newly earned variants",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()

			return app.pipeline.Run(context.Background(), "badges")
		},
	}
}
