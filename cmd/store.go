package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/pmwiki/internal/adapters/repository/postgres"
	"github.com/okian/pmwiki/internal/config"
	"github.com/okian/pmwiki/pkg/logger"
)

// ErrNoDatabase is returned by commands that need PostgreSQL.
var ErrNoDatabase = errors.New("database_url is not configured")

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, l, err := setup(ctx, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return ErrNoDatabase
			}
			pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				return err
			}
			for _, f := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			l.Info(ctx, "migrations applied", logger.Int("count", len(applied)))
			return nil
		},
	}
}

func newSeedCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load YAML content into the store",
		Long: "seed validates every content file and upserts its devices and posts.\n" +
			"With no database_url the records only reach the in-memory store, which is\n" +
			"useful to check content before publishing it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, l, err := setup(ctx, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runSeed(cmd, cfg, l)
		},
	}
}

func runSeed(cmd *cobra.Command, cfg *config.Config, l logger.Logger) error {
	ctx := cmd.Context()
	store, err := openStore(ctx, cfg, l, true)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := seedStore(ctx, cfg, store, l, true)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d devices, %d posts\n", res.Devices, res.Posts)
	return nil
}
