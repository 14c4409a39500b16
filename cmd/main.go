// Command pmwiki serves the personal-mobility catalog and offers
// maintenance commands for its store.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/pmwiki/internal/adapters/content"
	repository "github.com/okian/pmwiki/internal/adapters/repository"
	"github.com/okian/pmwiki/internal/adapters/repository/postgres"
	"github.com/okian/pmwiki/internal/config"
	"github.com/okian/pmwiki/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath  string
	contentGlob string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:          "pmwiki",
		Short:        "Personal-mobility used-market wiki",
		Long:         "pmwiki serves the catalog site and API. Without a subcommand it runs serve.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file (overrides "+config.EnvConfigFile+")")
	root.PersistentFlags().StringVar(&flags.contentGlob, "content", "", "content glob (overrides content_glob)")

	root.AddCommand(
		newServeCmd(flags),
		newMigrateCmd(flags),
		newSeedCmd(flags),
		newScoreCmd(),
		newRankingCmd(flags),
		newCompareCmd(flags),
		newCrawlCmd(flags),
	)
	return root
}

// setup loads configuration and initializes the global logger writing to out.
func setup(ctx context.Context, flags *globalFlags, out io.Writer) (*config.Config, logger.Logger, error) {
	if flags.configPath != "" {
		if err := os.Setenv(config.EnvConfigFile, flags.configPath); err != nil {
			return nil, nil, fmt.Errorf("set %s: %w", config.EnvConfigFile, err)
		}
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if flags.contentGlob != "" {
		cfg.ContentGlob = flags.contentGlob
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(out)); err != nil {
		return nil, nil, fmt.Errorf("initialize logging: %w", err)
	}
	l := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		l.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, l, nil
}

// openStore returns the PostgreSQL store when a database URL is configured
// and the in-memory store otherwise. migrate applies the schema first.
func openStore(ctx context.Context, cfg *config.Config, l logger.Logger, migrate bool) (repository.Store, error) {
	if cfg.DatabaseURL == "" {
		l.Info(ctx, "using in-memory store")
		return repository.NewMemoryStore(), nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if migrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		l.Info(ctx, "migrations applied", logger.Strings("files", applied))
	}
	return postgres.NewStore(pool), nil
}

// seedStore loads the configured content files into store. Missing content
// is not an error when required is false.
func seedStore(ctx context.Context, cfg *config.Config, store repository.Store, l logger.Logger, required bool) (content.Result, error) {
	bundle, err := content.NewGlobLoader(cfg.ContentGlob, content.WithLogger(l)).Load(ctx)
	if err != nil {
		if errors.Is(err, content.ErrNoContent) && !required {
			l.Warn(ctx, "no content to seed", logger.String("glob", cfg.ContentGlob))
			return content.Result{}, nil
		}
		return content.Result{}, err
	}
	res, err := content.Seed(ctx, store, bundle)
	if err != nil {
		return res, err
	}
	l.Info(ctx, "content seeded",
		logger.Int("files", len(bundle.Files)),
		logger.Int("devices", res.Devices),
		logger.Int("posts", res.Posts),
	)
	return res, nil
}

// catalogStore opens the store for read commands. The in-memory store is
// seeded from content since it starts empty.
func catalogStore(ctx context.Context, cfg *config.Config, l logger.Logger) (repository.Store, error) {
	store, err := openStore(ctx, cfg, l, false)
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		if _, err := seedStore(ctx, cfg, store, l, true); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	return store, nil
}
