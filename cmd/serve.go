package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/pmwiki/internal/adapters/content"
	"github.com/okian/pmwiki/internal/adapters/http/api"
	"github.com/okian/pmwiki/internal/adapters/http/site"
	"github.com/okian/pmwiki/internal/adapters/http/swagger"
	repository "github.com/okian/pmwiki/internal/adapters/repository"
	app "github.com/okian/pmwiki/internal/app"
	"github.com/okian/pmwiki/internal/config"
	"github.com/okian/pmwiki/internal/domain/compare"
	"github.com/okian/pmwiki/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the site, API and docs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}
}

func runServe(cmd *cobra.Command, flags *globalFlags) error {
	ctx := cmd.Context()
	cfg, l, err := setup(ctx, flags, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg, l, true)
	if err != nil {
		return err
	}
	if cfg.SeedOnStart {
		if _, err := seedStore(ctx, cfg, store, l, false); err != nil {
			_ = store.Close()
			return err
		}
	}

	svc := newService(cfg, store, l)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	if cfg.WatchContent {
		go watchContent(ctx, cfg, store, svc, l)
	}

	mux, err := newMux(cfg, svc, l)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	l.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	l.Info(ctx, "server stopped")
	return nil
}

// watchContent reseeds store and refreshes the listings whenever content
// files change. It returns when ctx is done.
func watchContent(ctx context.Context, cfg *config.Config, store repository.Store, svc *app.Service, l logger.Logger) {
	w := content.NewWatcher(cfg.ContentGlob, content.WithWatchLogger(l.Named("content")))
	err := w.Run(ctx, func(ctx context.Context) error {
		if _, err := seedStore(ctx, cfg, store, l, true); err != nil {
			return err
		}
		return svc.Refresh(ctx)
	})
	if err != nil {
		l.Error(ctx, "content watcher stopped", logger.Error(err))
	}
}

// newService builds the catalog service from configuration.
func newService(cfg *config.Config, store repository.Store, l logger.Logger) *app.Service {
	registry := compare.NewRegistry(
		compare.WithMaxSessions(cfg.CompareMaxSessions),
		compare.WithSessionTTL(cfg.CompareSessionTTL),
		compare.WithSetOptions(compare.WithMaxItems(cfg.CompareMaxItems)),
		compare.WithLogger(l.Named("compare")),
	)
	return app.New(
		app.WithStore(store),
		app.WithRegistry(registry),
		app.WithLogger(l),
		app.WithBaseURL(cfg.SiteBaseURL),
		app.WithRevalidateInterval(cfg.RevalidateInterval),
		app.WithSearchLimit(cfg.SearchLimit),
		app.WithMaxRankingLimit(cfg.MaxRankingLimit),
		app.WithRecommendationLimit(cfg.RecommendationLimit),
	)
}

// newMux registers the docs, API and site routes.
func newMux(cfg *config.Config, svc *app.Service, l logger.Logger) (*http.ServeMux, error) {
	maxAge := cfg.CompareSessionTTL
	if maxAge <= 0 {
		maxAge = compare.DefaultSessionTTL
	}

	mux := http.NewServeMux()
	swagger.Register(mux)

	api.NewServer(svc,
		api.WithLogger(l.Named("api")),
		api.WithCookieMaxAge(maxAge),
		api.WithSecureCookie(cfg.SecureCookie),
	).Register(mux)

	pages, err := site.NewHandler(svc, api.NewSessions(svc, maxAge, cfg.SecureCookie), l.Named("site"))
	if err != nil {
		return nil, err
	}
	pages.Register(mux)
	return mux, nil
}
