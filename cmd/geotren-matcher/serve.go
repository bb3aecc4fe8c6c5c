package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/theoremus-urban-solutions/geotren-matcher/feed"
	"github.com/theoremus-urban-solutions/geotren-matcher/matching"
	"github.com/theoremus-urban-solutions/geotren-matcher/publish"
	"github.com/theoremus-urban-solutions/geotren-matcher/server"
	"github.com/theoremus-urban-solutions/geotren-matcher/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the matcher loop and HTTP API",
	Long:  "Poll the live feed every refresh interval, correlate it against the loaded itinerary and serve the results over HTTP, websocket and the configured publishers.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	logger.Info().Str("environment", cfg.Server.Environment).Msg("geotren-matcher starting")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := loadStore(ctx, cfg.Schedule.Path)
	if err != nil {
		// The API accepts a schedule upload, so keep serving without one.
		logger.Error().Err(err).Msg("starting without a schedule")
	}

	client, err := feed.NewClient(&http.Client{Timeout: cfg.FetchTimeout()}, feed.Format(cfg.Feed.Format), cfg.Feed.URL, cfg.Feed.TripUpdatesURL)
	if err != nil {
		return err
	}

	engine := matching.NewEngine(matching.Options{
		Lines:              cfg.Matcher.Lines,
		WindowMinutes:      cfg.Matcher.WindowMinutes,
		MinSequenceMatches: cfg.Matcher.MinSequenceMatches,
	}, logger)

	latest := publish.NewLatest()
	hub := publish.NewHub(latest, logger)
	publishers := publish.Multi{latest, hub, publish.NewLog(logger)}

	if cfg.Redis.Addr != "" {
		rp, err := publish.NewRedis(ctx, publish.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
			Channel:  cfg.Redis.Channel,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis publisher disabled")
		} else {
			defer func() { _ = rp.Close() }()
			publishers = append(publishers, rp)
		}
	}
	if cfg.NATS.URL != "" {
		np, err := publish.NewNATS(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("NATS publisher disabled")
		} else {
			defer func() { _ = np.Close() }()
			publishers = append(publishers, np)
		}
	}

	svc := service.New(service.Options{
		RefreshInterval:         cfg.RefreshInterval(),
		FetchTimeout:            cfg.FetchTimeout(),
		KeepTrackedOnFetchError: cfg.Feed.KeepTrackedOnFetchError,
		NotableDelayMinutes:     cfg.Matcher.NotableDelayMinutes,
		Location:                cfg.Location(),
	}, client, engine, publishers, store, logger)

	srv := server.New(server.Options{
		Port:            cfg.Server.Port,
		RefreshInterval: cfg.RefreshInterval(),
		Codespace:       cfg.Server.Codespace,
	}, svc, latest, hub, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := svc.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("matcher loop: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("geotren-matcher stopped")
	return nil
}
