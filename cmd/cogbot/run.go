package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/CreativeUnicorns/cogbot"
	"github.com/CreativeUnicorns/cogbot/api"
	"github.com/CreativeUnicorns/cogbot/bot"
	"github.com/CreativeUnicorns/cogbot/format"
)

const (
	bannerWidth     = 60
	shutdownTimeout = 30 * time.Second
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run [flags]",
		Short: "Connects the bot to Discord and serves the admin API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context())
		},
	}
}

func (a *app) run(ctx context.Context) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	handler := newLogHandler(cfg, os.Stderr)
	logger := cogbot.NewLogger(handler, cfg.LogLevel)
	discordgo.Logger = bot.DiscordgoLogger(ctx, handler)

	logger.Info(format.Banner("cogbot", bannerWidth, true))
	defer logger.Info(format.Banner("cogbot", bannerWidth, false))

	token, err := cfg.Token()
	if err != nil {
		return err
	}

	store, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close storage", "error", err)
		}
	}()

	if err := checkStorage(ctx, store); err != nil {
		return err
	}

	manager, err := newManager(cfg, store, logger.With("component", "settings"))
	if err != nil {
		return err
	}
	manager.Load(ctx)

	cooldowns, err := openCache(cfg)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer func() {
		if err := cooldowns.Close(); err != nil {
			logger.Warn("Failed to close cache", "error", err)
		}
	}()

	session, err := bot.NewSession(token, logger.Slog().With("component", "session"))
	if err != nil {
		return err
	}
	b := bot.New(session, manager, cfg,
		bot.WithLogger(logger.With("component", "bot")),
		bot.WithCooldownCache(cooldowns),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// AutoSave returns after the final checkpoint once gctx is done.
		if err := manager.AutoSave(gctx, cfg.CheckpointInterval); err != nil {
			return fmt.Errorf("final checkpoint failed: %w", err)
		}
		return nil
	})

	if cfg.API.Listen != "" {
		srv, err := api.NewServer(api.Config{
			ListenAddress: cfg.API.Listen,
			Manager:       manager,
			Logger:        logger.With("component", "api"),
		})
		if err != nil {
			return err
		}
		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
			defer cancel()
			return srv.Stop(shutdownCtx)
		})
	}

	g.Go(func() error {
		if err := b.Start(gctx); err != nil {
			return err
		}
		logger.Info("Bot started", "prefixes", cfg.General.Prefix, "categories", manager.Categories())
		<-gctx.Done()
		logger.Info("Shutting down")
		return b.Stop()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Exited with error", "error", err)
		return err
	}
	return nil
}
