// Package main is the entry point for the GroupMe scorebot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"scorebot/internal/bot"
	"scorebot/internal/command"
	"scorebot/internal/config"
	"scorebot/internal/groupme"
	"scorebot/internal/handler"
	"scorebot/internal/parse"
	"scorebot/internal/pkg/db"
	"scorebot/internal/pkg/lock"
	"scorebot/internal/rating"
	"scorebot/internal/repository"
	"scorebot/internal/roster"
	"scorebot/internal/rules"
	"scorebot/internal/service"
)

func main() {
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(&cfg.Log)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := db.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	store := repository.NewPostgresStore(dbPool.Pool)
	ledger := lock.NewLedger(5 * time.Second)
	engine := rating.New(cfg.Rating.K, cfg.Scoring.MinWinningScore, float64(cfg.Rating.MaturityGames))
	houseRules := rules.Rules{
		MinWinningScore: cfg.Scoring.MinWinningScore,
		WinBy:           cfg.Scoring.WinBy,
		MercyThreshold:  cfg.Scoring.MercyThreshold,
	}
	grammar := &parse.Grammar{
		ScoreKeyword:    cfg.Grammar.ScoreKeyword,
		AddKeyword:      cfg.Grammar.AddKeyword,
		MentionCounts:   cfg.Grammar.MentionCounts,
		PlayersPerMatch: 4,
	}

	static, err := roster.ParseTable(cfg.Roster.IDs)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse roster")
	}

	rosterService := service.NewRosterService(store, static, cfg.Rating.Default)
	created, err := rosterService.Sync(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sync roster")
	}
	log.Info().Int("created", created).Msg("Roster synced")

	client := groupme.NewClient(&cfg.GroupMe)

	scoreService := service.NewScoreService(store, rosterService, ledger, engine, houseRules)
	replayService := service.NewReplayService(store, ledger, engine, cfg.Rating.Seeds(), cfg.Rating.Default)
	boardService := service.NewLeaderboardService(store, cfg.Leaderboard.MinGames, cfg.Leaderboard.Display)
	adminService := service.NewAdminService(store, ledger, cfg.Rating.Default, cfg.Rating.BotchPenalty)
	historyService := service.NewHistoryService(store, cfg.Leaderboard.History)
	verifyService := service.NewVerifyService(client, scoreService, store, grammar, cfg.Admin.IDs, cfg.GroupMe.HistoryLimit)

	registry := command.NewRegistry()
	registry.MustRegister(
		handler.NewScoreHandler(cfg.Grammar.ScoreKeyword, scoreService),
		handler.NewCheckHandler(verifyService),
		handler.NewAddHandler(cfg.Grammar.AddKeyword, adminService),
		handler.NewBotchHandler(adminService, rosterService, false),
		handler.NewBotchHandler(adminService, rosterService, true),
		handler.NewStrikeHandler(adminService),
		handler.NewRefreshHandler(replayService, boardService),
		handler.NewLeaderboardHandler(boardService),
		handler.NewScoreboardHandler(boardService, rosterService),
		handler.NewPartnerHandler(historyService, rosterService),
		handler.NewHistoryHandler(historyService, rosterService),
		handler.NewStatsHandler(boardService),
		handler.NewHelpHandler(registry, houseRules, cfg.Grammar.ScoreKeyword, false),
		handler.NewHelpHandler(registry, houseRules, cfg.Grammar.ScoreKeyword, true),
	)

	log.Info().
		Int("command_count", registry.Count()).
		Strs("commands", registry.Commands()).
		Msg("Commands registered")

	scorebot, err := bot.New(&bot.Dependencies{
		Config:   cfg,
		Grammar:  grammar,
		Registry: registry,
		Poster:   client,
		Taunter:  handler.NewTaunter(cfg.GroupMe.BotName),
		Health:   dbPool,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scorebot.Serve(gctx)
	})

	if cfg.Digest.Enabled {
		digest, err := bot.NewDigest(cfg.Digest.Cron, boardService, client)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule digest")
		}
		g.Go(func() error {
			return digest.Run(gctx)
		})
	}

	log.Info().Msg("Bot is starting...")
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Bot stopped with error")
	}
	log.Info().Msg("Bot stopped gracefully")
}

func setupLogger(cfg *config.LogConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	zerolog.DefaultContextLogger = &log.Logger
}
