package main

import (
	"context"
	"fmt"
	"os"

	"discord-automod/bot"
	"discord-automod/config"
	"discord-automod/handlers"
	"discord-automod/utils"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "discord-automod",
		Usage: "forbidden content automod and moderation commands for a Discord guild",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to config.yaml",
				Value:   "config.yaml",
				EnvVars: []string{"AUTOMOD_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file holding BOT_TOKEN",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Value:   "info",
				EnvVars: []string{"AUTOMOD_LOG_LEVEL"},
			},
			&cli.IntFlag{
				Name:    "workers",
				Usage:   "number of event workers",
				Value:   4,
				EnvVars: []string{"AUTOMOD_WORKERS"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cctx *cli.Context) error {
	logger, err := utils.NewLogger(cctx.String("log-level"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(cctx.String("env-file"), cctx.String("config"))
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	logger.Info("Configuration loaded",
		zap.Int("patterns", len(cfg.Moderation.ForbiddenRegexes)),
		zap.Int("max_hours", cfg.Moderation.MaxLookbackHours))

	b, err := bot.New(cfg, logger, cctx.Int("workers"))
	if err != nil {
		return fmt.Errorf("error creating bot: %w", err)
	}

	handlers.Register(b)

	return b.Run(context.Background())
}
