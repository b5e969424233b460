package bot

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"discord-automod/commands"
	"discord-automod/enforcement"
	"discord-automod/model"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// queuePerWorker sizes the dispatcher queue relative to the worker count.
const queuePerWorker = 64

type Bot struct {
	Session         *discordgo.Session
	Platform        *Platform
	Engine          *enforcement.Engine
	Dispatcher      *Dispatcher
	CommandHandlers map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	config    atomic.Value // *model.Config
	logger    *zap.Logger
	startedAt time.Time
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) Logger() *zap.Logger {
	return b.logger
}

// StartedAt is when Run opened the gateway connection.
func (b *Bot) StartedAt() time.Time {
	return b.startedAt
}

func New(cfg *model.Config, logger *zap.Logger, workers int) (*Bot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent
	dg.StateEnabled = true
	// Handlers only enqueue work; the dispatcher provides the concurrency.
	dg.SyncEvents = true

	platform := NewPlatform(dg)
	engine, err := enforcement.New(platform, cfg.Moderation, logger.Named("engine"))
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	b := &Bot{
		Session:         dg,
		Platform:        platform,
		Engine:          engine,
		Dispatcher:      NewDispatcher(workers, workers*queuePerWorker, logger.Named("dispatcher")),
		CommandHandlers: make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)),
		logger:          logger,
	}
	b.config.Store(cfg)
	return b, nil
}

// Close drains queued event work and disconnects from the gateway.
func (b *Bot) Close(ctx context.Context) error {
	b.logger.Info("Gracefully shutting down")
	drainErr := b.Dispatcher.Stop(ctx)
	if err := b.Session.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return drainErr
}

// RefreshCommands replaces the guild's application commands with the
// moderation command set.
func (b *Bot) RefreshCommands(guildID string) error {
	cmds := commands.GenerateCommands(&b.GetConfig().Moderation)
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, guildID, cmds)
	if err != nil {
		return fmt.Errorf("cannot update commands for guild %s: %w", guildID, err)
	}
	b.logger.Info("Registered commands",
		zap.String("guild_id", guildID),
		zap.Int("count", len(registered)))
	return nil
}
