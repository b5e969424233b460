package handlers

import (
	"context"

	"discord-automod/bot"
	"discord-automod/commands/defs"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		defs.PurgeRecentMessagesName: func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandlePurgeRecentMessages(s, i, b)
		},
		defs.LiftQuarantineName: func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleLiftQuarantine(s, i, b)
		},
		defs.AutomodStatusName: func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleAutomodStatus(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	log := b.Logger()

	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.Platform.SetSelfID(r.User.ID)
		log.Info("Logged in",
			zap.String("user", r.User.Username),
			zap.Int("guilds", len(r.Guilds)))
	})

	// GuildCreate fires for every guild after Ready and whenever the bot
	// joins a new one.
	b.Session.AddHandler(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		if g.Unavailable {
			return
		}
		guildID := g.ID
		submitEvent(b, "refresh_commands", func(context.Context) {
			if err := b.RefreshCommands(guildID); err != nil {
				log.Warn("Failed to register commands", zap.String("guild_id", guildID), zap.Error(err))
			}
		})
	})

	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot || m.GuildID == "" {
			return
		}
		msg := bot.ToMessage(m.Message)
		submitEvent(b, "message_create", func(ctx context.Context) {
			b.Engine.OnMessage(ctx, msg)
		})
	})

	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
}

func submitEvent(b *bot.Bot, name string, run func(ctx context.Context)) {
	if err := b.Dispatcher.Submit(bot.Task{Name: name, Run: run}); err != nil {
		b.Logger().Debug("Dropped event", zap.String("event", name), zap.Error(err))
	}
}
