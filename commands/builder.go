package commands

import (
	"fmt"

	"discord-automod/commands/defs"
	"discord-automod/model"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands builds the guild command set. Hour option descriptions
// show the loaded defaults and limits; out-of-range values are clamped by
// the engine rather than rejected by the client.
func GenerateCommands(cfg *model.ModerationConfig) []*discordgo.ApplicationCommand {
	purge := *defs.PurgeRecentMessages
	purge.Options = make([]*discordgo.ApplicationCommandOption, 0, len(defs.PurgeRecentMessages.Options))
	for _, opt := range defs.PurgeRecentMessages.Options {
		o := *opt
		switch o.Name {
		case defs.OptionLookbackHours:
			o.Description = fmt.Sprintf("%s (default %d, max %d)", o.Description, cfg.DefaultLookbackHours, cfg.MaxLookbackHours)
		case defs.OptionTimeoutHours:
			o.Description = fmt.Sprintf("%s (default %d, max %d)", o.Description, cfg.DefaultTimeoutHours, cfg.TimeoutCapHours)
		}
		purge.Options = append(purge.Options, &o)
	}

	return []*discordgo.ApplicationCommand{
		&purge,
		defs.LiftQuarantine,
		defs.AutomodStatus,
	}
}
