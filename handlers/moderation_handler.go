package handlers

import (
	"context"
	"errors"
	"fmt"

	"discord-automod/bot"
	"discord-automod/commands/defs"
	"discord-automod/enforcement"
	"discord-automod/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// purgeOptions are the parsed options of purge-recent-messages.
type purgeOptions struct {
	TargetID      string
	LookbackHours *int
	TimeoutHours  *int
}

func parsePurgeOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) (purgeOptions, error) {
	var p purgeOptions
	for _, opt := range opts {
		switch opt.Name {
		case defs.OptionUser:
			p.TargetID = optionSnowflake(opt)
		case defs.OptionLookbackHours:
			v := int(opt.IntValue())
			p.LookbackHours = &v
		case defs.OptionTimeoutHours:
			v := int(opt.IntValue())
			p.TimeoutHours = &v
		}
	}
	if p.TargetID == "" {
		return p, errors.New("missing user option")
	}
	return p, nil
}

func parseTarget(opts []*discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	for _, opt := range opts {
		if opt.Name == defs.OptionUser {
			if id := optionSnowflake(opt); id != "" {
				return id, nil
			}
		}
	}
	return "", errors.New("missing user option")
}

// optionSnowflake reads a user option without a session lookup.
func optionSnowflake(opt *discordgo.ApplicationCommandInteractionDataOption) string {
	if opt.Type != discordgo.ApplicationCommandOptionUser {
		return ""
	}
	id, _ := opt.Value.(string)
	return id
}

// purgeErrorMessage is the ephemeral text shown for a failed purge.
func purgeErrorMessage(err error, targetID string) string {
	switch {
	case errors.Is(err, enforcement.ErrTargetOutranks):
		return fmt.Sprintf("You do not have permission to delete messages from <@%s>.", targetID)
	case errors.Is(err, enforcement.ErrTargetIsBot):
		return "Cannot delete messages from a bot."
	case errors.Is(err, enforcement.ErrTargetNotMember):
		return "That user is not a member of this server."
	case errors.Is(err, enforcement.ErrTimeoutForbidden):
		return "Failed to timeout user. Missing permissions."
	}
	return fmt.Sprintf("Error deleting messages: %v", err)
}

// liftMessage is the ephemeral text shown after lift-quarantine.
func liftMessage(outcome enforcement.LiftOutcome, err error, targetID string) string {
	switch {
	case errors.Is(err, enforcement.ErrSelfTarget):
		return "It's not that simple."
	case errors.Is(err, enforcement.ErrTargetNotMember):
		return "That user is not a member of this server."
	case err != nil:
		return "Something went wrong while attempting to unquarantine the user"
	}
	switch outcome {
	case enforcement.LiftNoRole:
		return "User does not have the configured quarantine role"
	case enforcement.LiftPartial:
		return "Something went wrong while attempting to unquarantine the user"
	}
	return fmt.Sprintf("Successfully unquarantined <@%s>", targetID)
}

// HandlePurgeRecentMessages defers the interaction and queues the purge.
func HandlePurgeRecentMessages(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts, err := parsePurgeOptions(i.ApplicationCommandData().Options)
	if err != nil || i.Member == nil || i.Member.User == nil {
		utils.SendErrorResponse(s, i, "This command can only be used on a member of this server.")
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		b.Logger().Warn("Failed to defer interaction", zap.Error(err))
		return
	}

	req := enforcement.PurgeRequest{
		GuildID:       i.GuildID,
		InvokerID:     i.Member.User.ID,
		TargetID:      opts.TargetID,
		LookbackHours: opts.LookbackHours,
		TimeoutHours:  opts.TimeoutHours,
	}
	reply := enforcement.ResponderFunc(func(_ context.Context, n enforcement.Notice) error {
		summary, ok := n.(enforcement.PurgeSummary)
		if !ok {
			return fmt.Errorf("unexpected reply %T", n)
		}
		return utils.SendFollowUp(s, i.Interaction, bot.PurgeSummaryText(summary))
	})

	submit(b, i, defs.PurgeRecentMessagesName, func(ctx context.Context) {
		if _, err := b.Engine.PurgeRecentMessages(ctx, req, reply); err != nil {
			var verr *enforcement.ValidationError
			if !errors.As(err, &verr) {
				b.Logger().Error("Purge failed",
					zap.String("guild_id", req.GuildID),
					zap.String("user_id", req.TargetID),
					zap.Error(err))
			}
			utils.SendFollowUpError(s, i.Interaction, purgeErrorMessage(err, req.TargetID))
		}
	})
}

// HandleLiftQuarantine defers the interaction and queues the release.
func HandleLiftQuarantine(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	targetID, err := parseTarget(i.ApplicationCommandData().Options)
	if err != nil || i.Member == nil || i.Member.User == nil {
		utils.SendErrorResponse(s, i, "This command can only be used on a member of this server.")
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		b.Logger().Warn("Failed to defer interaction", zap.Error(err))
		return
	}

	req := enforcement.LiftRequest{
		GuildID:   i.GuildID,
		InvokerID: i.Member.User.ID,
		TargetID:  targetID,
	}
	submit(b, i, defs.LiftQuarantineName, func(ctx context.Context) {
		outcome, err := b.Engine.LiftQuarantine(ctx, req)
		if err != nil {
			var verr *enforcement.ValidationError
			if !errors.As(err, &verr) {
				b.Logger().Error("Lift quarantine failed",
					zap.String("guild_id", req.GuildID),
					zap.String("user_id", req.TargetID),
					zap.Error(err))
			}
		}
		_ = utils.SendFollowUp(s, i.Interaction, liftMessage(outcome, err, targetID))
	})
}

func submit(b *bot.Bot, i *discordgo.InteractionCreate, name string, run func(ctx context.Context)) {
	err := b.Dispatcher.Submit(bot.Task{Name: name, Run: run})
	if err != nil {
		b.Logger().Warn("Dropped command", zap.String("command", name), zap.Error(err))
		utils.SendFollowUpError(b.Session, i.Interaction, "The bot is shutting down, try again later.")
	}
}
