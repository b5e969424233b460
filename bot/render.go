package bot

import (
	"fmt"
	"time"

	"discord-automod/enforcement"

	"github.com/bwmarrin/discordgo"
)

const colorOrange = 0xE67E22

// RenderNotice turns a notice into a message. Only the moderator ping
// is allowed to mention anyone.
func RenderNotice(n enforcement.Notice) *discordgo.MessageSend {
	quiet := &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}

	switch n := n.(type) {
	case enforcement.AutomodNotice:
		return &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{{
				Title: "🚨 AUTOMOD: Forbidden Content Deleted",
				Description: fmt.Sprintf("**Author :** <@%s>\n**Channel :** <#%s>\n```%s```",
					n.AuthorID, n.ChannelID, n.Content),
				Color:     colorOrange,
				Timestamp: timestamp(n.At),
				Footer:    &discordgo.MessageEmbedFooter{Text: "User ID: " + n.AuthorID},
			}},
			AllowedMentions: quiet,
		}

	case enforcement.SanctionNotice:
		embed := &discordgo.MessageEmbed{
			Title: "🚨 You have been sanctioned",
			Description: "You have been given the **Quarantined** role because of the following message:\n" +
				fmt.Sprintf("```%s```\n", n.Content) +
				fmt.Sprintf("If you believe this is a mistake, you can appeal by contacting the staff in the **%s** channel.",
					ChannelLink(n.GuildID, n.AppealChannelID)),
			Color:     colorOrange,
			Timestamp: timestamp(n.At),
			Footer:    &discordgo.MessageEmbedFooter{Text: n.Footer},
		}
		if n.GuildName != "" {
			embed.Author = &discordgo.MessageEmbedAuthor{Name: n.GuildName, IconURL: n.GuildIconURL}
		}
		return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}, AllowedMentions: quiet}

	case enforcement.PurgeSummary:
		return &discordgo.MessageSend{Content: PurgeSummaryText(n), AllowedMentions: quiet}

	case enforcement.PurgeAuditNotice:
		return &discordgo.MessageSend{
			Content:         fmt.Sprintf("%s Performed by <@%s>.", PurgeSummaryText(n.Summary), n.InvokerID),
			AllowedMentions: quiet,
		}

	case enforcement.DeletionLogNotice:
		return &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "Log of deleted messages",
				Description: n.Text,
				Color:       colorOrange,
				Timestamp:   timestamp(n.At),
				Footer:      &discordgo.MessageEmbedFooter{Text: "User ID: " + n.TargetID},
			}},
			AllowedMentions: quiet,
		}

	case enforcement.ModeratorPingNotice:
		return &discordgo.MessageSend{
			Content:         fmt.Sprintf("<@%s> New moderation events.", n.UserID),
			AllowedMentions: &discordgo.MessageAllowedMentions{Users: []string{n.UserID}},
		}
	}
	return &discordgo.MessageSend{Content: fmt.Sprintf("%v", n), AllowedMentions: quiet}
}

// PurgeSummaryText is the sentence shown to the invoker and posted to the
// audit channel after a purge.
func PurgeSummaryText(s enforcement.PurgeSummary) string {
	text := fmt.Sprintf("Deleted %d message%s from <@%s> that were sent within the last %d hour%s. ",
		s.Deleted, plural(s.Deleted), s.TargetID, s.LookbackHours, plural(s.LookbackHours))
	if s.TimeoutHours == 0 {
		return text + "They have not been timed out."
	}
	return text + fmt.Sprintf("They were timed out for %d hour%s.", s.TimeoutHours, plural(s.TimeoutHours))
}

// ChannelLink is the web link to a guild channel.
func ChannelLink(guildID, channelID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s", guildID, channelID)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339)
}
