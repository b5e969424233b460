package defs

import "github.com/bwmarrin/discordgo"

const (
	PurgeRecentMessagesName = "purge-recent-messages"
	LiftQuarantineName      = "lift-quarantine"
	AutomodStatusName       = "automod-status"

	OptionUser          = "user"
	OptionLookbackHours = "lookback_hours"
	OptionTimeoutHours  = "timeout_hours"
)

var (
	moderateMembers int64 = discordgo.PermissionModerateMembers
	manageRoles     int64 = discordgo.PermissionManageRoles
	manageGuild     int64 = discordgo.PermissionManageGuild
	noDM                  = false
)

var PurgeRecentMessages = &discordgo.ApplicationCommand{
	Name:                     PurgeRecentMessagesName,
	Description:              "Delete recent messages by a user and optionally time them out.",
	DefaultMemberPermissions: &moderateMembers,
	DMPermission:             &noDM,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        OptionUser,
			Description: "User to delete messages from",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        OptionLookbackHours,
			Description: "How far back to look",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        OptionTimeoutHours,
			Description: "How long to time out the user",
			Required:    false,
		},
	},
}

var LiftQuarantine = &discordgo.ApplicationCommand{
	Name:                     LiftQuarantineName,
	Description:              "Unquarantine a quarantined user.",
	DefaultMemberPermissions: &manageRoles,
	DMPermission:             &noDM,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        OptionUser,
			Description: "User to unquarantine",
			Required:    true,
		},
	},
}

var AutomodStatus = &discordgo.ApplicationCommand{
	Name:                     AutomodStatusName,
	Description:              "Show automod limits and host status.",
	DefaultMemberPermissions: &manageGuild,
	DMPermission:             &noDM,
}
