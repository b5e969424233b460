package enforcement

import (
	"context"
	"time"
)

// MemberDirectory resolves guild objects by id. Lookups of ids that do not
// exist return an error wrapping ErrNotFound.
type MemberDirectory interface {
	Member(ctx context.Context, guildID, userID string) (*Member, error)
	// Self returns the agent's own member record in the guild.
	Self(ctx context.Context, guildID string) (*Member, error)
	Role(ctx context.Context, guildID, roleID string) (*Role, error)
	Channel(ctx context.Context, guildID, channelID string) (*Channel, error)
	Guild(ctx context.Context, guildID string) (*Guild, error)
}

// RoleManager mutates member state. Each call fails independently; refusals
// caused by missing privileges wrap ErrPermissionDenied.
type RoleManager interface {
	AddRole(ctx context.Context, guildID, userID, roleID, reason string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID, reason string) error
	TimeoutMember(ctx context.Context, guildID, userID string, until time.Time, reason string) error
}

// MessageStore reads channel history and deletes messages.
type MessageStore interface {
	// TextChannels lists the guild's text channels in display order.
	TextChannels(ctx context.Context, guildID string) ([]*Channel, error)
	// ChannelHistory returns at most limit messages created after the given
	// time, oldest first.
	ChannelHistory(ctx context.Context, channelID string, after time.Time, limit int) ([]*Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// Messenger delivers notices. Rendering is up to the implementation.
type Messenger interface {
	SendNotice(ctx context.Context, channelID string, n Notice) error
	SendDirectNotice(ctx context.Context, userID string, n Notice) error
}

// Platform is everything the engine needs from the chat platform.
type Platform interface {
	MemberDirectory
	RoleManager
	MessageStore
	Messenger
}

// Responder sends the private acknowledgement of an administrator command.
type Responder interface {
	Reply(ctx context.Context, n Notice) error
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, n Notice) error

func (f ResponderFunc) Reply(ctx context.Context, n Notice) error {
	return f(ctx, n)
}
