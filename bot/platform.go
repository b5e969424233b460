package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"discord-automod/enforcement"

	"github.com/bwmarrin/discordgo"
)

// discordEpoch is the first millisecond of 2015, the origin of snowflake ids.
const discordEpoch = 1420070400000

// Platform implements enforcement.Platform on top of a discordgo session.
// Member and role state is always read over REST; only role positions may
// come from the gateway state cache.
type Platform struct {
	session *discordgo.Session

	mu     sync.RWMutex
	selfID string
}

var _ enforcement.Platform = (*Platform)(nil)

func NewPlatform(s *discordgo.Session) *Platform {
	return &Platform{session: s}
}

// SetSelfID records the agent's user id once the gateway is ready.
func (p *Platform) SetSelfID(id string) {
	p.mu.Lock()
	p.selfID = id
	p.mu.Unlock()
}

func (p *Platform) self() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selfID
}

func (p *Platform) Member(ctx context.Context, guildID, userID string) (*enforcement.Member, error) {
	m, err := p.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(fmt.Sprintf("get member %s", userID), err)
	}
	positions, err := p.rolePositions(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return toMember(guildID, m, positions), nil
}

func (p *Platform) Self(ctx context.Context, guildID string) (*enforcement.Member, error) {
	id := p.self()
	if id == "" {
		return nil, errors.New("gateway not ready: own user id unknown")
	}
	return p.Member(ctx, guildID, id)
}

func (p *Platform) Role(ctx context.Context, guildID, roleID string) (*enforcement.Role, error) {
	roles, err := p.roles(ctx, guildID)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if r.ID == roleID {
			return &enforcement.Role{ID: r.ID, Name: r.Name, Position: r.Position}, nil
		}
	}
	return nil, fmt.Errorf("role %s: %w", roleID, enforcement.ErrNotFound)
}

func (p *Platform) Channel(ctx context.Context, guildID, channelID string) (*enforcement.Channel, error) {
	c, err := p.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(fmt.Sprintf("get channel %s", channelID), err)
	}
	if c.GuildID != guildID {
		return nil, fmt.Errorf("channel %s is not in guild %s: %w", channelID, guildID, enforcement.ErrNotFound)
	}
	return toChannel(c), nil
}

func (p *Platform) Guild(ctx context.Context, guildID string) (*enforcement.Guild, error) {
	g, err := p.session.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(fmt.Sprintf("get guild %s", guildID), err)
	}
	return &enforcement.Guild{ID: g.ID, Name: g.Name, IconURL: g.IconURL("")}, nil
}

func (p *Platform) AddRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	err := p.session.GuildMemberRoleAdd(guildID, userID, roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	return classify(fmt.Sprintf("add role %s to %s", roleID, userID), err)
}

func (p *Platform) RemoveRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	err := p.session.GuildMemberRoleRemove(guildID, userID, roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	return classify(fmt.Sprintf("remove role %s from %s", roleID, userID), err)
}

func (p *Platform) TimeoutMember(ctx context.Context, guildID, userID string, until time.Time, reason string) error {
	err := p.session.GuildMemberTimeout(guildID, userID, &until,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	return classify(fmt.Sprintf("timeout %s", userID), err)
}

func (p *Platform) TextChannels(ctx context.Context, guildID string) ([]*enforcement.Channel, error) {
	channels, err := p.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("list channels", err)
	}
	var out []*enforcement.Channel
	for _, c := range channels {
		if c.Type == discordgo.ChannelTypeGuildText || c.Type == discordgo.ChannelTypeGuildNews {
			out = append(out, toChannel(c))
		}
	}
	slices.SortStableFunc(out, func(a, b *enforcement.Channel) int {
		return a.Position - b.Position
	})
	return out, nil
}

func (p *Platform) ChannelHistory(ctx context.Context, channelID string, after time.Time, limit int) ([]*enforcement.Message, error) {
	msgs, err := p.session.ChannelMessages(channelID, limit, "", SnowflakeAt(after), "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(fmt.Sprintf("read history of %s", channelID), err)
	}
	out := make([]*enforcement.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Timestamp.After(after) {
			out = append(out, ToMessage(m))
		}
	}
	slices.SortStableFunc(out, func(a, b *enforcement.Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out, nil
}

func (p *Platform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	err := p.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
	return classify(fmt.Sprintf("delete message %s", messageID), err)
}

func (p *Platform) SendNotice(ctx context.Context, channelID string, n enforcement.Notice) error {
	_, err := p.session.ChannelMessageSendComplex(channelID, RenderNotice(n), discordgo.WithContext(ctx))
	return classify(fmt.Sprintf("send to %s", channelID), err)
}

func (p *Platform) SendDirectNotice(ctx context.Context, userID string, n enforcement.Notice) error {
	dm, err := p.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return classify(fmt.Sprintf("open DM with %s", userID), err)
	}
	_, err = p.session.ChannelMessageSendComplex(dm.ID, RenderNotice(n), discordgo.WithContext(ctx))
	return classify(fmt.Sprintf("send DM to %s", userID), err)
}

func (p *Platform) roles(ctx context.Context, guildID string) ([]*discordgo.Role, error) {
	if p.session.StateEnabled && p.session.State != nil {
		if g, err := p.session.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
			return g.Roles, nil
		}
	}
	roles, err := p.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("list roles", err)
	}
	return roles, nil
}

func (p *Platform) rolePositions(ctx context.Context, guildID string) (map[string]int, error) {
	roles, err := p.roles(ctx, guildID)
	if err != nil {
		return nil, err
	}
	positions := make(map[string]int, len(roles))
	for _, r := range roles {
		positions[r.ID] = r.Position
	}
	return positions, nil
}

// classify wraps err so callers can tell missing privileges and unknown ids
// apart from other failures.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Message != nil {
			switch restErr.Message.Code {
			case discordgo.ErrCodeMissingAccess, discordgo.ErrCodeMissingPermissions:
				return fmt.Errorf("%s: %w: %w", op, enforcement.ErrPermissionDenied, err)
			}
		}
		if restErr.Response != nil {
			switch restErr.Response.StatusCode {
			case http.StatusForbidden:
				return fmt.Errorf("%s: %w: %w", op, enforcement.ErrPermissionDenied, err)
			case http.StatusNotFound:
				return fmt.Errorf("%s: %w: %w", op, enforcement.ErrNotFound, err)
			}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// SnowflakeAt returns the smallest snowflake id created at t.
func SnowflakeAt(t time.Time) string {
	ms := t.UnixMilli() - discordEpoch
	if ms < 0 {
		ms = 0
	}
	return strconv.FormatInt(ms<<22, 10)
}

// ToMessage converts a gateway or REST message.
func ToMessage(m *discordgo.Message) *enforcement.Message {
	msg := &enforcement.Message{
		ID:        m.ID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	if m.Author != nil {
		msg.Author = enforcement.User{ID: m.Author.ID, Username: m.Author.Username, Bot: m.Author.Bot}
	}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, enforcement.Attachment{URL: a.URL})
	}
	switch m.Type {
	case discordgo.MessageTypeDefault, discordgo.MessageTypeReply:
		msg.Type = enforcement.MessageTypeDefault
	case discordgo.MessageTypeGuildMemberJoin:
		msg.Type = enforcement.MessageTypeMemberJoin
	default:
		msg.Type = enforcement.MessageTypeOther
	}
	return msg
}

func toMember(guildID string, m *discordgo.Member, positions map[string]int) *enforcement.Member {
	member := &enforcement.Member{
		GuildID: guildID,
		Roles:   slices.Clone(m.Roles),
	}
	if m.User != nil {
		member.UserID = m.User.ID
		member.Username = m.User.Username
		member.Bot = m.User.Bot
	}
	for _, id := range m.Roles {
		member.Rank = max(member.Rank, positions[id])
	}
	return member
}

func toChannel(c *discordgo.Channel) *enforcement.Channel {
	return &enforcement.Channel{ID: c.ID, GuildID: c.GuildID, Name: c.Name, Position: c.Position}
}
