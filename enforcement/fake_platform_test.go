package enforcement

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

const (
	testGuild      = "guild"
	quarantineRole = "role-quarantine"
	restoreRole    = "role-member"
	notifyChannel  = "chan-notify"
	appealChannel  = "chan-appeal"
	notifyUser     = "user-watcher"
	testBotID      = "user-bot"
)

type sentNotice struct {
	ChannelID string
	UserID    string
	Notice    Notice
}

// fakePlatform is an in-memory guild. Failures are injected per call key,
// e.g. "delete:<message>", "add_role:<role>", "history:<channel>".
type fakePlatform struct {
	mu sync.Mutex

	members  map[string]*Member
	roles    map[string]*Role
	channels []*Channel
	history  map[string][]*Message
	fail     map[string]error

	calls        []string
	notices      []sentNotice
	historyAfter []time.Time
	timeouts     map[string]time.Time
}

func newFakePlatform() *fakePlatform {
	f := &fakePlatform{
		members: map[string]*Member{},
		roles: map[string]*Role{
			quarantineRole: {ID: quarantineRole, Name: "Quarantined", Position: 1},
			restoreRole:    {ID: restoreRole, Name: "Member", Position: 2},
		},
		history:  map[string][]*Message{},
		fail:     map[string]error{},
		timeouts: map[string]time.Time{},
	}
	f.addMember(&Member{UserID: testBotID, Username: "automod", Rank: 50, Bot: true})
	f.addChannel(notifyChannel, "mod-log")
	return f
}

func (f *fakePlatform) addMember(m *Member) *Member {
	m.GuildID = testGuild
	f.members[m.UserID] = m
	return m
}

func (f *fakePlatform) addChannel(id, name string) {
	f.channels = append(f.channels, &Channel{ID: id, GuildID: testGuild, Name: name, Position: len(f.channels)})
}

func (f *fakePlatform) addMessages(channelID string, msgs ...*Message) {
	for _, m := range msgs {
		m.GuildID = testGuild
		m.ChannelID = channelID
	}
	f.history[channelID] = append(f.history[channelID], msgs...)
}

func (f *fakePlatform) failOn(key string, err error) {
	f.fail[key] = err
}

func (f *fakePlatform) roleSet(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.members[userID].Roles) == 0 {
		return nil
	}
	roles := slices.Clone(f.members[userID].Roles)
	slices.Sort(roles)
	return roles
}

func (f *fakePlatform) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *fakePlatform) sent() []sentNotice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.notices)
}

func (f *fakePlatform) call(key string) error {
	f.calls = append(f.calls, key)
	return f.fail[key]
}

func (f *fakePlatform) Member(_ context.Context, _, userID string) (*Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["member:"+userID]; err != nil {
		return nil, err
	}
	m, ok := f.members[userID]
	if !ok {
		return nil, fmt.Errorf("member %s: %w", userID, ErrNotFound)
	}
	cp := *m
	cp.Roles = slices.Clone(m.Roles)
	return &cp, nil
}

func (f *fakePlatform) Self(ctx context.Context, guildID string) (*Member, error) {
	return f.Member(ctx, guildID, testBotID)
}

func (f *fakePlatform) Role(_ context.Context, _, roleID string) (*Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[roleID]
	if !ok {
		return nil, fmt.Errorf("role %s: %w", roleID, ErrNotFound)
	}
	return r, nil
}

func (f *fakePlatform) Channel(_ context.Context, _, channelID string) (*Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.channels {
		if c.ID == channelID {
			return c, nil
		}
	}
	return nil, fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
}

func (f *fakePlatform) Guild(_ context.Context, guildID string) (*Guild, error) {
	return &Guild{ID: guildID, Name: "Test Guild"}, nil
}

func (f *fakePlatform) AddRole(_ context.Context, _, userID, roleID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("add_role:" + roleID); err != nil {
		return err
	}
	m := f.members[userID]
	if !slices.Contains(m.Roles, roleID) {
		m.Roles = append(m.Roles, roleID)
	}
	return nil
}

func (f *fakePlatform) RemoveRole(_ context.Context, _, userID, roleID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("remove_role:" + roleID); err != nil {
		return err
	}
	m := f.members[userID]
	m.Roles = slices.DeleteFunc(m.Roles, func(r string) bool { return r == roleID })
	return nil
}

func (f *fakePlatform) TimeoutMember(_ context.Context, _, userID string, until time.Time, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("timeout:" + userID); err != nil {
		return err
	}
	f.timeouts[userID] = until
	return nil
}

func (f *fakePlatform) TextChannels(context.Context, string) ([]*Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["channels"]; err != nil {
		return nil, err
	}
	return slices.Clone(f.channels), nil
}

func (f *fakePlatform) ChannelHistory(_ context.Context, channelID string, after time.Time, limit int) ([]*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyAfter = append(f.historyAfter, after)
	if err := f.fail["history:"+channelID]; err != nil {
		return nil, err
	}
	var out []*Message
	for _, m := range f.history[channelID] {
		if m.Timestamp.After(after) {
			out = append(out, m)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakePlatform) DeleteMessage(_ context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("delete:" + messageID); err != nil {
		return err
	}
	f.history[channelID] = slices.DeleteFunc(f.history[channelID], func(m *Message) bool { return m.ID == messageID })
	return nil
}

func (f *fakePlatform) SendNotice(_ context.Context, channelID string, n Notice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("notice:" + channelID); err != nil {
		return err
	}
	f.notices = append(f.notices, sentNotice{ChannelID: channelID, Notice: n})
	return nil
}

func (f *fakePlatform) SendDirectNotice(_ context.Context, userID string, n Notice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("dm:" + userID); err != nil {
		return err
	}
	f.notices = append(f.notices, sentNotice{UserID: userID, Notice: n})
	return nil
}
