package bot

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"discord-automod/enforcement"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restError(status, code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status},
		Message:  &discordgo.APIErrorMessage{Code: code, Message: "rejected"},
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		permission bool
		notFound   bool
	}{
		{"nil", nil, false, false},
		{"forbidden status", restError(http.StatusForbidden, 0), true, false},
		{"missing access code", restError(http.StatusBadRequest, discordgo.ErrCodeMissingAccess), true, false},
		{"missing permissions code", restError(http.StatusBadRequest, discordgo.ErrCodeMissingPermissions), true, false},
		{"not found", restError(http.StatusNotFound, discordgo.ErrCodeUnknownMessage), false, true},
		{"server error", restError(http.StatusInternalServerError, 0), false, false},
		{"transport", errors.New("connection reset"), false, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := classify("op", tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			require.Error(t, got)
			assert.Equal(t, tt.permission, enforcement.IsPermissionDenied(got))
			assert.Equal(t, tt.notFound, enforcement.IsNotFound(got))
			assert.ErrorIs(t, got, tt.err)
			assert.Contains(t, got.Error(), "op: ")
		})
	}
}

func TestSnowflakeAt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", SnowflakeAt(time.UnixMilli(discordEpoch)))
	assert.Equal(t, "0", SnowflakeAt(time.UnixMilli(0)))
	// One second after the epoch.
	assert.Equal(t, "4194304000", SnowflakeAt(time.UnixMilli(discordEpoch+1000)))
}

func TestToMessage(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := ToMessage(&discordgo.Message{
		ID:          "m1",
		GuildID:     "g1",
		ChannelID:   "c1",
		Content:     "hello",
		Timestamp:   ts,
		Type:        discordgo.MessageTypeReply,
		Author:      &discordgo.User{ID: "u1", Username: "alice"},
		Attachments: []*discordgo.MessageAttachment{{URL: "https://cdn/a.png"}},
	})

	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "g1", msg.GuildID)
	assert.Equal(t, "c1", msg.ChannelID)
	assert.Equal(t, enforcement.User{ID: "u1", Username: "alice"}, msg.Author)
	assert.Equal(t, enforcement.MessageTypeDefault, msg.Type)
	assert.Equal(t, []enforcement.Attachment{{URL: "https://cdn/a.png"}}, msg.Attachments)
	assert.Equal(t, ts, msg.Timestamp)

	join := ToMessage(&discordgo.Message{Type: discordgo.MessageTypeGuildMemberJoin})
	assert.Equal(t, enforcement.MessageTypeMemberJoin, join.Type)

	pin := ToMessage(&discordgo.Message{Type: discordgo.MessageTypeChannelPinnedMessage})
	assert.Equal(t, enforcement.MessageTypeOther, pin.Type)
}

func TestToMember(t *testing.T) {
	t.Parallel()

	m := toMember("g1", &discordgo.Member{
		User:  &discordgo.User{ID: "u1", Username: "alice", Bot: true},
		Roles: []string{"low", "high", "gone"},
	}, map[string]int{"low": 2, "high": 9})

	assert.Equal(t, "g1", m.GuildID)
	assert.Equal(t, "u1", m.UserID)
	assert.True(t, m.Bot)
	assert.Equal(t, 9, m.Rank)
	assert.Equal(t, []string{"low", "high", "gone"}, m.Roles)
}
