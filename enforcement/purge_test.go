package enforcement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msgAt(id, author string, age time.Duration, content string) *Message {
	return &Message{
		ID:        id,
		Author:    User{ID: author},
		Content:   content,
		Timestamp: testNow.Add(-age),
	}
}

func TestPurgeDeletesOnlyTargetMessagesInWindow(t *testing.T) {
	t.Parallel()
	f := newFakePlatform()
	f.addChannel("chan-general", "general")
	f.addMessages("chan-general",
		msgAt("old", "target", 2*time.Hour, "outside the window"),
		msgAt("m1", "target", 50*time.Minute, "one"),
		msgAt("o1", "other", 40*time.Minute, "not mine"),
		msgAt("m2", "target", 30*time.Minute, "two"),
		msgAt("o2", "other", 20*time.Minute, "also not mine"),
		msgAt("m3", "target", 10*time.Minute, "three"),
	)
	e, pauses := newTestEngine(t, f, testConfig())

	entries, err := e.purger.Purge(context.Background(), testGuild, "target", 1)
	require.NoError(t, err)

	assert.Len(t, entries, 3)
	assert.Equal(t, []string{"delete:m1", "delete:m2", "delete:m3"}, f.callLog())
	assert.Equal(t, []string{"one", "two", "three"}, []string{entries[0].Summary, entries[1].Summary, entries[2].Summary})
	assert.Equal(t, "general", entries[0].ChannelName)
	assert.Len(t, f.history["chan-general"], 3, "old target message and two foreign messages survive")
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 200 * time.Millisecond, 200 * time.Millisecond}, *pauses)
}

func TestPurgeSkipsMemberJoinMessages(t *testing.T) {
	t.Parallel()
	f := newFakePlatform()
	f.addChannel("chan-welcome", "welcome")
	join := msgAt("join", "target", time.Minute, "")
	join.Type = MessageTypeMemberJoin
	f.addMessages("chan-welcome", join, msgAt("m1", "target", time.Minute, "hi"))
	e, _ := newTestEngine(t, f, testConfig())

	entries, err := e.purger.Purge(context.Background(), testGuild, "target", 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, []string{"delete:m1"}, f.callLog())
}

func TestPurgeClampsLookback(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		hours int
		want  time.Time
	}{
		{name: "far above max", hours: 24 + 1000, want: testNow.Add(-24 * time.Hour)},
		{name: "at max", hours: 24, want: testNow.Add(-24 * time.Hour)},
		{name: "negative", hours: -5, want: testNow},
		{name: "within range", hours: 3, want: testNow.Add(-3 * time.Hour)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFakePlatform()
			e, _ := newTestEngine(t, f, testConfig())

			_, err := e.purger.Purge(context.Background(), testGuild, "target", tt.hours)
			require.NoError(t, err)
			require.NotEmpty(t, f.historyAfter)
			for _, after := range f.historyAfter {
				assert.Equal(t, tt.want, after)
			}
		})
	}
}

func TestPurgeRespectsFetchLimit(t *testing.T) {
	t.Parallel()
	f := newFakePlatform()
	f.addChannel("chan-busy", "busy")
	f.addMessages("chan-busy",
		msgAt("m1", "target", 30*time.Minute, "1"),
		msgAt("m2", "target", 20*time.Minute, "2"),
		msgAt("m3", "target", 10*time.Minute, "3"),
	)
	cfg := testConfig()
	cfg.FetchLimit = 2
	e, _ := newTestEngine(t, f, cfg)

	entries, err := e.purger.Purge(context.Background(), testGuild, "target", 1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "m3", f.history["chan-busy"][0].ID)
}

func TestPurgePermissionErrorsAreIsolatedPerChannel(t *testing.T) {
	t.Parallel()
	f := newFakePlatform()
	f.addChannel("chan-staff", "staff")
	f.addChannel("chan-locked", "locked")
	f.addChannel("chan-general", "general")
	f.addMessages("chan-staff", msgAt("s1", "target", time.Minute, "a"), msgAt("s2", "target", time.Minute, "b"))
	f.addMessages("chan-locked", msgAt("l1", "target", time.Minute, "c"))
	f.addMessages("chan-general", msgAt("g1", "target", time.Minute, "d"))
	f.failOn("delete:s1", fmt.Errorf("delete: %w", ErrPermissionDenied))
	f.failOn("history:chan-locked", fmt.Errorf("history: %w", ErrPermissionDenied))
	e, _ := newTestEngine(t, f, testConfig())

	entries, err := e.purger.Purge(context.Background(), testGuild, "target", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "general", entries[0].ChannelName)
	assert.Equal(t, []string{"delete:s1", "delete:g1"}, f.callLog(), "rest of the staff channel is skipped")
}

func TestPurgeAbortsOnUnexpectedError(t *testing.T) {
	t.Parallel()
	f := newFakePlatform()
	f.addChannel("chan-a", "a")
	f.addChannel("chan-b", "b")
	f.addMessages("chan-b", msgAt("b1", "target", time.Minute, "x"))
	boom := errors.New("internal server error")
	f.failOn("history:chan-a", boom)
	e, _ := newTestEngine(t, f, testConfig())

	_, err := e.purger.Purge(context.Background(), testGuild, "target", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, f.callLog(), "later channels are not touched")
}

func TestPurgeToleratesAlreadyDeletedMessages(t *testing.T) {
	t.Parallel()
	f := newFakePlatform()
	f.addChannel("chan-a", "a")
	f.addMessages("chan-a", msgAt("gone", "target", time.Minute, "x"), msgAt("m1", "target", time.Minute, "y"))
	f.failOn("delete:gone", fmt.Errorf("delete: %w", ErrNotFound))
	e, pauses := newTestEngine(t, f, testConfig())

	entries, err := e.purger.Purge(context.Background(), testGuild, "target", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "y", entries[0].Summary)
	assert.Len(t, *pauses, 1)
}

func TestSummarizeMessage(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("é", 250)
	tests := []struct {
		name string
		msg  *Message
		want string
	}{
		{name: "plain", msg: &Message{Content: "  hello  "}, want: "hello"},
		{name: "blank", msg: &Message{Content: "   "}, want: "*empty*"},
		{name: "truncated", msg: &Message{Content: long}, want: strings.Repeat("é", 200)},
		{
			name: "attachments",
			msg: &Message{
				Content:     "look",
				Attachments: []Attachment{{URL: "https://cdn/a.png"}, {URL: "https://cdn/b.png"}},
			},
			want: "look [attachment: https://cdn/a.png] [attachment: https://cdn/b.png]",
		},
		{
			name: "attachment only",
			msg:  &Message{Attachments: []Attachment{{URL: "https://cdn/a.png"}}},
			want: "*empty* [attachment: https://cdn/a.png]",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, summarizeMessage(tt.msg))
		})
	}
}

func TestBuildDeletionLog(t *testing.T) {
	t.Parallel()

	t.Run("collapses whitespace", func(t *testing.T) {
		t.Parallel()
		got := BuildDeletionLog([]DeletionLogEntry{
			{ChannelName: "general", Summary: "multi\nline   text"},
			{ChannelName: "memes", Summary: "*empty* [attachment: x]"},
		}, DeletionLogBudget)
		assert.Equal(t, "`#general` multi line text\n`#memes` *empty* [attachment: x]", got)
	})

	t.Run("truncates to budget", func(t *testing.T) {
		t.Parallel()
		entries := make([]DeletionLogEntry, 50)
		for i := range entries {
			entries[i] = DeletionLogEntry{ChannelName: "general", Summary: strings.Repeat("x", 200)}
		}
		got := BuildDeletionLog(entries, DeletionLogBudget)
		assert.True(t, strings.HasSuffix(got, "... (truncated)"))
		assert.Equal(t, DeletionLogBudget-20+len("... (truncated)"), len([]rune(got)))
	})
}

func TestClampHours(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, ClampHours(-1, 24))
	assert.Equal(t, 5, ClampHours(5, 24))
	assert.Equal(t, 24, ClampHours(1024, 24))
	assert.Equal(t, 0, ClampHours(3, -1))
}
