package enforcement

import "time"

// MessageType distinguishes regular messages from platform system messages.
type MessageType int

const (
	MessageTypeDefault MessageType = iota
	// MessageTypeMemberJoin is the synthetic "member joined" system message.
	// Purges never delete it.
	MessageTypeMemberJoin
	MessageTypeOther
)

// User is the author identity attached to a message.
type User struct {
	ID       string
	Username string
	Bot      bool
}

// Member is a user within a guild as read live from the platform.
type Member struct {
	GuildID  string
	UserID   string
	Username string
	Roles    []string
	// Rank is the position of the member's highest role. Higher outranks lower.
	Rank int
	Bot  bool
}

// HasRole reports whether the member currently holds roleID.
func (m *Member) HasRole(roleID string) bool {
	for _, r := range m.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

type Role struct {
	ID       string
	Name     string
	Position int
}

type Channel struct {
	ID       string
	GuildID  string
	Name     string
	Position int
}

type Guild struct {
	ID      string
	Name    string
	IconURL string
}

type Attachment struct {
	URL string
}

// Message is an observed chat message. It is never modified, only deleted.
type Message struct {
	ID          string
	GuildID     string
	ChannelID   string
	Author      User
	Content     string
	Attachments []Attachment
	Type        MessageType
	Timestamp   time.Time
}

// DeletionLogEntry records one message removed by a purge.
type DeletionLogEntry struct {
	ChannelID   string
	ChannelName string
	Summary     string
}

// QuarantineTransitionResult is the outcome of lifting a quarantine.
type QuarantineTransitionResult struct {
	HadRole        bool
	FullySucceeded bool
	Transition     TransitionOutcome
}
