package enforcement

import (
	"regexp"
	"strings"
	"time"
)

// Notice is data for a human-readable message. Rendering happens in the
// platform adapter.
type Notice interface {
	notice()
}

// AutomodNotice is posted to the audit channel after forbidden content was found.
type AutomodNotice struct {
	GuildID   string
	ChannelID string
	AuthorID  string
	Content   string
	Pattern   string
	At        time.Time
}

// SanctionNotice is sent privately to a member who was quarantined by automod.
type SanctionNotice struct {
	GuildID         string
	GuildName       string
	GuildIconURL    string
	AppealChannelID string
	Content         string
	Footer          string
	At              time.Time
}

// PurgeSummary describes a finished purge. It is the private reply to the
// invoker and the body of the audit notice.
type PurgeSummary struct {
	TargetID      string
	Deleted       int
	LookbackHours int
	TimeoutHours  int
}

// PurgeAuditNotice announces a purge in the audit channel.
type PurgeAuditNotice struct {
	Summary   PurgeSummary
	InvokerID string
}

// DeletionLogNotice lists the messages removed by a purge.
type DeletionLogNotice struct {
	TargetID string
	Text     string
	At       time.Time
}

// ModeratorPingNotice pings the member that follows moderation events.
type ModeratorPingNotice struct {
	UserID string
}

func (AutomodNotice) notice()       {}
func (SanctionNotice) notice()      {}
func (PurgeSummary) notice()        {}
func (PurgeAuditNotice) notice()    {}
func (DeletionLogNotice) notice()   {}
func (ModeratorPingNotice) notice() {}

const (
	// DeletionLogBudget is the character budget of a deletion log notice.
	DeletionLogBudget = 4000
	truncationMarker  = "... (truncated)"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// BuildDeletionLog renders entries one per line and cuts the result down to
// budget characters.
func BuildDeletionLog(entries []DeletionLogEntry, budget int) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, "`#"+e.ChannelName+"` "+whitespaceRun.ReplaceAllString(e.Summary, " "))
	}
	text := strings.Join(lines, "\n")

	runes := []rune(text)
	if len(runes) > budget {
		cut := max(budget-20, 0)
		text = string(runes[:cut]) + truncationMarker
	}
	return text
}
