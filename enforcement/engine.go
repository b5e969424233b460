package enforcement

import (
	"context"
	"fmt"
	"time"

	"discord-automod/model"

	"go.uber.org/zap"
)

const automodReason = "Automod: Forbidden content detected"

// Engine runs the automod sequence on inbound messages and the administrator
// moderation commands. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	platform   Platform
	cfg        model.ModerationConfig
	scanner    *ContentScanner
	roles      *RoleExecutor
	quarantine *Quarantine
	purger     *PurgeScanner
	now        func() time.Time
	logger     *zap.Logger
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
		e.purger.now = now
	}
}

// WithPause replaces the wait used between purge deletions.
func WithPause(pause func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Engine) {
		e.purger.pause = pause
	}
}

// New builds an engine. It fails only if a forbidden pattern does not compile.
func New(platform Platform, cfg model.ModerationConfig, logger *zap.Logger, opts ...Option) (*Engine, error) {
	scanner, err := NewContentScanner(cfg.ForbiddenRegexes)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fetchLimit := cfg.FetchLimit
	if fetchLimit <= 0 {
		fetchLimit = DefaultFetchLimit
	}

	roles := NewRoleExecutor(platform, platform, logger.Named("roles"))
	e := &Engine{
		platform:   platform,
		cfg:        cfg,
		scanner:    scanner,
		roles:      roles,
		quarantine: NewQuarantine(platform, roles, cfg, logger.Named("quarantine")),
		purger: &PurgeScanner{
			store:       platform,
			maxHours:    cfg.MaxLookbackHours,
			fetchLimit:  fetchLimit,
			deleteDelay: max(cfg.DeleteDelay, 0),
			now:         time.Now,
			pause:       sleepContext,
			logger:      logger.Named("purge"),
		},
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the moderation settings the engine was built with.
func (e *Engine) Config() model.ModerationConfig {
	return e.cfg
}

// PatternCount returns the number of forbidden patterns in use.
func (e *Engine) PatternCount() int {
	return e.scanner.Len()
}

// OnMessage checks an inbound message and, on the first matching pattern,
// deletes it, reports it, quarantines the author and tells them why.
// It returns nil when nothing was done.
func (e *Engine) OnMessage(ctx context.Context, msg *Message) *EnforcementReport {
	if msg.GuildID == "" || msg.Author.Bot {
		return nil
	}

	// Scanning is pure, so it runs before the member lookups the bypass needs.
	match, ok := e.scanner.Scan(msg.Content)
	if !ok {
		return nil
	}

	log := e.logger.With(
		zap.String("guild_id", msg.GuildID),
		zap.String("channel_id", msg.ChannelID),
		zap.String("user_id", msg.Author.ID),
		zap.String("message_id", msg.ID),
	)

	author, exempt, err := e.exempt(ctx, msg)
	if err != nil {
		log.Error("[AUTOMOD] Could not evaluate bypass, leaving message alone", zap.Error(err))
		return nil
	}
	if exempt {
		return nil
	}

	log.Info("[AUTOMOD] Forbidden content detected", zap.Int("pattern", match.Index))
	report := &EnforcementReport{Message: msg, Match: match}

	if err := e.platform.DeleteMessage(ctx, msg.ChannelID, msg.ID); err != nil {
		log.Warn("[AUTOMOD] Failed to delete message", zap.Error(err))
		report.record(StepDeleteMessage, StepFailed, err)
	} else {
		log.Info("[AUTOMOD] Message deleted")
		report.record(StepDeleteMessage, StepSucceeded, nil)
	}

	sent, err := e.sendAudit(ctx, msg.GuildID, AutomodNotice{
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		AuthorID:  msg.Author.ID,
		Content:   msg.Content,
		Pattern:   match.Pattern,
		At:        e.now(),
	})
	switch {
	case err != nil:
		log.Warn("[AUTOMOD] Failed to send log embed", zap.Error(err))
		report.record(StepAuditNotice, StepFailed, err)
	case !sent:
		log.Info("[AUTOMOD] Notify channel not found")
		report.record(StepAuditNotice, StepSkipped, nil)
	default:
		log.Info("[AUTOMOD] Log embed sent to notify channel")
		report.record(StepAuditNotice, StepSucceeded, nil)
	}

	if author == nil {
		report.record(StepAddQuarantineRole, StepSkipped, nil)
		report.record(StepEnterQuarantine, StepSkipped, nil)
	} else {
		out := e.roles.Apply(ctx, author, RoleDelta{Add: []string{e.cfg.QuarantineRoleID}}, automodReason)
		added, _ := out.Find(RoleOpAdd, e.cfg.QuarantineRoleID)
		switch added.State {
		case RoleApplied:
			log.Info("[AUTOMOD] Quarantined role added")
			report.record(StepAddQuarantineRole, StepSucceeded, nil)
		case RoleFailed:
			report.record(StepAddQuarantineRole, StepFailed, added.Err)
		default:
			log.Info("[AUTOMOD] Quarantine role missing or already present")
			report.record(StepAddQuarantineRole, StepSkipped, nil)
		}

		transition, err := e.quarantine.Enter(ctx, msg.GuildID, msg.Author.ID, automodReason)
		if err == nil {
			err = transition.Err()
		}
		if err != nil {
			report.record(StepEnterQuarantine, StepFailed, err)
		} else {
			report.record(StepEnterQuarantine, StepSucceeded, nil)
		}
	}

	notice := SanctionNotice{
		GuildID:         msg.GuildID,
		AppealChannelID: e.cfg.QuarantineChannelID,
		Content:         msg.Content,
		Footer:          e.cfg.FooterText,
		At:              e.now(),
	}
	if guild, err := e.platform.Guild(ctx, msg.GuildID); err == nil {
		notice.GuildName = guild.Name
		notice.GuildIconURL = guild.IconURL
	} else {
		log.Debug("[AUTOMOD] Guild lookup failed, sending notice without guild details", zap.Error(err))
	}
	if err := e.platform.SendDirectNotice(ctx, msg.Author.ID, notice); err != nil {
		log.Info("[AUTOMOD] Could not send DM to user", zap.Error(err))
		report.record(StepDirectNotice, StepFailed, err)
	} else {
		log.Info("[AUTOMOD] DM sent to user")
		report.record(StepDirectNotice, StepSucceeded, nil)
	}

	return report
}

// exempt reports whether the author skips automod: bots and members ranked
// at or above the agent itself. Authors that are not guild members (webhooks)
// are not exempt and come back as a nil member.
func (e *Engine) exempt(ctx context.Context, msg *Message) (*Member, bool, error) {
	author, err := e.platform.Member(ctx, msg.GuildID, msg.Author.ID)
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read author: %w", err)
	}
	if author.Bot {
		return author, true, nil
	}
	self, err := e.platform.Self(ctx, msg.GuildID)
	if err != nil {
		return nil, false, fmt.Errorf("read own member: %w", err)
	}
	return author, author.Rank >= self.Rank, nil
}

// notifyChannel resolves the configured audit channel. ok is false when it is
// unset or gone.
func (e *Engine) notifyChannel(ctx context.Context, guildID string) (string, bool, error) {
	if !model.IsSet(e.cfg.NotifyChannelID) {
		return "", false, nil
	}
	channel, err := e.platform.Channel(ctx, guildID, e.cfg.NotifyChannelID)
	if err != nil {
		if IsNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return channel.ID, true, nil
}

// sendAudit posts n to the audit channel. sent is false when no channel is
// configured.
func (e *Engine) sendAudit(ctx context.Context, guildID string, n Notice) (bool, error) {
	channelID, ok, err := e.notifyChannel(ctx, guildID)
	if err != nil || !ok {
		return false, err
	}
	if err := e.platform.SendNotice(ctx, channelID, n); err != nil {
		return false, err
	}
	return true, nil
}
