package enforcement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"discord-automod/model"

	"go.uber.org/zap"
)

// MaxTimeoutHours is the longest timeout the platform accepts (28 days).
const MaxTimeoutHours = 28 * 24

// PurgeRequest is a validated purge-recent-messages invocation. Nil hours
// fall back to the configured defaults.
type PurgeRequest struct {
	GuildID       string
	InvokerID     string
	TargetID      string
	LookbackHours *int
	TimeoutHours  *int
}

// PurgeResult is what a completed purge did.
type PurgeResult struct {
	Summary PurgeSummary
	Entries []DeletionLogEntry
}

// PurgeRecentMessages optionally times out the target, then deletes their
// messages from the lookback window in every text channel. The invoker gets
// the summary through reply before anything is posted to the audit channel.
func (e *Engine) PurgeRecentMessages(ctx context.Context, req PurgeRequest, reply Responder) (*PurgeResult, error) {
	log := e.logger.With(
		zap.String("guild_id", req.GuildID),
		zap.String("invoker_id", req.InvokerID),
		zap.String("user_id", req.TargetID),
	)

	invoker, target, err := e.members(ctx, req.GuildID, req.InvokerID, req.TargetID)
	if err != nil {
		return nil, err
	}
	if target.Rank >= invoker.Rank {
		return nil, invalid(ErrTargetOutranks, target.UserID)
	}
	if target.Bot {
		return nil, invalid(ErrTargetIsBot, target.UserID)
	}

	hours := ClampHours(valueOr(req.LookbackHours, e.cfg.DefaultLookbackHours), e.cfg.MaxLookbackHours)
	timeoutHours := ClampHours(valueOr(req.TimeoutHours, e.cfg.DefaultTimeoutHours), e.timeoutCap())

	if timeoutHours > 0 {
		until := e.now().Add(time.Duration(timeoutHours) * time.Hour)
		reason := fmt.Sprintf("Timed out by %s", invoker.Username)
		if err := e.platform.TimeoutMember(ctx, req.GuildID, target.UserID, until, reason); err != nil {
			if IsPermissionDenied(err) {
				return nil, fmt.Errorf("%w: %w", ErrTimeoutForbidden, err)
			}
			return nil, fmt.Errorf("timeout member: %w", err)
		}
		log.Info("Member timed out", zap.Int("hours", timeoutHours), zap.Time("until", until))

		if _, err := e.quarantine.Enter(ctx, req.GuildID, target.UserID, ""); err != nil {
			log.Warn("Failed to quarantine timed out member", zap.Error(err))
		}
	}

	entries, err := e.purger.Purge(ctx, req.GuildID, target.UserID, hours)
	if err != nil {
		return nil, fmt.Errorf("delete messages: %w", err)
	}

	result := &PurgeResult{
		Summary: PurgeSummary{
			TargetID:      target.UserID,
			Deleted:       len(entries),
			LookbackHours: hours,
			TimeoutHours:  timeoutHours,
		},
		Entries: entries,
	}

	if err := reply.Reply(ctx, result.Summary); err != nil {
		log.Warn("Failed to reply to invoker", zap.Error(err))
	}

	if len(entries) == 0 && timeoutHours == 0 {
		return result, nil
	}
	e.announcePurge(ctx, log, req, result)
	return result, nil
}

func (e *Engine) announcePurge(ctx context.Context, log *zap.Logger, req PurgeRequest, result *PurgeResult) {
	channelID, ok, err := e.notifyChannel(ctx, req.GuildID)
	if err != nil {
		log.Warn("Failed to resolve notify channel", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	if err := e.platform.SendNotice(ctx, channelID, PurgeAuditNotice{
		Summary:   result.Summary,
		InvokerID: req.InvokerID,
	}); err != nil {
		log.Warn("Failed to send purge audit notice", zap.Error(err))
	}

	if len(result.Entries) > 0 {
		if err := e.platform.SendNotice(ctx, channelID, DeletionLogNotice{
			TargetID: result.Summary.TargetID,
			Text:     BuildDeletionLog(result.Entries, DeletionLogBudget),
			At:       e.now(),
		}); err != nil {
			log.Warn("Failed to send log embed", zap.Error(err))
		}
	}

	if !model.IsSet(e.cfg.NotifyUserID) {
		return
	}
	if _, err := e.platform.Member(ctx, req.GuildID, e.cfg.NotifyUserID); err != nil {
		if !IsNotFound(err) {
			log.Warn("Failed to look up notify user", zap.Error(err))
		}
		return
	}
	if err := e.platform.SendNotice(ctx, channelID, ModeratorPingNotice{UserID: e.cfg.NotifyUserID}); err != nil {
		log.Warn("Failed to ping notify user", zap.Error(err))
	}
}

// LiftRequest is a validated lift-quarantine invocation.
type LiftRequest struct {
	GuildID   string
	InvokerID string
	TargetID  string
}

type LiftOutcome int

const (
	// LiftNoRole means the target was not quarantined; nothing changed.
	LiftNoRole LiftOutcome = iota
	// LiftPartial means at least one role change failed and the member's
	// roles may be inconsistent.
	LiftPartial
	LiftSucceeded
)

func (o LiftOutcome) String() string {
	switch o {
	case LiftNoRole:
		return "no_role"
	case LiftPartial:
		return "partial"
	case LiftSucceeded:
		return "succeeded"
	}
	return "unknown"
}

// LiftQuarantine releases a quarantined member. Members cannot release themselves.
func (e *Engine) LiftQuarantine(ctx context.Context, req LiftRequest) (LiftOutcome, error) {
	if req.InvokerID == req.TargetID {
		return LiftNoRole, invalid(ErrSelfTarget, req.TargetID)
	}

	res, err := e.quarantine.Exit(ctx, req.GuildID, req.TargetID, "")
	if err != nil {
		if IsNotFound(err) {
			return LiftNoRole, invalid(ErrTargetNotMember, req.TargetID)
		}
		return LiftNoRole, err
	}

	switch {
	case !res.HadRole:
		return LiftNoRole, nil
	case !res.FullySucceeded:
		e.logger.Warn("Quarantine lifted with errors",
			zap.String("guild_id", req.GuildID),
			zap.String("user_id", req.TargetID),
			zap.Error(res.Transition.Err()))
		return LiftPartial, nil
	}
	e.logger.Info("Quarantine lifted",
		zap.String("guild_id", req.GuildID),
		zap.String("invoker_id", req.InvokerID),
		zap.String("user_id", req.TargetID))
	return LiftSucceeded, nil
}

// members reads the invoker and the target of a command.
func (e *Engine) members(ctx context.Context, guildID, invokerID, targetID string) (*Member, *Member, error) {
	invoker, err := e.platform.Member(ctx, guildID, invokerID)
	if err != nil {
		return nil, nil, fmt.Errorf("read invoker: %w", err)
	}
	target, err := e.platform.Member(ctx, guildID, targetID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, invalid(ErrTargetNotMember, targetID)
		}
		return nil, nil, fmt.Errorf("read target: %w", err)
	}
	return invoker, target, nil
}

// timeoutCap is the configured cap, never above what the platform allows.
// A cap of 0 disables timeouts.
func (e *Engine) timeoutCap() int {
	return min(e.cfg.TimeoutCapHours, MaxTimeoutHours)
}

func valueOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
