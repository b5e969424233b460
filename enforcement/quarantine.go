package enforcement

import (
	"context"
	"fmt"

	"discord-automod/model"

	"go.uber.org/zap"
)

// Quarantine moves members between the normal and quarantined states.
// A member is quarantined iff it holds the quarantine role; the state is
// always read live from the platform.
type Quarantine struct {
	dir              MemberDirectory
	exec             *RoleExecutor
	quarantineRoleID string
	// restoreRoleID is taken away on quarantine and handed back on release.
	restoreRoleID string
	logger        *zap.Logger
}

func NewQuarantine(dir MemberDirectory, exec *RoleExecutor, cfg model.ModerationConfig, logger *zap.Logger) *Quarantine {
	return &Quarantine{
		dir:              dir,
		exec:             exec,
		quarantineRoleID: cfg.QuarantineRoleID,
		restoreRoleID:    cfg.TimeoutRemoveRoleID,
		logger:           logger,
	}
}

// Enter quarantines a member. Running it on an already quarantined member
// changes nothing. Role failures are reported in the outcome, not as an error.
func (q *Quarantine) Enter(ctx context.Context, guildID, userID, reason string) (TransitionOutcome, error) {
	member, err := q.dir.Member(ctx, guildID, userID)
	if err != nil {
		return TransitionOutcome{}, fmt.Errorf("read member %s: %w", userID, err)
	}
	if reason == "" {
		reason = "User was quarantined"
	}
	out := q.exec.Apply(ctx, member, RoleDelta{
		Remove: []string{q.restoreRoleID},
		Add:    []string{q.quarantineRoleID},
	}, reason)
	if err := out.Err(); err != nil {
		q.logger.Warn("Quarantine entered with errors",
			zap.String("guild_id", guildID),
			zap.String("user_id", userID),
			zap.Error(err))
	}
	return out, nil
}

// Exit lifts the quarantine. Members without the quarantine role are left
// untouched and reported with HadRole false.
func (q *Quarantine) Exit(ctx context.Context, guildID, userID, reason string) (QuarantineTransitionResult, error) {
	member, err := q.dir.Member(ctx, guildID, userID)
	if err != nil {
		return QuarantineTransitionResult{}, fmt.Errorf("read member %s: %w", userID, err)
	}
	if !model.IsSet(q.quarantineRoleID) || !member.HasRole(q.quarantineRoleID) {
		return QuarantineTransitionResult{}, nil
	}
	if reason == "" {
		reason = "User was unquarantined"
	}

	out := q.exec.Apply(ctx, member, RoleDelta{
		Remove: []string{q.quarantineRoleID},
		Add:    []string{q.restoreRoleID},
	}, reason)

	removed, _ := out.Find(RoleOpRemove, q.quarantineRoleID)
	restored, _ := out.Find(RoleOpAdd, q.restoreRoleID)
	return QuarantineTransitionResult{
		HadRole:        true,
		FullySucceeded: removed.State == RoleApplied && restored.State != RoleFailed,
		Transition:     out,
	}, nil
}
