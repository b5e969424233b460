package enforcement

import (
	"context"
	"errors"

	"discord-automod/model"

	"go.uber.org/zap"
)

type RoleOp int

const (
	RoleOpRemove RoleOp = iota
	RoleOpAdd
)

func (o RoleOp) String() string {
	if o == RoleOpAdd {
		return "add"
	}
	return "remove"
}

// RoleState is what happened to one role of a requested delta.
type RoleState int

const (
	// RoleAlreadySatisfied means the member was already in the desired state.
	RoleAlreadySatisfied RoleState = iota
	// RoleUnresolved means the role id is unset or unknown to the guild.
	RoleUnresolved
	RoleApplied
	RoleFailed
)

func (s RoleState) String() string {
	switch s {
	case RoleAlreadySatisfied:
		return "already_satisfied"
	case RoleUnresolved:
		return "unresolved"
	case RoleApplied:
		return "applied"
	case RoleFailed:
		return "failed"
	}
	return "unknown"
}

type RoleOutcome struct {
	RoleID string
	Op     RoleOp
	State  RoleState
	Err    error
}

// Attempted reports whether a platform mutation was issued for the role.
func (o RoleOutcome) Attempted() bool {
	return o.State == RoleApplied || o.State == RoleFailed
}

// RoleDelta lists roles to take away and roles to grant. Removals run first.
type RoleDelta struct {
	Remove []string
	Add    []string
}

// TransitionOutcome aggregates the per-role results of one delta.
type TransitionOutcome struct {
	Roles []RoleOutcome
}

// Find returns the outcome for roleID under op.
func (t TransitionOutcome) Find(op RoleOp, roleID string) (RoleOutcome, bool) {
	for _, o := range t.Roles {
		if o.Op == op && o.RoleID == roleID {
			return o, true
		}
	}
	return RoleOutcome{}, false
}

// Err joins every mutation error, or returns nil when nothing failed.
func (t TransitionOutcome) Err() error {
	var errs []error
	for _, o := range t.Roles {
		if o.State == RoleFailed {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

// RoleExecutor applies role deltas, attempting every mutation regardless of
// earlier failures.
type RoleExecutor struct {
	dir    MemberDirectory
	roles  RoleManager
	logger *zap.Logger
}

func NewRoleExecutor(dir MemberDirectory, roles RoleManager, logger *zap.Logger) *RoleExecutor {
	return &RoleExecutor{dir: dir, roles: roles, logger: logger}
}

// Apply mutates member towards delta using member.Roles as the current state.
func (x *RoleExecutor) Apply(ctx context.Context, member *Member, delta RoleDelta, reason string) TransitionOutcome {
	var out TransitionOutcome
	for _, roleID := range delta.Remove {
		out.Roles = append(out.Roles, x.applyOne(ctx, member, RoleOpRemove, roleID, reason))
	}
	for _, roleID := range delta.Add {
		out.Roles = append(out.Roles, x.applyOne(ctx, member, RoleOpAdd, roleID, reason))
	}
	return out
}

func (x *RoleExecutor) applyOne(ctx context.Context, member *Member, op RoleOp, roleID, reason string) RoleOutcome {
	outcome := RoleOutcome{RoleID: roleID, Op: op}
	log := x.logger.With(
		zap.String("guild_id", member.GuildID),
		zap.String("user_id", member.UserID),
		zap.String("role_id", roleID),
		zap.Stringer("op", op),
	)

	if !model.IsSet(roleID) {
		outcome.State = RoleUnresolved
		return outcome
	}
	if _, err := x.dir.Role(ctx, member.GuildID, roleID); err != nil {
		if IsNotFound(err) {
			log.Warn("Configured role does not exist in guild")
			outcome.State = RoleUnresolved
			return outcome
		}
		log.Error("Failed to look up role", zap.Error(err))
		outcome.State = RoleFailed
		outcome.Err = err
		return outcome
	}

	held := member.HasRole(roleID)
	if (op == RoleOpRemove && !held) || (op == RoleOpAdd && held) {
		outcome.State = RoleAlreadySatisfied
		return outcome
	}

	var err error
	if op == RoleOpAdd {
		err = x.roles.AddRole(ctx, member.GuildID, member.UserID, roleID, reason)
	} else {
		err = x.roles.RemoveRole(ctx, member.GuildID, member.UserID, roleID, reason)
	}
	if err != nil {
		if IsPermissionDenied(err) {
			log.Warn("Missing permissions for role change", zap.Error(err))
		} else {
			log.Error("Role change failed", zap.Error(err))
		}
		outcome.State = RoleFailed
		outcome.Err = err
		return outcome
	}

	log.Info("Role change applied")
	outcome.State = RoleApplied
	return outcome
}
