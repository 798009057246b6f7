package campus

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Requirement names the role gate a route or operation demands
type Requirement = string

const (
	// RequireAuthenticated passes for any authenticated principal
	RequireAuthenticated Requirement = "authenticated"
	// RequireManagerOrAdmin passes for managers and admins
	RequireManagerOrAdmin Requirement = "manager_or_admin"
	// RequireAdmin passes for admins only
	RequireAdmin Requirement = "admin_only"
)

// RoleAllows is the pure system role gate
func RoleAllows(role UserRole, req Requirement) bool {
	switch req {
	case RequireAuthenticated:
		return IsValidRole(role)
	case RequireManagerOrAdmin:
		return role == RoleManager || role == RoleAdmin
	case RequireAdmin:
		return role == RoleAdmin
	default:
		return false
	}
}

// EnsureRole converts a failed gate into the forbidden outcome
func EnsureRole(role UserRole, req Requirement) error {
	if RoleAllows(role, req) {
		return nil
	}
	return ErrRoleInsufficient
}

// EnsureNotSelf blocks principals from targeting their own account for role
// changes, disabling, or deletion. The policy enforces this, not the route
// layer, and role sufficiency never overrides it.
func EnsureNotSelf(actorID, targetID string) error {
	if actorID != "" && actorID == targetID {
		return ErrSelfActionForbidden
	}
	return nil
}

// CanManageGroups reports whether a system role may create, mutate, or delete
// groups and their memberships
func CanManageGroups(role UserRole) bool {
	return role == RoleAdmin || role == RoleManager
}

// GuardOwnerDemotion enforces the last owner invariant for a role change.
// Callers must run this inside the same transaction that applies the change:
// two concurrent demotions may otherwise both observe "another owner exists".
func GuardOwnerDemotion(current, next MembershipRole, otherOwners int) error {
	if current != MembershipOwner || next == MembershipOwner {
		return nil
	}
	if otherOwners < 1 {
		return ErrLastOwnerProtected
	}
	return nil
}

// GuardOwnerRemoval enforces the last owner invariant for a removal
func GuardOwnerRemoval(current MembershipRole, otherOwners int) error {
	if current != MembershipOwner {
		return nil
	}
	if otherOwners < 1 {
		return ErrLastOwnerProtected
	}
	return nil
}

// MembershipReader is what the group access gate needs from the store
type MembershipReader interface {
	FindMembership(ctx context.Context, userID, groupID uuid.UUID) (*GroupMembership, error)
}

// GroupPolicy decides group level access for a resolved principal
type GroupPolicy struct {
	memberships MembershipReader
}

// NewGroupPolicy creates a GroupPolicy over a membership store
func NewGroupPolicy(memberships MembershipReader) *GroupPolicy {
	return &GroupPolicy{memberships: memberships}
}

// HasGroupAccess is true for managers and admins, and for plain users that
// hold a membership in the group
func (p *GroupPolicy) HasGroupAccess(ctx context.Context, identity Identity, groupID uuid.UUID) (bool, error) {
	if identity == nil {
		return false, nil
	}

	if CanManageGroups(identity.Role()) {
		return true, nil
	}

	userID, err := uuid.Parse(identity.ID())
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryBadInput, "invalid principal id")
	}

	membership, err := p.memberships.FindMembership(ctx, userID, groupID)
	if err != nil {
		if errors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	return membership != nil, nil
}

// EnsureGroupAccess converts a failed access check into the forbidden outcome
func (p *GroupPolicy) EnsureGroupAccess(ctx context.Context, identity Identity, groupID uuid.UUID) error {
	ok, err := p.HasGroupAccess(ctx, identity, groupID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGroupAccessDenied
	}
	return nil
}
