package campus

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Groups interface {
	repository.Repository[*Group]

	AddMember(ctx context.Context, groupID, userID uuid.UUID, role MembershipRole) (*GroupMembership, error)
	AddMemberTx(ctx context.Context, tx bun.IDB, groupID, userID uuid.UUID, role MembershipRole) (*GroupMembership, error)
	UpdateMemberRole(ctx context.Context, groupID, userID uuid.UUID, next MembershipRole) (*GroupMembership, error)
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error

	ListAll(ctx context.Context) ([]*Group, error)
	FindMembership(ctx context.Context, userID, groupID uuid.UUID) (*GroupMembership, error)
	FindMembershipTx(ctx context.Context, tx bun.IDB, userID, groupID uuid.UUID) (*GroupMembership, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]*GroupMembership, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*Group, error)
	CountOtherOwners(ctx context.Context, tx bun.IDB, groupID, excludeUserID uuid.UUID) (int, error)
}

type groups struct {
	repository.Repository[*Group]
	db *bun.DB
}

var _ Groups = (*groups)(nil)

func NewGroupsRepository(db *bun.DB) Groups {
	repo := repository.NewRepository[*Group](db, repository.ModelHandlers[*Group]{
		NewRecord: func() *Group { return &Group{} },
		GetID: func(g *Group) uuid.UUID {
			if g == nil {
				return uuid.Nil
			}
			return g.ID
		},
		SetID: func(g *Group, id uuid.UUID) {
			if g != nil {
				g.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &groups{
		Repository: repo,
		db:         db,
	}
}

func (g *groups) AddMember(ctx context.Context, groupID, userID uuid.UUID, role MembershipRole) (*GroupMembership, error) {
	return g.AddMemberTx(ctx, g.db, groupID, userID, role)
}

func (g *groups) AddMemberTx(ctx context.Context, tx bun.IDB, groupID, userID uuid.UUID, role MembershipRole) (*GroupMembership, error) {
	if !IsValidMembershipRole(role) {
		role = MembershipMember
	}

	now := time.Now()
	record := &GroupMembership{
		ID:       uuid.New(),
		UserID:   userID,
		GroupID:  groupID,
		Role:     role,
		JoinedAt: &now,
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateMembership
		}
		return nil, err
	}

	return record, nil
}

// UpdateMemberRole changes a membership role. Demoting an owner requires at
// least one other owner, counted inside the same transaction that applies
// the change so two concurrent demotions cannot both pass the check.
func (g *groups) UpdateMemberRole(ctx context.Context, groupID, userID uuid.UUID, next MembershipRole) (*GroupMembership, error) {
	var updated *GroupMembership

	err := g.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		current, err := g.FindMembershipTx(ctx, tx, userID, groupID)
		if err != nil {
			return err
		}

		if current.Role == MembershipOwner && next != MembershipOwner {
			others, err := g.CountOtherOwners(ctx, tx, groupID, userID)
			if err != nil {
				return err
			}
			if err := GuardOwnerDemotion(current.Role, next, others); err != nil {
				return err
			}
		}

		current.Role = next
		if _, err := tx.NewUpdate().
			Model(current).
			Column("role").
			WherePK().
			Exec(ctx); err != nil {
			return err
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// RemoveMember deletes a membership, refusing to remove the group's last
// owner. The owner count and the delete share one transaction.
func (g *groups) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return g.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		current, err := g.FindMembershipTx(ctx, tx, userID, groupID)
		if err != nil {
			return err
		}

		if current.Role == MembershipOwner {
			others, err := g.CountOtherOwners(ctx, tx, groupID, userID)
			if err != nil {
				return err
			}
			if err := GuardOwnerRemoval(current.Role, others); err != nil {
				return err
			}
		}

		_, err = tx.NewDelete().
			Model(current).
			WherePK().
			Exec(ctx)
		return err
	})
}

func (g *groups) ListAll(ctx context.Context) ([]*Group, error) {
	var records []*Group
	err := g.db.NewSelect().
		Model(&records).
		Order("grp.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (g *groups) FindMembership(ctx context.Context, userID, groupID uuid.UUID) (*GroupMembership, error) {
	return g.FindMembershipTx(ctx, g.db, userID, groupID)
}

func (g *groups) FindMembershipTx(ctx context.Context, tx bun.IDB, userID, groupID uuid.UUID) (*GroupMembership, error) {
	record := &GroupMembership{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.group_id = ?", groupID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"user_id":  userID.String(),
					"group_id": groupID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (g *groups) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*GroupMembership, error) {
	var records []*GroupMembership
	err := g.db.NewSelect().
		Model(&records).
		Relation("User").
		Where("?TableAlias.group_id = ?", groupID).
		Order("mbr.joined_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (g *groups) ListForUser(ctx context.Context, userID uuid.UUID) ([]*Group, error) {
	var records []*Group
	err := g.db.NewSelect().
		Model(&records).
		Join("JOIN group_memberships AS mbr ON mbr.group_id = grp.id").
		Where("mbr.user_id = ?", userID).
		Order("grp.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// CountOtherOwners counts the group's owners excluding the given user.
// Callers mutating a membership must run this inside their transaction.
func (g *groups) CountOtherOwners(ctx context.Context, tx bun.IDB, groupID, excludeUserID uuid.UUID) (int, error) {
	return tx.NewSelect().
		Model((*GroupMembership)(nil)).
		Where("?TableAlias.group_id = ?", groupID).
		Where("?TableAlias.role = ?", MembershipOwner).
		Where("?TableAlias.user_id != ?", excludeUserID).
		Count(ctx)
}
