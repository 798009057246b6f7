package campus

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Courses interface {
	repository.Repository[*Course]

	AssignToGroup(ctx context.Context, courseID, groupID uuid.UUID, ordering int) (*CourseGroup, error)
	AssignToGroupTx(ctx context.Context, tx bun.IDB, courseID, groupID uuid.UUID, ordering int) (*CourseGroup, error)
	UnassignFromGroup(ctx context.Context, courseID, groupID uuid.UUID) error

	ListAll(ctx context.Context) ([]*Course, error)
	ListForGroup(ctx context.Context, groupID uuid.UUID) ([]*Course, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*Course, error)

	Enroll(ctx context.Context, userID, courseID uuid.UUID) (*UserCourse, error)
	CompleteEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*UserCourse, error)
}

type courses struct {
	repository.Repository[*Course]
	db *bun.DB
}

var _ Courses = (*courses)(nil)

func NewCoursesRepository(db *bun.DB) Courses {
	repo := repository.NewRepository[*Course](db, repository.ModelHandlers[*Course]{
		NewRecord: func() *Course { return &Course{} },
		GetID: func(c *Course) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Course, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "title"
		},
	})

	return &courses{
		Repository: repo,
		db:         db,
	}
}

func (c *courses) AssignToGroup(ctx context.Context, courseID, groupID uuid.UUID, ordering int) (*CourseGroup, error) {
	return c.AssignToGroupTx(ctx, c.db, courseID, groupID, ordering)
}

func (c *courses) AssignToGroupTx(ctx context.Context, tx bun.IDB, courseID, groupID uuid.UUID, ordering int) (*CourseGroup, error) {
	now := time.Now()
	record := &CourseGroup{
		ID:           uuid.New(),
		CourseID:     courseID,
		GroupID:      groupID,
		Ordering:     ordering,
		DateAssigned: &now,
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateAssignment
		}
		return nil, err
	}

	return record, nil
}

func (c *courses) UnassignFromGroup(ctx context.Context, courseID, groupID uuid.UUID) error {
	res, err := c.db.NewDelete().
		Model((*CourseGroup)(nil)).
		Where("?TableAlias.course_id = ?", courseID).
		Where("?TableAlias.group_id = ?", groupID).
		Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"course_id": courseID.String(),
				"group_id":  groupID.String(),
			})
	}

	return nil
}

func (c *courses) ListAll(ctx context.Context) ([]*Course, error) {
	var records []*Course
	err := c.db.NewSelect().
		Model(&records).
		Order("crs.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (c *courses) ListForGroup(ctx context.Context, groupID uuid.UUID) ([]*Course, error) {
	var records []*Course
	err := c.db.NewSelect().
		Model(&records).
		Join("JOIN course_groups AS cgr ON cgr.course_id = crs.id").
		Where("cgr.group_id = ?", groupID).
		Order("cgr.ordering ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// ListForUser returns the courses assigned to any group the user belongs to
func (c *courses) ListForUser(ctx context.Context, userID uuid.UUID) ([]*Course, error) {
	var records []*Course
	err := c.db.NewSelect().
		Model(&records).
		Distinct().
		Join("JOIN course_groups AS cgr ON cgr.course_id = crs.id").
		Join("JOIN group_memberships AS mbr ON mbr.group_id = cgr.group_id").
		Where("mbr.user_id = ?", userID).
		Order("crs.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (c *courses) Enroll(ctx context.Context, userID, courseID uuid.UUID) (*UserCourse, error) {
	now := time.Now()
	record := &UserCourse{
		ID:           uuid.New(),
		UserID:       userID,
		CourseID:     courseID,
		DateAssigned: &now,
	}

	if _, err := c.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateAssignment
		}
		return nil, err
	}

	return record, nil
}

func (c *courses) CompleteEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*UserCourse, error) {
	record := &UserCourse{}
	err := c.db.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.course_id = ?", courseID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"user_id":   userID.String(),
					"course_id": courseID.String(),
				})
		}
		return nil, err
	}

	now := time.Now()
	record.Completed = true
	record.CompletedAt = &now

	if _, err := c.db.NewUpdate().
		Model(record).
		Column("completed", "completed_at").
		WherePK().
		Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}
