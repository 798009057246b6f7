package campus

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ModuleFilters narrows a module listing. Zero valued fields are skipped.
type ModuleFilters struct {
	CourseID   *uuid.UUID
	UserID     *uuid.UUID
	Keyword    string
	BeforeDate *time.Time
}

type Modules interface {
	repository.Repository[*Module]

	ListFiltered(ctx context.Context, filters ModuleFilters) ([]*Module, error)

	AssignToCourse(ctx context.Context, moduleID, courseID uuid.UUID, ordering int) (*CourseModule, error)
	AssignToCourseTx(ctx context.Context, tx bun.IDB, moduleID, courseID uuid.UUID, ordering int) (*CourseModule, error)
	UnassignFromCourse(ctx context.Context, moduleID, courseID uuid.UUID) error

	Enroll(ctx context.Context, userID, moduleID uuid.UUID) (*UserModule, error)
	CompleteEnrollment(ctx context.Context, userID, moduleID uuid.UUID) (*UserModule, error)
	ListEnrollments(ctx context.Context, userID uuid.UUID) ([]*UserModule, error)
}

type modules struct {
	repository.Repository[*Module]
	db *bun.DB
}

var _ Modules = (*modules)(nil)

func NewModulesRepository(db *bun.DB) Modules {
	repo := repository.NewRepository[*Module](db, repository.ModelHandlers[*Module]{
		NewRecord: func() *Module { return &Module{} },
		GetID: func(m *Module) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Module, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
		GetIdentifier: func() string {
			return "title"
		},
	})

	return &modules{
		Repository: repo,
		db:         db,
	}
}

func (m *modules) ListFiltered(ctx context.Context, filters ModuleFilters) ([]*Module, error) {
	var records []*Module
	q := m.db.NewSelect().
		Model(&records).
		Distinct()

	if filters.CourseID != nil {
		q = q.
			Join("JOIN course_modules AS cmd ON cmd.module_id = mod.id").
			Where("cmd.course_id = ?", *filters.CourseID)
	}

	if filters.UserID != nil {
		q = q.
			Join("JOIN user_modules AS umd ON umd.module_id = mod.id").
			Where("umd.user_id = ?", *filters.UserID)
	}

	if filters.Keyword != "" {
		kw := "%" + filters.Keyword + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(mod.title) LIKE LOWER(?)", kw).
				WhereOr("LOWER(mod.description) LIKE LOWER(?)", kw)
		})
	}

	if filters.BeforeDate != nil {
		q = q.Where("mod.created_at < ?", *filters.BeforeDate)
	}

	if err := q.Order("mod.title ASC").Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}

func (m *modules) AssignToCourse(ctx context.Context, moduleID, courseID uuid.UUID, ordering int) (*CourseModule, error) {
	return m.AssignToCourseTx(ctx, m.db, moduleID, courseID, ordering)
}

func (m *modules) AssignToCourseTx(ctx context.Context, tx bun.IDB, moduleID, courseID uuid.UUID, ordering int) (*CourseModule, error) {
	now := time.Now()
	record := &CourseModule{
		ID:           uuid.New(),
		CourseID:     courseID,
		ModuleID:     moduleID,
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

func (m *modules) UnassignFromCourse(ctx context.Context, moduleID, courseID uuid.UUID) error {
	res, err := m.db.NewDelete().
		Model((*CourseModule)(nil)).
		Where("?TableAlias.module_id = ?", moduleID).
		Where("?TableAlias.course_id = ?", courseID).
		Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"module_id": moduleID.String(),
				"course_id": courseID.String(),
			})
	}

	return nil
}

func (m *modules) Enroll(ctx context.Context, userID, moduleID uuid.UUID) (*UserModule, error) {
	now := time.Now()
	record := &UserModule{
		ID:           uuid.New(),
		UserID:       userID,
		ModuleID:     moduleID,
		DateAssigned: &now,
	}

	if _, err := m.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateAssignment
		}
		return nil, err
	}

	return record, nil
}

func (m *modules) CompleteEnrollment(ctx context.Context, userID, moduleID uuid.UUID) (*UserModule, error) {
	record := &UserModule{}
	err := m.db.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.module_id = ?", moduleID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"user_id":   userID.String(),
					"module_id": moduleID.String(),
				})
		}
		return nil, err
	}

	MarkModuleCompleted(record)

	if _, err := m.db.NewUpdate().
		Model(record).
		Column("completed", "completed_at").
		WherePK().
		Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

func (m *modules) ListEnrollments(ctx context.Context, userID uuid.UUID) ([]*UserModule, error) {
	var records []*UserModule
	err := m.db.NewSelect().
		Model(&records).
		Relation("Module").
		Where("?TableAlias.user_id = ?", userID).
		Order("umd.date_assigned ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}
