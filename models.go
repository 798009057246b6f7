package campus

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Role is a system role lookup row. The three rows user, manager, and admin
// are seeded at install time and never mutated at runtime.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          UserRole   `bun:"name,notnull,unique" json:"name,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// User is the user model
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	RoleID         uuid.UUID      `bun:"role_id,notnull,type:uuid" json:"role_id,omitempty"`
	Role           *Role          `bun:"rel:belongs-to,join:role_id=id" json:"role,omitempty"`
	FirstName      string         `bun:"first_name" json:"first_name,omitempty"`
	LastName       string         `bun:"last_name" json:"last_name,omitempty"`
	Username       string         `bun:"username,notnull,unique" json:"username,omitempty"`
	ProfilePicture string         `bun:"profile_picture" json:"profile_picture,omitempty"`
	Email          string         `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone          string         `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash   string         `bun:"password_hash" json:"-"`
	EmailValidated bool           `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	IsActive       bool           `bun:"is_active,default:true" json:"is_active"`
	LoggedInAt     *time.Time     `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	Metadata       map[string]any `bun:"metadata" json:"metadata,omitempty"`
	ResetedAt      *time.Time     `bun:"reseted_at,nullzero" json:"reseted_at,omitempty"`
	CreatedAt      *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// RoleName returns the name of the user's system role. The Role relation must
// be loaded, a user without one resolves to the base role.
func (u *User) RoleName() UserRole {
	if u.Role == nil {
		return RoleUser
	}
	return u.Role.Name
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]interface{})
	}
	u.Metadata[key] = val
	return u
}

// Group is a named collection of users
type Group struct {
	bun.BaseModel `bun:"table:groups,alias:grp"`
	ID            uuid.UUID          `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string             `bun:"name,notnull" json:"name,omitempty"`
	Description   string             `bun:"description" json:"description,omitempty"`
	CreatedBy     uuid.UUID          `bun:"created_by,notnull,type:uuid" json:"created_by,omitempty"`
	Creator       *User              `bun:"rel:belongs-to,join:created_by=id" json:"creator,omitempty"`
	Members       []*GroupMembership `bun:"rel:has-many,join:id=group_id" json:"members,omitempty"`
	CreatedAt     *time.Time         `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time         `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time         `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// GroupMembership links a user to a group with a membership role. A user
// holds at most one membership per group.
type GroupMembership struct {
	bun.BaseModel `bun:"table:group_memberships,alias:mbr"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID      `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	GroupID       uuid.UUID      `bun:"group_id,notnull,type:uuid" json:"group_id,omitempty"`
	Role          MembershipRole `bun:"role,notnull,default:'member'" json:"role,omitempty"`
	User          *User          `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Group         *Group         `bun:"rel:belongs-to,join:group_id=id" json:"group,omitempty"`
	JoinedAt      *time.Time     `bun:"joined_at,nullzero,default:current_timestamp" json:"joined_at,omitempty"`
}

// Course is a course of study made up of modules
type Course struct {
	bun.BaseModel `bun:"table:courses,alias:crs"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Module is a unit of learning content
type Module struct {
	bun.BaseModel `bun:"table:modules,alias:mod"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Color         string     `bun:"color" json:"color,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// CourseGroup assigns a course to a group. A course is assigned to a group
// at most once.
type CourseGroup struct {
	bun.BaseModel `bun:"table:course_groups,alias:cgr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	CourseID      uuid.UUID  `bun:"course_id,notnull,type:uuid" json:"course_id,omitempty"`
	GroupID       uuid.UUID  `bun:"group_id,notnull,type:uuid" json:"group_id,omitempty"`
	Course        *Course    `bun:"rel:belongs-to,join:course_id=id" json:"course,omitempty"`
	Group         *Group     `bun:"rel:belongs-to,join:group_id=id" json:"group,omitempty"`
	Ordering      int        `bun:"ordering,notnull,default:0" json:"ordering"`
	DateAssigned  *time.Time `bun:"date_assigned,nullzero,default:current_timestamp" json:"date_assigned,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// CourseModule places a module inside a course. A module appears in a course
// at most once.
type CourseModule struct {
	bun.BaseModel `bun:"table:course_modules,alias:cmd"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	CourseID      uuid.UUID  `bun:"course_id,notnull,type:uuid" json:"course_id,omitempty"`
	ModuleID      uuid.UUID  `bun:"module_id,notnull,type:uuid" json:"module_id,omitempty"`
	Course        *Course    `bun:"rel:belongs-to,join:course_id=id" json:"course,omitempty"`
	Module        *Module    `bun:"rel:belongs-to,join:module_id=id" json:"module,omitempty"`
	Ordering      int        `bun:"ordering,notnull,default:0" json:"ordering"`
	DateAssigned  *time.Time `bun:"date_assigned,nullzero,default:current_timestamp" json:"date_assigned,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// UserModule enrolls a user in a module and tracks completion
type UserModule struct {
	bun.BaseModel `bun:"table:user_modules,alias:umd"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	ModuleID      uuid.UUID  `bun:"module_id,notnull,type:uuid" json:"module_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Module        *Module    `bun:"rel:belongs-to,join:module_id=id" json:"module,omitempty"`
	Completed     bool       `bun:"completed,default:false" json:"completed"`
	DateAssigned  *time.Time `bun:"date_assigned,nullzero,default:current_timestamp" json:"date_assigned,omitempty"`
	CompletedAt   *time.Time `bun:"completed_at,nullzero" json:"completed_at,omitempty"`
}

// UserCourse enrolls a user in a course and tracks completion
type UserCourse struct {
	bun.BaseModel `bun:"table:user_courses,alias:ucr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	CourseID      uuid.UUID  `bun:"course_id,notnull,type:uuid" json:"course_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Course        *Course    `bun:"rel:belongs-to,join:course_id=id" json:"course,omitempty"`
	Completed     bool       `bun:"completed,default:false" json:"completed"`
	DateAssigned  *time.Time `bun:"date_assigned,nullzero,default:current_timestamp" json:"date_assigned,omitempty"`
	CompletedAt   *time.Time `bun:"completed_at,nullzero" json:"completed_at,omitempty"`
}

// MarkModuleCompleted stamps a user module enrollment as completed
func MarkModuleCompleted(enrollment *UserModule) *UserModule {
	n := time.Now()
	enrollment.Completed = true
	enrollment.CompletedAt = &n
	return enrollment
}
