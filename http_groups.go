package campus

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RegisterGroupRoutes wires the group and membership endpoints. Plain users
// can read groups they belong to, group and membership mutation needs
// manager or above.
func RegisterGroupRoutes[T any](app router.Router[T], controller *GroupsController) {
	authGate := controller.Auther.ProtectedRoute(
		controller.Config,
		controller.Auther.MakeClientRouteAuthErrorHandler(false),
	)
	managerGate := controller.Auther.ProtectedRouteMinRole(
		controller.Config,
		controller.Auther.MakeClientRouteAuthErrorHandler(false),
		RoleManager,
	)

	app.Get("/groups", controller.List, authGate).SetName("groups.list")
	app.Post("/groups", controller.Create, managerGate).SetName("groups.create")
	app.Get("/groups/:id", controller.Show, authGate).SetName("groups.show")
	app.Patch("/groups/:id", controller.Update, managerGate).SetName("groups.update")
	app.Delete("/groups/:id", controller.Delete, managerGate).SetName("groups.delete")

	app.Get("/groups/:id/courses", controller.ListCourses, authGate).SetName("groups.courses.list")
	app.Get("/groups/:id/members", controller.ListMembers, authGate).SetName("groups.members.list")
	app.Post("/groups/:id/members", controller.AddMember, managerGate).SetName("groups.members.add")
	app.Patch("/groups/:id/members/:user_id", controller.UpdateMemberRole, managerGate).SetName("groups.members.role")
	app.Delete("/groups/:id/members/:user_id", controller.RemoveMember, managerGate).SetName("groups.members.remove")
}

type GroupsController struct {
	Logger       Logger
	Repo         RepositoryManager
	Policy       *GroupPolicy
	Config       Config
	Auther       HTTPAuthenticator
	Sink         ActivitySink
	ErrorHandler router.ErrorHandler
}

func NewGroupsController(repo RepositoryManager, auther HTTPAuthenticator, cfg Config) *GroupsController {
	return &GroupsController{
		Logger:       defLogger{},
		Repo:         repo,
		Policy:       NewGroupPolicy(repo.Groups()),
		Config:       cfg,
		Auther:       auther,
		Sink:         noopActivitySink{},
		ErrorHandler: WriteError,
	}
}

// WithActivitySink installs a sink that receives membership audit events.
func (a *GroupsController) WithActivitySink(sink ActivitySink) *GroupsController {
	a.Sink = normalizeActivitySink(sink)
	return a
}

// WithLogger overrides the controller logger.
func (a *GroupsController) WithLogger(logger Logger) *GroupsController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// List shows every group to managers and admins, and only the groups the
// principal belongs to otherwise
func (a *GroupsController) List(ctx router.Context) error {
	session, err := GetRouterSession(ctx, a.Config.GetContextKey())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if CanManageGroups(session.GetRole()) {
		records, err := a.Repo.Groups().ListAll(ctx.Context())
		if err != nil {
			return a.ErrorHandler(ctx, err)
		}
		return ctx.JSON(router.StatusOK, map[string]any{
			"groups": records,
		})
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return a.ErrorHandler(ctx, ErrUnableToMapClaims)
	}

	records, err := a.Repo.Groups().ListForUser(ctx.Context(), userID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"groups": records,
	})
}

// GroupPayload carries group fields for create and update
type GroupPayload struct {
	Name        string `form:"name" json:"name"`
	Description string `form:"description" json:"description"`
}

// Validate will validate the payload
func (r GroupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
	)
}

// Create makes a group and enrolls the creator as its first owner
func (a *GroupsController) Create(ctx router.Context) error {
	session, err := GetRouterSession(ctx, a.Config.GetContextKey())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(GroupPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse group payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid group payload"))
	}

	creatorID, err := session.GetUserUUID()
	if err != nil {
		return a.ErrorHandler(ctx, ErrUnableToMapClaims)
	}

	record := &Group{
		ID:          uuid.New(),
		Name:        payload.Name,
		Description: payload.Description,
		CreatedBy:   creatorID,
	}

	group, err := a.Repo.Groups().Create(ctx.Context(), record)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if _, err := a.Repo.Groups().AddMember(ctx.Context(), group.ID, creatorID, MembershipOwner); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, group)
}

func (a *GroupsController) Show(ctx router.Context) error {
	groupID, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	identity, err := a.sessionIdentity(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Policy.EnsureGroupAccess(ctx.Context(), identity, groupID); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	group, err := a.Repo.Groups().GetByID(ctx.Context(), groupID.String())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, group)
}

func (a *GroupsController) ListCourses(ctx router.Context) error {
	groupID, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	identity, err := a.sessionIdentity(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Policy.EnsureGroupAccess(ctx.Context(), identity, groupID); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	courses, err := a.Repo.Courses().ListForGroup(ctx.Context(), groupID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"courses": courses,
	})
}

func (a *GroupsController) Update(ctx router.Context) error {
	groupID, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(GroupPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse group payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid group payload"))
	}

	record := &Group{
		ID:          groupID,
		Name:        payload.Name,
		Description: payload.Description,
	}

	group, err := a.Repo.Groups().Update(ctx.Context(), record)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, group)
}

func (a *GroupsController) Delete(ctx router.Context) error {
	groupID, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	group, err := a.Repo.Groups().GetByID(ctx.Context(), groupID.String())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Repo.Groups().Delete(ctx.Context(), group); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "deleted",
	})
}

func (a *GroupsController) ListMembers(ctx router.Context) error {
	groupID, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	identity, err := a.sessionIdentity(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Policy.EnsureGroupAccess(ctx.Context(), identity, groupID); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	members, err := a.Repo.Groups().ListMembers(ctx.Context(), groupID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"members": members,
	})
}

// MemberPayload carries membership fields
type MemberPayload struct {
	UserID string `form:"user_id" json:"user_id"`
	Role   string `form:"role" json:"role"`
}

// Validate will validate the payload
func (r MemberPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(
			&r.Role,
			validation.In(MembershipMember, MembershipModerator, MembershipOwner),
		),
	)
}

func (a *GroupsController) AddMember(ctx router.Context) error {
	groupID, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(MemberPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse member payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid member payload"))
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return a.ErrorHandler(ctx, goerrors.New("invalid user id", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest))
	}

	role := payload.Role
	if role == "" {
		role = MembershipMember
	}

	membership, err := a.Repo.Groups().AddMember(ctx.Context(), groupID, userID, role)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	a.recordActivity(ctx, ActivityEventMemberAdded, groupID, userID, map[string]any{"role": role})

	return ctx.JSON(router.StatusCreated, membership)
}

// MemberRolePayload carries the target membership role
type MemberRolePayload struct {
	Role string `form:"role" json:"role"`
}

// Validate will validate the payload
func (r MemberRolePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Role,
			validation.Required,
			validation.In(MembershipMember, MembershipModerator, MembershipOwner),
		),
	)
}

func (a *GroupsController) UpdateMemberRole(ctx router.Context) error {
	groupID, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	userID, err := parseUUIDParam(ctx, "user_id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(MemberRolePayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse member role payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid member role payload"))
	}

	membership, err := a.Repo.Groups().UpdateMemberRole(ctx.Context(), groupID, userID, payload.Role)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	a.recordActivity(ctx, ActivityEventMemberRoleChanged, groupID, userID, map[string]any{"role": payload.Role})

	return ctx.JSON(router.StatusOK, membership)
}

func (a *GroupsController) RemoveMember(ctx router.Context) error {
	groupID, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	userID, err := parseUUIDParam(ctx, "user_id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Repo.Groups().RemoveMember(ctx.Context(), groupID, userID); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	a.recordActivity(ctx, ActivityEventMemberRemoved, groupID, userID, nil)

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "removed",
	})
}

func (a *GroupsController) recordActivity(ctx router.Context, eventType ActivityEventType, groupID, userID uuid.UUID, metadata map[string]any) {
	actor := ""
	if session, err := GetRouterSession(ctx, a.Config.GetContextKey()); err == nil {
		actor = session.GetUserID()
	}

	if err := a.Sink.Record(ctx.Context(), ActivityEvent{
		EventType:  eventType,
		ActorID:    actor,
		UserID:     userID.String(),
		ObjectID:   groupID.String(),
		Metadata:   metadata,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		a.Logger.Error("membership activity sink failed", "error", err)
	}
}

func (a *GroupsController) sessionIdentity(ctx router.Context) (Identity, error) {
	session, err := GetRouterSession(ctx, a.Config.GetContextKey())
	if err != nil {
		return nil, err
	}

	return &authIdentity{
		id:       session.GetUserID(),
		username: session.GetUsername(),
		role:     session.GetRole(),
	}, nil
}
