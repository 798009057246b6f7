package campus

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RegisterUserRoutes wires the user administration endpoints. Listing needs
// manager or above, mutations are admin only. Admins can never change their
// own role, disable themselves, or delete their own account.
func RegisterUserRoutes[T any](app router.Router[T], controller *UsersController) {
	managerGate := controller.Auther.ProtectedRouteMinRole(
		controller.Config,
		controller.Auther.MakeClientRouteAuthErrorHandler(false),
		RoleManager,
	)
	adminGate := controller.Auther.ProtectedRouteMinRole(
		controller.Config,
		controller.Auther.MakeClientRouteAuthErrorHandler(false),
		RoleAdmin,
	)

	app.Get("/users", controller.List, managerGate).SetName("users.list")
	app.Get("/users/:id", controller.Show, managerGate).SetName("users.show")
	app.Post("/users", controller.Create, adminGate).SetName("users.create")
	app.Patch("/users/:id/profile", controller.UpdateProfile, adminGate).SetName("users.profile")
	app.Patch("/users/:id/role", controller.UpdateRole, adminGate).SetName("users.role")
	app.Patch("/users/:id/active", controller.UpdateActive, adminGate).SetName("users.active")
	app.Delete("/users/:id", controller.Delete, adminGate).SetName("users.delete")
}

type UsersController struct {
	Logger       Logger
	Repo         RepositoryManager
	Config       Config
	Auther       HTTPAuthenticator
	Sink         ActivitySink
	ErrorHandler router.ErrorHandler
}

func NewUsersController(repo RepositoryManager, auther HTTPAuthenticator, cfg Config) *UsersController {
	return &UsersController{
		Logger:       defLogger{},
		Repo:         repo,
		Config:       cfg,
		Auther:       auther,
		Sink:         noopActivitySink{},
		ErrorHandler: WriteError,
	}
}

// WithActivitySink installs a sink that receives account audit events.
func (a *UsersController) WithActivitySink(sink ActivitySink) *UsersController {
	a.Sink = normalizeActivitySink(sink)
	return a
}

// WithLogger overrides the controller logger.
func (a *UsersController) WithLogger(logger Logger) *UsersController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

func (a *UsersController) List(ctx router.Context) error {
	records, err := a.Repo.Users().ListAll(ctx.Context())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"users": records,
	})
}

func (a *UsersController) Show(ctx router.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	user, err := a.Repo.Users().GetByID(ctx.Context(), id.String(), IncludeRole())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, user)
}

// CreateUserPayload lets an admin provision an account with any system role.
type CreateUserPayload struct {
	Username  string `form:"username" json:"username"`
	Email     string `form:"email" json:"email"`
	Password  string `form:"password" json:"password"`
	Role      string `form:"role" json:"role"`
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Phone     string `form:"phone_number" json:"phone_number"`
}

// Validate will validate the payload
func (r CreateUserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(&r.Role, validation.In(RoleUser, RoleManager, RoleAdmin)),
		validation.Field(&r.FirstName, validation.Length(0, 200)),
		validation.Field(&r.LastName, validation.Length(0, 200)),
	)
}

func (a *UsersController) Create(ctx router.Context) error {
	payload := new(CreateUserPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse user payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid user payload"))
	}

	var created *User
	handler := NewRegisterUserHandler(a.Repo, nil).WithLogger(a.Logger)

	err := handler.Execute(ctx.Context(), RegisterUserMessage{
		Username:  payload.Username,
		Email:     payload.Email,
		Password:  payload.Password,
		Role:      payload.Role,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Phone:     payload.Phone,
		OnCreated: func(user *User) {
			created = user
		},
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, created)
}

// UpdateProfilePayload carries the mutable profile attributes. Empty fields
// are left untouched.
type UpdateProfilePayload struct {
	FirstName      *string `form:"first_name" json:"first_name"`
	LastName       *string `form:"last_name" json:"last_name"`
	Phone          *string `form:"phone_number" json:"phone_number"`
	ProfilePicture *string `form:"profile_picture" json:"profile_picture"`
}

// Validate will validate the payload
func (r UpdateProfilePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(0, 200)),
		validation.Field(&r.LastName, validation.Length(0, 200)),
		validation.Field(&r.ProfilePicture, validation.Length(0, 500)),
	)
}

func (a *UsersController) UpdateProfile(ctx router.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(UpdateProfilePayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse profile payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid profile payload"))
	}

	user, err := a.Repo.Users().GetByID(ctx.Context(), id.String(), IncludeRole())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if payload.FirstName != nil {
		user.FirstName = *payload.FirstName
	}
	if payload.LastName != nil {
		user.LastName = *payload.LastName
	}
	if payload.Phone != nil {
		user.Phone = normalizePhone(*payload.Phone)
	}
	if payload.ProfilePicture != nil {
		user.ProfilePicture = *payload.ProfilePicture
	}

	user, err = a.Repo.Users().Update(ctx.Context(), user, repository.UpdateByID(id.String()))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, user)
}

// UpdateRolePayload carries the target system role
type UpdateRolePayload struct {
	Role string `form:"role" json:"role"`
}

// Validate will validate the payload
func (r UpdateRolePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Role,
			validation.Required,
			validation.In(RoleUser, RoleManager, RoleAdmin),
		),
	)
}

func (a *UsersController) UpdateRole(ctx router.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	session, err := GetRouterSession(ctx, a.Config.GetContextKey())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := EnsureNotSelf(session.GetUserID(), id.String()); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(UpdateRolePayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse role payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid role payload"))
	}

	role, err := a.Repo.Roles().GetByName(ctx.Context(), payload.Role)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	user, err := a.Repo.Users().SetRole(ctx.Context(), id, role.ID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	a.recordActivity(ctx, ActivityEventRoleChanged, session.GetUserID(), id, map[string]any{"role": payload.Role})

	return ctx.JSON(router.StatusOK, user)
}

// UpdateActivePayload carries the target account state
type UpdateActivePayload struct {
	Active *bool `form:"active" json:"active"`
}

// Validate will validate the payload
func (r UpdateActivePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Active, validation.NotNil),
	)
}

func (a *UsersController) UpdateActive(ctx router.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	session, err := GetRouterSession(ctx, a.Config.GetContextKey())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := EnsureNotSelf(session.GetUserID(), id.String()); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(UpdateActivePayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse active payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid active payload"))
	}

	user, err := a.Repo.Users().SetActive(ctx.Context(), id, *payload.Active)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	a.recordActivity(ctx, ActivityEventActiveChanged, session.GetUserID(), id, map[string]any{"active": *payload.Active})

	return ctx.JSON(router.StatusOK, user)
}

func (a *UsersController) Delete(ctx router.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	session, err := GetRouterSession(ctx, a.Config.GetContextKey())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := EnsureNotSelf(session.GetUserID(), id.String()); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	user, err := a.Repo.Users().GetByID(ctx.Context(), id.String())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Repo.Users().Delete(ctx.Context(), user); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "deleted",
	})
}

func (a *UsersController) recordActivity(ctx router.Context, eventType ActivityEventType, actorID string, userID uuid.UUID, metadata map[string]any) {
	if err := a.Sink.Record(ctx.Context(), ActivityEvent{
		EventType:  eventType,
		ActorID:    actorID,
		UserID:     userID.String(),
		Metadata:   metadata,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		a.Logger.Error("account activity sink failed", "error", err)
	}
}

func parseUUIDParam(ctx router.Context, name string) (uuid.UUID, error) {
	raw := ctx.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, goerrors.New("invalid identifier", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{
				"param": name,
				"value": raw,
			})
	}
	return id, nil
}
