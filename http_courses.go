package campus

import (
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RegisterCourseRoutes wires the course endpoints. Plain users see the
// courses assigned to their groups, course mutation and group assignment
// need manager or above.
func RegisterCourseRoutes[T any](app router.Router[T], controller *CoursesController) {
	authGate := controller.Auther.ProtectedRoute(
		controller.Config,
		controller.Auther.MakeClientRouteAuthErrorHandler(false),
	)
	managerGate := controller.Auther.ProtectedRouteMinRole(
		controller.Config,
		controller.Auther.MakeClientRouteAuthErrorHandler(false),
		RoleManager,
	)

	app.Get("/courses", controller.List, authGate).SetName("courses.list")
	app.Post("/courses", controller.Create, managerGate).SetName("courses.create")
	app.Get("/courses/:id", controller.Show, authGate).SetName("courses.show")
	app.Patch("/courses/:id", controller.Update, managerGate).SetName("courses.update")
	app.Delete("/courses/:id", controller.Delete, managerGate).SetName("courses.delete")

	app.Post("/courses/:id/groups/:group_id", controller.AssignGroup, managerGate).SetName("courses.groups.assign")
	app.Delete("/courses/:id/groups/:group_id", controller.UnassignGroup, managerGate).SetName("courses.groups.unassign")
	app.Post("/courses/:id/enroll", controller.Enroll, authGate).SetName("courses.enroll")
	app.Post("/courses/:id/complete", controller.Complete, authGate).SetName("courses.complete")
}

type CoursesController struct {
	Logger       Logger
	Repo         RepositoryManager
	Config       Config
	Auther       HTTPAuthenticator
	ErrorHandler router.ErrorHandler
}

func NewCoursesController(repo RepositoryManager, auther HTTPAuthenticator, cfg Config) *CoursesController {
	return &CoursesController{
		Logger:       defLogger{},
		Repo:         repo,
		Config:       cfg,
		Auther:       auther,
		ErrorHandler: WriteError,
	}
}

// WithLogger overrides the controller logger.
func (a *CoursesController) WithLogger(logger Logger) *CoursesController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// List shows every course to managers and admins, and only group assigned
// courses otherwise
func (a *CoursesController) List(ctx router.Context) error {
	session, err := GetRouterSession(ctx, a.Config.GetContextKey())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if CanManageGroups(session.GetRole()) {
		records, err := a.Repo.Courses().ListAll(ctx.Context())
		if err != nil {
			return a.ErrorHandler(ctx, err)
		}
		return ctx.JSON(router.StatusOK, map[string]any{
			"courses": records,
		})
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return a.ErrorHandler(ctx, ErrUnableToMapClaims)
	}

	records, err := a.Repo.Courses().ListForUser(ctx.Context(), userID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"courses": records,
	})
}

// CoursePayload carries course fields for create and update
type CoursePayload struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
}

// Validate will validate the payload
func (r CoursePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 5000)),
	)
}

func (a *CoursesController) Create(ctx router.Context) error {
	payload := new(CoursePayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse course payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid course payload"))
	}

	record := &Course{
		ID:          uuid.New(),
		Title:       payload.Title,
		Description: payload.Description,
	}

	course, err := a.Repo.Courses().Create(ctx.Context(), record)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, course)
}

func (a *CoursesController) Show(ctx router.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	course, err := a.Repo.Courses().GetByID(ctx.Context(), id.String())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, course)
}

func (a *CoursesController) Update(ctx router.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(CoursePayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse course payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid course payload"))
	}

	record := &Course{
		ID:          id,
		Title:       payload.Title,
		Description: payload.Description,
	}

	course, err := a.Repo.Courses().Update(ctx.Context(), record)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, course)
}

func (a *CoursesController) Delete(ctx router.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	course, err := a.Repo.Courses().GetByID(ctx.Context(), id.String())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Repo.Courses().Delete(ctx.Context(), course); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "deleted",
	})
}

// AssignGroupPayload carries the assignment ordering
type AssignGroupPayload struct {
	Ordering int `form:"ordering" json:"ordering"`
}

func (a *CoursesController) AssignGroup(ctx router.Context) error {
	courseID, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	groupID, err := parseUUIDParam(ctx, "group_id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(AssignGroupPayload)
	if err := ctx.Bind(payload); err != nil {
		payload.Ordering = 0
	}

	assignment, err := a.Repo.Courses().AssignToGroup(ctx.Context(), courseID, groupID, payload.Ordering)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, assignment)
}

func (a *CoursesController) UnassignGroup(ctx router.Context) error {
	courseID, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	groupID, err := parseUUIDParam(ctx, "group_id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Repo.Courses().UnassignFromGroup(ctx.Context(), courseID, groupID); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "unassigned",
	})
}

func (a *CoursesController) Enroll(ctx router.Context) error {
	courseID, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	session, err := GetRouterSession(ctx, a.Config.GetContextKey())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return a.ErrorHandler(ctx, ErrUnableToMapClaims)
	}

	enrollment, err := a.Repo.Courses().Enroll(ctx.Context(), userID, courseID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, enrollment)
}

func (a *CoursesController) Complete(ctx router.Context) error {
	courseID, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	session, err := GetRouterSession(ctx, a.Config.GetContextKey())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return a.ErrorHandler(ctx, ErrUnableToMapClaims)
	}

	enrollment, err := a.Repo.Courses().CompleteEnrollment(ctx.Context(), userID, courseID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, enrollment)
}
