package campus

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RegisterModuleRoutes wires the module endpoints. Listing accepts optional
// course_id, user_id, keyword, and before_date filters. Module mutation and
// course placement need manager or above.
func RegisterModuleRoutes[T any](app router.Router[T], controller *ModulesController) {
	authGate := controller.Auther.ProtectedRoute(
		controller.Config,
		controller.Auther.MakeClientRouteAuthErrorHandler(false),
	)
	managerGate := controller.Auther.ProtectedRouteMinRole(
		controller.Config,
		controller.Auther.MakeClientRouteAuthErrorHandler(false),
		RoleManager,
	)

	app.Get("/modules", controller.List, authGate).SetName("modules.list")
	app.Post("/modules", controller.Create, managerGate).SetName("modules.create")
	app.Get("/modules/:id", controller.Show, authGate).SetName("modules.show")
	app.Patch("/modules/:id", controller.Update, managerGate).SetName("modules.update")
	app.Delete("/modules/:id", controller.Delete, managerGate).SetName("modules.delete")

	app.Post("/modules/:id/courses/:course_id", controller.AssignCourse, managerGate).SetName("modules.courses.assign")
	app.Delete("/modules/:id/courses/:course_id", controller.UnassignCourse, managerGate).SetName("modules.courses.unassign")
	app.Post("/modules/:id/enroll", controller.Enroll, authGate).SetName("modules.enroll")
	app.Post("/modules/:id/complete", controller.Complete, authGate).SetName("modules.complete")
	app.Get("/modules/enrollments/mine", controller.MyEnrollments, authGate).SetName("modules.enrollments.mine")
}

type ModulesController struct {
	Logger       Logger
	Repo         RepositoryManager
	Config       Config
	Auther       HTTPAuthenticator
	ErrorHandler router.ErrorHandler
}

func NewModulesController(repo RepositoryManager, auther HTTPAuthenticator, cfg Config) *ModulesController {
	return &ModulesController{
		Logger:       defLogger{},
		Repo:         repo,
		Config:       cfg,
		Auther:       auther,
		ErrorHandler: WriteError,
	}
}

// WithLogger overrides the controller logger.
func (a *ModulesController) WithLogger(logger Logger) *ModulesController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

func (a *ModulesController) List(ctx router.Context) error {
	filters := ModuleFilters{
		Keyword: ctx.Query("keyword"),
	}

	if raw := ctx.Query("course_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return a.ErrorHandler(ctx, goerrors.New("invalid course_id filter", goerrors.CategoryBadInput).
				WithCode(goerrors.CodeBadRequest))
		}
		filters.CourseID = &id
	}

	if raw := ctx.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return a.ErrorHandler(ctx, goerrors.New("invalid user_id filter", goerrors.CategoryBadInput).
				WithCode(goerrors.CodeBadRequest))
		}
		filters.UserID = &id
	}

	if raw := ctx.Query("before_date"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			if at, err = time.Parse("2006-01-02", raw); err != nil {
				return a.ErrorHandler(ctx, goerrors.New("invalid before_date filter", goerrors.CategoryBadInput).
					WithCode(goerrors.CodeBadRequest))
			}
		}
		filters.BeforeDate = &at
	}

	records, err := a.Repo.Modules().ListFiltered(ctx.Context(), filters)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"modules": records,
	})
}

// ModulePayload carries module fields for create and update
type ModulePayload struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Color       string `form:"color" json:"color"`
}

// Validate will validate the payload
func (r ModulePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 5000)),
		validation.Field(&r.Color, validation.Length(0, 200)),
	)
}

func (a *ModulesController) Create(ctx router.Context) error {
	payload := new(ModulePayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse module payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid module payload"))
	}

	record := &Module{
		ID:          uuid.New(),
		Title:       payload.Title,
		Description: payload.Description,
		Color:       payload.Color,
	}

	module, err := a.Repo.Modules().Create(ctx.Context(), record)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, module)
}

func (a *ModulesController) Show(ctx router.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	module, err := a.Repo.Modules().GetByID(ctx.Context(), id.String())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, module)
}

func (a *ModulesController) Update(ctx router.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(ModulePayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse module payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid module payload"))
	}

	record := &Module{
		ID:          id,
		Title:       payload.Title,
		Description: payload.Description,
		Color:       payload.Color,
	}

	module, err := a.Repo.Modules().Update(ctx.Context(), record)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, module)
}

func (a *ModulesController) Delete(ctx router.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	module, err := a.Repo.Modules().GetByID(ctx.Context(), id.String())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Repo.Modules().Delete(ctx.Context(), module); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "deleted",
	})
}

// AssignCoursePayload carries the placement ordering
type AssignCoursePayload struct {
	Ordering int `form:"ordering" json:"ordering"`
}

func (a *ModulesController) AssignCourse(ctx router.Context) error {
	moduleID, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	courseID, err := parseUUIDParam(ctx, "course_id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(AssignCoursePayload)
	if err := ctx.Bind(payload); err != nil {
		payload.Ordering = 0
	}

	placement, err := a.Repo.Modules().AssignToCourse(ctx.Context(), moduleID, courseID, payload.Ordering)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, placement)
}

func (a *ModulesController) UnassignCourse(ctx router.Context) error {
	moduleID, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	courseID, err := parseUUIDParam(ctx, "course_id")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Repo.Modules().UnassignFromCourse(ctx.Context(), moduleID, courseID); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "unassigned",
	})
}

func (a *ModulesController) Enroll(ctx router.Context) error {
	moduleID, err := parseUUIDParam(ctx, "id")
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

	enrollment, err := a.Repo.Modules().Enroll(ctx.Context(), userID, moduleID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, enrollment)
}

func (a *ModulesController) Complete(ctx router.Context) error {
	moduleID, err := parseUUIDParam(ctx, "id")
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

	enrollment, err := a.Repo.Modules().CompleteEnrollment(ctx.Context(), userID, moduleID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, enrollment)
}

func (a *ModulesController) MyEnrollments(ctx router.Context) error {
	session, err := GetRouterSession(ctx, a.Config.GetContextKey())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return a.ErrorHandler(ctx, ErrUnableToMapClaims)
	}

	enrollments, err := a.Repo.Modules().ListEnrollments(ctx.Context(), userID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"enrollments": enrollments,
	})
}
