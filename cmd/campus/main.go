package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	campus "github.com/learnhub/go-campus"
	"github.com/learnhub/go-campus/activitymap"
	"github.com/learnhub/go-campus/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config *gconfig.Container[*config.BaseConfig]
	bunDB  *bun.DB
	auth   campus.Authenticator
	auther campus.HTTPAuthenticator
	tokens campus.TokenService
	repo   campus.RepositoryManager
	srv    router.Server[*fiber.App]
	sink   campus.ActivitySink
	logger *glog.BaseLogger
}

func (a *App) Config() *config.BaseConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("campus"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.BaseConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	fmt.Println(print.MaybeHighlightJSON(cfg.Raw()))

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPAuth(ctx, app); err != nil {
		panic(err)
	}

	RegisterRoutes(app)

	app.srv.Serve(app.Config().GetServer().GetAddress())

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.Config().GetPersistence().GetDSN())
	if err != nil {
		log.Fatal(err)
		return err
	}

	persistence.RegisterModel((*campus.Role)(nil))
	persistence.RegisterModel((*campus.User)(nil))
	persistence.RegisterModel((*campus.Group)(nil))
	persistence.RegisterModel((*campus.GroupMembership)(nil))
	persistence.RegisterModel((*campus.Course)(nil))
	persistence.RegisterModel((*campus.Module)(nil))
	persistence.RegisterModel((*campus.CourseGroup)(nil))
	persistence.RegisterModel((*campus.CourseModule)(nil))
	persistence.RegisterModel((*campus.UserModule)(nil))
	persistence.RegisterModel((*campus.UserCourse)(nil))

	cfg := app.Config().GetPersistence()
	dialect := sqlitedialect.New()
	client, err := persistence.New(cfg, db, dialect)
	if err != nil {
		log.Fatal(err)
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(campus.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}
	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)
	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	client.RegisterFixtures(campus.GetFixturesFS())

	if err := client.Seed(ctx); err != nil {
		return err
	}

	if report := client.Report(); report != nil && !report.IsZero() {
		fmt.Printf("report: %s\n", report.String())
	}

	app.bunDB = client.DB()

	repo := campus.NewRepositoryManager(client.DB())
	repo.MustValidate()

	// Warm the role lookup so role ids resolve without a query per request.
	if err := repo.Roles().MustResolve(ctx); err != nil {
		return err
	}

	app.repo = repo

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: true,
			StrictRouting:     false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	app.srv = srv

	return nil
}

// NewActivityLogSink normalizes activity events and emits them through a
// named logger. A persistent audit store can replace it without touching
// the emitters.
func NewActivityLogSink(logger glog.Logger) campus.ActivitySink {
	return campus.ActivitySinkFunc(func(ctx context.Context, event campus.ActivityEvent) error {
		entry := activitymap.Normalize(event)
		logger.Info("activity",
			"verb", entry.Verb,
			"actor_id", entry.ActorID,
			"object_type", entry.ObjectType,
			"object_id", entry.ObjectID,
			"channel", entry.Channel,
			"occurred_at", entry.OccurredAt,
		)
		return nil
	})
}

func WithHTTPAuth(ctx context.Context, app *App) error {
	cfg := app.Config().GetAuth()

	app.sink = NewActivityLogSink(app.GetLogger("activity"))

	userProvider := campus.NewUserProvider(app.repo.Users())
	userProvider.WithLogger(app.GetLogger("auth:prv"))

	authenticator := campus.NewAuthenticator(userProvider, cfg)
	authenticator.WithLogger(app.GetLogger("auth:authr"))
	authenticator.WithActivitySink(app.sink)

	app.auth = authenticator
	app.tokens = authenticator.TokenService()

	httpAuth, err := campus.NewHTTPAuthenticator(authenticator, app.tokens, cfg)
	if err != nil {
		return err
	}
	httpAuth.WithLogger(app.GetLogger("auth:http"))

	app.auther = httpAuth

	return nil
}

func RegisterRoutes(app *App) {
	cfg := app.Config().GetAuth()
	root := app.srv.Router().Group("/")

	campus.RegisterAuthRoutes(root,
		campus.WithControllerRepo(app.repo),
		campus.WithControllerAuther(app.auther),
		campus.WithControllerTokens(app.tokens),
		campus.WithControllerConfig(cfg),
		campus.WithControllerLogger(app.GetLogger("auth:ctrl")),
		campus.WithControllerActivitySink(app.sink),
	)

	campus.RegisterUserRoutes(root,
		campus.NewUsersController(app.repo, app.auther, cfg).
			WithLogger(app.GetLogger("users:ctrl")).
			WithActivitySink(app.sink))

	campus.RegisterGroupRoutes(root,
		campus.NewGroupsController(app.repo, app.auther, cfg).
			WithLogger(app.GetLogger("groups:ctrl")).
			WithActivitySink(app.sink))

	campus.RegisterCourseRoutes(root,
		campus.NewCoursesController(app.repo, app.auther, cfg).
			WithLogger(app.GetLogger("courses:ctrl")))

	campus.RegisterModuleRoutes(root,
		campus.NewModulesController(app.repo, app.auther, cfg).
			WithLogger(app.GetLogger("modules:ctrl")))
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
