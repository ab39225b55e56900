package bootstrap

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sitedash-io/sitedash/internal/config"
	"github.com/sitedash-io/sitedash/internal/infra/blob"
	"github.com/sitedash-io/sitedash/internal/infra/cache"
	"github.com/sitedash-io/sitedash/internal/infra/db"
	"github.com/sitedash-io/sitedash/internal/infra/logger"
	mq "github.com/sitedash-io/sitedash/internal/infra/queue"
	"github.com/sitedash-io/sitedash/internal/infra/sheets"
	"github.com/sitedash-io/sitedash/internal/modules/handler"
	"github.com/sitedash-io/sitedash/internal/modules/model"
	"github.com/sitedash-io/sitedash/internal/modules/repo"
	"github.com/sitedash-io/sitedash/internal/modules/service"
)

// repos bundles the four record collections behind whichever backend the
// config selects, so the service layer never knows which store it runs on.
type repos struct {
	projects  repo.ProjectRepo
	tasks     repo.TaskRepo
	expenses  repo.ExpenseRepo
	materials repo.MaterialRepo
}

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB (only dialed for the postgres backend)
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled {
			_ = db.RegisterOpenTelemetryPlugin(d)
		}
		if cfg.Database.AutoMigrate {
			_ = d.AutoMigrate(
				&model.Project{},
				&model.Task{},
				&model.Expense{},
				&model.Material{},
			)
		}
		return d, nil
	})

	// record store backend selection
	do.Provide(inj, func(i *do.Injector) (*repos, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)

		switch cfg.Store.Backend {
		case config.BackendMacro:
			c := sheets.NewMacroClient(cfg, log)
			return sheetRepos(c), nil
		case config.BackendSheetDB:
			c := sheets.NewSheetDBClient(cfg, log)
			return sheetRepos(c), nil
		default:
			d := do.MustInvoke[*gorm.DB](i)
			return &repos{
				projects:  repo.NewProjectRepo(d),
				tasks:     repo.NewTaskRepo(d),
				expenses:  repo.NewExpenseRepo(d),
				materials: repo.NewMaterialRepo(d),
			}, nil
		}
	})

	// Redis (optional)
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.Redis.Enabled {
			return nil, nil
		}
		rdb, err := cache.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled {
			_ = cache.RegisterOpenTelemetryPlugin(rdb)
		}
		return rdb, nil
	})

	// RabbitMQ publisher (optional)
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.RabbitMQ.Enabled || cfg.RabbitMQ.URL == "" {
			return nil, nil
		}
		log := do.MustInvoke[*zap.Logger](i)
		conn, err := mq.Dial(cfg)
		if err != nil {
			return nil, err
		}
		do.ProvideValue(inj, conn)
		return mq.NewPublisher(conn, log, cfg)
	})

	// S3 (optional)
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.S3.Enabled || cfg.S3.Bucket == "" {
			return nil, nil
		}
		return blob.NewS3(context.Background(), cfg)
	})

	// services
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		r := do.MustInvoke[*repos](i)
		return service.NewProjectService(
			r.projects, r.tasks, r.expenses, r.materials,
			do.MustInvoke[*mq.Publisher](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.DashboardService, error) {
		r := do.MustInvoke[*repos](i)
		return service.NewDashboardService(
			r.projects, r.tasks, r.expenses, r.materials,
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.TaskService, error) {
		r := do.MustInvoke[*repos](i)
		return service.NewTaskService(
			r.tasks, r.projects,
			do.MustInvoke[*mq.Publisher](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ExpenseService, error) {
		r := do.MustInvoke[*repos](i)
		return service.NewExpenseService(
			r.expenses, r.projects,
			do.MustInvoke[*mq.Publisher](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.MaterialService, error) {
		r := do.MustInvoke[*repos](i)
		return service.NewMaterialService(
			r.materials, r.projects,
			do.MustInvoke[*mq.Publisher](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ReportService, error) {
		return service.NewReportService(
			do.MustInvoke[service.DashboardService](i),
			do.MustInvoke[*blob.S3Deps](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// handlers
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(
			do.MustInvoke[service.ProjectService](i),
			do.MustInvoke[service.DashboardService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.DashboardHandler, error) {
		return handler.NewDashboardHandler(do.MustInvoke[service.DashboardService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.TaskHandler, error) {
		return handler.NewTaskHandler(
			do.MustInvoke[service.TaskService](i),
			do.MustInvoke[service.DashboardService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ExpenseHandler, error) {
		return handler.NewExpenseHandler(
			do.MustInvoke[service.ExpenseService](i),
			do.MustInvoke[service.DashboardService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.MaterialHandler, error) {
		return handler.NewMaterialHandler(
			do.MustInvoke[service.MaterialService](i),
			do.MustInvoke[service.DashboardService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ReportHandler, error) {
		return handler.NewReportHandler(do.MustInvoke[service.ReportService](i)), nil
	})

	return inj
}

func sheetRepos(c sheets.Client) *repos {
	return &repos{
		projects:  repo.NewSheetProjectRepo(c),
		tasks:     repo.NewSheetTaskRepo(c),
		expenses:  repo.NewSheetExpenseRepo(c),
		materials: repo.NewSheetMaterialRepo(c),
	}
}

// Shutdown closes long-lived connections held by the container.
func Shutdown(inj *do.Injector) {
	if rdb, err := do.Invoke[*redis.Client](inj); err == nil && rdb != nil {
		_ = cache.Close(rdb)
	}
	if pub, err := do.Invoke[*mq.Publisher](inj); err == nil && pub != nil {
		_ = pub.Close()
	}
	if conn, err := do.Invoke[*amqp.Connection](inj); err == nil && conn != nil {
		_ = conn.Close()
	}
}
