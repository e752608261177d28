package app

import (
	"context"

	"github.com/spf13/afero"
	"report-router/internal/audit"
	"report-router/internal/circuitbreaker"
	"report-router/internal/common/errors"
	"report-router/internal/common/logging"
	"report-router/internal/common/retry"
	"report-router/internal/events"
	"report-router/internal/fsstore"
	"report-router/internal/locks"
	"report-router/internal/routing"
	"report-router/internal/rules"
	"report-router/internal/scheduler"
)

func (app *App) initializeFilesystem() error {
	app.FS = fsstore.NewOsStore()
	for _, dir := range []string{app.Config.IncomingDir, app.Config.ReportsDir} {
		if err := app.FS.MkdirAll(dir, 0o755); err != nil {
			return errors.IOError("failed to create directory", err).WithContext("dir", dir)
		}
	}
	app.Logger.Info("Filesystem layout",
		logging.Field{Key: "incoming", Value: app.Config.IncomingDir},
		logging.Field{Key: "reports", Value: app.Config.ReportsDir},
	)
	return nil
}

func (app *App) initializeRouting() error {
	locker, err := app.buildLocker()
	if err != nil {
		return err
	}

	switch app.Config.RulesSource {
	case "file":
		app.Rules = rules.NewFileSource(afero.NewOsFs(), app.Config.RulesFile)
		app.Logger.Info("Rules: YAML file", logging.Field{Key: "path", Value: app.Config.RulesFile})
	default:
		app.Rules = app.Storage
		app.Logger.Info("Rules: database")
	}

	publisher, err := app.buildPublisher()
	if err != nil {
		return err
	}

	app.Recorder = audit.NewRecorder(app.Storage, audit.DefaultBufferSize, logging.GetGlobalLogger())

	engine, err := routing.NewEngine(routing.Options{
		Rules:       app.Rules,
		FS:          app.FS,
		Locker:      locker,
		Auditor:     app.Recorder,
		Events:      publisher,
		Logger:      logging.GetGlobalLogger(),
		IncomingDir: app.Config.IncomingDir,
		ReportsDir:  app.Config.ReportsDir,
		MoveTimeout: app.Config.MoveTimeoutDuration(),
	})
	if err != nil {
		return err
	}

	app.Engine = engine
	return nil
}

// buildLocker always serialises passes within the process and, with Redis,
// across instances too.
func (app *App) buildLocker() (routing.Locker, error) {
	local := locks.NewLocalLocker()
	if app.RedisClient == nil {
		return local, nil
	}

	distributed, err := locks.NewRedsyncLocker(app.RedisClient, app.Config.LockTTLDuration(), logging.GetGlobalLogger())
	if err != nil {
		return nil, err
	}
	return locks.NewChain(local, distributed), nil
}

func (app *App) buildPublisher() (routing.EventPublisher, error) {
	publishers := []routing.EventPublisher{events.NewInboxPublisher(app.Inbox)}

	switch app.Config.EventsBroker {
	case "redis":
		pub, err := events.NewRedisPublisher(app.RedisClient, events.DefaultChannel)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, app.guard("redis_events", pub))
		app.Logger.Info("Events: Redis pub/sub", logging.Field{Key: "channel", Value: events.DefaultChannel})
	case "rabbitmq":
		var pub *events.AMQPPublisher
		err := retry.Do(context.Background(), retry.DefaultConfig(), func() error {
			var err error
			pub, err = events.DialAMQP(app.Config.RabbitMQURL, app.Config.EventsExchange, logging.GetGlobalLogger())
			return err
		}, app.logRetry("rabbitmq"))
		if err != nil {
			return nil, err
		}
		app.AMQP = pub
		publishers = append(publishers, app.guard("amqp_events", pub))
		app.Logger.Info("Events: RabbitMQ", logging.Field{Key: "exchange", Value: app.Config.EventsExchange})
	default:
		app.Logger.Info("Events: inbox only")
	}

	return events.NewMulti(publishers...), nil
}

func (app *App) guard(name string, pub routing.EventPublisher) routing.EventPublisher {
	return events.NewGuarded(pub, circuitbreaker.New(name, circuitbreaker.BrokerConfig, logging.GetGlobalLogger()))
}

func (app *App) initializeScheduler() error {
	if app.Config.RoutingSchedule == "" {
		app.Logger.Info("Scheduled routing: disabled")
		return nil
	}

	sched, err := scheduler.New(app.Config.RoutingSchedule, app.Engine, logging.GetGlobalLogger())
	if err != nil {
		return err
	}
	app.Scheduler = sched
	app.Logger.Info("Scheduled routing: enabled", logging.Field{Key: "schedule", Value: app.Config.RoutingSchedule})
	return nil
}
