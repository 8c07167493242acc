// Command server wires the worktrack service: stores, services, handlers,
// the audit pipeline, and the HTTP server lifecycle.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	departmenthandler "worktrack/internal/department/handler"
	departmentservice "worktrack/internal/department/service"
	departmentstore "worktrack/internal/department/store"
	httpapi "worktrack/internal/http"
	"worktrack/internal/identity/bootstrap"
	identityhandler "worktrack/internal/identity/handler"
	identityservice "worktrack/internal/identity/service"
	profilestore "worktrack/internal/identity/store/profile"
	rolestore "worktrack/internal/identity/store/role"
	userstore "worktrack/internal/identity/store/user"
	"worktrack/internal/identity/token"
	"worktrack/internal/platform/config"
	"worktrack/internal/platform/httpserver"
	"worktrack/internal/platform/logger"
	platformmetrics "worktrack/internal/platform/metrics"
	"worktrack/internal/platform/postgres"
	platformredis "worktrack/internal/platform/redis"
	taskhandler "worktrack/internal/task/handler"
	taskmetrics "worktrack/internal/task/metrics"
	taskservice "worktrack/internal/task/service"
	feedbackstore "worktrack/internal/task/store/feedback"
	taskstore "worktrack/internal/task/store/task"
	updatestore "worktrack/internal/task/store/update"
	audit "worktrack/pkg/platform/audit"
	auditkafka "worktrack/pkg/platform/audit/kafka"
	auditworker "worktrack/pkg/platform/audit/worker"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("schema setup failed", "error", err)
			os.Exit(1)
		}
	}

	rdb, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Stores: postgres when configured, in-memory otherwise.
	var (
		users     identityservice.UserStore
		profiles  identityservice.ProfileStore
		roles     identityservice.RoleStore
		depts     departmentservice.Store
		tasks     taskservice.TaskStore
		updates   taskservice.UpdateStore
		feedbacks taskservice.FeedbackStore
		tx        taskservice.StoreTx
	)
	if db != nil {
		users = userstore.NewPostgres(db)
		profiles = profilestore.NewPostgres(db)
		roles = rolestore.NewPostgres(db)
		depts = departmentstore.NewPostgres(db)
		tasks = taskstore.NewPostgres(db)
		updates = updatestore.NewPostgres(db)
		feedbacks = feedbackstore.NewPostgres(db)
		tx = newTaskPostgresTx(db)
	} else {
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
		memTasks := taskstore.NewInMemory()
		memUpdates := updatestore.NewInMemory()
		users = userstore.NewInMemory()
		profiles = profilestore.NewInMemory()
		roles = rolestore.NewInMemory()
		depts = departmentstore.NewInMemory()
		tasks = memTasks
		updates = memUpdates
		feedbacks = feedbackstore.NewInMemory()
		tx = taskservice.MemoryTx{Tasks: memTasks, Updates: memUpdates}
	}
	if rdb != nil {
		profiles = profilestore.NewCached(profiles, rdb.Client, config.ProfileCacheTTL)
	}

	// Audit pipeline: Kafka when brokers are configured, otherwise a
	// channel worker draining into the in-memory store.
	group, ctx := errgroup.WithContext(ctx)
	var publisher audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err := auditkafka.New(cfg.KafkaBrokers, cfg.KafkaAuditTopic, auditkafka.WithLogger(log))
		if err != nil {
			log.Error("kafka audit publisher failed", "error", err)
			os.Exit(1)
		}
		defer kafkaPub.Close()
		publisher = kafkaPub
	} else {
		inbox := make(chan audit.Event, 256)
		worker := auditworker.New(audit.NewMemoryStore(), inbox, log)
		group.Go(func() error { return worker.Run(ctx) })
		publisher = auditworker.NewChannelPublisher(inbox)
	}

	if cfg.BootstrapRoles {
		if err := bootstrap.EnsureRoles(ctx, roles); err != nil {
			log.Error("role bootstrap failed", "error", err)
			os.Exit(1)
		}
		log.Info("roles bootstrapped")
	}

	identitySvc := identityservice.New(users, profiles, roles,
		identityservice.WithLogger(log),
		identityservice.WithAuditPublisher(publisher),
		identityservice.WithTaskReferences(tasks),
	)
	departmentSvc := departmentservice.New(depts,
		departmentservice.WithLogger(log),
		departmentservice.WithAuditPublisher(publisher),
	)
	taskSvc := taskservice.New(tasks, updates, feedbacks, tx,
		taskservice.WithLogger(log),
		taskservice.WithAuditPublisher(publisher),
		taskservice.WithIdentityDirectory(identitySvc),
		taskservice.WithDepartmentDirectory(departmentSvc),
		taskservice.WithMetrics(taskmetrics.New()),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:      log,
		Metrics:     platformmetrics.New(),
		JWT:         token.NewValidator(cfg.JWTSigningKey),
		AdminToken:  cfg.AdminToken,
		Tasks:       taskhandler.New(taskSvc, identitySvc, log),
		Departments: departmenthandler.New(departmentSvc, log),
		Identities:  identityhandler.New(identitySvc, log),
		Health: func() error {
			if db != nil {
				if err := db.PingContext(context.Background()); err != nil {
					return err
				}
			}
			if rdb != nil {
				return rdb.Health(context.Background())
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	group.Go(func() error {
		log.Info("starting worktrack", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
