// Command api serves the criminal records HTTP API.
//
//	@title						Criminal Records API
//	@version					1.0
//	@description				Account provisioning, role administration and criminal record search.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"github.com/blackhole/records-system/internal/api"
	"github.com/blackhole/records-system/internal/api/metrics"
	"github.com/blackhole/records-system/internal/core/service"
	"github.com/blackhole/records-system/internal/infrastructure/db/mongo"
	"github.com/blackhole/records-system/internal/infrastructure/db/redis"
	"github.com/blackhole/records-system/internal/infrastructure/db/sqldb"
	"github.com/blackhole/records-system/internal/infrastructure/http/handlers"
	"github.com/blackhole/records-system/internal/infrastructure/queue"
	"github.com/blackhole/records-system/internal/infrastructure/security"
	"github.com/blackhole/records-system/internal/pkg/config"
	"github.com/blackhole/records-system/pkg/logger"
)

const (
	shutdownTimeout     = 15 * time.Second
	queueSampleInterval = 5 * time.Second
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(context.Background())
	if err != nil {
		bootLog := logger.Init(logger.Options{Service: "records-api"})
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "records-api",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Relational store.
	gormLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		gormLevel = gormlogger.Info
	}
	db, err := sqldb.Connect(sqldb.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        gormLevel,
	})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	if err := sqldb.Migrate(db); err != nil {
		return err
	}

	// 2. Audit trail and revocation list.
	mongoClient, mongoDB, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "records-api",
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	if err := mongo.EnsureIndexes(ctx, mongoDB); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// 3. Repositories and collaborators.
	userRepo := sqldb.NewUserRepository(db)
	roleRepo := sqldb.NewRoleRepository(db)
	recordRepo := sqldb.NewRecordRepository(db)
	auditRepo := mongo.NewAuditRepository(mongoDB)
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	revoker := redis.NewRevocationList(rdb)

	// The dispatcher outlives the HTTP server so events published by
	// in-flight requests are still written during shutdown.
	queueCtx, stopQueue := context.WithCancel(context.Background())
	defer stopQueue()
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditRepo, metrics.AuditHooks(), logger.Component("audit"))
	dispatcher.Start(queueCtx)
	go metrics.SampleAuditQueue(queueCtx, dispatcher.Pending, queueSampleInterval)

	// 4. Services.
	if err := service.Bootstrap(ctx, roleRepo, userRepo, hasher, service.BootstrapOptions{
		SeedRoles:     cfg.Bootstrap.SeedRoles,
		AdminUsername: cfg.Bootstrap.AdminUsername,
		AdminEmail:    cfg.Bootstrap.AdminEmail,
		AdminPassword: cfg.Bootstrap.AdminPassword,
	}, logger.Component("bootstrap")); err != nil {
		return err
	}

	accounts := service.NewAccountService(userRepo, roleRepo, hasher, dispatcher, logger.Component("accounts"))
	auth := service.NewAuthService(accounts, hasher, revoker, dispatcher, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth"))
	roles := service.NewRoleService(roleRepo, dispatcher, logger.Component("roles"))
	records := service.NewRecordService(recordRepo, dispatcher, logger.Component("records"))
	audit := service.NewAuditService(auditRepo, logger.Component("audit"))

	// 5. HTTP server.
	e := api.NewRouter(api.Dependencies{
		Accounts: accounts,
		Auth:     auth,
		Roles:    roles,
		Records:  records,
		Audit:    audit,
		Checks: []handlers.Check{
			handlers.SQLCheck(db),
			handlers.MongoCheck(mongoDB),
			handlers.RedisCheck(rdb),
		},
		Log: log,
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	// 6. Graceful shutdown.
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	stopQueue()
	dispatcher.Wait()
	log.Info().Msg("audit queue drained")
	return nil
}
