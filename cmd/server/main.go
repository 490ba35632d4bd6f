package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/snapcloud/snapcloud-server/internal/auth"
	"github.com/snapcloud/snapcloud-server/internal/config"
	"github.com/snapcloud/snapcloud-server/internal/mail"
	"github.com/snapcloud/snapcloud-server/internal/project"
	"github.com/snapcloud/snapcloud-server/internal/server"
	"github.com/snapcloud/snapcloud-server/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres connect", "err", err)
		os.Exit(1)
	}
	defer pgPool.Close()
	users := store.NewPostgresUserRepo(pgPool)
	if err := users.Migrate(ctx); err != nil {
		log.Error("postgres migrate", "err", err)
		os.Exit(1)
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Error("mongo connect", "err", err)
		os.Exit(1)
	}
	defer mongoClient.Disconnect(ctx)
	projects := store.NewMongoProjectRepo(mongoClient.Database(cfg.MongoDB))
	if err := projects.EnsureIndexes(ctx); err != nil {
		log.Error("mongo indexes", "err", err)
		os.Exit(1)
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Error("redis connect", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()
	sessions := auth.NewRedisSessionStore(rdb)

	// ── Archive (optional) ───────────────────────────────────
	var archive project.Archive
	if cfg.MinioEndpoint != "" {
		minioArchive, err := store.NewMinioArchive(
			ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
		if err != nil {
			log.Error("minio connect", "err", err)
			os.Exit(1)
		}
		archive = minioArchive
	}

	// ── Services and handlers ────────────────────────────────
	mailer := mail.NewSMTPMailer(cfg.SMTPAddr, cfg.MailFrom, cfg.SMTPUser, cfg.SMTPPassword)
	authSvc := auth.NewService(users, mailer, log)
	projSvc := project.NewService(projects, archive, log)

	authHandler := auth.NewHandler(authSvc, sessions, cfg.CookieSecure, log)
	projHandler := project.NewHandler(projSvc, cfg.DefaultOrigin, log)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.NewRouter(authHandler, projHandler, sessions),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		log.Info("listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
