package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"essayons/internal/auth"
	"essayons/internal/config"
	"essayons/internal/contact"
	"essayons/internal/content"
	"essayons/internal/health"
	"essayons/internal/lobby"
	"essayons/internal/logging"
	"essayons/internal/quiz"
	"essayons/internal/server"
	"essayons/internal/storage"
	"essayons/internal/table"
)

//go:embed web/static
var static embed.FS

const sweepInterval = time.Minute

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting essayons", "host", cfg.Server.Host, "port", cfg.Server.Port)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	var (
		pool        *pgxpool.Pool
		rdb         *redis.Client
		nc          *nats.Conn
		contentRepo content.Store     = content.NewMemoryStore()
		users       auth.UserStore    = auth.NewMemoryUserStore()
		sessions    auth.SessionStore = auth.NewMemorySessionStore()
		messages    contact.Store     = contact.NewMemoryStore()
	)

	if cfg.Database.DSN != "" {
		pool, err = storage.OpenPostgres(initCtx, storage.PostgresConfig{
			DSN:      cfg.Database.DSN,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := storage.RunMigrations(initCtx, pool); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		contentRepo = content.NewPostgresStore(pool)
		users = auth.NewPostgresUserStore(pool)
		messages = contact.NewPostgresStore(pool)
		slog.Info("database connected successfully")
	} else {
		slog.Warn("no database configured, content and messages are kept in memory")
	}

	if cfg.Redis.Address != "" {
		rdb, err = storage.OpenRedis(initCtx, storage.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		sessions = auth.NewRedisSessionStore(rdb)
		slog.Info("redis connected successfully")
	}

	if cfg.NATS.URL != "" {
		nc, err = storage.OpenNATS(storage.NATSConfig{
			URL:           cfg.NATS.URL,
			MaxReconnects: cfg.NATS.MaxReconnects,
			ReconnectWait: cfg.NATS.ReconnectWait,
		})
		if err != nil {
			slog.Error("failed to connect to nats", "error", err)
			os.Exit(1)
		}
	}

	authSvc := auth.NewService(users, sessions, cfg.Session.TTL)
	created, err := authSvc.SeedAdmin(initCtx, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Email)
	if err != nil {
		slog.Error("failed to seed admin user", "error", err)
		os.Exit(1)
	}
	if created {
		slog.Info("admin user created", "username", cfg.Admin.Username)
	}

	var notifier contact.Notifier
	switch cfg.Mail.Driver {
	case "smtp":
		smtpNotifier, err := contact.NewSMTPNotifier(contact.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			To:       cfg.Mail.To,
		})
		if err != nil {
			slog.Error("failed to configure smtp relay", "error", err)
			os.Exit(1)
		}
		notifier = smtpNotifier
	case "nats":
		notifier = contact.NewNATSNotifier(nc, cfg.NATS.Subject)
	default:
		notifier = contact.NewLogNotifier(slog.Default())
	}

	quizzes, err := quiz.Load()
	if err != nil {
		slog.Error("failed to load quizzes", "error", err)
		os.Exit(1)
	}

	tables := server.NewTables(lobby.NewManager(cfg.Game.MaxTables), table.Options{
		ThinkDelay: cfg.Game.ThinkDelay,
		AckDelay:   cfg.Game.AckDelay,
		WinPoints:  cfg.Game.WinPoints,
		Scheduler:  table.RealScheduler(),
	})

	site, err := staticFS(cfg.Server.StaticDir)
	if err != nil {
		slog.Error("failed to open static files", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Game.IdleTTL > 0 {
		go tables.RunSweeper(ctx, sweepInterval, cfg.Game.IdleTTL)
	}

	srv := server.New(cfg.Server, cfg.Session, server.Deps{
		Tables:  tables,
		Content: content.NewService(contentRepo),
		Auth:    authSvc,
		Contact: contact.NewService(messages, notifier),
		Quizzes: quizzes,
		Ready:   health.NewChecker(pool, rdb, nc),
		Static:  site,
	})
	httpServer := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     srv.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	tables.Close()
	if nc != nil {
		nc.Close()
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if pool != nil {
		pool.Close()
	}

	slog.Info("essayons stopped")
}

// staticFS serves dir from disk when set and the embedded site otherwise.
func staticFS(dir string) (fs.FS, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
		return os.DirFS(dir), nil
	}
	return fs.Sub(static, "web/static")
}
