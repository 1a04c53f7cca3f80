package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/cyrilcaoyang/gopoe/internal/api"
	"github.com/cyrilcaoyang/gopoe/internal/cache"
	"github.com/cyrilcaoyang/gopoe/internal/config"
	"github.com/cyrilcaoyang/gopoe/internal/database"
	"github.com/cyrilcaoyang/gopoe/internal/poe"
	"github.com/cyrilcaoyang/gopoe/internal/repository"
	"github.com/cyrilcaoyang/gopoe/internal/service"
)

// App bundles the long-lived resources of a running server.
type App struct {
	DB     *sql.DB
	Redis  *redis.Client
	Server *http.Server
}

// NewApp builds the dependency graph: database, optional Redis history
// cache, repository, Poe client, services, handlers, router.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	var historyCache *cache.HistoryCache
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// The cache is an optimization; the store stays authoritative.
			slog.Warn("Redis unreachable, running without history cache", "addr", cfg.RedisAddr, "error", err)
			_ = rdb.Close()
			rdb = nil
		} else {
			historyCache = cache.NewHistoryCache(rdb, time.Duration(cfg.HistoryCacheTTL)*time.Second)
			slog.Info("History cache enabled", "addr", cfg.RedisAddr)
		}
	}

	repo := repository.NewSQLiteRepository(db)
	provider := poe.NewClient(cfg.PoeBaseURL, cfg.PoeAPIKey)
	chatService := service.NewChatService(repo, provider, historyCache)
	botService := service.NewBotService(repo)

	conversationHandler := api.NewConversationHandler(chatService)
	botHandler := api.NewBotHandler(botService)
	router := api.NewRouter(conversationHandler, botHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for the streaming endpoint
		IdleTimeout:       120 * time.Second,
	}

	return &App{DB: db, Redis: rdb, Server: server}, nil
}

// Run loads configuration, builds the app, and serves until the listener
// fails. The exit code is returned rather than calling os.Exit so main stays
// trivially testable.
func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)
	logConfigSource()

	if cfg.PoeAPIKey == "" {
		slog.Warn("POE_API_KEY is not set; turns will fail until it is configured.")
	}

	a, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}
	defer func() {
		if err := a.DB.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
		if a.Redis != nil {
			if err := a.Redis.Close(); err != nil {
				slog.Error("Failed to close redis connection", "error", err)
			}
		}
	}()
	slog.Info("Successfully connected to SQLite database.", "path", cfg.DatabasePath)

	slog.Info("Starting server", "port", cfg.AppPort)
	if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		return 1
	}

	return 0
}

func logConfigSource() {
	if file := viper.ConfigFileUsed(); file != "" {
		slog.Info("Successfully loaded configuration from file.", "file", file)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
