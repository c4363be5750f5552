package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"Gin_postgres_redis_lab_inventory/config"
	"Gin_postgres_redis_lab_inventory/db"
	"Gin_postgres_redis_lab_inventory/session"
	"Gin_postgres_redis_lab_inventory/workflow"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router   *gin.Engine
	DB       *gorm.DB
	RDB      *redis.Client
	Repo     *db.Repo
	Engine   *workflow.Engine
	Sweeper  *workflow.Sweeper
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry

	sessions *session.Store
	seen     *session.Throttle
}

func (a *App) Sessions() *session.Store        { return a.sessions }
func (a *App) SeenThrottle() *session.Throttle { return a.seen }

func MustNew(ctx context.Context, cfg *config.Config) *App {
	a, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("app: %v", err)
	}
	return a
}

// New 连接数据库和 Redis，组装 App
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := NewLogger(cfg, os.Stderr)

	// --- DB ---
	conn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = db.Close(conn)
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	logger.Info("redis connected", "addr", cfg.RedisAddr)

	return Build(cfg, conn, rdb, logger), nil
}

// Build 用已建立的连接组装 App（测试里直接传 sqlite + miniredis）
func Build(cfg *config.Config, conn *gorm.DB, rdb *redis.Client, logger *slog.Logger) *App {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	repo := db.NewRepo(conn).WithLockTimeout(cfg.LockTimeout)
	engine := workflow.New(repo,
		workflow.WithLoanPeriod(cfg.LoanPeriod),
		workflow.WithRestockOnReturn(cfg.RestockOnReturn),
		workflow.WithLogger(logger),
		workflow.WithMetrics(workflow.NewMetrics(reg)),
	)

	// --- Gin ---
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger), RequestMetrics(reg), RequestTimeout(cfg.RequestTimeout))

	return &App{
		Router:   r,
		DB:       conn,
		RDB:      rdb,
		Repo:     repo,
		Engine:   engine,
		Sweeper:  workflow.NewSweeper(engine, cfg.OverdueSweepInterval),
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		sessions: session.NewStore(rdb, cfg.SessionTTL),
		seen:     session.NewThrottle(rdb, "lab:lastseen:", cfg.SeenThrottle),
	}
}

func (a *App) Close() {
	a.Sweeper.Stop()
	_ = a.RDB.Close()
	_ = db.Close(a.DB)
}

// NewLogger 按 LOG_FORMAT / LOG_LEVEL 构造 slog
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("component", "lab-inventory")
}
