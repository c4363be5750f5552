package db

import (
	"fmt"
	"log/slog"
	"time"

	"Gin_postgres_redis_lab_inventory/config"
	"Gin_postgres_redis_lab_inventory/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// Open 按 DB_DRIVER 连接 Postgres 或 SQLite，并完成迁移
func Open(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	var (
		conn *gorm.DB
		err  error
	)
	switch cfg.DBDriver {
	case "sqlite":
		conn, err = OpenSQLite(
			fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.SQLitePath),
		)
	default:
		conn, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), gormConfig())
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("database connected", "driver", cfg.DBDriver)
	return conn, nil
}

// OpenSQLite 单连接：SQLite 只有一个写者，所有事务在连接池上排队
func OpenSQLite(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	for _, m := range models.MigrateModels {
		if err := db.AutoMigrate(m); err != nil {
			return err
		}
	}
	return nil
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
