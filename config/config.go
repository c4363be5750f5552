package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config 从环境变量读取（.env 可选）
type Config struct {
	Port    string `envconfig:"PORT" default:"3001"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"`

	// DB_DRIVER: postgres | sqlite
	DBDriver    string `envconfig:"DB_DRIVER" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"lab_inventory"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"lab_inventory.sqlite"`

	// 等行锁 / 单个请求的上限，0 表示不限
	LockTimeout    time.Duration `envconfig:"LOCK_TIMEOUT" default:"5s"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPwd  string `envconfig:"REDIS_PASSWORD"`

	SessionTTL   time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	SeenThrottle time.Duration `envconfig:"SEEN_THROTTLE" default:"5m"`
	CookieSecure bool          `envconfig:"COOKIE_SECURE" default:"false"`

	// 借用规则
	LoanPeriod           time.Duration `envconfig:"LOAN_PERIOD" default:"336h"`
	RestockOnReturn      bool          `envconfig:"RESTOCK_ON_RETURN" default:"true"`
	OverdueSweepInterval time.Duration `envconfig:"OVERDUE_SWEEP_INTERVAL" default:"1h"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// 例如 "hema"：启动时为其签发一次 admin 会话
	BootstrapAdmin string `envconfig:"BOOTSTRAP_ADMIN"`
}

// LoadEnv 加载 .env（不存在就跳过）
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Printf("no .env loaded: %v", err)
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.LoanPeriod <= 0 {
		return fmt.Errorf("LOAN_PERIOD must be positive, got %s", c.LoanPeriod)
	}
	if c.LockTimeout < 0 || c.RequestTimeout < 0 {
		return fmt.Errorf("LOCK_TIMEOUT and REQUEST_TIMEOUT must not be negative")
	}
	if c.OverdueSweepInterval < 0 {
		return fmt.Errorf("OVERDUE_SWEEP_INTERVAL must not be negative, got %s", c.OverdueSweepInterval)
	}
	return nil
}

// PostgresDSN 优先 DATABASE_URL，否则拼接 DB_* 变量
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}
