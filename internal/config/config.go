package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	S3     S3Config
	Log    LogConfig
	CORS   CORSConfig
	Queue  QueueConfig
	Parser ParserConfig
	OCR    OCRConfig
}

// Queue drivers.
const (
	QueueDriverPoll  = "poll"
	QueueDriverAsynq = "asynq"
)

// QueueConfig holds parse queue settings.
type QueueConfig struct {
	PollIntervalSecs int    `mapstructure:"poll_interval_secs"`
	MaxRetries       int    `mapstructure:"max_retries"`
	Concurrency      int    `mapstructure:"concurrency"`
	Driver           string `mapstructure:"driver"`
	RedisURL         string `mapstructure:"redis_url"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserConfig holds layout parsing tunables.
type ParserConfig struct {
	PageWorkers   int     `mapstructure:"page_workers"`
	YTolerance    float64 `mapstructure:"y_tolerance"`
	RowEpsilon    float64 `mapstructure:"row_epsilon"`
	WrapTolerance float64 `mapstructure:"wrap_tolerance"`
	BoundaryPad   float64 `mapstructure:"boundary_pad"`
	EdgeMargin    float64 `mapstructure:"edge_margin"`
	ProfilesPath  string  `mapstructure:"profiles_path"`
}

// OCRConfig holds settings for the optional OCR fallback.
type OCRConfig struct {
	Provider  string        `mapstructure:"provider"`
	Languages []string      `mapstructure:"languages"`
	Cooldown  time.Duration `mapstructure:"cooldown"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`

	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the PACKSLIP_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PACKSLIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "packslip")
	v.SetDefault("db.password", "packslip_secret")
	v.SetDefault("db.name", "packslip_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.conn_max_lifetime", "30m")

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "packslip-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 25)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 5)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.driver", QueueDriverPoll)
	v.SetDefault("queue.redis_url", "redis://localhost:6379/0")

	// Parser defaults
	v.SetDefault("parser.page_workers", 0)
	v.SetDefault("parser.y_tolerance", 3.0)
	v.SetDefault("parser.row_epsilon", 2.0)
	v.SetDefault("parser.wrap_tolerance", 12.0)
	v.SetDefault("parser.boundary_pad", 10.0)
	v.SetDefault("parser.edge_margin", 40.0)
	v.SetDefault("parser.profiles_path", "")

	// OCR defaults
	v.SetDefault("ocr.provider", "none")
	v.SetDefault("ocr.languages", "eng")
	v.SetDefault("ocr.cooldown", "60s")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "PACKSLIP_SERVER_PORT",
		"server.read_timeout":      "PACKSLIP_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "PACKSLIP_SERVER_WRITE_TIMEOUT",
		"server.environment":       "PACKSLIP_SERVER_ENVIRONMENT",
		"db.host":                  "PACKSLIP_DB_HOST",
		"db.port":                  "PACKSLIP_DB_PORT",
		"db.user":                  "PACKSLIP_DB_USER",
		"db.password":              "PACKSLIP_DB_PASSWORD",
		"db.name":                  "PACKSLIP_DB_NAME",
		"db.sslmode":               "PACKSLIP_DB_SSLMODE",
		"db.max_open":              "PACKSLIP_DB_MAX_OPEN",
		"db.max_idle":              "PACKSLIP_DB_MAX_IDLE",
		"db.conn_max_lifetime":     "PACKSLIP_DB_CONN_MAX_LIFETIME",
		"s3.region":                "PACKSLIP_S3_REGION",
		"s3.bucket":                "PACKSLIP_S3_BUCKET",
		"s3.endpoint":              "PACKSLIP_S3_ENDPOINT",
		"s3.access_key":            "PACKSLIP_S3_ACCESS_KEY",
		"s3.secret_key":            "PACKSLIP_S3_SECRET_KEY",
		"s3.max_file_size_mb":      "PACKSLIP_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":        "PACKSLIP_S3_PRESIGN_EXPIRY",
		"log.level":                "PACKSLIP_LOG_LEVEL",
		"log.format":               "PACKSLIP_LOG_FORMAT",
		"cors.allowed_origins":     "PACKSLIP_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs": "PACKSLIP_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":        "PACKSLIP_QUEUE_MAX_RETRIES",
		"queue.concurrency":        "PACKSLIP_QUEUE_CONCURRENCY",
		"queue.driver":             "PACKSLIP_QUEUE_DRIVER",
		"queue.redis_url":          "PACKSLIP_QUEUE_REDIS_URL",
		"parser.page_workers":      "PACKSLIP_PARSER_PAGE_WORKERS",
		"parser.y_tolerance":       "PACKSLIP_PARSER_Y_TOLERANCE",
		"parser.row_epsilon":       "PACKSLIP_PARSER_ROW_EPSILON",
		"parser.wrap_tolerance":    "PACKSLIP_PARSER_WRAP_TOLERANCE",
		"parser.boundary_pad":      "PACKSLIP_PARSER_BOUNDARY_PAD",
		"parser.edge_margin":       "PACKSLIP_PARSER_EDGE_MARGIN",
		"parser.profiles_path":     "PACKSLIP_PARSER_PROFILES_PATH",
		"ocr.provider":             "PACKSLIP_OCR_PROVIDER",
		"ocr.languages":            "PACKSLIP_OCR_LANGUAGES",
		"ocr.cooldown":             "PACKSLIP_OCR_COOLDOWN",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if PACKSLIP_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PACKSLIP_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),

		ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
		Driver:           strings.ToLower(v.GetString("queue.driver")),
		RedisURL:         v.GetString("queue.redis_url"),
	}
	switch cfg.Queue.Driver {
	case QueueDriverPoll, QueueDriverAsynq:
	default:
		return nil, fmt.Errorf("config: unknown queue driver %q", cfg.Queue.Driver)
	}

	cfg.Parser = ParserConfig{
		PageWorkers:   v.GetInt("parser.page_workers"),
		YTolerance:    v.GetFloat64("parser.y_tolerance"),
		RowEpsilon:    v.GetFloat64("parser.row_epsilon"),
		WrapTolerance: v.GetFloat64("parser.wrap_tolerance"),
		BoundaryPad:   v.GetFloat64("parser.boundary_pad"),
		EdgeMargin:    v.GetFloat64("parser.edge_margin"),
		ProfilesPath:  v.GetString("parser.profiles_path"),
	}
	if cfg.Parser.WrapTolerance <= cfg.Parser.RowEpsilon {
		return nil, fmt.Errorf("config: parser.wrap_tolerance (%v) must exceed parser.row_epsilon (%v)",
			cfg.Parser.WrapTolerance, cfg.Parser.RowEpsilon)
	}

	cfg.OCR = OCRConfig{
		Provider:  strings.ToLower(v.GetString("ocr.provider")),
		Languages: splitList(v.GetString("ocr.languages")),
		Cooldown:  v.GetDuration("ocr.cooldown"),
	}

	return cfg, nil
}

// splitList parses a comma-separated string, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
