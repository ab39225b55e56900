package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends selectable via store.backend.
const (
	BackendPostgres = "postgres"
	BackendMacro    = "macro"
	BackendSheetDB  = "sheetdb"
)

type App struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type Server struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

type Auth struct {
	// APIKey guards the whole API surface. Empty means auth is disabled,
	// which is only sensible in development.
	APIKey string `mapstructure:"api_key"`
}

type Store struct {
	Backend string `mapstructure:"backend"`
}

type Database struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	EnableTLS   bool   `mapstructure:"enable_tls"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type Redis struct {
	Enabled     bool          `mapstructure:"enabled"`
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PoolSize    int           `mapstructure:"pool_size"`
	EnableTLS   bool          `mapstructure:"enable_tls"`
	OverviewTTL time.Duration `mapstructure:"overview_ttl"`
}

type RabbitMQ struct {
	Enabled   bool   `mapstructure:"enabled"`
	URL       string `mapstructure:"url"`
	EnableTLS bool   `mapstructure:"enable_tls"`
	Exchange  string `mapstructure:"exchange"`
}

type MacroSheet struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SheetDB struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Sheets struct {
	Macro   MacroSheet `mapstructure:"macro"`
	SheetDB SheetDB    `mapstructure:"sheetdb"`
}

type S3 struct {
	Enabled      bool          `mapstructure:"enabled"`
	Region       string        `mapstructure:"region"`
	Bucket       string        `mapstructure:"bucket"`
	Endpoint     string        `mapstructure:"endpoint"`
	AccessKey    string        `mapstructure:"access_key"`
	SecretKey    string        `mapstructure:"secret_key"`
	UsePathStyle bool          `mapstructure:"use_path_style"`
	PresignTTL   time.Duration `mapstructure:"presign_ttl"`
}

type Telemetry struct {
	Enabled      bool    `mapstructure:"enabled"`
	OtlpEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

type Project struct {
	IDPrefix string `mapstructure:"id_prefix"`
}

type Config struct {
	App       App       `mapstructure:"app"`
	Server    Server    `mapstructure:"server"`
	Log       Log       `mapstructure:"log"`
	Auth      Auth      `mapstructure:"auth"`
	Store     Store     `mapstructure:"store"`
	Database  Database  `mapstructure:"database"`
	Redis     Redis     `mapstructure:"redis"`
	RabbitMQ  RabbitMQ  `mapstructure:"rabbitmq"`
	Sheets    Sheets    `mapstructure:"sheets"`
	S3        S3        `mapstructure:"s3"`
	Telemetry Telemetry `mapstructure:"telemetry"`
	Project   Project   `mapstructure:"project"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sitedash")
	v.SetDefault("app.env", "development")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")

	v.SetDefault("auth.api_key", "")

	v.SetDefault("store.backend", BackendPostgres)

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 100)
	v.SetDefault("database.enable_tls", false)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.enable_tls", false)
	v.SetDefault("redis.overview_ttl", 30*time.Second)

	v.SetDefault("rabbitmq.enabled", false)
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.enable_tls", false)
	v.SetDefault("rabbitmq.exchange", "sitedash.changes")

	v.SetDefault("sheets.macro.url", "")
	v.SetDefault("sheets.macro.token", "")
	v.SetDefault("sheets.macro.timeout", 20*time.Second)
	v.SetDefault("sheets.sheetdb.url", "")
	v.SetDefault("sheets.sheetdb.api_key", "")
	v.SetDefault("sheets.sheetdb.timeout", 15*time.Second)

	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.use_path_style", false)
	v.SetDefault("s3.presign_ttl", 15*time.Minute)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.sample_ratio", 1.0)

	v.SetDefault("project.id_prefix", "HT")
}

// Load reads config.yaml from the working directory or ./config, then lets
// SITEDASH_* environment variables override every key (dots become
// underscores, e.g. SITEDASH_DATABASE_DSN).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("SITEDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env values to Unmarshal, so bind
	// every known key explicitly. setDefaults declares them all.
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendPostgres, BackendMacro, BackendSheetDB:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == BackendPostgres && c.Database.DSN == "" {
		return fmt.Errorf("store backend %s requires database.dsn", BackendPostgres)
	}
	if c.Store.Backend == BackendMacro && c.Sheets.Macro.URL == "" {
		return fmt.Errorf("store backend %s requires sheets.macro.url", BackendMacro)
	}
	if c.Store.Backend == BackendSheetDB && c.Sheets.SheetDB.URL == "" {
		return fmt.Errorf("store backend %s requires sheets.sheetdb.url", BackendSheetDB)
	}
	return nil
}
