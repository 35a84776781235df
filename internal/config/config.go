package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	BackendInMemory = "inmemory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendTables   = "aztables"

	TransportNone    = "none"
	TransportRedis   = "redis"
	TransportAzQueue = "azqueue"

	EnvPrefix = "PLANNER"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Storage  StorageConfig  `yaml:"storage"`
	Notifier NotifierConfig `yaml:"notifier"`
	Planner  PlannerConfig  `yaml:"planner"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	RateLimit       int           `yaml:"rate_limit"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type StorageConfig struct {
	Backend  string         `yaml:"backend"` // inmemory, file, redis, postgres, aztables
	File     FileConfig     `yaml:"file"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Tables   TablesConfig   `yaml:"aztables"`
}

type FileConfig struct {
	Dir string `yaml:"dir"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type PostgresConfig struct {
	URL     string `yaml:"url"`
	Migrate bool   `yaml:"migrate"`
}

type TablesConfig struct {
	ConnectionString string `yaml:"connection_string"`
	Table            string `yaml:"table"`
}

type NotifierConfig struct {
	Transport string        `yaml:"transport"` // none, redis, azqueue
	Redis     RedisConfig   `yaml:"redis"`
	AzQueue   AzQueueConfig `yaml:"azqueue"`
}

type AzQueueConfig struct {
	ConnectionString string `yaml:"connection_string"`
	Queue            string `yaml:"queue"`
}

type PlannerConfig struct {
	Timezone        string        `yaml:"timezone"`
	PreviewLimit    int           `yaml:"preview_limit"`
	OverdueInterval time.Duration `yaml:"overdue_interval"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       100,
		},
		Storage: StorageConfig{
			Backend: BackendInMemory,
			File:    FileConfig{Dir: "data"},
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "planner"},
			Postgres: PostgresConfig{
				Migrate: true,
			},
			Tables: TablesConfig{Table: "plannerslots"},
		},
		Notifier: NotifierConfig{
			Transport: TransportNone,
			Redis:     RedisConfig{Addr: "localhost:6379", Prefix: "planner:reminders"},
			AzQueue:   AzQueueConfig{Queue: "planner-reminders"},
		},
		Planner: PlannerConfig{
			Timezone:        "Local",
			PreviewLimit:    2,
			OverdueInterval: 5 * time.Minute,
		},
	}
}

// Load читает yaml-файл поверх значений по умолчанию и применяет переменные PLANNER_*.
// Отсутствие файла не ошибка.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
		default:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
				return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	num := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v.IsSet(key) {
			*dst = v.GetDuration(key)
		}
	}
	flag := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}

	str("server.host", &cfg.Server.Host)
	str("server.port", &cfg.Server.Port)
	num("server.rate_limit", &cfg.Server.RateLimit)
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = strings.Split(v.GetString("server.allowed_origins"), ",")
	}

	flag("logging.development", &cfg.Logging.Development)

	str("storage.backend", &cfg.Storage.Backend)
	str("storage.file.dir", &cfg.Storage.File.Dir)
	str("storage.redis.addr", &cfg.Storage.Redis.Addr)
	str("storage.redis.password", &cfg.Storage.Redis.Password)
	num("storage.redis.db", &cfg.Storage.Redis.DB)
	str("storage.postgres.url", &cfg.Storage.Postgres.URL)
	flag("storage.postgres.migrate", &cfg.Storage.Postgres.Migrate)
	str("storage.aztables.connection_string", &cfg.Storage.Tables.ConnectionString)
	str("storage.aztables.table", &cfg.Storage.Tables.Table)

	str("notifier.transport", &cfg.Notifier.Transport)
	str("notifier.redis.addr", &cfg.Notifier.Redis.Addr)
	str("notifier.redis.password", &cfg.Notifier.Redis.Password)
	str("notifier.redis.prefix", &cfg.Notifier.Redis.Prefix)
	str("notifier.azqueue.connection_string", &cfg.Notifier.AzQueue.ConnectionString)
	str("notifier.azqueue.queue", &cfg.Notifier.AzQueue.Queue)

	str("planner.timezone", &cfg.Planner.Timezone)
	num("planner.preview_limit", &cfg.Planner.PreviewLimit)
	dur("planner.overdue_interval", &cfg.Planner.OverdueInterval)
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendInMemory, BackendFile, BackendRedis, BackendTables:
	case BackendPostgres:
		if c.Storage.Postgres.URL == "" {
			return errors.New("storage.postgres.url обязателен для backend postgres")
		}
	default:
		return fmt.Errorf("неизвестный storage.backend %q", c.Storage.Backend)
	}

	if c.Storage.Backend == BackendTables && c.Storage.Tables.ConnectionString == "" {
		return errors.New("storage.aztables.connection_string обязателен для backend aztables")
	}

	switch c.Notifier.Transport {
	case "", TransportNone, TransportRedis:
	case TransportAzQueue:
		if c.Notifier.AzQueue.ConnectionString == "" {
			return errors.New("notifier.azqueue.connection_string обязателен для transport azqueue")
		}
	default:
		return fmt.Errorf("неизвестный notifier.transport %q", c.Notifier.Transport)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Planner.OverdueInterval < 0 {
		return errors.New("planner.overdue_interval не может быть отрицательным")
	}
	return nil
}

// Location зона планировщика; пусто или Local это зона процесса
func (c *Config) Location() (*time.Location, error) {
	switch c.Planner.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Planner.Timezone)
	if err != nil {
		return nil, fmt.Errorf("planner.timezone %q: %w", c.Planner.Timezone, err)
	}
	return loc, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
