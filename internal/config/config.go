package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// PathEnv names the optional YAML file read before the environment.
const PathEnv = "LAX_CONFIG"

const (
	StorageMemory   = "memory"
	StoragePebble   = "pebble"
	StoragePostgres = "postgres"
)

type Config struct {
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
	Client  Client  `yaml:"client"`
	Log     Log     `yaml:"log"`
}

type Server struct {
	Addr       string  `yaml:"addr" env:"LAX_SERVER_ADDR" env-default:":8080"`
	AuthSecret string  `yaml:"auth_secret" env:"LAX_AUTH_SECRET"`
	RateRPS    float64 `yaml:"rate_rps" env:"LAX_RATE_RPS" env-default:"20"`
	RateBurst  int     `yaml:"rate_burst" env:"LAX_RATE_BURST" env-default:"40"`
}

type Storage struct {
	Driver     string   `yaml:"driver" env:"LAX_STORAGE" env-default:"memory"`
	PebblePath string   `yaml:"pebble_path" env:"LAX_PEBBLE_PATH" env-default:"./data/lax"`
	Postgres   Postgres `yaml:"postgres"`
	// SeedDemo adds the demo users on start.
	SeedDemo bool `yaml:"seed_demo" env:"LAX_SEED_DEMO" env-default:"false"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"lax"`
	Password string `yaml:"password" env:"DB_PASSWORD" env-default:"lax_dev_password"`
	Database string `yaml:"database" env:"DB_NAME" env-default:"lax"`
}

func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.Database)
}

// Client configures the remote backend transport and the chat client.
type Client struct {
	RemoteURL    string        `yaml:"remote_url" env:"LAX_REMOTE_URL"`
	Token        string        `yaml:"token" env:"LAX_TOKEN"`
	PollInterval time.Duration `yaml:"poll_interval" env:"LAX_POLL_INTERVAL" env-default:"3000ms"`
	RetryBase    time.Duration `yaml:"retry_base" env:"LAX_RETRY_BASE" env-default:"500ms"`
	MaxAttempts  uint          `yaml:"max_attempts" env:"LAX_MAX_ATTEMPTS" env-default:"4"`
	HistoryLimit int           `yaml:"history_limit" env:"LAX_HISTORY_LIMIT" env-default:"100"`
	Timeout      time.Duration `yaml:"timeout" env:"LAX_CLIENT_TIMEOUT" env-default:"10s"`
}

type Log struct {
	Level  string `yaml:"level" env:"LAX_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LAX_LOG_FORMAT" env-default:"json"`
}

func Load() (*Config, error) {
	var cfg Config

	if path, ok := os.LookupEnv(PathEnv); ok && path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
