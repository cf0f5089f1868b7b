package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	redisconfig "github.com/Concert-Mate/Music-Service/internal/redis/config"
	yandexconfig "github.com/Concert-Mate/Music-Service/internal/yandex/config"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const dotEnvFile = ".env"

type Config struct {
	LogLevel  string `env:"LOG_LEVEL" env-default:"INFO"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`

	Host string `env:"HOST" env-default:"localhost"`
	Port int    `env:"PORT" env-default:"8000"`

	ConcertsExpirationSeconds   int `env:"CONCERTS_EXPIRATION_SECONDS" env-default:"3600"`
	TrackListsExpirationSeconds int `env:"TRACK_LISTS_EXPIRATION_SECONDS" env-default:"86400"`

	RedisConfig       redisconfig.Config  `env-prefix:"REDIS_"`
	YandexMusicConfig yandexconfig.Config `env-prefix:"YANDEX_MUSIC_"`
	OtelConfig        OtelConfig          `env-prefix:"OTEL_"`
}

type OtelConfig struct {
	Endpoint    string `env:"ENDPOINT" env-default:""`
	ServiceName string `env:"SERVICE_NAME" env-default:"music-service"`
}

// Load reads an optional .env file from the working directory and then the
// process environment. Variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(err, "failed to load %s", dotEnvFile)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to read environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Host == "":
		return errors.New("HOST must not be empty")
	case !validPort(c.Port):
		return fmt.Errorf("PORT must be in 1..65535, got %d", c.Port)
	case c.ConcertsExpirationSeconds <= 0:
		return fmt.Errorf("CONCERTS_EXPIRATION_SECONDS must be positive, got %d", c.ConcertsExpirationSeconds)
	case c.TrackListsExpirationSeconds <= 0:
		return fmt.Errorf("TRACK_LISTS_EXPIRATION_SECONDS must be positive, got %d", c.TrackListsExpirationSeconds)
	case c.RedisConfig.Host == "":
		return errors.New("REDIS_HOST must not be empty")
	case !validPort(c.RedisConfig.Port):
		return fmt.Errorf("REDIS_PORT must be in 1..65535, got %d", c.RedisConfig.Port)
	case c.RedisConfig.WaitAttempts <= 0:
		return fmt.Errorf("REDIS_WAIT_ATTEMPTS must be positive, got %d", c.RedisConfig.WaitAttempts)
	case c.YandexMusicConfig.BaseURL == "":
		return errors.New("YANDEX_MUSIC_BASE_URL must not be empty")
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) ConcertsExpiration() time.Duration {
	return time.Duration(c.ConcertsExpirationSeconds) * time.Second
}

func (c *Config) TrackListsExpiration() time.Duration {
	return time.Duration(c.TrackListsExpirationSeconds) * time.Second
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}
