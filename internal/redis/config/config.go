package config

import "time"

type Config struct {
	Host          string `env:"HOST" env-default:"localhost"`
	Port          int    `env:"PORT" env-default:"6379"`
	User          string `env:"USER" env-default:""`
	Password      string `env:"PASSWORD" env-required:"true"`
	Database      int    `env:"DB" env-default:"0"`
	TLS           bool   `env:"ENABLE_TLS" env-default:"false"`
	MinTLSVersion uint16 `env:"MIN_TLS_VERSION" env-default:"771"` // 771 - TLS 1.2

	WaitAttempts int           `env:"WAIT_ATTEMPTS" env-default:"10"`
	WaitInterval time.Duration `env:"WAIT_INTERVAL" env-default:"1s"`
}
