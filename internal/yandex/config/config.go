package config

import "time"

type Config struct {
	BaseURL string        `env:"BASE_URL" env-default:"https://api.music.yandex.net"`
	Timeout time.Duration `env:"TIMEOUT" env-default:"10s"`
}
