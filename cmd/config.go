package main

import "time"

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=12345" validate:"min=1,max=65535"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	RegisterTimeout time.Duration `env:"REGISTER_TIMEOUT,default=5s" validate:"gt=0"`
	PollTimeout     time.Duration `env:"POLL_TIMEOUT,default=500ms" validate:"gt=0"`
	SendTimeout     time.Duration `env:"SEND_TIMEOUT,default=5s" validate:"gt=0"`
	MaxLineLength   int           `env:"MAX_LINE_LENGTH,default=4096" validate:"gt=0"`
	MaxNameLength   int           `env:"MAX_NAME_LENGTH,default=32" validate:"gt=0"`

	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=30s" validate:"gt=0"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
}
