package config

type Configuration struct {
	App       App             `mapstructure:"APP" json:"app" yaml:"app"`
	Log       Log             `mapstructure:"LOG" json:"log" yaml:"log"`
	Store     Store           `mapstructure:"STORE" json:"store" yaml:"store"`
	MongoDB   MongoDB         `mapstructure:"MONGODB" json:"mongodb" yaml:"mongodb"`
	Redis     Redis           `mapstructure:"REDIS" json:"redis" yaml:"redis"`
	Telemetry TelemetryConfig `mapstructure:"TELEMETRY" yaml:"telemetry"`
	Fluentd   Fluentd         `mapstructure:"FLUENTD" yaml:"fluentd"`
	Identity  Identity        `mapstructure:"IDENTITY" json:"identity" yaml:"identity"`
	Voice     Voice           `mapstructure:"VOICE" json:"voice" yaml:"voice"`
	Chat      Chat            `mapstructure:"CHAT" json:"chat" yaml:"chat"`
	MinIO     MinIO           `mapstructure:"MINIO" json:"minio" yaml:"minio"`
	RateLimit RateLimit       `mapstructure:"RATE_LIMIT" json:"rate_limit" yaml:"rate_limit"`
}
