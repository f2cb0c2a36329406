package config

type RateLimit struct {
	// 登入／註冊：每個 IP 在視窗內的次數
	AuthLimit     int   `mapstructure:"AUTH_LIMIT" json:"auth_limit" yaml:"auth_limit"`
	AuthWindowSec int64 `mapstructure:"AUTH_WINDOW_SEC" json:"auth_window_sec" yaml:"auth_window_sec"`
	// 語音憑證：每個使用者在視窗內的次數
	VoiceLimit     int   `mapstructure:"VOICE_LIMIT" json:"voice_limit" yaml:"voice_limit"`
	VoiceWindowSec int64 `mapstructure:"VOICE_WINDOW_SEC" json:"voice_window_sec" yaml:"voice_window_sec"`
}
