package config

type Voice struct {
	ServiceURL string `mapstructure:"SERVICE_URL" json:"service_url" yaml:"service_url"`
	// 與語音服務共用的 HMAC 密鑰；未設定時不簽發 token
	ServiceToken    string `mapstructure:"SERVICE_TOKEN" json:"service_token" yaml:"service_token"`
	WebRTCSignalURL string `mapstructure:"WEBRTC_SIGNAL_URL" json:"webrtc_signal_url" yaml:"webrtc_signal_url"`
	ICEServerURL    string `mapstructure:"ICE_SERVER_URL" json:"ice_server_url" yaml:"ice_server_url"`
	ICEUsername     string `mapstructure:"ICE_USERNAME" json:"ice_username" yaml:"ice_username"`
	ICECredential   string `mapstructure:"ICE_CREDENTIAL" json:"ice_credential" yaml:"ice_credential"`
	// 是否啟動 voice bridge
	BridgeEnabled bool `mapstructure:"BRIDGE_ENABLED" json:"bridge_enabled" yaml:"bridge_enabled"`
}

type Chat struct {
	ServiceURL   string `mapstructure:"SERVICE_URL" json:"service_url" yaml:"service_url"`
	ServiceToken string `mapstructure:"SERVICE_TOKEN" json:"service_token" yaml:"service_token"`
}
