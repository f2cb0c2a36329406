package config

type Identity struct {
	// oidc（預設）或 jwt（本機以共用密鑰簽發）
	Verifier string `mapstructure:"VERIFIER" json:"verifier" yaml:"verifier"`
	// Keycloak realm issuer，例如 https://sso.example.com/realms/joingo
	IssuerURL    string `mapstructure:"ISSUER_URL" json:"issuer_url" yaml:"issuer_url"`
	ClientID     string `mapstructure:"CLIENT_ID" json:"client_id" yaml:"client_id"`
	ClientSecret string `mapstructure:"CLIENT_SECRET" json:"client_secret" yaml:"client_secret"`
	// Keycloak admin API 根路徑，例如 https://sso.example.com/admin/realms/joingo
	AdminURL string `mapstructure:"ADMIN_URL" json:"admin_url" yaml:"admin_url"`
	// VERIFIER=jwt 時使用
	JWTSecret string `mapstructure:"JWT_SECRET" json:"jwt_secret" yaml:"jwt_secret"`
	// 呼叫 IdP 的逾時（毫秒）
	Timeout int64 `mapstructure:"TIMEOUT" json:"timeout" yaml:"timeout"`
}
