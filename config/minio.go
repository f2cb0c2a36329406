package config

type MinIO struct {
	Endpoint  string `mapstructure:"ENDPOINT" json:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"ACCESS_KEY" json:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"SECRET_KEY" json:"secret_key" yaml:"secret_key"`
	Bucket    string `mapstructure:"BUCKET" json:"bucket" yaml:"bucket"`
	UseSSL    bool   `mapstructure:"USE_SSL" json:"use_ssl" yaml:"use_ssl"`
	// 對外公開的物件網址前綴；空值時以 endpoint/bucket 組合
	PublicURL string `mapstructure:"PUBLIC_URL" json:"public_url" yaml:"public_url"`
}
