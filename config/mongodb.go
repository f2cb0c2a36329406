package config

type MongoDB struct {
	URI      string `mapstructure:"URI" json:"uri" yaml:"uri"`
	Options  string `mapstructure:"OPTIONS" json:"options" yaml:"options"`
	Database string `mapstructure:"DATABASE" json:"database" yaml:"database"`
}

// Store 選擇文件儲存實作：mongo（預設）或 memory（本機開發、測試）
type Store struct {
	Driver string `mapstructure:"DRIVER" json:"driver" yaml:"driver"`
}
