package types

// AppConfig represents the application configuration loaded from config file
type AppConfig struct {
	Port           int     `yaml:"port"`
	DataPath       string  `yaml:"dataPath"`       // backend config tree, JSON
	RemoteURL      string  `yaml:"remoteURL"`      // command API used in client mode
	LogLevel       string  `yaml:"logLevel"`       // debug|info|warn|error
	GatewayRateRPS float64 `yaml:"gatewayRateRPS"` // 0 = no limit
	NotifyWS       bool    `yaml:"notifyWS"`
	IdentityTTLMin int     `yaml:"identityTTLMin,omitempty"`
	BackupCron     string  `yaml:"backupCron"` // six-field cron spec, empty disables backups
	BackupDir      string  `yaml:"backupDir"`
	BackupKeep     int     `yaml:"backupKeep"`
}
