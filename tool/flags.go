package tool

import "flag"

// Config holds runtime overrides from CLI flags.
type Config struct {
	Log           string
	UseConfigPath string
	UseDataPath   string
	UsePort       int
	UseRemote     string  // if set, run as a client against this command API instead of serving
	UseRateLimit  float64 // gateway requests per second in client mode, 0 keeps the config value
	SkipNotify    bool    // if true, the notify websocket is not exposed
}

// SetFlags parses CLI flags and returns the override config.
func SetFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	flag.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	flag.StringVar(&cfg.UseDataPath, "useDataPath", "", "override backend data file path")
	flag.IntVar(&cfg.UsePort, "usePort", 0, "override command API listen port")
	flag.StringVar(&cfg.UseRemote, "useRemote", "", "sync against a remote command API (e.g. http://127.0.0.1:53320) instead of serving")
	flag.Float64Var(&cfg.UseRateLimit, "useRateLimit", 0, "limit gateway requests per second in client mode")
	flag.BoolVar(&cfg.SkipNotify, "skipNotify", false, "if true, do not expose the notify websocket")
	flag.Parse()
	return cfg
}
