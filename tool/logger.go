package tool

import (
	"strings"

	"github.com/charmbracelet/log"
)

var DefaultLogger = log.Default()

func InitLogger() {
	DefaultLogger.SetTimeFormat("2006-01-02 15:04:05")
	DefaultLogger.SetReportCaller(true)
}

// SetLogMode applies the -log flag, falling back to the config file level
// when the flag is empty.
func SetLogMode(mode, configLevel string) {
	if mode == "" {
		if lvl, err := log.ParseLevel(configLevel); err == nil {
			DefaultLogger.SetLevel(lvl)
			return
		}
		DefaultLogger.SetLevel(log.DebugLevel)
		return
	}
	switch strings.ToLower(mode) {
	case "dev":
		DefaultLogger.SetLevel(log.DebugLevel)
	case "prod":
		DefaultLogger.SetLevel(log.InfoLevel)
	case "none":
		DefaultLogger.SetLevel(log.FatalLevel)
	default:
		DefaultLogger.Warnf("Unknown log mode %q, using debug level", mode)
		DefaultLogger.SetLevel(log.DebugLevel)
	}
}
