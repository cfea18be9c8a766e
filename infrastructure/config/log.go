package config

import (
	"path/filepath"

	"github.com/btcprim/btcprim/infrastructure/logger"
	"github.com/pkg/errors"
)

const (
	defaultLogLevel       = "info"
	defaultLogFilename    = "btcprim.log"
	defaultErrLogFilename = "btcprim_err.log"
)

// LogFlags holds the logging configuration shared by commands.
type LogFlags struct {
	LogDir   string `long:"logdir" description:"Directory to log output; no log files are written if empty"`
	LogLevel string `short:"d" long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical, off}"`
}

// DefaultLogFlags returns the logging defaults.
func DefaultLogFlags() LogFlags {
	return LogFlags{LogLevel: defaultLogLevel}
}

// InitLog sets the level of every subsystem logger and, when a log
// directory is set, starts writing to rotated log files in it.
func (logFlags *LogFlags) InitLog() error {
	err := logger.SetLogLevels(logFlags.LogLevel)
	if err != nil {
		return errors.Wrapf(err, "invalid --loglevel")
	}
	if logFlags.LogDir == "" {
		return nil
	}
	logger.InitLog(filepath.Join(logFlags.LogDir, defaultLogFilename),
		filepath.Join(logFlags.LogDir, defaultErrLogFilename))
	return nil
}
