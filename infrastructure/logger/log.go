package logger

import (
	"sort"

	"github.com/pkg/errors"
)

// BackendLog is the logging backend used to create all subsystem loggers.
var BackendLog = NewBackend()

// SubsystemTags is an enum of all sub system tags
var SubsystemTags = struct {
	WIRE,
	MRKL,
	MINR,
	RGTS,
	ADDR,
	BPCT string
}{
	WIRE: "WIRE",
	MRKL: "MRKL",
	MINR: "MINR",
	RGTS: "RGTS",
	ADDR: "ADDR",
	BPCT: "BPCT",
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]*Logger{
	SubsystemTags.WIRE: BackendLog.Logger(SubsystemTags.WIRE),
	SubsystemTags.MRKL: BackendLog.Logger(SubsystemTags.MRKL),
	SubsystemTags.MINR: BackendLog.Logger(SubsystemTags.MINR),
	SubsystemTags.RGTS: BackendLog.Logger(SubsystemTags.RGTS),
	SubsystemTags.ADDR: BackendLog.Logger(SubsystemTags.ADDR),
	SubsystemTags.BPCT: BackendLog.Logger(SubsystemTags.BPCT),
}

// Get returns a logger of a specific sub system
func Get(tag string) (logger *Logger, ok bool) {
	logger, ok = subsystemLoggers[tag]
	return
}

// SetLogLevel sets the logging level for provided subsystem. Invalid
// subsystems are ignored. Uninitialized subsystems are dynamically created as
// needed.
func SetLogLevel(subsystemID string, logLevel string) error {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return errors.Errorf("unknown subsystem %s", subsystemID)
	}
	level, ok := LevelFromString(logLevel)
	if !ok {
		return errors.Errorf("invalid log level %s", logLevel)
	}
	logger.SetLevel(level)
	return nil
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level.
func SetLogLevels(logLevel string) error {
	for subsystemID := range subsystemLoggers {
		err := SetLogLevel(subsystemID, logLevel)
		if err != nil {
			return err
		}
	}
	return nil
}

// SupportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func SupportedSubsystems() []string {
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)
	return subsystems
}
