package logger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

// Logger writes tagged, leveled messages for one subsystem to a Backend.
// It is safe for concurrent use.
type Logger struct {
	level   uint32
	tag     string
	backend *Backend
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	return Level(atomic.LoadUint32(&l.level))
}

// SetLevel changes the logging level.
func (l *Logger) SetLevel(level Level) {
	atomic.StoreUint32(&l.level, uint32(level))
}

// Tracef formats a message at the trace level.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.writef(LevelTrace, format, args...)
}

// Debugf formats a message at the debug level.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.writef(LevelDebug, format, args...)
}

// Infof formats a message at the info level.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.writef(LevelInfo, format, args...)
}

// Warnf formats a message at the warn level.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.writef(LevelWarn, format, args...)
}

// Errorf formats a message at the error level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.writef(LevelError, format, args...)
}

// Criticalf formats a message at the critical level.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.writef(LevelCritical, format, args...)
}

func (l *Logger) writef(level Level, format string, args ...interface{}) {
	if level < l.Level() {
		return
	}
	l.backend.write(level, l.formatLine(level, fmt.Sprintf(format, args...)))
}

// formatLine renders "2006-01-02 15:04:05.000 [LVL] TAG: file:line message\n".
func (l *Logger) formatLine(level Level, message string) []byte {
	var buf bytes.Buffer
	buf.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	buf.WriteString(" [")
	buf.WriteString(level.String())
	buf.WriteString("] ")
	buf.WriteString(l.tag)
	buf.WriteString(": ")
	if l.backend.flag&(LogFlagShortFile|LogFlagLongFile) != 0 {
		// writef and its exported caller sit between us and the callsite.
		_, file, line, ok := runtime.Caller(3)
		if !ok {
			file, line = "???", 0
		}
		if l.backend.flag&LogFlagShortFile != 0 {
			file = filepath.Base(file)
		}
		buf.WriteString(file)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(line))
		buf.WriteByte(' ')
	}
	buf.WriteString(message)
	buf.WriteByte('\n')
	return buf.Bytes()
}

// InitLog attaches log file and error log file to the backend log and starts
// it. It exits the process if either file can't be opened.
func InitLog(logFile, errLogFile string) {
	err := BackendLog.AddLogFile(logFile, LevelTrace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator for level %s: %s", logFile, LevelTrace, err)
		os.Exit(1)
	}
	err = BackendLog.AddLogFile(errLogFile, LevelWarn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator for level %s: %s", errLogFile, LevelWarn, err)
		os.Exit(1)
	}
	err = BackendLog.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting the logger: %s ", err)
		os.Exit(1)
	}
}
