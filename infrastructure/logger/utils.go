package logger

import (
	"time"
)

// LogAndMeasureExecutionTime logs functionName at debug level and returns a
// function which logs how long it took when called.
func LogAndMeasureExecutionTime(log *Logger, functionName string) (onEnd func()) {
	start := time.Now()
	log.Debugf("%s start", functionName)
	return func() {
		log.Debugf("%s end. Took: %s", functionName, time.Since(start))
	}
}
