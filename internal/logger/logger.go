package logger

import (
	"log"
	"os"
)

var (
	stdLogger *log.Logger
	debugOn   bool
)

func init() {
	stdLogger = log.New(os.Stdout, "[spiderfoot] ", log.LstdFlags|log.Lshortfile)
}

// SetDebug toggles Debugf output for the whole process.
func SetDebug(on bool) {
	debugOn = on
}

func Debugf(format string, v ...interface{}) {
	if !debugOn {
		return
	}
	stdLogger.Printf("[DEBUG] "+format, v...)
}

func Infof(format string, v ...interface{}) {
	stdLogger.Printf("[INFO] "+format, v...)
}

func Errorf(format string, v ...interface{}) {
	stdLogger.Printf("[ERROR] "+format, v...)
}

func Fatalf(format string, v ...interface{}) {
	stdLogger.Fatalf("[FATAL] "+format, v...)
}
