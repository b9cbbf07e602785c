package logx

import (
	"fmt"
	"log"
	"os"
)

const (
	Reset = "\033[0m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
)

var levelColor = map[string]string{
	"DEBUG": Cyan,
	"INFO":  Blue,
	"WARN":  Yellow,
	"ERROR": Red,
}

// colors per component
var componentColor = map[string]string{
	"Api":    Cyan,
	"Chat":   Blue,
	"LLM":    Magenta,
	"HTTP":   Blue,
	"Config": Magenta,
	"Health": Yellow,
	"App":    Green,
}

var levelRank = map[string]int{
	"DEBUG": 0,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

var minLevel = levelRank["INFO"]

// SetLevel sets the minimum level that gets logged. Unknown values are ignored.
func SetLevel(level string) {
	if r, ok := levelRank[normalize(level)]; ok {
		minLevel = r
	}
}

func normalize(level string) string {
	switch level {
	case "debug", "DEBUG":
		return "DEBUG"
	case "info", "INFO":
		return "INFO"
	case "warn", "WARN", "warning":
		return "WARN"
	case "error", "ERROR":
		return "ERROR"
	}
	return ""
}

// detect color mode
func useColor() bool {
	return os.Getenv("APP_ENV") == "local" || os.Getenv("APP_ENV") == "dev"
}

// --- Public API ---

func Debug(component, msg string, args ...any) {
	logGeneric("DEBUG", component, msg, args...)
}

func Info(component, msg string, args ...any) {
	logGeneric("INFO", component, msg, args...)
}

func Warn(component, msg string, args ...any) {
	logGeneric("WARN", component, msg, args...)
}

func Error(component, msg string, args ...any) {
	logGeneric("ERROR", component, msg, args...)
}

// L logs with a request id so all lines of one request can be correlated.
func L(id, component, msg string, args ...any) {
	full := fmt.Sprintf(msg, args...)
	logGeneric("INFO", component, "[%s] %s", id, full)
}

// --- Core ---

func logGeneric(level, component, msg string, args ...any) {
	if levelRank[level] < minLevel {
		return
	}
	full := fmt.Sprintf(msg, args...)

	if useColor() {
		lc := levelColor[level]
		cc := componentColor[component]
		log.Printf("%s[%s]%s %s[%s]%s %s",
			lc, level, Reset,
			cc, component, Reset,
			full,
		)
	} else {
		log.Printf("[%s] [%s] %s", level, component, full)
	}
}
