// Package log provides module-scoped leveled loggers shared by the renderer
// packages and the command line front-end.
package log

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

// Level selects the verbosity of all loggers.
type Level int

const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level:.4s}]%{color:reset} %{message}`,
)

var (
	leveledBackend logging.LeveledBackend
	currentLevel   = Notice
)

// Logger is the subset of the go-logging API used by the renderer.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Noticef(format string, v ...interface{})
	Warningf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// New returns a logger tagged with the given module name.
func New(module string) Logger {
	return logging.MustGetLogger(module)
}

// SetSink redirects all log output to w, keeping the current level.
func SetSink(w io.Writer) {
	backend := logging.NewBackendFormatter(logging.NewLogBackend(w, "", 0), format)
	leveledBackend = logging.AddModuleLevel(backend)
	logging.SetBackend(leveledBackend)
	SetLevel(currentLevel)
}

// SetLevel changes the verbosity of every module.
func SetLevel(level Level) {
	currentLevel = level

	var l logging.Level
	switch level {
	case Debug:
		l = logging.DEBUG
	case Info:
		l = logging.INFO
	case Notice:
		l = logging.NOTICE
	case Warning:
		l = logging.WARNING
	default:
		l = logging.ERROR
	}
	leveledBackend.SetLevel(l, "")
}

func init() {
	SetSink(os.Stderr)
}
