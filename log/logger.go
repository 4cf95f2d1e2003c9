// Package log gives each viewer package its own tagged logger ("viewer",
// "opengl", "ibl", "scene", "watch") on top of go-logging. The global level
// comes from the log.level config key and the -v/-vv flags; individual
// packages can be turned up or down through log.packages.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
)

type Level logging.Level

// Levels in increasing verbosity of the viewer's flags: -v selects Info and
// -vv selects Debug. The default is Notice.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

var (
	backend logging.LeveledBackend
	global  = Notice
	modules = map[string]Level{}
)

// Logger is what the packages log through; *logging.Logger satisfies it.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// New returns the logger for one package. name shows up in brackets on
// every line and is the key used by SetPackageLevel.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// SetSink sends every logger to w. Levels already set survive the switch.
func SetSink(w io.Writer) {
	formatted := logging.NewBackendFormatter(logging.NewLogBackend(w, "", 0), format)
	backend = logging.AddModuleLevel(formatted)
	logging.SetBackend(backend)
	apply()
}

// SetLevel sets the level of every package without an override.
func SetLevel(level Level) {
	global = level
	apply()
}

// SetPackageLevel overrides the level of one package logger, so the watcher
// can log at debug while the renderer stays quiet.
func SetPackageLevel(name string, level Level) {
	modules[name] = level
	apply()
}

// ResetPackageLevels drops every override set by SetPackageLevel.
func ResetPackageLevels() {
	for name := range modules {
		delete(modules, name)
	}
	apply()
}

func apply() {
	backend.SetLevel(toLogging(global), "")
	for name, level := range modules {
		backend.SetLevel(toLogging(level), name)
	}
}

// ParseLevel reads a log.level value. An empty string means Notice.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, nil
	case "info":
		return Info, nil
	case "notice", "":
		return Notice, nil
	case "warning", "warn":
		return Warning, nil
	case "error":
		return Error, nil
	}
	return Notice, fmt.Errorf("log: unknown level %q", s)
}

func toLogging(level Level) logging.Level {
	switch level {
	case Debug:
		return logging.DEBUG
	case Info:
		return logging.INFO
	case Warning:
		return logging.WARNING
	case Error:
		return logging.ERROR
	}
	return logging.NOTICE
}

func init() {
	SetSink(os.Stdout)
}
