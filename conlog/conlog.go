// SPDX-License-Identifier: GPL-2.0-or-later

// Package conlog is the process wide diagnostic sink. Everything that is a
// warning rather than an error (skipped levels, atlas exhaustion, unresolved
// landmarks, entity syntax) goes through here.
package conlog

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	mutex  sync.RWMutex
	logger = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "halfmapper",
		Level:           log.InfoLevel,
	})
}

func get() *log.Logger {
	mutex.RLock()
	defer mutex.RUnlock()
	return logger
}

// SetOutput redirects all diagnostics to w. The level is kept.
func SetOutput(w io.Writer) {
	mutex.Lock()
	defer mutex.Unlock()
	l := newLogger(w)
	l.SetLevel(logger.GetLevel())
	logger = l
}

func SetDebug(debug bool) {
	if debug {
		get().SetLevel(log.DebugLevel)
		return
	}
	get().SetLevel(log.InfoLevel)
}

func Printf(format string, v ...interface{}) {
	get().Infof(format, v...)
}

// SafePrintf only prints in debug mode.
func SafePrintf(format string, v ...interface{}) {
	get().Debugf(format, v...)
}

func Debugf(format string, v ...interface{}) {
	get().Debugf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	get().Warnf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	get().Errorf(format, v...)
}

// With returns a structured logger carrying the key value pairs, used by the
// loader to tag every line with the level id.
func With(keyvals ...interface{}) *log.Logger {
	return get().With(keyvals...)
}
