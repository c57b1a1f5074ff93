// This file is part of chismaker.
//
// chismaker is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// chismaker is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with chismaker.  If not, see <https://www.gnu.org/licenses/>.

// Package logger implements a ring-buffered, permission-gated log used by
// every component of chismaker in place of ad-hoc fmt.Println calls. A
// single process-wide Logger exists (see logger.go) but components that
// need an isolated buffer (tests, scripted scenarios) can create their own
// with NewLogger.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Permission gates whether a log entry is recorded. The zero value of most
// types will not satisfy this interface; entries that are always allowed
// should use the package-level Allow value.
type Permission interface {
	AllowLogging() bool
}

type allowPermission struct{}

func (allowPermission) AllowLogging() bool { return true }

// Allow is a Permission that always allows logging.
var Allow Permission = allowPermission{}

type entry struct {
	tag    string
	detail string
}

func (e entry) String() string {
	return fmt.Sprintf("%s: %s\n", e.tag, e.detail)
}

// Logger is a fixed-capacity ring buffer of log entries.
type Logger struct {
	crit     sync.Mutex
	entries  []entry
	capacity int
	ct       int
}

// NewLogger creates a new Logger with room for capacity entries. Once full,
// the oldest entry is dropped to make room for the newest.
func NewLogger(capacity int) *Logger {
	return &Logger{
		entries:  make([]entry, capacity),
		capacity: capacity,
	}
}

func detailString(detail interface{}) string {
	switch v := detail.(type) {
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Log records a new entry, provided permission allows it.
func (l *Logger) Log(permission Permission, tag string, detail interface{}) {
	if permission == nil || !permission.AllowLogging() {
		return
	}

	l.crit.Lock()
	defer l.crit.Unlock()

	e := entry{tag: tag, detail: detailString(detail)}
	if l.ct < l.capacity {
		l.entries[l.ct] = e
		l.ct++
		return
	}

	copy(l.entries, l.entries[1:])
	l.entries[l.capacity-1] = e
}

// Logf is like Log but formats detail with fmt.Sprintf first.
func (l *Logger) Logf(permission Permission, tag string, format string, args ...interface{}) {
	l.Log(permission, tag, fmt.Sprintf(format, args...))
}

// Clear empties the logger.
func (l *Logger) Clear() {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.ct = 0
}

// Write outputs every entry, oldest first, to w.
func (l *Logger) Write(w io.Writer) {
	l.crit.Lock()
	defer l.crit.Unlock()

	var s strings.Builder
	for i := 0; i < l.ct; i++ {
		s.WriteString(l.entries[i].String())
	}
	w.Write([]byte(s.String())) //nolint:errcheck
}

// Tail outputs at most n of the most recent entries to w.
func (l *Logger) Tail(w io.Writer, n int) {
	l.crit.Lock()
	defer l.crit.Unlock()

	if n > l.ct {
		n = l.ct
	}

	var s strings.Builder
	for i := l.ct - n; i < l.ct; i++ {
		s.WriteString(l.entries[i].String())
	}
	w.Write([]byte(s.String())) //nolint:errcheck
}
