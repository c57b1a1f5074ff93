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

package logger_test

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/ChisBread/chismaker/logger"
)

// test the ring-buffered Logger and its Tail() function
func TestRingLogger(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	log.Write(w)
	if w.String() != "" {
		t.Errorf("got %q, want empty", w.String())
	}

	log.Log(logger.Allow, "test", "this is a test")
	log.Write(w)
	if want := "test: this is a test\n"; w.String() != want {
		t.Errorf("got %q, want %q", w.String(), want)
	}

	// clear the buffer before continuing, makes comparisons easier to manage
	w.Reset()

	log.Log(logger.Allow, "test2", "this is another test")
	log.Write(w)
	if want := "test: this is a test\ntest2: this is another test\n"; w.String() != want {
		t.Errorf("got %q, want %q", w.String(), want)
	}

	// asking for too many entries in a Tail() should be okay
	w.Reset()
	log.Tail(w, 100)
	if want := "test: this is a test\ntest2: this is another test\n"; w.String() != want {
		t.Errorf("got %q, want %q", w.String(), want)
	}

	// asking for exactly the correct number of entries is okay
	w.Reset()
	log.Tail(w, 2)
	if want := "test: this is a test\ntest2: this is another test\n"; w.String() != want {
		t.Errorf("got %q, want %q", w.String(), want)
	}

	// asking for fewer entries is okay too
	w.Reset()
	log.Tail(w, 1)
	if want := "test2: this is another test\n"; w.String() != want {
		t.Errorf("got %q, want %q", w.String(), want)
	}

	// and no entries
	w.Reset()
	log.Tail(w, 0)
	if w.String() != "" {
		t.Errorf("got %q, want empty", w.String())
	}
}

// test the ring buffer dropping its oldest entry once capacity is reached
func TestRingLoggerCapacity(t *testing.T) {
	log := logger.NewLogger(2)
	w := &strings.Builder{}

	log.Log(logger.Allow, "a", "1")
	log.Log(logger.Allow, "b", "2")
	log.Log(logger.Allow, "c", "3")
	log.Write(w)

	if want := "b: 2\nc: 3\n"; w.String() != want {
		t.Errorf("got %q, want %q", w.String(), want)
	}
}

// test permissions by randomising whether logging is allowed or not
type prohibitLogging struct {
	allow int
}

func (p prohibitLogging) AllowLogging() bool {
	return p.allow > 50
}

func TestPermissions(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	var p prohibitLogging

	for range 100 {
		p.allow = rand.IntN(100)
		log.Clear()
		w.Reset()
		log.Log(p, "tag", "detail")
		log.Write(w)
		if p.AllowLogging() {
			if want := "tag: detail\n"; w.String() != want {
				t.Errorf("got %q, want %q", w.String(), want)
			}
		} else if w.String() != "" {
			t.Errorf("got %q, want empty", w.String())
		}
	}
}

// the Log() function explicitly handles error types by using the Error() result
func TestErrorLogging(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	err := errors.New("test error")

	log.Log(logger.Allow, "tag", err)
	log.Write(w)
	if want := "tag: test error\n"; w.String() != want {
		t.Errorf("got %q, want %q", w.String(), want)
	}

	log.Clear()
	w.Reset()

	// test "wrapping" of errors using the %v verb
	log.Logf(logger.Allow, "tag", "wrapped: %v", err)
	log.Write(w)
	if want := "tag: wrapped: test error\n"; w.String() != want {
		t.Errorf("got %q, want %q", w.String(), want)
	}
}

// the Log() function explicitly handles Stringer types
type stringerTest struct{}

func (stringerTest) String() string {
	return "stringer test"
}

func TestStringerLogging(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	log.Log(logger.Allow, "tag", stringerTest{})
	log.Write(w)
	if want := "tag: stringer test\n"; w.String() != want {
		t.Errorf("got %q, want %q", w.String(), want)
	}
}

// for explicitly unsupported types, the Log() function logs the detail
// argument using the %v verb from the fmt package
func TestIntLogging(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	log.Log(logger.Allow, "tag", 100)
	log.Write(w)
	if want := "tag: 100\n"; w.String() != want {
		t.Errorf("got %q, want %q", w.String(), want)
	}
}
