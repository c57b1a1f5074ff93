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

// Package chiserrors is a helper package for the plain Go language error
// type. We think of these errors as curated errors. External to this
// package, curated errors are referenced as plain errors (ie. they
// implement the error interface).
//
// Internally, errors are thought of as being composed of parts. The
// Error() function implementation for curated errors drops the second part
// of the message when it repeats the first, which alleviates
// the problem of when and how to wrap errors as they propagate up from the
// driver to the flash engine to a job plan.
package chiserrors

import (
	"fmt"
	"strings"
)

// Values is the type used to specify arguments for a curated error.
type Values []interface{}

// curated errors let code specify a predefined message without worrying
// about how the message composes with whatever wraps it.
type curated struct {
	message string
	values  Values
}

// Errorf creates a new curated error.
func Errorf(message string, values ...interface{}) error {
	return curated{
		message: message,
		values:  values,
	}
}

// Error normalises the message: if the first two ": "-separated parts are
// identical, one of them is dropped. Repeats further along the message are
// left as they are.
//
// Implements the go language error interface.
func (er curated) Error() string {
	s := fmt.Errorf(er.message, er.values...).Error()

	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}

	return strings.Join(p, ": ")
}

// Head returns the leading part of the message. If err is a plain error
// then the return of Error() is returned.
func Head(err error) string {
	if er, ok := err.(curated); ok {
		return er.message
	}
	return err.Error()
}

// IsAny checks if error is being curated by this package.
func IsAny(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := err.(curated); ok {
		return true
	}
	return false
}

// Is checks if error has a specific head.
func Is(err error, head string) bool {
	if err == nil {
		return false
	}
	if er, ok := err.(curated); ok {
		return er.message == head
	}
	return false
}

// Has checks if the message string appears anywhere in the error chain.
func Has(err error, msg string) bool {
	if err == nil {
		return false
	}
	if !IsAny(err) {
		return false
	}
	if Is(err, msg) {
		return true
	}
	for i := range err.(curated).values {
		if e, ok := err.(curated).values[i].(curated); ok {
			if Has(e, msg) {
				return true
			}
		}
	}
	return false
}
