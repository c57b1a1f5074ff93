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

// Package plan implements the Job Plans (§4.D): QA, Production, Reset-NOR
// and Backup. Each plan is a straight-line procedure over a Context that
// checks Cancelled between natural checkpoints (sectors, chunks, regions)
// and exits cleanly — reporting ok=false, not an error — when it is set.
package plan

import (
	"fmt"

	"github.com/ChisBread/chismaker/driver"
	"github.com/ChisBread/chismaker/flash"
)

// Context bundles everything a plan needs: the device driver and flash
// engine to act through, and the callbacks a plan uses to report back to
// its Job without knowing anything about the Event Bus.
type Context struct {
	Driver   *driver.Driver
	Engine   *flash.Engine
	Progress func(pct int)
	Log      func(msg string)
	Cancelled func() bool
}

func (c Context) logf(format string, args ...interface{}) {
	if c.Log != nil {
		c.Log(fmt.Sprintf(format, args...))
	}
}

func (c Context) progress(pct int) {
	if c.Progress != nil {
		c.Progress(pct)
	}
}

// Result is what every plan returns: whether it completed successfully, and
// the error that prevented it from doing so if not. A cancelled plan
// returns Ok=false with Err=nil — cancellation is not an error (§7).
type Result struct {
	Ok  bool
	Err error
}

func cancelledResult() Result { return Result{Ok: false} }

func failResult(err error) Result { return Result{Ok: false, Err: err} }

func okResult() Result { return Result{Ok: true} }
