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

// Package modalflag is a small command-line dispatcher for chismaker's
// CLI (cmd/chismaker): a set of boolean/string flags followed by an
// optional sub-mode word (an action name such as "run-qa" or "backup"),
// followed by that action's own remaining arguments.
package modalflag

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// ParseResult indicates what the caller should do after calling Parse.
type ParseResult int

const (
	// ParseContinue means flags were parsed successfully and the caller
	// should proceed using Mode() and RemainingArgs().
	ParseContinue ParseResult = iota

	// ParseHelp means help text was written to Output and the caller
	// should stop.
	ParseHelp
)

// Modes wraps a flag.FlagSet with an optional list of sub-modes (actions).
type Modes struct {
	Output io.Writer

	flags    flag.FlagSet
	args     []string
	modes    []string
	mode     string
	path     []string
	rem      []string
}

// NewArgs resets Modes with a new argument list (typically os.Args[1:]).
func (md *Modes) NewArgs(args []string) {
	md.args = args
	md.flags = flag.FlagSet{}
	md.flags.SetOutput(io.Discard)
}

// AddBool registers a boolean flag, mirroring flag.Bool.
func (md *Modes) AddBool(name string, value bool, usage string) *bool {
	return md.flags.Bool(name, value, usage)
}

// AddString registers a string flag, mirroring flag.String.
func (md *Modes) AddString(name string, value string, usage string) *string {
	return md.flags.String(name, value, usage)
}

// AddSubModes declares the available actions. The first is the default
// when no mode word is present on the command line.
func (md *Modes) AddSubModes(modes ...string) {
	md.modes = modes
}

// Mode returns the action selected by Parse, or the empty string if no
// sub-modes were declared.
func (md *Modes) Mode() string {
	return md.mode
}

// Path returns the mode path consumed so far (for nested dispatch; this
// implementation only ever has one level).
func (md *Modes) Path() string {
	return strings.Join(md.path, " ")
}

// RemainingArgs returns the arguments left over after flags and the mode
// word (if any) have been consumed.
func (md *Modes) RemainingArgs() []string {
	return md.rem
}

// Parse parses flags, then (if sub-modes were declared) consumes the next
// argument as the selected mode.
func (md *Modes) Parse() (ParseResult, error) {
	help := false
	md.flags.BoolVar(&help, "help", false, "show this help message")

	if err := md.flags.Parse(md.args); err != nil {
		return ParseContinue, err
	}

	if help {
		md.writeHelp()
		return ParseHelp, nil
	}

	rem := md.flags.Args()

	if len(md.modes) > 0 {
		md.mode = md.modes[0]
		if len(rem) > 0 {
			for _, m := range md.modes {
				if m == rem[0] {
					md.mode = rem[0]
					md.path = append(md.path, md.mode)
					rem = rem[1:]
					break
				}
			}
		}
	}

	md.rem = rem
	return ParseContinue, nil
}

func (md *Modes) writeHelp() {
	var hasFlags bool
	md.flags.VisitAll(func(*flag.Flag) { hasFlags = true })

	if !hasFlags && len(md.modes) == 0 {
		fmt.Fprint(md.Output, "No help available\n")
		return
	}

	fmt.Fprint(md.Output, "Usage:\n")

	if hasFlags {
		var b strings.Builder
		w := flag.NewFlagSet("", flag.ContinueOnError)
		md.flags.VisitAll(func(f *flag.Flag) {
			w.Var(f.Value, f.Name, f.Usage)
		})
		w.SetOutput(&b)
		w.PrintDefaults()
		fmt.Fprint(md.Output, strings.TrimSuffix(b.String(), "\n")+"\n")
	}

	if len(md.modes) > 0 {
		if hasFlags {
			fmt.Fprint(md.Output, "\n")
		}
		fmt.Fprintf(md.Output, "  available sub-modes: %s\n", strings.Join(md.modes, ", "))
		fmt.Fprintf(md.Output, "    default: %s\n", md.modes[0])
	}
}
