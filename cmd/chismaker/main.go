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

// Command chismaker is a minimal terminal front-end over the chismaker
// core: it opens the serial port named by -port (it does not scan for
// devices), and runs a single job plan against it, rendering the Event Bus to the terminal (§4's
// abstract CLI surface).
package main

import (
	"fmt"
	"os"

	"github.com/ChisBread/chismaker/chiserrors"
	"github.com/ChisBread/chismaker/config"
	"github.com/ChisBread/chismaker/driver"
	"github.com/ChisBread/chismaker/events"
	"github.com/ChisBread/chismaker/flash"
	"github.com/ChisBread/chismaker/modalflag"
	"github.com/ChisBread/chismaker/plan"
	"github.com/ChisBread/chismaker/supervisor"
	"github.com/ChisBread/chismaker/transport/serialport"
)

// actions are the single-device, single-shot subset of the abstract CLI
// surface (§6) this front-end can drive: connect+run+exit. scan-start,
// batch-*, and cancel all presume a long-lived process tracking multiple
// devices across commands, which this minimal terminal front-end isn't;
// they belong to a real presentation shell built on this same core.
var actions = []string{
	"run-qa", "run-production", "reset-nor", "backup",
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr *os.File) error {
	var md modalflag.Modes
	md.Output = stdout
	md.NewArgs(args)

	port := md.AddString("port", "", "device path, e.g. /dev/ttyACM0")
	image := md.AddString("image", "", "ROM image path (run-production)")
	out := md.AddString("out", "backup.bin", "backup destination path (backup)")

	md.AddSubModes(actions...)

	result, err := md.Parse()
	if err != nil {
		return err
	}
	if result == modalflag.ParseHelp {
		return nil
	}

	if *port == "" {
		return fmt.Errorf("chismaker: -port is required")
	}

	sp, err := serialport.Open(*port)
	if err != nil {
		return err
	}
	defer sp.Close()

	d := driver.New(sp)
	e := flash.New(d)

	bus := events.New()
	sup := supervisor.New(bus)
	sup.Add(&supervisor.Device{PortID: *port, Driver: d, Engine: e, Closer: sp})

	fn, err := resolvePlan(md.Mode(), *image, *out)
	if err != nil {
		return err
	}

	if err := sup.Start(*port, fn); err != nil {
		return err
	}

	renderEventsUntilFinished(bus, stderr, *port)
	return nil
}

func resolvePlan(mode, imagePath, outPath string) (supervisor.PlanFunc, error) {
	switch mode {
	case "run-qa":
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return func(c plan.Context) plan.Result { return plan.RunQA(c, cfg) }, nil

	case "run-production":
		if imagePath == "" {
			return nil, fmt.Errorf("chismaker: -image is required for run-production")
		}
		img, err := os.ReadFile(imagePath)
		if err != nil {
			return nil, err
		}
		return func(c plan.Context) plan.Result { return plan.RunProduction(c, img) }, nil

	case "reset-nor":
		return func(c plan.Context) plan.Result { return plan.RunResetNOR(c) }, nil

	case "backup":
		f, err := os.Create(outPath)
		if err != nil {
			return nil, err
		}
		return func(c plan.Context) plan.Result {
			defer f.Close()
			return plan.RunBackup(c, f, plan.DefaultBackupSize)
		}, nil

	default:
		return nil, fmt.Errorf("chismaker: unknown action %q", mode)
	}
}

// renderEventsUntilFinished writes Log events as stderr lines and overwrites
// a single progress line, returning as soon as it sees the Finished event
// for portID. A production supervisor running many devices at once would
// keep rendering past that point; this front-end targets one device per
// invocation, so Finished is its natural exit signal.
func renderEventsUntilFinished(bus *events.Bus, stderr *os.File, portID string) {
	for e := range bus.Events {
		switch e.Kind {
		case events.Log:
			fmt.Fprintf(stderr, "[%s] %s\n", e.PortID, e.Message)
		case events.Progress:
			fmt.Fprintf(stderr, "\r[%s] %3d%%", e.PortID, e.Percent)
		case events.Finished:
			status := "ok"
			if !e.Ok {
				status = "failed"
				if e.Err != nil {
					status = fmt.Sprintf("failed: %s", chiserrors.Head(e.Err))
				}
			}
			fmt.Fprintf(stderr, "\n[%s] finished: %s\n", e.PortID, status)
			if e.PortID == portID {
				return
			}
		}
	}
}
