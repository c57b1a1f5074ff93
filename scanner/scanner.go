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

// Package scanner is the Port Scanner (§4.F): it polls the OS port list
// every 2s and reports the set of ports matching the SuperChis USB VID/PID
// as it changes, leaving add/remove set-difference bookkeeping to the
// caller (the Device Supervisor).
package scanner

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial/enumerator"

	"github.com/ChisBread/chismaker/logger"
)

// PollInterval is how often the OS port list is re-enumerated (§4.F).
const PollInterval = 2 * time.Second

// VendorID and ProductID are the SuperChis USB identifiers (§6).
const (
	VendorID  uint64 = 0x0483
	ProductID uint64 = 0x0721
)

// Delta is the add/remove set difference between two consecutive polls.
type Delta struct {
	Added   []string
	Removed []string
}

// Scanner periodically enumerates serial ports and reports matching-set
// changes on Deltas.
type Scanner struct {
	Deltas chan Delta

	known map[string]bool
}

// New creates a Scanner with an unbuffered-enough Deltas channel (bounded,
// per §4.G's no-unbounded-growth rule applied uniformly across the system).
func New() *Scanner {
	return &Scanner{
		Deltas: make(chan Delta, 16),
		known:  make(map[string]bool),
	}
}

// Run polls until ctx is cancelled. It is meant to run in its own goroutine
// (§5: "one scanner goroutine").
func (s *Scanner) Run(ctx context.Context) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	s.poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll()
		}
	}
}

func (s *Scanner) poll() {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		logger.Logf("scanner", "enumerate failed: %v", err)
		return
	}

	current := make(map[string]bool)
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		if !matches(p.VID, p.PID) {
			continue
		}
		current[p.Name] = true
	}

	var added, removed []string
	for name := range current {
		if !s.known[name] {
			added = append(added, name)
		}
	}
	for name := range s.known {
		if !current[name] {
			removed = append(removed, name)
		}
	}

	if len(added) == 0 && len(removed) == 0 {
		return
	}
	sort.Strings(added)
	sort.Strings(removed)

	s.known = current
	select {
	case s.Deltas <- Delta{Added: added, Removed: removed}:
	default:
		logger.Log("scanner", "deltas channel full, dropping update")
	}
}

// matches reports whether vid/pid (hex strings as reported by the
// enumerator, with or without a leading "0x") identify a SuperChis device.
func matches(vid, pid string) bool {
	return parseHex(vid) == VendorID && parseHex(pid) == ProductID
}

func parseHex(s string) uint64 {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, _ := strconv.ParseUint(s, 16, 32)
	return v
}
