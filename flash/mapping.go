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

package flash

import "github.com/ChisBread/chismaker/driver"

// SegmentSize is the size of one logical addressing window (§6: SEGMENT =
// 0x0200_0000, 32 MiB).
const SegmentSize uint32 = 0x0200_0000

// Engine drives the Flash state machine for a single device: erase,
// program, PPB unlock, and the segment-windowed mapping that
// makes addressing beyond 32 MiB transparent to callers.
type Engine struct {
	d *driver.Driver

	haveMapping bool
	segment     uint32
}

// New wraps a device driver in a Flash Engine. The engine assumes nothing
// about the device's current mapping until the first EnsureSegment or
// ResetIdentityMapping call.
func New(d *driver.Driver) *Engine {
	return &Engine{d: d}
}

// identityMapping returns the 8-entry mapping for segment 0.
func identityMapping() [8]int {
	var m [8]int
	for i := range m {
		m[i] = i
	}
	return m
}

// mappingFor returns the 8-entry mapping that exposes segment seg: entries
// seg*8 .. seg*8+7.
func mappingFor(seg uint32) [8]int {
	var m [8]int
	for i := range m {
		m[i] = int(seg)*8 + i
	}
	return m
}

// ResetIdentityMapping programs the identity mapping [0..7] (segment 0) and
// resets the engine's notion of the current segment.
func (e *Engine) ResetIdentityMapping() error {
	if err := e.d.SetMapping(identityMapping()); err != nil {
		return err
	}
	e.haveMapping = true
	e.segment = 0
	return nil
}

// EnsureSegment retunes the mapping so that logical offset touches the
// correct 32 MiB window, if it doesn't already. It returns the local
// (within-segment) offset to use for the subsequent driver call.
func (e *Engine) EnsureSegment(logical uint32) (local uint32, err error) {
	seg := logical / SegmentSize
	local = logical % SegmentSize

	if e.haveMapping && seg == e.segment {
		return local, nil
	}

	if err := e.d.SetMapping(mappingFor(seg)); err != nil {
		return 0, err
	}
	e.haveMapping = true
	e.segment = seg
	return local, nil
}

// CurrentSegment reports the segment the engine believes is currently
// mapped. Used by tests asserting the §8 mapping invariant.
func (e *Engine) CurrentSegment() uint32 {
	return e.segment
}
