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

import "time"

// AMD unlock word addresses used by every command-set sequence below.
const (
	amdUnlockAddr1 uint32 = 0x555
	amdUnlockAddr2 uint32 = 0x2AA
)

const blankValue uint16 = 0xFFFF

func (e *Engine) amdUnlock() error {
	if err := e.d.WriteWord(amdUnlockAddr1, 0xAA); err != nil {
		return err
	}
	if err := e.d.WriteWord(amdUnlockAddr2, 0x55); err != nil {
		return err
	}
	return nil
}

// EraseChip performs the full-chip erase command sequence, then polls word
// 0x000000 every 500ms (after an initial 100ms wait) until it reads 0xFFFF.
func (e *Engine) EraseChip() error {
	if err := e.amdUnlock(); err != nil {
		return err
	}
	if err := e.d.WriteWord(amdUnlockAddr1, 0x80); err != nil {
		return err
	}
	if err := e.amdUnlock(); err != nil {
		return err
	}
	if err := e.d.WriteWord(amdUnlockAddr1, 0x10); err != nil {
		return err
	}

	time.Sleep(100 * time.Millisecond)
	return e.pollBlank(0x000000, 500*time.Millisecond)
}

// EraseSector performs the sector-erase command sequence at word address
// addr, then polls addr every 100ms (after an initial 10ms wait) until it
// reads 0xFFFF.
func (e *Engine) EraseSector(addr uint32) error {
	if err := e.amdUnlock(); err != nil {
		return err
	}
	if err := e.d.WriteWord(amdUnlockAddr1, 0x80); err != nil {
		return err
	}
	if err := e.amdUnlock(); err != nil {
		return err
	}
	if err := e.d.WriteWord(addr, 0x30); err != nil {
		return err
	}

	time.Sleep(10 * time.Millisecond)
	return e.pollBlank(addr, 100*time.Millisecond)
}

func (e *Engine) pollBlank(addr uint32, interval time.Duration) error {
	for {
		v, err := e.d.ReadWord(addr)
		if err != nil {
			return err
		}
		if v == blankValue {
			return nil
		}
		time.Sleep(interval)
	}
}
