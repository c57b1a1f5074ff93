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

// UnlockAllPPB clears every sector's Persistent Protection Bit, per §4.C:
// identity mapping, enter PPB command mode, erase all PPBs, poll bit 7 of
// word 0 until set, then exit PPB mode.
func (e *Engine) UnlockAllPPB() error {
	if err := e.ResetIdentityMapping(); err != nil {
		return err
	}

	if err := e.amdUnlock(); err != nil {
		return err
	}
	if err := e.d.WriteWord(amdUnlockAddr1, 0xC0); err != nil {
		return err
	}

	if err := e.d.WriteWord(0, 0x80); err != nil {
		return err
	}
	if err := e.d.WriteWord(0, 0x30); err != nil {
		return err
	}

	time.Sleep(100 * time.Millisecond)
	for {
		if err := e.d.WriteWord(amdUnlockAddr1, 0x70); err != nil {
			return err
		}
		v, err := e.d.ReadWord(0)
		if err != nil {
			return err
		}
		if v&(1<<7) != 0 {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	if err := e.d.WriteWord(0, 0x90); err != nil {
		return err
	}
	if err := e.d.WriteWord(0, 0x00); err != nil {
		return err
	}
	return e.d.WriteWord(0, 0xF0)
}
