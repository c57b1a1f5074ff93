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

package plan

import (
	"github.com/ChisBread/chismaker/chiserrors"
	"github.com/ChisBread/chismaker/driver"
	"github.com/ChisBread/chismaker/flash"
)

// Reset-NOR window (§6): [0x0020_0000, 0x0040_0000), the 2 MiB flash
// metadata region.
const (
	resetNorWindowStart uint32 = 0x0020_0000
	resetNorWindowEnd   uint32 = 0x0040_0000
)

// RunResetNOR executes the Reset-NOR plan (§4.D): write mode, identity
// mapping, PPB unlock, erase every sector in the metadata window, then
// require the window's first 512 bytes to read back blank.
func RunResetNOR(c Context) Result {
	if err := c.Driver.SetMode(driver.Mode{Ctrl: driver.DefaultCtrl, WriteEnable: true}); err != nil {
		return failResult(err)
	}
	if err := c.Engine.ResetIdentityMapping(); err != nil {
		return failResult(err)
	}

	c.logf("reset-nor: unlocking PPB")
	if err := c.Engine.UnlockAllPPB(); err != nil {
		return failResult(err)
	}
	c.progress(25)

	info, err := flash.QueryCFI(c.Driver)
	if err != nil {
		return failResult(err)
	}
	sectorSize := info.SectorSizeBytes
	if sectorSize == 0 {
		sectorSize = 64 * 1024
	}

	total := (resetNorWindowEnd - resetNorWindowStart) / sectorSize
	c.logf("reset-nor: erasing %d sectors", total)
	for i := uint32(0); i < total; i++ {
		if c.Cancelled != nil && c.Cancelled() {
			return cancelledResult()
		}

		addr := resetNorWindowStart + i*sectorSize
		local, err := c.Engine.EnsureSegment(addr)
		if err != nil {
			return failResult(err)
		}
		if err := c.Engine.EraseSector(local >> 1); err != nil {
			return failResult(err)
		}

		c.progress(25 + int((uint64(i+1)*65)/uint64(total)))
	}

	c.logf("reset-nor: verifying blank")
	local, err := c.Engine.EnsureSegment(resetNorWindowStart)
	if err != nil {
		return failResult(err)
	}
	got, err := c.Driver.ReadRom(local>>1, 512)
	if err != nil {
		return failResult(err)
	}
	for i, b := range got {
		if b != 0xFF {
			return failResult(chiserrors.Errorf(chiserrors.VerifyMismatch, resetNorWindowStart+uint32(i), 0xFF, b))
		}
	}

	c.progress(100)
	return okResult()
}
