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
	"bytes"

	"github.com/ChisBread/chismaker/chiserrors"
	"github.com/ChisBread/chismaker/driver"
	"github.com/ChisBread/chismaker/flash"
)

const programChunkSize = flash.ChunkSize

// RunProduction executes the Production plan (§4.D): pad the image to an
// even length, erase the sectors it spans, program it in 2 KiB chunks, then
// read the whole thing back and verify. Progress climbs 0→50 across erase
// and 50→100 across program; verify does not move progress further.
func RunProduction(c Context, image []byte) Result {
	img := flash.PadImage(image)

	if err := c.Driver.SetMode(driver.Mode{Ctrl: driver.DefaultCtrl, WriteEnable: true}); err != nil {
		return failResult(err)
	}
	if err := c.Engine.ResetIdentityMapping(); err != nil {
		return failResult(err)
	}

	info, err := flash.QueryCFI(c.Driver)
	if err != nil {
		return failResult(err)
	}
	if info.SectorSizeBytes == 0 {
		return failResult(chiserrors.Errorf(chiserrors.ProtocolBadAck, 0))
	}

	totalSectors := (uint32(len(img)) + info.SectorSizeBytes - 1) / info.SectorSizeBytes

	c.logf("production: erasing %d sectors", totalSectors)
	for i := uint32(0); i < totalSectors; i++ {
		if c.Cancelled != nil && c.Cancelled() {
			return cancelledResult()
		}

		addr := i * info.SectorSizeBytes
		local, err := c.Engine.EnsureSegment(addr)
		if err != nil {
			return failResult(err)
		}
		if err := c.Engine.EraseSector(local >> 1); err != nil {
			return failResult(err)
		}

		c.progress(int((uint64(i+1) * 50) / uint64(totalSectors)))
	}

	if err := c.Driver.SetMode(driver.Mode{Ctrl: driver.DefaultCtrl, WriteEnable: true}); err != nil {
		return failResult(err)
	}
	if err := c.Engine.ResetIdentityMapping(); err != nil {
		return failResult(err)
	}

	c.logf("production: programming %d bytes", len(img))
	for written := 0; written < len(img); written += programChunkSize {
		if c.Cancelled != nil && c.Cancelled() {
			return cancelledResult()
		}

		local, err := c.Engine.EnsureSegment(uint32(written))
		if err != nil {
			return failResult(err)
		}

		end := written + programChunkSize
		if end > len(img) {
			end = len(img)
		}

		if err := c.Engine.ProgramChunk(local, info.BufferWriteBytes, img[written:end]); err != nil {
			return failResult(err)
		}

		c.progress(50 + int((uint64(end)*50)/uint64(len(img))))
	}

	c.logf("production: verifying")
	if err := c.Engine.ResetIdentityMapping(); err != nil {
		return failResult(err)
	}
	for off := 0; off < len(img); off += 4096 {
		if c.Cancelled != nil && c.Cancelled() {
			return cancelledResult()
		}

		local, err := c.Engine.EnsureSegment(uint32(off))
		if err != nil {
			return failResult(err)
		}

		end := off + 4096
		if end > len(img) {
			end = len(img)
		}
		length := uint16(end - off)

		got, err := c.Driver.ReadRom(local>>1, length)
		if err != nil {
			return failResult(err)
		}
		if !bytes.Equal(got, img[off:end]) {
			i := 0
			for got[i] == img[off+i] {
				i++
			}
			return failResult(chiserrors.Errorf(chiserrors.VerifyMismatch, off+i, img[off+i], got[i]))
		}
	}

	c.progress(100)
	return okResult()
}
