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
	"io"

	"github.com/ChisBread/chismaker/flash"
)

// DefaultBackupSize is the default size requested by a Backup plan when the
// caller doesn't name one (§4.D: "default 128 MiB, clamped to device_size").
const DefaultBackupSize = 128 * 1024 * 1024

const backupChunkSize = 4096
const backupProgressEvery = 1024 * 1024

// RunBackup streams size bytes (clamped to the device's reported size) of
// Flash, starting at logical offset 0, to dst in 4 KiB reads, retuning the
// segment mapping on every SEG crossing. Progress is emitted every 1 MiB.
// Cancellation stops the loop early; whatever has already been written to
// dst stays there — it is dst's job to discard a truncated file.
func RunBackup(c Context, dst io.Writer, size uint32) Result {
	info, err := flash.QueryCFI(c.Driver)
	if err != nil {
		return failResult(err)
	}

	if size == 0 {
		size = DefaultBackupSize
	}
	if size > info.DeviceSizeBytes {
		size = info.DeviceSizeBytes
	}

	if err := c.Engine.ResetIdentityMapping(); err != nil {
		return failResult(err)
	}

	c.logf("backup: reading %d bytes", size)
	nextProgressAt := uint32(backupProgressEvery)

	for off := uint32(0); off < size; off += backupChunkSize {
		if c.Cancelled != nil && c.Cancelled() {
			return cancelledResult()
		}

		length := uint16(backupChunkSize)
		if off+backupChunkSize > size {
			length = uint16(size - off)
		}

		local, err := c.Engine.EnsureSegment(off)
		if err != nil {
			return failResult(err)
		}

		data, err := c.Driver.ReadRom(local>>1, length)
		if err != nil {
			return failResult(err)
		}
		if _, err := dst.Write(data); err != nil {
			return failResult(err)
		}

		if off+uint32(length) >= nextProgressAt {
			c.progress(int((uint64(off+uint32(length)) * 100) / uint64(size)))
			nextProgressAt += backupProgressEvery
		}
	}

	c.progress(100)
	return okResult()
}
