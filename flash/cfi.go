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

// Package flash is the Flash Engine (§4.C): CFI discovery, chip and sector
// erase, buffered program, PPB unlock and segment windowing, layered on top
// of the device driver's fixed opcodes. Read-back verification is done by
// the job plans, not by this package.
package flash

import (
	"encoding/binary"

	"github.com/ChisBread/chismaker/driver"
)

// CfiInfo describes the geometry of the Flash chip, derived once per plan
// invocation from a CFI query — it is never cached across disconnects (§3).
type CfiInfo struct {
	DeviceSizeBytes  uint32
	SectorCount      int
	SectorSizeBytes  uint32
	BufferWriteBytes int
}

// QueryCFI runs the driver's CFI query sequence and parses the resulting 20
// bytes into a CfiInfo.
func QueryCFI(d *driver.Driver) (CfiInfo, error) {
	raw, err := d.CFIQueryRaw()
	if err != nil {
		return CfiInfo{}, err
	}
	return ParseCFI(raw), nil
}

// ParseCFI interprets the 20-byte CFI response as ten little-endian 16-bit
// values v[0..9] per §4.B:
//
//	device_size         = 2^v[0]
//	buffer_write_bytes   = 2^v[3] if v[3] != 0 else 0
//	sector_count         = ((v[7]&0xFF)<<8 | (v[6]&0xFF)) + 1
//	sector_size          = ((v[9]&0xFF)<<8 | (v[8]&0xFF)) * 256
func ParseCFI(raw [20]byte) CfiInfo {
	v := make([]uint16, 10)
	for i := range v {
		v[i] = binary.LittleEndian.Uint16(raw[i*2 : i*2+2])
	}

	info := CfiInfo{
		DeviceSizeBytes: 1 << v[0],
	}
	if v[3] != 0 {
		info.BufferWriteBytes = 1 << v[3]
	}
	info.SectorCount = int((v[7]&0xFF)<<8|(v[6]&0xFF)) + 1
	info.SectorSizeBytes = uint32((v[9]&0xFF)<<8|(v[8]&0xFF)) * 256

	return info
}
