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

// ChunkSize is the fixed size the engine feeds data to the device in,
// regardless of the CFI-reported buffer size (§4.C).
const ChunkSize = 2048

// PadImage pads data to an even length with 0x00 (production plan step 1)
// then returns it unchanged if already even.
func PadImage(data []byte) []byte {
	if len(data)%2 == 0 {
		return data
	}
	out := make([]byte, len(data)+1)
	copy(out, data)
	return out
}

// ProgramChunk pads data up to ChunkSize with 0xFF (if short) and issues a
// single buffered-program call at byte address addr.
func (e *Engine) ProgramChunk(addr uint32, bufWriteBytes int, data []byte) error {
	chunk := data
	if len(chunk) < ChunkSize {
		chunk = make([]byte, ChunkSize)
		copy(chunk, data)
		for i := len(data); i < ChunkSize; i++ {
			chunk[i] = 0xFF
		}
	}
	return e.d.ProgramRom(addr, uint16(bufWriteBytes), chunk)
}
