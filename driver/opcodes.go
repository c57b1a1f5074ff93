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

package driver

// Opcode identifies one of the five fixed wire-protocol commands understood
// by the device (see §4.B).
type Opcode byte

const (
	// OpProgramRom is the buffered-program command. addr is a byte address;
	// success is indicated by an ack of exactly ackProgramSuccess.
	OpProgramRom Opcode = 0xF4

	// OpWriteRom writes to word-addressed Flash/register space. addr counts
	// 16-bit words. The single-byte ack is read for flow control but its
	// value is not checked (see §9 design notes).
	OpWriteRom Opcode = 0xF5

	// OpReadRom reads from word-addressed Flash space. The wire address
	// field is the word address shifted left by one (byte units).
	OpReadRom Opcode = 0xF6

	// OpWriteRam writes to byte-addressed SRAM. The ack byte is not
	// checked.
	OpWriteRam Opcode = 0xF7

	// OpReadRam reads from byte-addressed SRAM.
	OpReadRam Opcode = 0xF8
)

// ackProgramSuccess is the only ack value OpProgramRom must match for
// success; every other write opcode's ack is opaque.
const ackProgramSuccess = 0xAA
