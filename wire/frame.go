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

// Package wire implements the length-prefixed command framing used by the
// SuperChis serial protocol (see §4.A of the protocol specification):
//
//	[size:u16 LE][opcode:u8][body:variable][crc:u16 LE, always zero]
//
// size counts every byte of the frame, including itself and the two-byte
// CRC placeholder. The device ignores the CRC field; this package never
// computes one.
package wire

import (
	"encoding/binary"
	"io"

	"github.com/ChisBread/chismaker/chiserrors"
)

// headerLen is size(2) + opcode(1).
const headerLen = 3

// crcLen is the always-zero trailing CRC placeholder.
const crcLen = 2

// BuildFrame assembles a complete command frame for opcode with the given
// body. The returned slice is ready to be written to the wire verbatim.
func BuildFrame(opcode byte, body []byte) []byte {
	total := headerLen + len(body) + crcLen

	frame := make([]byte, total)
	binary.LittleEndian.PutUint16(frame[0:2], uint16(total))
	frame[2] = opcode
	copy(frame[3:], body)
	// frame[3+len(body):] is left zeroed — the CRC placeholder.

	return frame
}

// WriteFrame builds and writes a command frame for opcode with the given
// body to conn.
func WriteFrame(conn io.Writer, opcode byte, body []byte) error {
	frame := BuildFrame(opcode, body)
	n, err := conn.Write(frame)
	if err != nil {
		return chiserrors.Errorf(chiserrors.IoError, err)
	}
	if n != len(frame) {
		return chiserrors.Errorf(chiserrors.FrameWriteFail, io.ErrShortWrite)
	}
	return nil
}

// ReadAck reads the single-byte acknowledgement returned by a write-class
// opcode.
func ReadAck(conn io.Reader) (byte, error) {
	buf := make([]byte, 1)
	if n, err := io.ReadFull(conn, buf); err != nil {
		return 0, chiserrors.Errorf(chiserrors.FrameShortRead, 1, n)
	}
	return buf[0], nil
}

// ReadPayload reads the length+2 byte response of a read-class opcode and
// returns the trailing length bytes, with the 2-byte header stripped.
func ReadPayload(conn io.Reader, length int) ([]byte, error) {
	buf := make([]byte, length+2)
	if n, err := io.ReadFull(conn, buf); err != nil {
		return nil, chiserrors.Errorf(chiserrors.FrameShortRead, len(buf), n)
	}
	return buf[2:], nil
}
