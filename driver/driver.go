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

// Package driver implements the device driver (§4.B): the fixed opcode
// table layered on top of the wire frame codec, plus the magic-address
// unlock sequences (mode set, flash mapping set, SRAM bank select, CFI
// query) built out of those opcodes.
package driver

import (
	"encoding/binary"
	"io"

	"github.com/ChisBread/chismaker/chiserrors"
	"github.com/ChisBread/chismaker/wire"
)

// Conn is the byte-stream the driver talks over. A serial port satisfies
// this directly; tests can substitute any io.ReadWriter (a net.Pipe end or
// an in-memory fake).
type Conn interface {
	io.Reader
	io.Writer
}

// Driver issues typed operations against a single device's wire protocol.
// It has no retry, timeout, or reconnect logic of its own — those are the
// Conn's responsibility (see §4.A).
type Driver struct {
	conn Conn
}

// New wraps conn in a Driver.
func New(conn Conn) *Driver {
	return &Driver{conn: conn}
}

// ProgramRom issues the buffered-program command (opcode 0xF4) at byte
// address addr, with bufBytes (the device's CFI-reported buffer size)
// carried in the frame's buf_bytes field, transferring data. Success
// requires the device to ack with exactly 0xAA.
func (d *Driver) ProgramRom(addr uint32, bufBytes uint16, data []byte) error {
	body := make([]byte, 4+2+len(data))
	binary.LittleEndian.PutUint32(body[0:4], addr)
	binary.LittleEndian.PutUint16(body[4:6], bufBytes)
	copy(body[6:], data)

	if err := wire.WriteFrame(d.conn, byte(OpProgramRom), body); err != nil {
		return err
	}

	ack, err := wire.ReadAck(d.conn)
	if err != nil {
		return err
	}
	if ack != ackProgramSuccess {
		return chiserrors.Errorf(chiserrors.ProtocolBadAck, ack)
	}
	return nil
}

// WriteRom writes data to word address addrWord. The ack byte is read for
// flow control and its value is ignored.
func (d *Driver) WriteRom(addrWord uint32, data []byte) error {
	body := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint32(body[0:4], addrWord)
	copy(body[4:], data)

	if err := wire.WriteFrame(d.conn, byte(OpWriteRom), body); err != nil {
		return err
	}
	_, err := wire.ReadAck(d.conn)
	return err
}

// WriteWord is a convenience over WriteRom for the common case of writing a
// single 16-bit value.
func (d *Driver) WriteWord(addrWord uint32, value uint16) error {
	var data [2]byte
	binary.LittleEndian.PutUint16(data[:], value)
	return d.WriteRom(addrWord, data[:])
}

// ReadRom reads length bytes from word address addrWord. The wire address
// field is addrWord<<1 (word-to-byte conversion).
func (d *Driver) ReadRom(addrWord uint32, length uint16) ([]byte, error) {
	body := make([]byte, 4+2)
	binary.LittleEndian.PutUint32(body[0:4], addrWord<<1)
	binary.LittleEndian.PutUint16(body[4:6], length)

	if err := wire.WriteFrame(d.conn, byte(OpReadRom), body); err != nil {
		return nil, err
	}
	return wire.ReadPayload(d.conn, int(length))
}

// ReadWord reads a single little-endian 16-bit value from word address
// addrWord.
func (d *Driver) ReadWord(addrWord uint32) (uint16, error) {
	b, err := d.ReadRom(addrWord, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// WriteRam writes data to byte address addr in SRAM. The ack byte is read
// for flow control and its value is ignored.
func (d *Driver) WriteRam(addr uint32, data []byte) error {
	body := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint32(body[0:4], addr)
	copy(body[4:], data)

	if err := wire.WriteFrame(d.conn, byte(OpWriteRam), body); err != nil {
		return err
	}
	_, err := wire.ReadAck(d.conn)
	return err
}

// ReadRam reads length bytes from byte address addr in SRAM.
func (d *Driver) ReadRam(addr uint32, length uint16) ([]byte, error) {
	body := make([]byte, 4+2)
	binary.LittleEndian.PutUint32(body[0:4], addr)
	binary.LittleEndian.PutUint16(body[4:6], length)

	if err := wire.WriteFrame(d.conn, byte(OpReadRam), body); err != nil {
		return nil, err
	}
	return wire.ReadPayload(d.conn, int(length))
}
