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

// Package serialport is the concrete transport backing the device driver
// (§6): a go.bug.st/serial port opened at 115200 8-N-1 with a 5s read
// deadline and a DTR pulse on open, satisfying driver.Conn.
package serialport

import (
	"time"

	"go.bug.st/serial"

	"github.com/ChisBread/chismaker/chiserrors"
)

// ReadTimeout is the per-read deadline every port is opened with (§5).
const ReadTimeout = 5 * time.Second

// dtrPulse is how long DTR is held high before being dropped again (§6: a
// single pulse, not a level change).
const dtrPulse = 50 * time.Millisecond

// Port wraps an open serial.Port as a driver.Conn.
type Port struct {
	name string
	port serial.Port
}

// Open opens name at 115200 8-N-1, pulses DTR, and sets the 5s read
// deadline. The returned Port is ready to hand to driver.New.
func Open(name string) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	sp, err := serial.Open(name, mode)
	if err != nil {
		return nil, chiserrors.Errorf(chiserrors.IoError, err)
	}

	if err := sp.SetReadTimeout(ReadTimeout); err != nil {
		sp.Close()
		return nil, chiserrors.Errorf(chiserrors.IoError, err)
	}

	if err := pulseDTR(sp); err != nil {
		sp.Close()
		return nil, chiserrors.Errorf(chiserrors.IoError, err)
	}

	return &Port{name: name, port: sp}, nil
}

func pulseDTR(sp serial.Port) error {
	if err := sp.SetDTR(true); err != nil {
		return err
	}
	time.Sleep(dtrPulse)
	return sp.SetDTR(false)
}

// Name reports the OS path the port was opened from.
func (p *Port) Name() string { return p.name }

func (p *Port) Read(b []byte) (int, error) { return p.port.Read(b) }

func (p *Port) Write(b []byte) (int, error) { return p.port.Write(b) }

// Close releases the underlying OS handle. Safe to call once.
func (p *Port) Close() error { return p.port.Close() }
