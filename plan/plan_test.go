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

package plan_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/ChisBread/chismaker/config"
	"github.com/ChisBread/chismaker/driver"
	"github.com/ChisBread/chismaker/flash"
	"github.com/ChisBread/chismaker/plan"
)

// fakeConn scripts reads in FIFO order; each queued slice must be exactly
// the size the next Read call expects, matching the convention used by the
// driver and flash package tests.
type fakeConn struct {
	Written   bytes.Buffer
	responses [][]byte
}

func (f *fakeConn) Write(p []byte) (int, error) { return f.Written.Write(p) }

func (f *fakeConn) Read(p []byte) (int, error) {
	if len(f.responses) == 0 {
		return 0, bytes.ErrTooLarge
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	return copy(p, r), nil
}

func (f *fakeConn) queueAck(b byte) { f.responses = append(f.responses, []byte{b}) }

func (f *fakeConn) queuePayload(data []byte) {
	f.responses = append(f.responses, append([]byte{0, 0}, data...))
}

func (f *fakeConn) queueCFI(raw [20]byte) {
	f.queueAck(0)        // CFI entry write ack
	f.queuePayload(raw[:]) // CFI data read
	f.queueAck(0)        // CFI exit write ack
}

func (f *fakeConn) queueIdentityMapping() {
	for i := 0; i < 32; i++ {
		f.queueAck(0)
	}
}

func (f *fakeConn) queueAcks(n int) {
	for i := 0; i < n; i++ {
		f.queueAck(0)
	}
}

func TestRunQANoStepsEnabled(t *testing.T) {
	var gotProgress []int
	c := plan.Context{Progress: func(pct int) { gotProgress = append(gotProgress, pct) }}

	r := plan.RunQA(c, config.QaConfig{})
	if r.Ok || r.Err == nil {
		t.Fatalf("expected failure when no test item is enabled, got %+v", r)
	}
	if len(gotProgress) != 0 {
		t.Errorf("expected no progress emission, got %v", gotProgress)
	}
}

func TestRunQACancelledBeforeFirstStep(t *testing.T) {
	c := plan.Context{Cancelled: func() bool { return true }}

	r := plan.RunQA(c, config.QaConfig{SramBasic: true})
	if r.Ok || r.Err != nil {
		t.Fatalf("expected cancelled (ok=false, err=nil), got %+v", r)
	}
}

func TestRunQAProgressFormula(t *testing.T) {
	conn := &fakeConn{}

	// step 1: sram-basic -- SelectSRAMBank (1 bank-select write + 4-write
	// mode-set) then WriteRam + ReadRam.
	conn.queueAcks(1 + 4)
	conn.queueAck(0) // WriteRam pattern
	conn.queuePayload([]byte{0xAA, 0x55, 0x12, 0x34})

	// step 2: ppb-unlock -- SetMode(write-enable) then UnlockAllPPB:
	// ResetIdentityMapping (32), amdUnlock x2, 0xC0, 0x80, 0x30, then a
	// single poll iteration (0x70 + read returning bit 7 set), then
	// 0x90, 0x00, 0xF0.
	conn.queueAcks(4)
	conn.queueIdentityMapping()
	conn.queueAcks(2 + 1 + 1 + 1)
	conn.queueAck(0) // poll: enter read mode 0x70
	conn.queuePayload([]byte{0x80, 0x00})
	conn.queueAcks(3) // 0x90, 0x00, 0xF0

	d := driver.New(conn)
	e := flash.New(d)

	var gotProgress []int
	c := plan.Context{
		Driver:   d,
		Engine:   e,
		Progress: func(pct int) { gotProgress = append(gotProgress, pct) },
	}

	r := plan.RunQA(c, config.QaConfig{SramBasic: true, PpbUnlock: true})
	if !r.Ok || r.Err != nil {
		t.Fatalf("expected ok result, got %+v: %v", r, r.Err)
	}

	want := []int{25, 50, 75, 100, 100}
	if len(gotProgress) != len(want) {
		t.Fatalf("progress sequence %v, want %v", gotProgress, want)
	}
	for i := range want {
		if gotProgress[i] != want[i] {
			t.Errorf("progress[%d] = %d, want %d", i, gotProgress[i], want[i])
		}
	}
}

func TestRunBackupClampsToDeviceSize(t *testing.T) {
	conn := &fakeConn{}

	var raw [20]byte
	binary.LittleEndian.PutUint16(raw[0:2], 13) // device size = 2^13 = 8192 bytes

	conn.queueCFI(raw)
	conn.queueIdentityMapping()
	conn.queuePayload(bytes.Repeat([]byte{0x11}, 4096))
	conn.queuePayload(bytes.Repeat([]byte{0x22}, 4096))

	d := driver.New(conn)
	e := flash.New(d)

	var dst bytes.Buffer
	var lastProgress int
	c := plan.Context{
		Driver:   d,
		Engine:   e,
		Progress: func(pct int) { lastProgress = pct },
	}

	r := plan.RunBackup(c, &dst, 0)
	if !r.Ok || r.Err != nil {
		t.Fatalf("expected ok result, got %+v: %v", r, r.Err)
	}
	if dst.Len() != 8192 {
		t.Errorf("expected 8192 bytes backed up, got %d", dst.Len())
	}
	if lastProgress != 100 {
		t.Errorf("expected final progress 100, got %d", lastProgress)
	}
}

func TestRunBackupCancellationTruncates(t *testing.T) {
	conn := &fakeConn{}

	var raw [20]byte
	binary.LittleEndian.PutUint16(raw[0:2], 13)
	conn.queueCFI(raw)
	conn.queueIdentityMapping()

	d := driver.New(conn)
	e := flash.New(d)

	var dst bytes.Buffer
	c := plan.Context{
		Driver:    d,
		Engine:    e,
		Cancelled: func() bool { return true },
	}

	r := plan.RunBackup(c, &dst, 0)
	if r.Ok || r.Err != nil {
		t.Fatalf("expected cancelled result, got %+v", r)
	}
	if dst.Len() != 0 {
		t.Errorf("expected no bytes written before first chunk read, got %d", dst.Len())
	}
}
