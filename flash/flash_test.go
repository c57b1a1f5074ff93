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

package flash_test

import (
	"bytes"
	"encoding/binary"
	"math/rand/v2"
	"testing"

	"github.com/ChisBread/chismaker/driver"
	"github.com/ChisBread/chismaker/flash"
)

// fakeConn scripts reads in FIFO order and records everything written.
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

func (f *fakeConn) queueAck(b byte)        { f.responses = append(f.responses, []byte{b}) }
func (f *fakeConn) queueWord(v uint16)     { var b [2]byte; binary.LittleEndian.PutUint16(b[:], v); f.responses = append(f.responses, append([]byte{0, 0}, b[:]...)) }

func TestParseCFI(t *testing.T) {
	var raw [20]byte
	binary.LittleEndian.PutUint16(raw[0:2], 25) // device_size = 2^25 = 32MiB
	binary.LittleEndian.PutUint16(raw[6:8], 9)  // buffer_write_bytes = 2^9 (v3)
	binary.LittleEndian.PutUint16(raw[12:14], 255) // sector_count = 255 + 1 (v6)
	binary.LittleEndian.PutUint16(raw[16:18], 255)
	binary.LittleEndian.PutUint16(raw[18:20], 0)

	info := flash.ParseCFI(raw)
	if info.DeviceSizeBytes != 1<<25 {
		t.Errorf("device size: got %d", info.DeviceSizeBytes)
	}
	if info.SectorCount != 256 {
		t.Errorf("sector count: got %d, want 256", info.SectorCount)
	}
	if info.SectorSizeBytes != 255*256 {
		t.Errorf("sector size: got %d, want %d", info.SectorSizeBytes, 255*256)
	}
}

func TestEnsureSegmentSwitchesOnBoundary(t *testing.T) {
	conn := &fakeConn{}
	for i := 0; i < 32*3; i++ { // up to 3 mapping switches worth of acks
		conn.queueAck(0)
	}
	e := flash.New(driver.New(conn))

	local, err := e.EnsureSegment(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if local != 0 || e.CurrentSegment() != 0 {
		t.Errorf("expected segment 0, local 0; got segment %d local %d", e.CurrentSegment(), local)
	}

	local, err = e.EnsureSegment(flash.SegmentSize + 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.CurrentSegment() != 1 {
		t.Errorf("expected segment switch to 1, got %d", e.CurrentSegment())
	}
	if local != 100 {
		t.Errorf("expected local offset 100, got %d", local)
	}

	// same segment again must not require another SetMapping call. The two
	// switches above consumed 64 of the 96 queued acks, so a third switch
	// would still succeed; the check is therefore on bytes written.
	before := conn.Written.Len()
	_, err = e.EnsureSegment(flash.SegmentSize + 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conn.Written.Len() != before {
		t.Errorf("expected no additional writes for same-segment access")
	}
}

func TestPlanFastQARegionsShape(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	deviceSize := uint32(64 * 1024 * 1024)
	sectorSize := uint32(64 * 1024)

	regions := flash.PlanFastQARegions(rng, deviceSize, sectorSize)
	if len(regions) != 6 {
		t.Fatalf("expected 6 regions, got %d", len(regions))
	}
	if regions[0].Offset != 0 || regions[0].Size != 4*1024*1024 {
		t.Errorf("unexpected head region: %+v", regions[0])
	}
	if regions[1].Offset != deviceSize-4*1024*1024 {
		t.Errorf("unexpected tail region: %+v", regions[1])
	}
	for _, r := range regions[2:] {
		if r.Offset%sectorSize != 0 {
			t.Errorf("region not sector aligned: %+v", r)
		}
		if r.Offset < 4*1024*1024 || r.Offset > deviceSize-6*1024*1024 {
			t.Errorf("region out of bounds: %+v", r)
		}
	}
}

func TestPadImage(t *testing.T) {
	if got := flash.PadImage([]byte{1, 2, 3}); len(got) != 4 || got[3] != 0 {
		t.Errorf("expected odd-length image padded with trailing 0x00, got %v", got)
	}
	if got := flash.PadImage([]byte{1, 2}); len(got) != 2 {
		t.Errorf("expected even-length image left unchanged, got %v", got)
	}
}
