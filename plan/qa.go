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
	"math/rand/v2"
	"time"

	"github.com/ChisBread/chismaker/chiserrors"
	"github.com/ChisBread/chismaker/config"
	"github.com/ChisBread/chismaker/driver"
	"github.com/ChisBread/chismaker/flash"
)

type qaStep struct {
	name string
	run  func(c Context) error
}

// RunQA executes the QA plan (§4.D): each step conditional on its flag in
// cfg, in the fixed order SRAM basic, SRAM full, PPB unlock,
// erase-blank/fast (mutually exclusive), backup Flash probe. Progress is
// reported on entering and completing each enabled step using the
// ⌊(k-0.5)·100/N⌋ / ⌊k·100/N⌋ formulas from §4.D.
func RunQA(c Context, cfg config.QaConfig) Result {
	var steps []qaStep

	if cfg.SramBasic {
		steps = append(steps, qaStep{"sram-basic", sramBasic})
	}
	if cfg.SramFull {
		steps = append(steps, qaStep{"sram-full", sramFull})
	}
	if cfg.PpbUnlock {
		steps = append(steps, qaStep{"ppb-unlock", ppbUnlock})
	}
	if cfg.FlashEraseBlank {
		steps = append(steps, qaStep{"flash-erase-blank", flashEraseBlank})
	} else if cfg.FlashFast {
		steps = append(steps, qaStep{"flash-fast", flashFast})
	}
	if cfg.BackupFlashProbe {
		steps = append(steps, qaStep{"backup-flash-probe", backupFlashProbe})
	}

	n := len(steps)
	if n == 0 {
		c.logf("qa: no test item enabled")
		return failResult(chiserrors.Errorf(chiserrors.QaNoStepsEnabled))
	}

	for k, step := range steps {
		if c.Cancelled != nil && c.Cancelled() {
			return cancelledResult()
		}

		c.progress((k*100 + 50*1) / n) // ⌊(k+1-0.5)·100/n⌋ with k 0-based == ⌊(2k+1)·50/n⌋
		c.logf("qa: starting %s", step.name)

		if err := step.run(c); err != nil {
			c.logf("qa: %s failed: %v", step.name, err)
			return failResult(err)
		}

		c.logf("qa: %s passed", step.name)
		c.progress(((k + 1) * 100) / n)
	}

	c.progress(100)
	return okResult()
}

func sramBasic(c Context) error {
	if err := c.Driver.SelectSRAMBank(0); err != nil {
		return err
	}

	pattern := []byte{0xAA, 0x55, 0x12, 0x34}
	if err := c.Driver.WriteRam(0x0000, pattern); err != nil {
		return err
	}

	got, err := c.Driver.ReadRam(0x0000, uint16(len(pattern)))
	if err != nil {
		return err
	}
	if !bytes.Equal(got, pattern) {
		i := 0
		for got[i] == pattern[i] {
			i++
		}
		return chiserrors.Errorf(chiserrors.VerifyMismatch, i, pattern[i], got[i])
	}
	return nil
}

const sramFullSize = 128 * 1024
const sramChunkSize = 1024
const sramBankSize = 64 * 1024

func sramFull(c Context) error {
	for offset := 0; offset < sramFullSize; offset += sramChunkSize {
		if c.Cancelled != nil && c.Cancelled() {
			return chiserrors.Errorf(chiserrors.Cancelled)
		}

		if offset%sramBankSize == 0 {
			if err := c.Driver.SelectSRAMBank(offset / sramBankSize); err != nil {
				return err
			}
		}

		chunk := make([]byte, sramChunkSize)
		for i := range chunk {
			chunk[i] = byte((offset + i) & 0xFF)
		}

		bankOffset := uint32(offset % sramBankSize)
		if err := c.Driver.WriteRam(bankOffset, chunk); err != nil {
			return err
		}

		got, err := c.Driver.ReadRam(bankOffset, uint16(len(chunk)))
		if err != nil {
			return err
		}
		if !bytes.Equal(got, chunk) {
			i := 0
			for got[i] == chunk[i] {
				i++
			}
			return chiserrors.Errorf(chiserrors.VerifyMismatch, offset+i, chunk[i], got[i])
		}
	}
	return nil
}

func ppbUnlock(c Context) error {
	if err := c.Driver.SetMode(driver.Mode{Ctrl: driver.DefaultCtrl, WriteEnable: true}); err != nil {
		return err
	}
	return c.Engine.UnlockAllPPB()
}

func flashEraseBlank(c Context) error {
	first, err := c.Driver.ReadRom(0, 512)
	if err != nil {
		return err
	}
	for _, b := range first {
		if b != 0xFF {
			return c.Engine.EraseChip()
		}
	}
	return nil
}

const fastQAChunkSize = 4096

func flashFast(c Context) error {
	info, err := flash.QueryCFI(c.Driver)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	regions := flash.PlanFastQARegions(rng, info.DeviceSizeBytes, info.SectorSizeBytes)

	for _, r := range regions {
		if c.Cancelled != nil && c.Cancelled() {
			return chiserrors.Errorf(chiserrors.Cancelled)
		}

		for addr := r.Offset; addr < r.Offset+r.Size; addr += info.SectorSizeBytes {
			local, err := c.Engine.EnsureSegment(addr)
			if err != nil {
				return err
			}
			if err := c.Engine.EraseSector(local >> 1); err != nil {
				return err
			}
		}

		for addr := r.Offset; addr < r.Offset+r.Size; addr += fastQAChunkSize {
			if c.Cancelled != nil && c.Cancelled() {
				return chiserrors.Errorf(chiserrors.Cancelled)
			}

			local, err := c.Engine.EnsureSegment(addr)
			if err != nil {
				return err
			}
			data, err := c.Driver.ReadRom(local>>1, fastQAChunkSize)
			if err != nil {
				return err
			}
			for i, b := range data {
				if b != 0xFF {
					return chiserrors.Errorf(chiserrors.VerifyMismatch, addr+uint32(i), 0xFF, b)
				}
			}
		}
	}
	return nil
}

func backupFlashProbe(c Context) error {
	writes := []struct {
		addr uint32
		val  byte
	}{
		{0x5555, 0xAA},
		{0x2AAA, 0x55},
		{0x0000, 0x90},
	}

	for _, w := range writes {
		if err := c.Driver.WriteRam(w.addr, []byte{w.val}); err != nil {
			return err
		}
		time.Sleep(1 * time.Millisecond)
	}

	mfr, err := c.Driver.ReadRam(0x0000, 2)
	if err != nil {
		return err
	}
	dev, err := c.Driver.ReadRam(0x0002, 2)
	if err != nil {
		return err
	}

	if err := c.Driver.WriteRam(0x0000, []byte{0xF0}); err != nil {
		return err
	}

	if mfr[0] == 0xFF && mfr[1] == 0xFF {
		return chiserrors.Errorf(chiserrors.VerifyMismatch, 0x0000, 0, 0xFFFF)
	}
	if dev[0] == 0xFF && dev[1] == 0xFF {
		return chiserrors.Errorf(chiserrors.VerifyMismatch, 0x0002, 0, 0xFFFF)
	}
	return nil
}
