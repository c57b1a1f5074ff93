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

import "github.com/ChisBread/chismaker/chiserrors"

// Magic constants (§6).
const (
	// MagicAddress is the byte address; MagicWordAddress is its word-address
	// equivalent (>>1), which is what every magic sequence actually writes
	// to via OpWriteRom.
	MagicAddress     uint32 = 0x01FF_FFFE
	MagicWordAddress uint32 = MagicAddress >> 1

	MagicModeValue uint16 = 0xA55A
	MagicMapValue  uint16 = 0xA558
)

// SRAMBankSelectAddress is the word address of the SRAM bank-select
// register.
const SRAMBankSelectAddress uint32 = 0x800000

// Mode holds the four configuration flags written during a mode-set
// sequence. Ctrl defaults to 0x8 per §4.B when left at its zero value by
// callers that don't care about it — callers that do should set it
// explicitly (SRAM bank select, for instance, uses 0x07).
type Mode struct {
	Ctrl        byte
	SDRAM       bool
	SDEnable    bool
	WriteEnable bool
	SRAMBank    int
}

// DefaultCtrl is the ctrl nibble used by a plain mode-set unless the caller
// overrides it.
const DefaultCtrl = 0x8

func (m Mode) config() uint16 {
	var flags byte
	if m.SDRAM {
		flags |= 1 << 0
	}
	if m.SDEnable {
		flags |= 1 << 1
	}
	if m.WriteEnable {
		flags |= 1 << 2
	}
	flags |= byte(m.SRAMBank&0x1) << 3

	ctrl := m.Ctrl
	if ctrl == 0 {
		ctrl = DefaultCtrl
	}
	return uint16(ctrl)<<4 | uint16(flags)
}

// SetMode performs the four-write "SuperChis unlock" sequence: two writes
// of MagicModeValue followed by two writes of the computed config value,
// all at MagicWordAddress.
func (d *Driver) SetMode(m Mode) error {
	if err := d.WriteWord(MagicWordAddress, MagicModeValue); err != nil {
		return err
	}
	if err := d.WriteWord(MagicWordAddress, MagicModeValue); err != nil {
		return err
	}

	cfg := m.config()
	if err := d.WriteWord(MagicWordAddress, cfg); err != nil {
		return err
	}
	return d.WriteWord(MagicWordAddress, cfg)
}

// SetMapping programs the 8-entry flash bank mapping: for each entry, four
// writes at MagicWordAddress in the pattern {MagicMapValue, MagicMapValue,
// entry, entry} — 32 writes total.
func (d *Driver) SetMapping(mapping [8]int) error {
	for _, bank := range mapping {
		if bank < 0 || bank > 0xFFFF {
			return chiserrors.Errorf(chiserrors.ProtocolBadBank, bank)
		}

		if err := d.WriteWord(MagicWordAddress, MagicMapValue); err != nil {
			return err
		}
		if err := d.WriteWord(MagicWordAddress, MagicMapValue); err != nil {
			return err
		}

		v := uint16(bank)
		if err := d.WriteWord(MagicWordAddress, v); err != nil {
			return err
		}
		if err := d.WriteWord(MagicWordAddress, v); err != nil {
			return err
		}
	}
	return nil
}

// SelectSRAMBank writes bank to the SRAM bank-select register and then
// re-issues a mode-set with ctrl = 0xF ^ (1<<3) and the bank encoded in the
// flags, all other flags clear.
func (d *Driver) SelectSRAMBank(bank int) error {
	if err := d.WriteWord(SRAMBankSelectAddress, uint16(bank)); err != nil {
		return err
	}

	m := Mode{
		Ctrl:     0xF ^ (1 << 3),
		SRAMBank: bank,
	}
	return d.SetMode(m)
}

// CFI word addresses used by the CFI query sequence.
const (
	cfiEntryAddress = 0x55
	cfiDataAddress  = 0x27
	cfiExitAddress  = 0x00
)

// CFIQueryRaw performs the CFI query sequence (write 0x98, read 20 bytes,
// write 0xF0 to exit) and returns the raw 20 bytes, unparsed. Parsing into
// CfiInfo is the Flash Engine's responsibility (see flash.ParseCFI).
func (d *Driver) CFIQueryRaw() ([20]byte, error) {
	var raw [20]byte

	if err := d.WriteWord(cfiEntryAddress, 0x0098); err != nil {
		return raw, err
	}

	data, err := d.ReadRom(cfiDataAddress, 20)
	if err != nil {
		return raw, err
	}
	copy(raw[:], data)

	if err := d.WriteWord(cfiExitAddress, 0x00F0); err != nil {
		return raw, err
	}

	return raw, nil
}
