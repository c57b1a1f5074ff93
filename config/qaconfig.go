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

// Package config holds the QA test suite configuration used by the QA job
// plan (see plan.RunQA), together with simple JSON load/save helpers so an
// operator's chosen suite survives between CLI invocations.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ChisBread/chismaker/paths"
)

// QaConfig selects which steps of the QA plan run. SramBasic, SramFull,
// PpbUnlock and BackupFlashProbe are independent. FlashEraseBlank and
// FlashFast are mutually exclusive: SetFlashEraseBlank and SetFlashFast
// clear the other flag, enforced here rather than at plan-start, per the
// design note that this is a configuration invariant.
type QaConfig struct {
	SramBasic        bool `json:"sram_basic"`
	SramFull         bool `json:"sram_full"`
	FlashEraseBlank  bool `json:"flash_erase_blank"`
	FlashFast        bool `json:"flash_fast"`
	PpbUnlock        bool `json:"ppb_unlock"`
	BackupFlashProbe bool `json:"backup_flash_probe"`
}

// SetFlashEraseBlank enables or disables the erase-blank QA step, clearing
// FlashFast when enabling it.
func (c *QaConfig) SetFlashEraseBlank(v bool) {
	c.FlashEraseBlank = v
	if v {
		c.FlashFast = false
	}
}

// SetFlashFast enables or disables the fast-QA step, clearing
// FlashEraseBlank when enabling it.
func (c *QaConfig) SetFlashFast(v bool) {
	c.FlashFast = v
	if v {
		c.FlashEraseBlank = false
	}
}

// EnabledSteps returns the number of QA steps that are currently enabled,
// counting erase-blank and fast as one step, as RunQA does. RunQA itself
// derives N from its own step list and does not call this.
func (c QaConfig) EnabledSteps() int {
	n := 0
	for _, v := range []bool{c.SramBasic, c.SramFull, c.PpbUnlock, c.FlashEraseBlank || c.FlashFast, c.BackupFlashProbe} {
		if v {
			n++
		}
	}
	return n
}

const configFile = "qa.json"

// Load reads a previously saved QaConfig from ~/.chismaker/qa.json. A
// missing file is not an error; it returns the zero value QaConfig.
func Load() (QaConfig, error) {
	var c QaConfig

	p, err := paths.ResourcePathAbs("", configFile)
	if err != nil {
		return c, err
	}

	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, err
	}

	if err := json.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, nil
}

// Save writes c to ~/.chismaker/qa.json, creating the directory if
// necessary.
func Save(c QaConfig) error {
	p, err := paths.ResourcePathAbs("", configFile)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(p, b, 0o644)
}
