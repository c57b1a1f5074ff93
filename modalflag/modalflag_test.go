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

package modalflag_test

import (
	"strings"
	"testing"

	"github.com/ChisBread/chismaker/modalflag"
)

func TestNoModesNoFlags(t *testing.T) {
	var md modalflag.Modes
	md.NewArgs([]string{})

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		t.Error("expected ParseContinue")
	}
	if err != nil {
		t.Errorf("did not expect error: %s", err)
	}
	if md.Mode() != "" {
		t.Errorf("did not expect to see a mode")
	}
}

func TestSubModeSelection(t *testing.T) {
	var md modalflag.Modes
	md.NewArgs([]string{"run-qa", "COM3"})
	md.AddSubModes("connect", "run-qa", "backup")

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		t.Error("expected ParseContinue")
	}
	if err != nil {
		t.Errorf("did not expect error: %s", err)
	}
	if md.Mode() != "run-qa" {
		t.Errorf("expected mode run-qa, got %q", md.Mode())
	}
	if len(md.RemainingArgs()) != 1 || md.RemainingArgs()[0] != "COM3" {
		t.Errorf("expected remaining arg COM3, got %v", md.RemainingArgs())
	}
}

func TestDefaultSubMode(t *testing.T) {
	var md modalflag.Modes
	md.NewArgs([]string{})
	md.AddSubModes("connect", "run-qa", "backup")

	_, err := md.Parse()
	if err != nil {
		t.Errorf("did not expect error: %s", err)
	}
	if md.Mode() != "connect" {
		t.Errorf("expected default mode connect, got %q", md.Mode())
	}
}

func TestHelpFlags(t *testing.T) {
	var b strings.Builder
	md := modalflag.Modes{Output: &b}
	md.NewArgs([]string{"-help"})

	p, _ := md.Parse()
	if p != modalflag.ParseHelp {
		t.Error("expected ParseHelp")
	}
	if !strings.Contains(b.String(), "Usage:") {
		t.Errorf("expected usage text, got %q", b.String())
	}
}
