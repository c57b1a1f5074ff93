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

package events_test

import (
	"testing"

	"github.com/ChisBread/chismaker/events"
)

func TestEmitDeliversInOrder(t *testing.T) {
	b := events.New()
	b.EmitLog("p1", "hello")
	b.EmitProgress("p1", 50)
	b.EmitFinished("p1", true, nil)

	want := []events.Kind{events.Log, events.Progress, events.Finished}
	for _, k := range want {
		e := <-b.Events
		if e.Kind != k {
			t.Errorf("got kind %v, want %v", e.Kind, k)
		}
		if e.PortID != "p1" {
			t.Errorf("got port %q, want p1", e.PortID)
		}
	}
}

func TestEmitNeverBlocksWhenFull(t *testing.T) {
	b := &events.Bus{Events: make(chan events.Event, 1)}
	b.EmitLog("p1", "first")
	b.EmitLog("p1", "second") // buffer full, must be dropped, not block

	e := <-b.Events
	if e.Message != "first" {
		t.Errorf("expected first event to survive, got %q", e.Message)
	}
	select {
	case <-b.Events:
		t.Fatal("expected channel to be empty after dropping the second event")
	default:
	}
}
