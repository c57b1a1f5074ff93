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

// Package supervisor is the Device Supervisor (§4.E): it owns the set of
// connected devices and the (at most one) job running against each, starts
// jobs on their own goroutine, and tears them down cleanly on replacement or
// shutdown. It never touches a device's wire protocol directly — all of
// that is the driver/flash/plan layers' job; the supervisor only sequences
// job lifecycles and relays their events onto the shared Event Bus.
package supervisor

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ChisBread/chismaker/chiserrors"
	"github.com/ChisBread/chismaker/driver"
	"github.com/ChisBread/chismaker/events"
	"github.com/ChisBread/chismaker/flash"
	"github.com/ChisBread/chismaker/logger"
	"github.com/ChisBread/chismaker/plan"
)

// Status is a device's coarse lifecycle state (§3).
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusSuccess
	StatusFailed
)

// Device is one connected SuperChis cartridge, addressed by its port id
// (the OS device path). ErrorCount and LastMessage are the device-state
// fields a presentation shell would show alongside Status (§3); ErrorCount
// increments every time a job against this device finishes with Ok=false
// (§7), LastMessage tracks the most recent Log event emitted for it.
type Device struct {
	PortID string
	Driver *driver.Driver
	Engine *flash.Engine
	Closer interface{ Close() error }

	Status      Status
	ErrorCount  int
	LastMessage string
}

// PlanFunc is a Job Plan bound to nothing but a plan.Context — the shape
// every plan.Run* function in the plan package has after its extra
// arguments (image, destination, …) are closed over.
type PlanFunc func(c plan.Context) plan.Result

// job tracks one running plan and its cancellation flag.
type job struct {
	cancelled chan struct{}
	once      sync.Once
	done      chan struct{}
}

func newJob() *job {
	return &job{cancelled: make(chan struct{}), done: make(chan struct{})}
}

func (j *job) cancel() {
	j.once.Do(func() { close(j.cancelled) })
}

func (j *job) isCancelled() bool {
	select {
	case <-j.cancelled:
		return true
	default:
		return false
	}
}

// cancelGrace is how long Start waits for a previous job on the same
// device to settle before starting the new one (§4.E).
const cancelGrace = 1 * time.Second

// shutdownGrace is the per-job wait during Shutdown before it is considered
// stuck and abandoned (§4.E).
const shutdownGrace = 5 * time.Second

// batchDelayMin and batchDelayMax bound the staggered per-device start
// delay used by batch operations (§4.E).
const (
	batchDelayMin = 500 * time.Millisecond
	batchDelayMax = 1000 * time.Millisecond
)

// Supervisor owns every connected Device and, per device, the Job (if any)
// currently running against it.
type Supervisor struct {
	Bus *events.Bus

	mu      sync.Mutex
	devices map[string]*Device
	jobs    map[string]*job
}

// New creates an empty Supervisor reporting through bus.
func New(bus *events.Bus) *Supervisor {
	return &Supervisor{
		Bus:     bus,
		devices: make(map[string]*Device),
		jobs:    make(map[string]*job),
	}
}

// Add registers a newly connected device.
func (s *Supervisor) Add(d *Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[d.PortID] = d
}

// Remove disconnects and forgets a device, cancelling any job running
// against it first.
func (s *Supervisor) Remove(portID string) {
	s.mu.Lock()
	j := s.jobs[portID]
	d := s.devices[portID]
	delete(s.jobs, portID)
	delete(s.devices, portID)
	s.mu.Unlock()

	if j != nil {
		j.cancel()
	}
	if d != nil && d.Closer != nil {
		d.Closer.Close()
	}
}

// Device looks up a connected device by port id.
func (s *Supervisor) Device(portID string) (*Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[portID]
	return d, ok
}

// Start runs fn against the device at portID on its own goroutine. If a job
// is already running for that port, Start requests its cancellation and
// waits up to cancelGrace for it to settle before starting the new one
// (§4.E).
func (s *Supervisor) Start(portID string, fn PlanFunc) error {
	s.mu.Lock()
	d, ok := s.devices[portID]
	prev := s.jobs[portID]
	s.mu.Unlock()

	if !ok {
		return chiserrors.Errorf(chiserrors.DeviceUnknown, portID)
	}

	if prev != nil {
		prev.cancel()
		select {
		case <-prev.done:
		case <-time.After(cancelGrace):
			logger.Logf("supervisor", "%s previous job did not settle within %s", portID, cancelGrace)
		}
	}

	j := newJob()
	s.mu.Lock()
	s.jobs[portID] = j
	d.Status = StatusRunning
	s.mu.Unlock()

	go s.run(portID, d, j, fn)
	return nil
}

func (s *Supervisor) run(portID string, d *Device, j *job, fn PlanFunc) {
	defer close(j.done)

	c := plan.Context{
		Driver: d.Driver,
		Engine: d.Engine,
		Log: func(msg string) {
			s.mu.Lock()
			d.LastMessage = msg
			s.mu.Unlock()
			s.Bus.EmitLog(portID, msg)
		},
		Progress:  func(pct int) { s.Bus.EmitProgress(portID, pct) },
		Cancelled: j.isCancelled,
	}

	result := fn(c)

	s.mu.Lock()
	if s.jobs[portID] == j {
		delete(s.jobs, portID)
	}
	if d.Status == StatusRunning {
		if result.Ok {
			d.Status = StatusSuccess
		} else {
			d.Status = StatusFailed
			d.ErrorCount++
		}
	}
	s.mu.Unlock()

	s.Bus.EmitFinished(portID, result.Ok, result.Err)
}

// Cancel requests cancellation of the job running against portID, if any.
// It does not wait for the job to stop.
func (s *Supervisor) Cancel(portID string) error {
	s.mu.Lock()
	j, ok := s.jobs[portID]
	s.mu.Unlock()

	if !ok {
		return chiserrors.Errorf(chiserrors.JobAlreadyDone, portID)
	}
	j.cancel()
	return nil
}

// StartAll runs fn against every connected device, staggering each start by
// a uniformly random delay in [0.5s, 1.0s] to avoid USB inrush (§4.E). It
// returns immediately; failures to start an individual device are logged,
// not returned, since the batch as a whole always "succeeds" as a dispatch.
func (s *Supervisor) StartAll(fn PlanFunc) {
	s.mu.Lock()
	portIDs := make([]string, 0, len(s.devices))
	for id := range s.devices {
		portIDs = append(portIDs, id)
	}
	s.mu.Unlock()

	for _, portID := range portIDs {
		portID := portID
		delay := batchDelayMin + time.Duration(rand.Float64()*float64(batchDelayMax-batchDelayMin))
		go func() {
			time.Sleep(delay)
			if err := s.Start(portID, fn); err != nil {
				logger.Logf("supervisor", "batch start for %s failed: %v", portID, err)
			}
		}()
	}
}

// Shutdown cancels every running job, waits up to shutdownGrace each for it
// to settle, then disconnects every device regardless (§4.E).
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	jobs := make(map[string]*job, len(s.jobs))
	for id, j := range s.jobs {
		jobs[id] = j
	}
	portIDs := make([]string, 0, len(s.devices))
	for id := range s.devices {
		portIDs = append(portIDs, id)
	}
	s.mu.Unlock()

	for _, j := range jobs {
		j.cancel()
	}
	for portID, j := range jobs {
		select {
		case <-j.done:
		case <-time.After(shutdownGrace):
			logger.Logf("supervisor", "%s job did not settle by shutdown, abandoning", portID)
		}
	}

	for _, portID := range portIDs {
		s.Remove(portID)
	}
}
