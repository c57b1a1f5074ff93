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

package chiserrors

// Errno is unused as a type but kept to group the message constants below
// by subsystem, mirroring the layout of an Errno block.
type Errno int

// list of error message heads, grouped by the §7 error kind they belong to.
const (
	// FrameError — short read, malformed ack; fatal to the current
	// operation.
	FrameShortRead  = "frame error: short read (wanted %d, got %d)"
	FrameBadLength  = "frame error: response length mismatch (wanted %d, got %d)"
	FrameWriteFail  = "frame error: %v"

	// ProtocolError — unexpected ack; fatal to the plan.
	ProtocolBadAck        = "protocol error: unexpected ack 0x%02X"
	ProtocolBadMappingLen = "protocol error: flash mapping must have 8 entries, got %d"
	ProtocolBadBank       = "protocol error: mapping bank %d out of range"

	// VerifyMismatch — read-back didn't match expected; fatal to the plan.
	VerifyMismatch = "verify mismatch at offset 0x%X: want 0x%02X got 0x%02X"

	// Cancelled — user-initiated; not an error but reported as ok=false.
	Cancelled = "cancelled"

	// IoError — underlying serial disconnect; device marked Disconnected.
	IoError = "io error: %v"

	// Timeout — no hard poll deadline is required, but a bounded retry
	// count may surface this.
	Timeout = "timeout: %v"

	// configuration / supervisor level errors
	DeviceUnknown  = "device error: unknown port %q"
	JobAlreadyDone = "job error: no job running for port %q"

	// QA plan configuration errors
	QaNoStepsEnabled = "qa error: no test item enabled"
)
