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

package flash

import "math/rand/v2"

const (
	mib = 1024 * 1024

	fastQAHeadSize   = 4 * mib
	fastQATailSize   = 4 * mib
	fastQARandomSize = 2 * mib
	fastQARandomN    = 4
)

// Region is a byte range of Flash to exercise during the fast-QA erase
// step.
type Region struct {
	Offset uint32
	Size   uint32
}

// PlanFastQARegions builds the CFI-driven fast-QA region plan (§4.C): the
// first 4 MiB, the last 4 MiB, and four random 2 MiB windows, each starting
// at a sector-aligned offset uniformly chosen from [4 MiB, deviceSize -
// 6 MiB]. rng is injected so tests can get a deterministic plan; production
// callers seed it from wall-clock time (see §9).
func PlanFastQARegions(rng *rand.Rand, deviceSize uint32, sectorSize uint32) []Region {
	regions := make([]Region, 0, 2+fastQARandomN)

	regions = append(regions, Region{Offset: 0, Size: fastQAHeadSize})
	regions = append(regions, Region{Offset: deviceSize - fastQATailSize, Size: fastQATailSize})

	lo := uint32(fastQAHeadSize)
	hi := deviceSize - 6*mib

	positions := (hi-lo)/sectorSize + 1
	for i := 0; i < fastQARandomN; i++ {
		k := rng.IntN(int(positions))
		offset := lo + uint32(k)*sectorSize
		regions = append(regions, Region{Offset: offset, Size: fastQARandomSize})
	}

	return regions
}
