// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package region

import "fmt"

// Handle uniquely identifies a region on a grid.
type Handle uint64

// regionSize is the edge length of a region in meters. Grid
// coordinates are in region units; handles are in meters.
const regionSize = 256

// HandleFromGrid returns the handle of the region at grid coordinates
// (x, y): the world-space meter offsets of its south-west corner
// packed high and low.
func HandleFromGrid(x, y uint32) Handle {
	return Handle(uint64(x)*regionSize<<32 | uint64(y)*regionSize)
}

// Grid returns the grid coordinates encoded in the handle.
func (h Handle) Grid() (x, y uint32) {
	return uint32(uint64(h)>>32) / regionSize, uint32(uint64(h)&0xffffffff) / regionSize
}

func (h Handle) String() string {
	return fmt.Sprintf("%d", uint64(h))
}

// Region is the descriptor reported when a bot learns about a region.
type Region struct {
	Handle Handle `cbor:"handle" json:"handle"`
	Name   string `cbor:"name"   json:"name"`

	// X and Y are grid coordinates in region units.
	X uint32 `cbor:"x" json:"x"`
	Y uint32 `cbor:"y" json:"y"`
}

// New returns a Region at grid coordinates (x, y) with its handle
// derived from the coordinates.
func New(name string, x, y uint32) Region {
	return Region{Handle: HandleFromGrid(x, y), Name: name, X: x, Y: y}
}
