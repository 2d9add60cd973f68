// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package region

import (
	"sort"
	"sync"
)

// Catalog is the set of regions known to the fleet, keyed by handle.
// The zero value is not usable; call NewCatalog.
type Catalog struct {
	mu      sync.Mutex
	regions map[Handle]Region
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{regions: make(map[Handle]Region)}
}

// Add records region unless its handle is already present, in which
// case the existing descriptor is kept and Add reports false.
func (c *Catalog) Add(region Region) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.regions[region.Handle]; exists {
		return false
	}
	c.regions[region.Handle] = region
	return true
}

// Get returns the descriptor stored for handle.
func (c *Catalog) Get(handle Handle) (Region, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	region, ok := c.regions[handle]
	return region, ok
}

// Len returns the number of known regions.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.regions)
}

// List returns a copy of every known region ordered by name, then by
// handle for regions that share a name.
func (c *Catalog) List() []Region {
	c.mu.Lock()
	regions := make([]Region, 0, len(c.regions))
	for _, region := range c.regions {
		regions = append(regions, region)
	}
	c.mu.Unlock()

	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Name != regions[j].Name {
			return regions[i].Name < regions[j].Name
		}
		return regions[i].Handle < regions[j].Handle
	})
	return regions
}
