// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"
	"strconv"
	"strings"
)

// LocationKind distinguishes the three kinds of start location a login
// can request.
type LocationKind int

const (
	// LocationLast starts the agent where it last logged out.
	LocationLast LocationKind = iota
	// LocationHome starts the agent at its home location.
	LocationHome
	// LocationRegion starts the agent at explicit coordinates in a
	// named region.
	LocationRegion
)

// Default coordinates for a region start location when the operator
// omits them: the middle of the region at ground level.
const (
	DefaultStartX = 128
	DefaultStartY = 128
	DefaultStartZ = 0
)

// Location is a parsed start location.
type Location struct {
	Kind   LocationKind
	Region string
	X      int
	Y      int
	Z      int
}

// ParseLocation parses an operator start location. "home" and
// "last" select those kinds; the empty string is "last". Anything else
// is "region[/x[/y[/z]]]". Missing or non-numeric coordinates keep
// their defaults; ParseLocation never fails.
func ParseLocation(value string) Location {
	value = strings.TrimSpace(value)
	switch value {
	case "", "last":
		return Location{Kind: LocationLast}
	case "home":
		return Location{Kind: LocationHome}
	}

	location := Location{
		Kind: LocationRegion,
		X:    DefaultStartX,
		Y:    DefaultStartY,
		Z:    DefaultStartZ,
	}

	parts := strings.SplitN(value, "/", 4)
	location.Region = parts[0]
	coordinates := []*int{&location.X, &location.Y, &location.Z}
	for i, part := range parts[1:] {
		if number, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			*coordinates[i] = number
		}
	}
	return location
}

// String returns the canonical form: "last", "home", or
// "region/<name>/<x>/<y>/<z>".
func (l Location) String() string {
	switch l.Kind {
	case LocationHome:
		return "home"
	case LocationRegion:
		return fmt.Sprintf("region/%s/%d/%d/%d", l.Region, l.X, l.Y, l.Z)
	default:
		return "last"
	}
}

// LoginString returns the start value sent in a login request: "last",
// "home", or "uri:<name>&<x>&<y>&<z>".
func (l Location) LoginString() string {
	switch l.Kind {
	case LocationHome:
		return "home"
	case LocationRegion:
		return fmt.Sprintf("uri:%s&%d&%d&%d", l.Region, l.X, l.Y, l.Z)
	default:
		return "last"
	}
}
