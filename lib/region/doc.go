// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package region describes grid regions discovered by connected bots
// and the deduplicating Catalog that collects them.
//
// Any bot's session may report a region at any time, from its own
// goroutine. The Catalog keeps the first descriptor seen for each
// handle and ignores later reports for the same handle, so concurrent
// discovery of one region by many bots needs no coordination beyond
// the catalog's own mutex.
package region
