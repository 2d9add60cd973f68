// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds bot account passwords and age identities in
// memory the garbage collector never sees.
//
// A [Buffer] is an anonymous mmap region locked into RAM and excluded
// from core dumps. Closing it zeroes and unmaps the region. The one
// unavoidable heap copy happens when a caller needs a string, which
// [Buffer.String] makes explicit at the call site.
package secret
