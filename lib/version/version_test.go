// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"
)

func TestCommitFallsBackToBuildInfo(t *testing.T) {
	original := readBuildInfo
	t.Cleanup(func() { readBuildInfo = original })

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
		}}, true
	}
	if got := Commit(); got != "0123456" {
		t.Errorf("Commit() = %q, want 0123456", got)
	}

	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }
	if got := Commit(); got != "unknown" {
		t.Errorf("Commit() without build info = %q, want unknown", got)
	}
}

func TestInfoDirty(t *testing.T) {
	originalCommit, originalDirty := GitCommit, GitDirty
	t.Cleanup(func() { GitCommit, GitDirty = originalCommit, originalDirty })

	GitCommit = "abc1234"
	GitDirty = "true"
	if got := Info(); !strings.Contains(got, "abc1234-dirty") {
		t.Errorf("Info() = %q, want dirty commit", got)
	}
}

func TestPrint(t *testing.T) {
	var buffer bytes.Buffer
	Print(&buffer, "botfleet")
	output := buffer.String()
	if !strings.HasPrefix(output, "botfleet "+Version) || !strings.Contains(output, "Platform:") {
		t.Errorf("Print output = %q", output)
	}
}
