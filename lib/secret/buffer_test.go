// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFromBytesZeroesSource(t *testing.T) {
	source := []byte("hunter2")
	buffer, err := FromBytes(source)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer buffer.Close()

	if got := buffer.String(); got != "hunter2" {
		t.Errorf("String() = %q, want hunter2", got)
	}
	if buffer.Len() != 7 {
		t.Errorf("Len() = %d, want 7", buffer.Len())
	}
	for index, value := range source {
		if value != 0 {
			t.Fatalf("source[%d] = %d after FromBytes, want 0", index, value)
		}
	}
}

func TestNewRejectsBadSizes(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := New(size); err == nil {
			t.Errorf("New(%d) succeeded, want error", size)
		}
	}
	if _, err := FromBytes(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("FromBytes(nil) = %v, want ErrEmpty", err)
	}
}

func TestCloseIsIdempotentAndPanicsOnRead(t *testing.T) {
	buffer, err := FromString("password")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if buffer.Len() != 0 {
		t.Errorf("Len() after Close = %d, want 0", buffer.Len())
	}

	defer func() {
		if recover() == nil {
			t.Error("Bytes() on a closed buffer did not panic")
		}
	}()
	buffer.Bytes()
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "trimmed", input: "  hunter2 \nignored\n", want: "hunter2"},
		{name: "no newline", input: "hunter2", want: "hunter2"},
		{name: "empty", input: "", wantErr: true},
		{name: "blank line", input: "   \n", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buffer, err := ReadLine(strings.NewReader(test.input))
			if test.wantErr {
				if err == nil {
					buffer.Close()
					t.Fatal("ReadLine succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadLine: %v", err)
			}
			defer buffer.Close()
			if got := buffer.String(); got != test.want {
				t.Errorf("ReadLine = %q, want %q", got, test.want)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(path, []byte("\nhunter2\n\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	buffer, err := ReadFile(path, nil)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	defer buffer.Close()
	if got := buffer.String(); got != "hunter2" {
		t.Errorf("ReadFile = %q, want hunter2", got)
	}

	stdin, err := ReadFile("-", strings.NewReader("piped\n"))
	if err != nil {
		t.Fatalf("ReadFile(-): %v", err)
	}
	defer stdin.Close()
	if got := stdin.String(); got != "piped" {
		t.Errorf("ReadFile(-) = %q, want piped", got)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Error("ReadFile of a missing file succeeded")
	}
}
