// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// ReadLine reads the first line of r into a Buffer, trimmed of
// surrounding whitespace. Passwords piped on stdin arrive this way.
func ReadLine(r io.Reader) (*Buffer, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("secret: reading: %w", err)
		}
		return nil, ErrEmpty
	}
	line := scanner.Bytes()
	defer Zero(line)
	return FromBytes(bytes.TrimSpace(line))
}

// ReadFile reads the whole of path into a Buffer, trimmed of
// surrounding whitespace. The path "-" reads one line from stdin.
func ReadFile(path string, stdin io.Reader) (*Buffer, error) {
	if path == "-" {
		return ReadLine(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defer Zero(data)
	return FromBytes(bytes.TrimSpace(data))
}
