// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/bureau-foundation/botfleet/cmd/botfleet/cli"
)

const prompt = "botfleet> "

type lineReader interface {
	ReadLine() (string, error)
}

// console is the operator's in-process command line and the fleet's
// ControlSurface. It is also the log sink when interactive, so log
// records and asynchronous messages are redrawn above the prompt.
type console struct {
	interactive bool
	reader      lineReader

	mu  sync.Mutex
	out io.Writer

	root *cli.Command
	done <-chan struct{}

	restoreOnce sync.Once
	restore     func()
}

// openConsole puts a terminal stdin into raw mode for line editing,
// or falls back to reading plain lines.
func openConsole(stdin io.Reader, stdout io.Writer) *console {
	inFile, inOK := stdin.(*os.File)
	outFile, outOK := stdout.(*os.File)
	if inOK && outOK && term.IsTerminal(int(inFile.Fd())) && term.IsTerminal(int(outFile.Fd())) {
		fd := int(inFile.Fd())
		state, err := term.MakeRaw(fd)
		if err == nil {
			terminal := term.NewTerminal(struct {
				io.Reader
				io.Writer
			}{inFile, outFile}, prompt)
			if width, height, err := term.GetSize(int(outFile.Fd())); err == nil {
				terminal.SetSize(width, height)
			}
			return &console{
				interactive: true,
				reader:      terminal,
				out:         terminal,
				restore:     func() { term.Restore(fd, state) },
			}
		}
	}
	return newPlainConsole(stdin, stdout)
}

func newPlainConsole(stdin io.Reader, stdout io.Writer) *console {
	return &console{
		reader:  &scannerReader{scanner: bufio.NewScanner(stdin)},
		out:     stdout,
		restore: func() {},
	}
}

type scannerReader struct {
	scanner *bufio.Scanner
}

func (s *scannerReader) ReadLine() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// bind installs the command tree. done is the controller's shutdown
// channel; the console stops reading once it closes.
func (c *console) bind(commands []*cli.Command, done <-chan struct{}) {
	c.root = &cli.Command{
		Usage:       "<command> [args]",
		Summary:     "Bot fleet console",
		Output:      c,
		Subcommands: commands,
	}
	c.done = done
}

// Write implements io.Writer.
func (c *console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Write(p)
}

// Output implements fleet.ControlSurface.
func (c *console) Output(message string) {
	fmt.Fprintln(c, message)
}

// run reads and executes commands until the controller shuts down or
// input ends. End of input on a terminal (Ctrl-D) asks to quit, which
// the controller refuses while bots are live; end of piped input just
// stops the console.
func (c *console) run(ctx context.Context) {
	for {
		line, err := c.reader.ReadLine()
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if !c.interactive || !errors.Is(err, io.EOF) {
				return
			}
			fmt.Fprintln(c, "quit")
			line = "quit"
		}
		c.execute(ctx, line)

		select {
		case <-c.done:
			return
		default:
		}
	}
}

func (c *console) execute(ctx context.Context, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	if err := c.root.Execute(ctx, fields); err != nil {
		fmt.Fprintf(c, "error: %v\n", err)
	}
}

// close restores the terminal.
func (c *console) close() {
	c.restoreOnce.Do(c.restore)
}
