// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/botfleet/lib/codec"
	"github.com/bureau-foundation/botfleet/lib/testutil"
)

var errBusy = errors.New("busy")

type echoRequest struct {
	Message string `cbor:"message"`
	Count   int    `cbor:"count"`
}

type echoResponse struct {
	Message string `cbor:"message"`
	Count   int    `cbor:"count"`
}

func startServer(t *testing.T) (*Client, string) {
	t.Helper()
	socketPath := filepath.Join(testutil.SocketDir(t), "control.sock")
	server := NewServer(socketPath, ServerOptions{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ErrorCode: func(err error) string {
			if errors.Is(err, errBusy) {
				return "busy"
			}
			return ""
		},
	})

	server.Handle("echo", func(ctx context.Context, raw []byte) (any, error) {
		var request echoRequest
		if err := Decode(raw, &request); err != nil {
			return nil, err
		}
		return echoResponse{Message: request.Message, Count: request.Count + 1}, nil
	})
	server.Handle("empty", func(ctx context.Context, raw []byte) (any, error) {
		return nil, nil
	})
	server.Handle("fail", func(ctx context.Context, raw []byte) (any, error) {
		return nil, errBusy
	})

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- server.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := testutil.RequireReceive(t, served, 5*time.Second, "server shutdown"); err != nil {
			t.Errorf("Serve: %v", err)
		}
		if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
			t.Errorf("socket file left behind: %v", err)
		}
	})
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server ready")
	return NewClient(socketPath), socketPath
}

func TestCallRoundTrip(t *testing.T) {
	client, _ := startServer(t)

	var response echoResponse
	err := client.Call(context.Background(), "echo", map[string]any{"message": "hello", "count": 41}, &response)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if response.Message != "hello" || response.Count != 42 {
		t.Errorf("response = %+v", response)
	}

	if err := client.Call(context.Background(), "empty", nil, &response); err != nil {
		t.Errorf("Call(empty): %v", err)
	}
}

func TestCallErrors(t *testing.T) {
	client, _ := startServer(t)

	err := client.Call(context.Background(), "fail", nil, nil)
	var controlErr *Error
	if !errors.As(err, &controlErr) {
		t.Fatalf("Call(fail) error = %v, want *Error", err)
	}
	if controlErr.Code != "busy" || controlErr.Message != "busy" || controlErr.Action != "fail" {
		t.Errorf("error = %+v", controlErr)
	}

	err = client.Call(context.Background(), "nope", nil, nil)
	if !errors.As(err, &controlErr) || controlErr.Code != "" {
		t.Errorf("unknown action error = %v", err)
	}
}

func TestMissingAction(t *testing.T) {
	_, socketPath := startServer(t)

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if err := codec.NewEncoder(conn).Encode(map[string]any{"message": "no action"}); err != nil {
		t.Fatal(err)
	}
	var response Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		t.Fatal(err)
	}
	if response.OK || response.Error != "missing required field: action" {
		t.Errorf("response = %+v", response)
	}
}

func TestSocketPermissions(t *testing.T) {
	_, socketPath := startServer(t)
	info, err := os.Stat(socketPath)
	if err != nil {
		t.Fatal(err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("socket mode = %o, want 600", mode)
	}
}

func TestCallNoServer(t *testing.T) {
	client := NewClient(filepath.Join(testutil.SocketDir(t), "absent.sock"))
	err := client.Call(context.Background(), "echo", nil, nil)
	if err == nil {
		t.Fatal("Call without a server succeeded")
	}
	var controlErr *Error
	if errors.As(err, &controlErr) {
		t.Errorf("transport failure reported as server error: %v", err)
	}
}

func TestDuplicateHandlerPanics(t *testing.T) {
	server := NewServer("/unused", ServerOptions{})
	server.Handle("x", func(context.Context, []byte) (any, error) { return nil, nil })
	defer func() {
		if recover() == nil {
			t.Error("duplicate Handle did not panic")
		}
	}()
	server.Handle("x", func(context.Context, []byte) (any, error) { return nil, nil })
}
