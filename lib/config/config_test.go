// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/botfleet/lib/sealed"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config does not validate: %v", err)
	}
	if cfg.Bots.Start != "last" || cfg.Bots.Wear != "no" || cfg.Bots.Behaviors != "p" {
		t.Errorf("bot defaults = start %q wear %q behaviors %q", cfg.Bots.Start, cfg.Bots.Wear, cfg.Bots.Behaviors)
	}
	if cfg.Grid.Driver != DriverSimulated {
		t.Errorf("driver = %q, want simulated", cfg.Grid.Driver)
	}
	if cfg.LoginDelay() != 5*time.Second {
		t.Errorf("LoginDelay() = %v, want 5s", cfg.LoginDelay())
	}
	if strings.Contains(cfg.Control.Socket, "${") {
		t.Errorf("default socket not expanded: %q", cfg.Control.Socket)
	}
}

func TestLoad_RequiresEnvironment(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when BOTFLEET_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "BOTFLEET_CONFIG environment variable not set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "botfleet.yaml", `
bots:
  count: 25
  first_name: Load
  last_name: Tester
  start: Region1/50
  behaviors: p,g
  action_interval: 2s
connect:
  login_delay: 250ms
  connect_on_start: true
grid:
  simulated:
    regions:
      - {name: West, x: 1000, y: 1000}
      - {name: East, x: 1001, y: 1000}
    fail_logins: ["Load Tester_3"]
control:
  socket: ${HOME}/fleet.sock
`)
	t.Setenv(EnvironmentVariable, path)
	t.Setenv("HOME", "/home/tester")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}

	if cfg.Bots.Count != 25 || cfg.Bots.FirstName != "Load" || cfg.Bots.LastName != "Tester" {
		t.Errorf("bots = %+v", cfg.Bots)
	}
	// Unset fields keep their defaults.
	if cfg.Bots.Wear != "no" {
		t.Errorf("wear = %q, want default no", cfg.Bots.Wear)
	}
	if cfg.ActionInterval() != 2*time.Second || cfg.LoginDelay() != 250*time.Millisecond {
		t.Errorf("durations = %v, %v", cfg.ActionInterval(), cfg.LoginDelay())
	}
	if !cfg.Connect.ConnectOnStart {
		t.Error("connect_on_start not loaded")
	}
	if len(cfg.Grid.Simulated.Regions) != 2 || cfg.Grid.Simulated.Regions[1].X != 1001 {
		t.Errorf("regions = %+v", cfg.Grid.Simulated.Regions)
	}
	if cfg.Control.Socket != "/home/tester/fleet.sock" {
		t.Errorf("socket = %q, want /home/tester/fleet.sock", cfg.Control.Socket)
	}
}

func TestLoadFile_JSONC(t *testing.T) {
	path := writeConfig(t, "botfleet.jsonc", `{
  // Fleet against a local gateway.
  "bots": {"count": 3, "wear": "save"},
  "grid": {
    "driver": "websocket",
    "url": "ws://localhost:9000/grid",
    "message_rate": 5, // per bot
  },
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if cfg.Bots.Count != 3 || cfg.Bots.Wear != "save" {
		t.Errorf("bots = %+v", cfg.Bots)
	}
	if cfg.Grid.Driver != DriverWebsocket || cfg.Grid.URL != "ws://localhost:9000/grid" || cfg.Grid.MessageRate != 5 {
		t.Errorf("grid = %+v", cfg.Grid)
	}
	if cfg.Grid.MessageBurst != 5 {
		t.Errorf("message_burst = %d, want default 5", cfg.Grid.MessageBurst)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file loaded")
	}
	path := writeConfig(t, "bad.yaml", "bots: [not, a, map]")
	if _, err := LoadFile(path); err == nil {
		t.Error("malformed YAML loaded")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Bots.Count = -1
	cfg.Bots.FirstName = ""
	cfg.Bots.Wear = "sometimes"
	cfg.Bots.Settings = map[string]bool{"NOT_A_SETTING": true}
	cfg.Connect.LoginDelay = "soon"
	cfg.Grid.Driver = DriverWebsocket
	cfg.Grid.Simulated.Regions = []RegionConfig{{Name: "A"}, {Name: "A", X: 1}}
	cfg.Logging.Level = "loud"
	cfg.Bots.Password = "plain"
	cfg.Bots.SealedPassword = "c2VhbGVk"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() accepted a broken config")
	}
	for _, want := range []string{
		"bots.count",
		"bots.first_name",
		"bots.wear",
		"NOT_A_SETTING",
		"connect.login_delay",
		"grid.url is required",
		`duplicate region "A"`,
		"logging.level",
		"mutually exclusive",
		"bots.identity_file is required",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error does not mention %q:\n%v", want, err)
		}
	}
}

func TestUnsealPassword(t *testing.T) {
	identity, err := sealed.GenerateIdentity()
	if err != nil {
		t.Fatal(err)
	}
	defer identity.Close()
	identityPath := filepath.Join(t.TempDir(), "fleet.key")
	if err := sealed.WriteIdentity(identityPath, identity); err != nil {
		t.Fatal(err)
	}
	sealedPassword, err := sealed.Seal([]byte("hunter2"), identity.Recipient)
	if err != nil {
		t.Fatal(err)
	}

	path := writeConfig(t, "fleet.yaml", "bots:\n  sealed_password: "+sealedPassword+"\n  identity_file: "+identityPath+"\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := cfg.UnsealPassword(); err != nil {
		t.Fatalf("UnsealPassword: %v", err)
	}
	if cfg.Bots.Password != "hunter2" || cfg.Bots.SealedPassword != "" {
		t.Errorf("after unseal password = %q sealed = %q", cfg.Bots.Password, cfg.Bots.SealedPassword)
	}

	plain := Default()
	plain.Bots.Password = "plain"
	if err := plain.UnsealPassword(); err != nil || plain.Bots.Password != "plain" {
		t.Errorf("UnsealPassword without a sealed password = %v, password %q", err, plain.Bots.Password)
	}

	broken := Default()
	broken.Bots.SealedPassword = sealedPassword
	broken.Bots.IdentityFile = filepath.Join(t.TempDir(), "missing.key")
	if err := broken.UnsealPassword(); err == nil || !strings.Contains(err.Error(), "bots.identity_file") {
		t.Errorf("UnsealPassword with a missing identity = %v", err)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("BOTFLEET_TEST_DIR", "/from/env")
	t.Setenv("BOTFLEET_TEST_EMPTY", "")

	tests := []struct {
		input string
		vars  map[string]string
		want  string
	}{
		{input: "${BOTFLEET_TEST_DIR}/x", want: "/from/env/x"},
		{input: "${BOTFLEET_TEST_EMPTY:-/fallback}/x", want: "/fallback/x"},
		{input: "${HOME}/x", vars: map[string]string{"HOME": "/vars"}, want: "/vars/x"},
		{input: "plain", want: "plain"},
	}
	for _, test := range tests {
		if got := expandVars(test.input, test.vars); got != test.want {
			t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}
