// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	identity, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	defer identity.Close()

	if !strings.HasPrefix(identity.Recipient, "age1") {
		t.Errorf("Recipient = %q, want age1 prefix", identity.Recipient)
	}
	if err := CheckRecipient(identity.Recipient); err != nil {
		t.Errorf("CheckRecipient: %v", err)
	}

	sealed, err := Seal([]byte("hunter2"), identity.Recipient)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if strings.Contains(sealed, "hunter2") {
		t.Fatal("sealed text contains the password")
	}

	password, err := Open(sealed, identity.Key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer password.Close()
	if got := password.String(); got != "hunter2" {
		t.Errorf("Open = %q, want hunter2", got)
	}
}

func TestOpenWithWrongIdentity(t *testing.T) {
	owner, err := GenerateIdentity()
	if err != nil {
		t.Fatal(err)
	}
	defer owner.Close()
	stranger, err := GenerateIdentity()
	if err != nil {
		t.Fatal(err)
	}
	defer stranger.Close()

	sealed, err := Seal([]byte("hunter2"), owner.Recipient)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Open(sealed, stranger.Key); err == nil {
		t.Error("Open with a different identity succeeded")
	}
	if _, err := Open("not base64!", owner.Key); err == nil {
		t.Error("Open of malformed text succeeded")
	}
}

func TestSealRejectsBadRecipients(t *testing.T) {
	if _, err := Seal([]byte("x")); err == nil {
		t.Error("Seal with no recipients succeeded")
	}
	if _, err := Seal([]byte("x"), "age1notakey"); err == nil {
		t.Error("Seal with an invalid recipient succeeded")
	}
	if err := CheckRecipient("ssh-ed25519 AAAA"); err == nil {
		t.Error("CheckRecipient accepted an ssh key")
	}
}

func TestIdentityFile(t *testing.T) {
	identity, err := GenerateIdentity()
	if err != nil {
		t.Fatal(err)
	}
	defer identity.Close()

	path := filepath.Join(t.TempDir(), "fleet.key")
	if err := WriteIdentity(path, identity); err != nil {
		t.Fatalf("WriteIdentity: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("identity file mode = %o, want 600", mode)
	}
	if err := WriteIdentity(path, identity); !errors.Is(err, os.ErrExist) {
		t.Errorf("second WriteIdentity = %v, want ErrExist", err)
	}

	key, err := LoadIdentity(path)
	if err != nil {
		t.Fatalf("LoadIdentity: %v", err)
	}
	defer key.Close()
	if key.String() != identity.Key.String() {
		t.Error("loaded identity differs from the written one")
	}

	sealed, err := Seal([]byte("hunter2"), identity.Recipient)
	if err != nil {
		t.Fatal(err)
	}
	password, err := Open(sealed, key)
	if err != nil {
		t.Fatalf("Open with loaded identity: %v", err)
	}
	password.Close()
}

func TestLoadIdentityErrors(t *testing.T) {
	directory := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{name: "only comments", content: "# public key: age1xyz\n\n"},
		{name: "garbage", content: "AGE-SECRET-KEY-1NOTREAL\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(directory, strings.ReplaceAll(test.name, " ", "-"))
			if err := os.WriteFile(path, []byte(test.content), 0o600); err != nil {
				t.Fatal(err)
			}
			if key, err := LoadIdentity(path); err == nil {
				key.Close()
				t.Fatal("LoadIdentity succeeded, want error")
			}
		})
	}
	if _, err := LoadIdentity(filepath.Join(directory, "missing")); err == nil {
		t.Error("LoadIdentity of a missing file succeeded")
	}
}

func TestIdentityCloseWithoutKey(t *testing.T) {
	var identity Identity
	if err := identity.Close(); err != nil {
		t.Errorf("Close on empty identity: %v", err)
	}
}
