// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"

	"github.com/bureau-foundation/botfleet/lib/secret"
)

// Identity is an age x25519 keypair.
type Identity struct {
	// Key is the AGE-SECRET-KEY-1... encoding.
	Key *secret.Buffer

	// Recipient is the public age1... encoding.
	Recipient string
}

// Close releases the private key.
func (i *Identity) Close() error {
	if i.Key == nil {
		return nil
	}
	return i.Key.Close()
}

// GenerateIdentity creates a fresh keypair.
func GenerateIdentity() (*Identity, error) {
	generated, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating identity: %w", err)
	}
	key, err := secret.FromString(generated.String())
	if err != nil {
		return nil, fmt.Errorf("protecting identity: %w", err)
	}
	return &Identity{Key: key, Recipient: generated.Recipient().String()}, nil
}

// WriteIdentity writes identity to path in age-keygen format, mode
// 0600. It refuses to replace an existing file.
func WriteIdentity(path string, identity *Identity) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(file, "# public key: %s\n%s\n", identity.Recipient, identity.Key.Bytes())
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	return err
}

// LoadIdentity reads the first secret key line of an identity file.
// Blank lines and # comments are skipped.
func LoadIdentity(path string) (*secret.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defer secret.Zero(data)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		key, err := secret.FromBytes(bytes.Clone(line))
		if err != nil {
			return nil, err
		}
		if err := checkIdentity(key); err != nil {
			key.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return key, nil
	}
	return nil, fmt.Errorf("%s: no identity found", path)
}

// Seal encrypts password to each recipient and returns base64 text.
func Seal(password []byte, recipients ...string) (string, error) {
	if len(recipients) == 0 {
		return "", errors.New("at least one recipient is required")
	}
	parsed := make([]age.Recipient, 0, len(recipients))
	for _, recipient := range recipients {
		value, err := age.ParseX25519Recipient(strings.TrimSpace(recipient))
		if err != nil {
			return "", fmt.Errorf("recipient %q: %w", recipient, err)
		}
		parsed = append(parsed, value)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, parsed...)
	if err != nil {
		return "", fmt.Errorf("sealing: %w", err)
	}
	if _, err := writer.Write(password); err != nil {
		return "", fmt.Errorf("sealing: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("sealing: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext.Bytes()), nil
}

// Open decrypts text produced by Seal. key is borrowed, not closed.
func Open(sealed string, key *secret.Buffer) (*secret.Buffer, error) {
	identity, err := age.ParseX25519Identity(key.String())
	if err != nil {
		return nil, fmt.Errorf("parsing identity: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimSpace(sealed))
	if err != nil {
		return nil, fmt.Errorf("decoding sealed password: %w", err)
	}
	reader, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("opening sealed password: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("opening sealed password: %w", err)
	}
	return secret.FromBytes(plaintext)
}

// CheckRecipient reports whether recipient is a valid age1... key.
func CheckRecipient(recipient string) error {
	if _, err := age.ParseX25519Recipient(recipient); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	return nil
}

func checkIdentity(key *secret.Buffer) error {
	if _, err := age.ParseX25519Identity(key.String()); err != nil {
		return fmt.Errorf("invalid identity: %w", err)
	}
	return nil
}
