// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/botfleet/cmd/botfleet/cli"
	"github.com/bureau-foundation/botfleet/lib/sealed"
	"github.com/bureau-foundation/botfleet/lib/secret"
)

// Commands returns keygen and seal. Passwords are read from stdin
// unless --password-file names a file.
func Commands(stdin io.Reader, out io.Writer) []*cli.Command {
	return []*cli.Command{keygenCommand(out), sealCommand(stdin, out)}
}

func keygenCommand(out io.Writer) *cli.Command {
	var params struct {
		cli.JSONOutput
	}
	return &cli.Command{
		Name:    "keygen",
		Summary: "Create an identity for sealing bot passwords",
		Usage:   "keygen <path>",
		Description: `Generate an age x25519 identity, write it to path with mode 0600,
and print its public key. Point bots.identity_file at the file and
pass the public key to "seal".`,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("keygen", &params) },
		Run: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return cli.Validation("usage: keygen <path>")
			}
			identity, err := sealed.GenerateIdentity()
			if err != nil {
				return cli.Internal("%v", err)
			}
			defer identity.Close()

			if err := sealed.WriteIdentity(args[0], identity); err != nil {
				if errors.Is(err, os.ErrExist) {
					return cli.Conflict("%s already exists", args[0])
				}
				return cli.Internal("writing identity: %v", err)
			}
			if done, err := params.EmitJSON(out, map[string]string{"path": args[0], "recipient": identity.Recipient}); done {
				return err
			}
			fmt.Fprintf(out, "Public key: %s\n", identity.Recipient)
			return nil
		},
	}
}

func sealCommand(stdin io.Reader, out io.Writer) *cli.Command {
	var params struct {
		Recipients   []string `flag:"recipient,r" desc:"age public key to seal to (repeatable)"`
		PasswordFile string   `flag:"password-file" desc:"read the password from this file instead of stdin" default:"-"`
	}
	return &cli.Command{
		Name:    "seal",
		Summary: "Seal a bot password for the controller config",
		Usage:   "seal --recipient age1... [--password-file path]",
		Description: `Read a bot password (the first line of stdin by default) and print
it sealed to each recipient. Paste the output into bots.sealed_password.`,
		Examples: []cli.Example{
			{Description: "Seal a password typed on stdin", Command: "botfleet seal -r age1ql3z7hjy54pw3hyww5ayyfg7zqgvc7w3j2elw8zmrj2kg5sfn9aqmcac8p"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("seal", &params) },
		Run: func(_ context.Context, args []string) error {
			if len(args) != 0 {
				return cli.Validation("seal takes no arguments")
			}
			if len(params.Recipients) == 0 {
				return cli.Validation("at least one --recipient is required")
			}
			for _, recipient := range params.Recipients {
				if err := sealed.CheckRecipient(recipient); err != nil {
					return cli.Validation("%s: %v", recipient, err)
				}
			}

			password, err := secret.ReadFile(params.PasswordFile, stdin)
			if err != nil {
				if errors.Is(err, secret.ErrEmpty) {
					return cli.Validation("the password is empty")
				}
				return cli.Validation("reading password: %v", err)
			}
			defer password.Close()

			text, err := sealed.Seal(password.Bytes(), params.Recipients...)
			if err != nil {
				return cli.Internal("%v", err)
			}
			fmt.Fprintln(out, text)
			return nil
		},
	}
}
