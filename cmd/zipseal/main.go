// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

// The zipseal command creates password-protected AES-256 encrypted
// zip archives and verifies them end to end.
package main

import (
	"fmt"
	"os"

	"github.com/zipseal/zipseal/lib/cli"
	"github.com/zipseal/zipseal/lib/version"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like check) return an
		// ExitError with the desired exit code. Don't print a
		// redundant "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return rootCommand().Execute(os.Args[1:])
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name: "zipseal",
		Description: `Zipseal: password-protected encrypted archives.

Encrypt a file or directory into a standard AES-256 zip archive with a
generated password, publish it atomically, and verify the published
bytes by checksum and extraction trial.`,
		Subcommands: []*cli.Command{
			lockCommand(),
			checkCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("zipseal %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Encrypt a directory next to itself",
				Command:     "zipseal lock ./reports",
			},
			{
				Description: "Encrypt a single file at maximum compression",
				Command:     "zipseal lock --level 9 secrets.env",
			},
			{
				Description: "Verify a published archive without its password",
				Command:     "zipseal check reports_20260829_143005_secured.zip",
			},
		},
	}
}
