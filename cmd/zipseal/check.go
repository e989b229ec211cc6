// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/zipseal/zipseal/lib/archive"
	"github.com/zipseal/zipseal/lib/cli"
	"github.com/zipseal/zipseal/lib/secret"
)

// checkOptions carries the check command's flag values.
type checkOptions struct {
	passwordFile string
	verbose      bool
}

func checkCommand() *cli.Command {
	options := &checkOptions{}

	return &cli.Command{
		Name:    "check",
		Summary: "Verify a published archive",
		Description: `Verify a published archive. The checksum pass needs no password: it
compares each entry's stored payload against the digests the archive
carries. With --password-file (use "-" for stdin), the archive is also
extracted into a scratch directory to prove the password decrypts
every entry; the extracted files are removed afterwards.`,
		Usage: "zipseal check <archive> [flags]",
		Examples: []cli.Example{
			{Description: "Checksum verification only", Command: "zipseal check reports_secured.zip"},
			{Description: "Full verification with the password on stdin", Command: "zipseal check --password-file - reports_secured.zip"},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("check", pflag.ContinueOnError)
			flags.StringVar(&options.passwordFile, "password-file", "", `file holding the archive password, "-" for stdin`)
			flags.BoolVarP(&options.verbose, "verbose", "v", false, "enable debug logging")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("check requires exactly one archive path, got %d", len(args))
			}
			return runCheck(args[0], options)
		},
	}
}

func runCheck(archivePath string, options *checkOptions) error {
	logger := cli.NewCommandLogger(options.verbose).With("command", "check")

	result, err := archive.VerifyIntegrity(archivePath)
	if err != nil {
		return fmt.Errorf("verifying %s: %w", archivePath, err)
	}

	for _, check := range result.Checks {
		status := "ok"
		if !check.OK {
			status = "CORRUPT"
		}
		fmt.Printf("%-8s %s\n", status, check.Name)
	}

	if !result.OK() {
		logger.Error("checksum verification failed",
			"archive", archivePath,
			"failed_entries", len(result.FailedEntries()))
		fmt.Printf("checksum: FAILED (%d of %d entries corrupt)\n",
			len(result.FailedEntries()), result.EntryCount)
		return &cli.ExitError{Code: 1}
	}
	fmt.Printf("checksum: ok (%d entries)\n", result.EntryCount)

	if options.passwordFile == "" {
		return nil
	}

	passphrase, err := secret.ReadFromPath(options.passwordFile)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	defer passphrase.Close()

	extracted, err := archive.TestExtraction(archivePath, passphrase)
	if err != nil {
		logger.Error("extraction trial failed", "archive", archivePath, "error", err)
		fmt.Println("extraction: FAILED")
		return &cli.ExitError{Code: 1}
	}
	fmt.Printf("extraction: ok (%d entries)\n", extracted)
	return nil
}
