// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/zipseal/zipseal/lib/archive"
	"github.com/zipseal/zipseal/lib/cli"
	"github.com/zipseal/zipseal/lib/clock"
	"github.com/zipseal/zipseal/lib/config"
)

// lockOptions carries the lock command's flag values.
type lockOptions struct {
	configPath string
	level      int
	outputDir  string
	noVerify   bool
	length     int
	noSymbols  bool
	verbose    bool
}

func lockCommand() *cli.Command {
	options := &lockOptions{}
	var flags *pflag.FlagSet

	return &cli.Command{
		Name:    "lock",
		Summary: "Encrypt a file or directory into a password-protected archive",
		Description: `Encrypt a file or directory into a password-protected AES-256 zip
archive. A random password is generated and printed to stdout; it is
never written to disk or to the log stream. The archive appears at its
final path only after it is completely written, and is then verified
by checksum and extraction trial.`,
		Usage: "zipseal lock <path>... [flags]",
		Examples: []cli.Example{
			{Description: "Encrypt a directory", Command: "zipseal lock ./reports"},
			{Description: "Store without compression", Command: "zipseal lock --level 0 media/"},
			{Description: "Skip the verification pass", Command: "zipseal lock --no-verify big-dataset/"},
		},
		Flags: func() *pflag.FlagSet {
			flags = pflag.NewFlagSet("lock", pflag.ContinueOnError)
			flags.StringVar(&options.configPath, "config", "", "path to config file (default: $"+config.EnvVar+")")
			flags.IntVar(&options.level, "level", archive.DefaultCompressionLevel, "compression level: 0 stores entries, 1-9 deflate them")
			flags.StringVar(&options.outputDir, "output-dir", "", "directory for the archive (default: the source's directory)")
			flags.BoolVar(&options.noVerify, "no-verify", false, "skip checksum and extraction verification")
			flags.IntVar(&options.length, "password-length", 0, "generated password length (default from config)")
			flags.BoolVar(&options.noSymbols, "no-symbols", false, "generate the password without symbol characters")
			flags.BoolVarP(&options.verbose, "verbose", "v", false, "enable debug logging")
			return flags
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("lock requires at least one source path")
			}
			return runLock(args, options, flags)
		},
	}
}

func runLock(sourcePaths []string, options *lockOptions, flags *pflag.FlagSet) error {
	cfg, err := loadConfig(options.configPath)
	if err != nil {
		return err
	}

	policy := cfg.Policy()
	if flags.Changed("password-length") {
		policy.Length = options.length
	}
	if options.noSymbols {
		policy.Symbols = ""
	}

	logger := cli.NewCommandLogger(options.verbose).With("command", "lock")
	pipeline := archive.New(policy, logger, clock.Real())

	// Each source is an independent job: one archive, one password.
	// A failed source does not stop the remaining ones.
	failures := 0
	for _, sourcePath := range sourcePaths {
		job := archive.Job{
			SourcePath:       sourcePath,
			OutputDir:        cfg.Archive.OutputDir,
			CompressionLevel: cfg.Archive.CompressionLevel,
			Verify:           cfg.Archive.Verify,
		}
		// Flags override the config file only when set explicitly.
		if flags.Changed("level") {
			job.CompressionLevel = options.level
		}
		if flags.Changed("output-dir") {
			job.OutputDir = options.outputDir
		}
		if options.noVerify {
			job.Verify = false
		}

		if err := lockOne(pipeline, job); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", sourcePath, err)
			failures++
		}
	}

	if failures > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func lockOne(pipeline *archive.Pipeline, job archive.Job) error {
	result, err := pipeline.Run(job)
	if err != nil {
		return err
	}
	defer result.Password.Close()

	fmt.Printf("archive: %s\n", result.ArchivePath)
	fmt.Printf("password: %s\n", result.Password.String())

	if report := result.Report; report != nil {
		fmt.Printf("verified: %d entries, checksum ok, extraction ok (%.2fs)\n",
			report.EntryCount, report.Elapsed.Seconds())
	} else {
		fmt.Println("verification skipped")
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
