// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/zipseal/zipseal/lib/clock"
	"github.com/zipseal/zipseal/lib/password"
	"github.com/zipseal/zipseal/lib/secret"
)

// Pipeline runs archive jobs: password generation, encrypted archive
// construction, atomic publication, and the two-layer verification
// pass. A Pipeline is immutable after construction and safe for
// concurrent use by independent jobs, provided the jobs target
// distinct output paths — same-path concurrency is a caller error the
// pipeline does not guard against.
type Pipeline struct {
	policy password.Policy
	logger *slog.Logger
	clock  clock.Clock
}

// New creates a Pipeline. The password policy, logger, and clock are
// fixed at construction: configuration flows in explicitly rather
// than through shared process state, so unrelated jobs in one process
// cannot influence each other.
func New(policy password.Policy, logger *slog.Logger, clk clock.Clock) *Pipeline {
	return &Pipeline{
		policy: policy,
		logger: logger,
		clock:  clk,
	}
}

// Run executes one job to completion. Stages run in order —
// input scan, password generation, encryption, publication, checksum
// validation, extraction trial — and the first failure short-circuits
// the rest. On failure the temporary artifact is removed, the
// password is discarded from memory, and the returned error is a
// *StageError naming the failed stage and classification.
//
// The published archive exists on disk if and only if Run returns a
// Result, with one documented exception: a verification-stage failure
// leaves the published file in place (it already exists under its
// public name) while still reporting the job as failed, leaving
// disposition of the bad file to the caller.
func (p *Pipeline) Run(job Job) (*Result, error) {
	logger := p.logger.With("source", job.SourcePath)

	// Input stage. The password policy is validated here too: a bad
	// policy (length below the minimum, no character classes) is a
	// caller error, not a generation failure.
	if err := job.validate(); err != nil {
		return nil, fail(StageInput, ErrInput, err)
	}
	if err := p.policy.Validate(); err != nil {
		return nil, fail(StageInput, ErrInput, err)
	}
	sourceRoot, entries, err := scanSource(job.SourcePath)
	if err != nil {
		return nil, fail(StageInput, ErrInput, err)
	}
	logger.Info("source scanned", "stage", StageInput, "entries", len(entries))

	// Password stage. The value lives in locked memory and is closed
	// on every failure path below. The policy was validated above, so
	// a failure here means the random source itself failed.
	passphrase, err := password.Generate(p.policy)
	if err != nil {
		return nil, fail(StagePassword, ErrEncrypt, err)
	}
	logger.Info("password generated", "stage", StagePassword, "length", passphrase.Len())

	finalPath := outputPath(sourceRoot, job.OutputDir, p.clock.Now())

	// Encrypt stage: complete archive, manifest included, at a
	// temporary path in the destination directory.
	tempPath, err := buildTemporaryArchive(filepath.Dir(finalPath), entries, passphrase, job.CompressionLevel)
	if err != nil {
		passphrase.Close()
		return nil, fail(StageEncrypt, ErrEncrypt, err)
	}
	logger.Info("archive written", "stage", StageEncrypt, "level", job.CompressionLevel)

	// Publish stage: single atomic rename.
	if err := publish(tempPath, finalPath); err != nil {
		passphrase.Close()
		return nil, fail(StagePublish, ErrPublish, err)
	}
	logger.Info("archive published", "stage", StagePublish, "path", finalPath)

	result := &Result{
		ArchivePath: finalPath,
		Password:    passphrase,
	}

	if !job.Verify {
		logger.Warn("verification skipped by configuration", "path", finalPath)
		return result, nil
	}

	report, err := p.verify(finalPath, passphrase, logger)
	if err != nil {
		passphrase.Close()
		return nil, err
	}
	result.Report = report

	logger.Info("job complete", "path", finalPath, "entries", report.EntryCount,
		"elapsed", report.Elapsed)
	return result, nil
}

// verify runs checksum validation and the extraction trial against
// the published archive, in that order. Both must pass.
func (p *Pipeline) verify(archivePath string, passphrase *secret.Buffer, logger *slog.Logger) (*VerificationReport, error) {
	started := p.clock.Now()

	integrity, err := VerifyIntegrity(archivePath)
	if err != nil {
		return nil, fail(StageIntegrity, ErrIntegrity, err)
	}
	if !integrity.OK() {
		failed := integrity.FailedEntries()
		return nil, fail(StageIntegrity, ErrIntegrity,
			fmt.Errorf("%d of %d entries failed checksum validation: %v",
				len(failed), integrity.EntryCount, failed))
	}
	logger.Info("checksums validated", "stage", StageIntegrity, "entries", integrity.EntryCount)

	extracted, err := TestExtraction(archivePath, passphrase)
	if err != nil {
		return nil, fail(StageExtraction, ErrExtraction, err)
	}
	// The trial's file count must match what the checksum layer saw;
	// a shortfall means directory-style entries or reader disagreement
	// hid content from one of the two passes.
	if extracted != integrity.EntryCount {
		return nil, fail(StageExtraction, ErrExtraction,
			fmt.Errorf("extracted %d entries but the archive declares %d", extracted, integrity.EntryCount))
	}
	logger.Info("extraction trial passed", "stage", StageExtraction, "extracted", extracted)

	return &VerificationReport{
		EntryCount:       integrity.EntryCount,
		Checks:           integrity.Checks,
		ChecksumOK:       true,
		ExtractionOK:     true,
		ExtractedEntries: extracted,
		Elapsed:          p.clock.Since(started),
	}, nil
}
