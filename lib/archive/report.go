// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"time"

	"github.com/zipseal/zipseal/lib/secret"
)

// VerificationReport is the immutable record of the verification
// pass: checksum validation plus the extraction trial. Produced once
// per job and attached to the result.
type VerificationReport struct {
	// EntryCount is the number of entries the published archive
	// declares.
	EntryCount int

	// Checks holds the per-entry checksum verdicts, in archive order.
	Checks []EntryCheck

	// ChecksumOK is true when every entry passed checksum validation.
	ChecksumOK bool

	// ExtractionOK is true when the decrypt-and-extract trial
	// succeeded for every entry.
	ExtractionOK bool

	// ExtractedEntries is the number of file entries the trial
	// extracted.
	ExtractedEntries int

	// Elapsed is the wall time the verification pass took.
	Elapsed time.Duration
}

// Result is the terminal success value of a pipeline run. Failed runs
// return a *StageError instead; no run produces both.
type Result struct {
	// ArchivePath is the absolute path of the published archive.
	ArchivePath string

	// Password holds the generated password. It is surfaced exactly
	// once, here; the pipeline keeps no other copy. The caller owns
	// the buffer and must close it.
	Password *secret.Buffer

	// Report describes the verification pass. Nil when the job
	// disabled verification.
	Report *VerificationReport
}
