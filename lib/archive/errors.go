// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"errors"
	"fmt"
)

// Stage identifies a pipeline stage. Stages appear in StageError and
// in log records; their string values are part of the CLI's output
// contract.
type Stage string

const (
	// StageInput validates the job description and scans the source.
	StageInput Stage = "input"

	// StagePassword generates the archive password.
	StagePassword Stage = "password"

	// StageEncrypt writes the encrypted archive to the temporary path.
	StageEncrypt Stage = "encrypt"

	// StagePublish renames the temporary artifact to the final path.
	StagePublish Stage = "publish"

	// StageIntegrity validates per-entry checksums of the published
	// archive.
	StageIntegrity Stage = "integrity"

	// StageExtraction performs the decrypt-and-extract trial.
	StageExtraction Stage = "extraction"
)

// Sentinel errors classifying pipeline failures. Use errors.Is to
// test a returned error against these.
var (
	// ErrInput indicates the source path is missing, unreadable, or
	// empty, or the job description is invalid. Nothing has been
	// written when this is returned.
	ErrInput = errors.New("invalid archive input")

	// ErrEncrypt indicates the encryption engine could not produce a
	// complete archive. Any temporary artifact has been removed.
	ErrEncrypt = errors.New("archive encryption failed")

	// ErrPublish indicates the atomic rename could not complete. The
	// temporary artifact has been removed and the final path is
	// untouched.
	ErrPublish = errors.New("archive publication failed")

	// ErrIntegrity indicates the published archive failed checksum
	// validation. The archive remains at its public path; disposition
	// is left to the caller.
	ErrIntegrity = errors.New("archive integrity check failed")

	// ErrExtraction indicates the published archive failed the
	// decrypt-and-extract trial. Same disposition as ErrIntegrity.
	ErrExtraction = errors.New("archive extraction trial failed")
)

// StageError is the failure value of a pipeline run: the stage that
// failed and the classified underlying error. The pipeline never
// returns a partial success alongside a StageError.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// fail wraps err with its classification sentinel and the failing
// stage. The sentinel stays reachable through errors.Is.
func fail(stage Stage, kind error, err error) *StageError {
	return &StageError{Stage: stage, Err: fmt.Errorf("%w: %w", kind, err)}
}
