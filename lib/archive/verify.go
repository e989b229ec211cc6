// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"fmt"
	"os"

	"github.com/yeka/zip"
)

// EntryCheck is the checksum verdict for one archive entry.
type EntryCheck struct {
	// Name is the entry name inside the archive.
	Name string

	// OK is true when the entry's stored payload matches its manifest
	// digest.
	OK bool
}

// IntegrityResult is the outcome of checksum validation across all
// entries of a published archive.
type IntegrityResult struct {
	// EntryCount is the number of entries the archive declares.
	EntryCount int

	// Checks holds one verdict per entry, in archive order.
	Checks []EntryCheck
}

// OK reports whether every entry passed.
func (r *IntegrityResult) OK() bool {
	for _, check := range r.Checks {
		if !check.OK {
			return false
		}
	}
	return true
}

// FailedEntries returns the names of entries that failed validation.
func (r *IntegrityResult) FailedEntries() []string {
	var failed []string
	for _, check := range r.Checks {
		if !check.OK {
			failed = append(failed, check.Name)
		}
	}
	return failed
}

// VerifyIntegrity validates the stored checksum of every entry in the
// archive against its payload, without the password: the manifest
// digests cover the compressed, encrypted bytes as stored, so
// corruption is detectable before any decryption. Call this only on
// the published file — it verifies the exact bytes handed to the
// caller, never an intermediate copy.
//
// A per-entry mismatch is reported in the result, not as an error;
// errors indicate the archive or its manifest could not be read at
// all.
func VerifyIntegrity(archivePath string) (*IntegrityResult, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer reader.Close()

	if len(reader.File) == 0 {
		return nil, fmt.Errorf("archive declares no entries")
	}

	m, err := decodeManifest(reader.Comment)
	if err != nil {
		return nil, err
	}
	if m.EntryCount != len(reader.File) {
		return nil, fmt.Errorf("archive declares %d entries but the manifest covers %d",
			len(reader.File), m.EntryCount)
	}

	file, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive for payload reads: %w", err)
	}
	defer file.Close()

	result := &IntegrityResult{EntryCount: len(reader.File)}

	for index, entry := range reader.File {
		expected := m.Entries[index]

		check := EntryCheck{Name: entry.Name}
		if entry.Name == expected.Name {
			check.OK = entryPayloadMatches(file, entry, expected)
		}
		result.Checks = append(result.Checks, check)
	}

	return result, nil
}

// entryPayloadMatches recomputes the entry's payload digest and
// compares it with the manifest record. Any read failure counts as a
// mismatch: an unreadable payload is indistinguishable from a
// corrupted one for the caller's purposes.
func entryPayloadMatches(file *os.File, entry *zip.File, expected manifestEntry) bool {
	if int64(entry.CompressedSize64) != expected.CompressedSize {
		return false
	}

	offset, err := entry.DataOffset()
	if err != nil {
		return false
	}

	digest, err := digestRegion(file, offset, expected.CompressedSize)
	if err != nil {
		return false
	}

	return bytes.Equal(digest, expected.Digest)
}
