// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zipseal/zipseal/lib/secret"
)

// sealArchive builds a complete published archive from a three-file
// source directory and returns its path with the passphrase.
func sealArchive(t *testing.T) (string, *secret.Buffer) {
	t.Helper()
	_, entries := buildTestSource(t)
	passphrase := testPassphrase(t)
	outDir := t.TempDir()

	tempPath, err := buildTemporaryArchive(outDir, entries, passphrase, DefaultCompressionLevel)
	if err != nil {
		t.Fatalf("building archive: %v", err)
	}
	finalPath := filepath.Join(outDir, "source_secured.zip")
	if err := publish(tempPath, finalPath); err != nil {
		t.Fatalf("publishing archive: %v", err)
	}
	return finalPath, passphrase
}

func TestVerifyIntegrity(t *testing.T) {
	archivePath, _ := sealArchive(t)

	result, err := VerifyIntegrity(archivePath)
	if err != nil {
		t.Fatalf("VerifyIntegrity failed: %v", err)
	}
	if !result.OK() {
		t.Errorf("fresh archive failed verification: failed entries %v", result.FailedEntries())
	}
	if result.EntryCount != 3 {
		t.Errorf("verified %d entries, want 3", result.EntryCount)
	}
}

func TestVerifyIntegrityDetectsPayloadCorruption(t *testing.T) {
	archivePath, _ := sealArchive(t)

	// Flip one byte inside the first entry's stored payload. The local
	// file header is 30 bytes plus the name, so an offset shortly past
	// it lands in payload for any of the test entries.
	file, err := os.OpenFile(archivePath, os.O_RDWR, 0)
	if err != nil {
		t.Fatal(err)
	}
	original := make([]byte, 1)
	if _, err := file.ReadAt(original, 60); err != nil {
		t.Fatal(err)
	}
	if _, err := file.WriteAt([]byte{original[0] ^ 0xff}, 60); err != nil {
		t.Fatal(err)
	}
	file.Close()

	result, err := VerifyIntegrity(archivePath)
	if err != nil {
		t.Fatalf("VerifyIntegrity failed outright: %v", err)
	}
	if result.OK() {
		t.Error("corrupted archive passed verification")
	}
	if len(result.FailedEntries()) != 1 {
		t.Errorf("corruption flagged %d entries, want 1", len(result.FailedEntries()))
	}
}

func TestVerifyIntegrityRejectsMissingManifest(t *testing.T) {
	archivePath := writePlainArchive(t, map[string]string{"a.txt": "alpha"})

	if _, err := VerifyIntegrity(archivePath); err == nil {
		t.Error("archive without a manifest verified, want error")
	}
}

func TestVerifyIntegrityRejectsEmptyArchive(t *testing.T) {
	archivePath := writePlainArchive(t, map[string]string{})

	if _, err := VerifyIntegrity(archivePath); err == nil {
		t.Error("empty archive verified, want error")
	}
}
