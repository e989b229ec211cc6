// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yeka/zip"

	"github.com/zipseal/zipseal/lib/secret"
)

// extractionTempPrefix names the scoped temporary directories used
// for extraction trials.
const extractionTempPrefix = "zipseal-trial-"

// TestExtraction proves the archive and password are usable
// end-to-end: it decrypts and decompresses every entry into a scoped
// temporary directory, then removes the directory before returning,
// on success and on every failure path. Checksum validation alone
// cannot provide this proof, since it never touches the ciphertext
// with the password.
//
// Returns the number of file entries extracted. A wrong password,
// tampered ciphertext, or decompression failure surfaces as an error.
func TestExtraction(archivePath string, passphrase *secret.Buffer) (int, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("opening archive: %w", err)
	}
	defer reader.Close()

	trialDir, err := os.MkdirTemp("", extractionTempPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("creating extraction directory: %w", err)
	}
	// Unconditional removal: the trial output is never kept.
	defer os.RemoveAll(trialDir)

	password := passphrase.String()

	extracted := 0
	for _, entry := range reader.File {
		if strings.HasSuffix(entry.Name, "/") {
			continue
		}

		if err := extractEntry(entry, password, trialDir); err != nil {
			return extracted, err
		}
		extracted++
	}

	return extracted, nil
}

// extractEntry decrypts one entry into the trial directory.
func extractEntry(entry *zip.File, password string, trialDir string) error {
	if !filepath.IsLocal(filepath.FromSlash(entry.Name)) {
		return fmt.Errorf("entry %s escapes the extraction directory", entry.Name)
	}

	if entry.IsEncrypted() {
		entry.SetPassword(password)
	}

	source, err := entry.Open()
	if err != nil {
		return fmt.Errorf("decrypting entry %s: %w", entry.Name, err)
	}
	defer source.Close()

	targetPath := filepath.Join(trialDir, filepath.FromSlash(entry.Name))
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", entry.Name, err)
	}

	target, err := os.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("creating extracted file for %s: %w", entry.Name, err)
	}

	_, copyErr := io.Copy(target, source)
	closeErr := target.Close()
	if copyErr != nil {
		return fmt.Errorf("extracting entry %s: %w", entry.Name, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing extracted file for %s: %w", entry.Name, closeErr)
	}

	return nil
}
