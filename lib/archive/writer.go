// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/yeka/zip"

	"github.com/zipseal/zipseal/lib/secret"
)

// writeArchive writes all source entries into an AES-256 encrypted
// zip stream on w. Level 0 stores entries uncompressed; levels 1-9
// deflate them. The engine's compressor registry is fixed (its
// built-in Deflate is not replaceable per writer), so deflate always
// runs at the engine's default effort: the level selects the method,
// not the effort within Deflate. Returns the number of entries
// written.
//
// The output is a standard WinZip AES container: any extraction tool
// that supports AES-256 zip encryption can open it with the password.
func writeArchive(w io.Writer, entries []sourceEntry, passphrase *secret.Buffer, level int) (int, error) {
	zipWriter := zip.NewWriter(w)

	method := uint16(zip.Store)
	if level > 0 {
		method = zip.Deflate
	}

	// One heap copy of the password for the codec's string API,
	// reused across entries.
	password := passphrase.String()

	for _, entry := range entries {
		if err := writeEntry(zipWriter, entry, password, method); err != nil {
			zipWriter.Close()
			return 0, err
		}
	}

	if err := zipWriter.Close(); err != nil {
		return 0, fmt.Errorf("finalizing archive: %w", err)
	}

	return len(entries), nil
}

// writeEntry stores one source file as an encrypted archive entry.
func writeEntry(zipWriter *zip.Writer, entry sourceEntry, password string, method uint16) error {
	source, err := os.Open(entry.path)
	if err != nil {
		return fmt.Errorf("opening source file %s: %w", entry.path, err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("stating source file %s: %w", entry.path, err)
	}

	header := &zip.FileHeader{
		Name:   entry.name,
		Method: method,
	}
	header.SetModTime(info.ModTime())
	header.SetPassword(password)
	header.SetEncryptionMethod(zip.AES256Encryption)

	entryWriter, err := zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("creating archive entry %s: %w", entry.name, err)
	}

	if _, err := io.Copy(entryWriter, source); err != nil {
		return fmt.Errorf("writing archive entry %s: %w", entry.name, err)
	}

	return nil
}

// buildTemporaryArchive writes the complete encrypted archive,
// including its verification manifest, to a fresh temporary file in
// directory. On any failure the temporary file is removed. Returns
// the temporary path.
//
// The temporary file lives in the same directory as the final output
// so the later rename never crosses a filesystem boundary.
func buildTemporaryArchive(directory string, entries []sourceEntry, passphrase *secret.Buffer, level int) (string, error) {
	tmpFile, err := os.CreateTemp(directory, ".zipseal-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temporary archive: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := writeArchive(tmpFile, entries, passphrase, level); err != nil {
		tmpFile.Close()
		return "", err
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("syncing temporary archive: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("closing temporary archive: %w", err)
	}

	// The manifest digests the stored payload bytes, so it can only
	// be computed after the archive is fully written.
	m, err := buildManifest(tmpPath)
	if err != nil {
		return "", fmt.Errorf("building verification manifest: %w", err)
	}
	comment, err := m.encode()
	if err != nil {
		return "", err
	}
	if err := appendComment(tmpPath, comment); err != nil {
		return "", fmt.Errorf("attaching verification manifest: %w", err)
	}

	success = true
	return tmpPath, nil
}
