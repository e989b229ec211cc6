// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"
	"os"
	"path/filepath"
)

// publish moves a complete temporary archive to its final path with a
// single rename. The rename is the only operation that crosses the
// visibility boundary: at no instant does the final path hold a
// partial file, even if the process dies between write completion and
// publication.
//
// On any failure the temporary artifact is removed and the final path
// is left untouched. The temporary file must live on the same
// filesystem as the final path (buildTemporaryArchive guarantees this
// by creating it in the destination directory).
func publish(tempPath, finalPath string) error {
	success := false
	defer func() {
		if !success {
			os.Remove(tempPath)
		}
	}()

	parent := filepath.Dir(finalPath)
	if _, err := os.Stat(parent); err != nil {
		return fmt.Errorf("destination directory: %w", err)
	}

	// Timestamped naming makes collisions a sign of something wrong
	// (two jobs targeting one path), not a case to resolve silently.
	if _, err := os.Stat(finalPath); err == nil {
		return fmt.Errorf("destination %s already exists", finalPath)
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		return fmt.Errorf("renaming archive into place: %w", err)
	}

	success = true
	return nil
}
