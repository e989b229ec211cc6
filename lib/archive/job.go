// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Compression level bounds. Level 0 stores entries without
// compression; levels 1-9 deflate them. The encryption engine's
// deflate effort is fixed, so all non-zero levels compress
// identically; the full 0-9 range is accepted for interface
// compatibility with other archiving tools.
const (
	MinCompressionLevel = 0
	MaxCompressionLevel = 9

	// DefaultCompressionLevel is the standard speed/size tradeoff.
	DefaultCompressionLevel = 6
)

// publishedSuffix marks an output file as a secured archive. Combined
// with the timestamp it guarantees repeated runs against the same
// source never silently overwrite a prior output.
const publishedSuffix = "_secured.zip"

// outputTimestampFormat is the timestamp embedded in output names.
const outputTimestampFormat = "20060102_150405"

// Job is the immutable description of one pipeline run. Create it
// once per invocation; the pipeline owns it for the run's duration.
type Job struct {
	// SourcePath is the file or directory to archive.
	SourcePath string

	// OutputDir is the directory the published archive is written to.
	// Empty means the source's parent directory.
	OutputDir string

	// CompressionLevel selects the compression method: 0 stores
	// entries uncompressed, 1-9 deflate them (at the engine's fixed
	// effort — see the package constants).
	CompressionLevel int

	// Verify enables the checksum validation and extraction trial
	// after publication. Disabling it is a caller-visible degraded
	// mode, never the default.
	Verify bool
}

// sourceEntry is one regular file to be stored in the archive.
type sourceEntry struct {
	// path is the absolute filesystem path.
	path string

	// name is the entry name inside the archive, slash-separated and
	// relative to the source root.
	name string
}

// validate checks the job description without touching the
// filesystem beyond the source and output paths.
func (j Job) validate() error {
	if j.SourcePath == "" {
		return fmt.Errorf("source path is empty")
	}
	if j.CompressionLevel < MinCompressionLevel || j.CompressionLevel > MaxCompressionLevel {
		return fmt.Errorf("compression level %d is outside %d..%d",
			j.CompressionLevel, MinCompressionLevel, MaxCompressionLevel)
	}
	return nil
}

// scanSource resolves the source path and lists the regular files it
// contains. A file source yields a single entry named after its base
// name; a directory source yields one entry per regular file,
// named relative to the directory itself (not its parent), so the
// extracted tree reproduces the directory's contents. A directory
// with no regular files is an error: an archive with nothing in it
// cannot be verified and is never what the caller wanted.
func scanSource(sourcePath string) (root string, entries []sourceEntry, err error) {
	root, err = filepath.Abs(sourcePath)
	if err != nil {
		return "", nil, fmt.Errorf("resolving source path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", nil, fmt.Errorf("source path: %w", err)
	}

	if info.Mode().IsRegular() {
		return root, []sourceEntry{{path: root, name: filepath.Base(root)}}, nil
	}

	if !info.IsDir() {
		return "", nil, fmt.Errorf("source %s is neither a regular file nor a directory", root)
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		// Stat follows symlinks, so a link to a regular file is
		// archived (the target's content under the link's name).
		// Broken links and links to non-files are skipped, as are
		// sockets, pipes, and devices.
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, sourceEntry{
			path: path,
			name: filepath.ToSlash(relative),
		})
		return nil
	})
	if walkErr != nil {
		return "", nil, fmt.Errorf("walking source directory: %w", walkErr)
	}

	if len(entries) == 0 {
		return "", nil, fmt.Errorf("source directory %s contains no regular files", root)
	}

	return root, entries, nil
}

// outputPath derives the published archive path for a source at the
// given time: <stem>_<timestamp>_secured.zip inside the output
// directory. The stem is the source base name without its extension
// for files, or the directory name for directories.
func outputPath(sourceRoot, outputDir string, now time.Time) string {
	stem := filepath.Base(sourceRoot)
	if ext := filepath.Ext(stem); ext != "" && stem != ext {
		stem = strings.TrimSuffix(stem, ext)
	}

	directory := outputDir
	if directory == "" {
		directory = filepath.Dir(sourceRoot)
	}

	name := stem + "_" + now.Format(outputTimestampFormat) + publishedSuffix
	return filepath.Join(directory, name)
}
