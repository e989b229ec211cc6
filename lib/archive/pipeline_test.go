// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zipseal/zipseal/lib/clock"
	"github.com/zipseal/zipseal/lib/password"
)

func testPipeline(t *testing.T, logBuffer *bytes.Buffer) *Pipeline {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(logBuffer, &slog.HandlerOptions{Level: slog.LevelDebug}))
	fake := clock.NewFake(time.Date(2026, 8, 29, 14, 30, 5, 0, time.UTC))
	return New(password.DefaultPolicy(), logger, fake)
}

func TestPipelineRun(t *testing.T) {
	source := t.TempDir()
	mustWriteFile(t, filepath.Join(source, "report.txt"), strings.Repeat("quarterly numbers\n", 100))
	mustWriteFile(t, filepath.Join(source, "raw.bin"), "\x00\x01\x02\x03")
	mustWriteFile(t, filepath.Join(source, "sub", "appendix.txt"), "appendix")
	outputDir := t.TempDir()

	var logBuffer bytes.Buffer
	pipeline := testPipeline(t, &logBuffer)

	result, err := pipeline.Run(Job{
		SourcePath:       source,
		OutputDir:        outputDir,
		CompressionLevel: DefaultCompressionLevel,
		Verify:           true,
	})
	if err != nil {
		t.Fatalf("pipeline run failed: %v", err)
	}
	defer result.Password.Close()

	if filepath.Dir(result.ArchivePath) != outputDir {
		t.Errorf("archive %s is not in the requested output directory", result.ArchivePath)
	}
	if !strings.HasSuffix(result.ArchivePath, "_secured.zip") {
		t.Errorf("archive name %s lacks the secured suffix", filepath.Base(result.ArchivePath))
	}
	if !strings.Contains(filepath.Base(result.ArchivePath), "20260829_143005") {
		t.Errorf("archive name %s lacks the run timestamp", filepath.Base(result.ArchivePath))
	}
	if result.Password.Len() != password.DefaultPolicy().Length {
		t.Errorf("password is %d characters, want %d", result.Password.Len(), password.DefaultPolicy().Length)
	}

	report := result.Report
	if report == nil {
		t.Fatal("verified run produced no verification report")
	}
	if report.EntryCount != 3 {
		t.Errorf("report covers %d entries, want 3", report.EntryCount)
	}
	if !report.ChecksumOK {
		t.Error("checksum verification failed on a fresh archive")
	}
	if !report.ExtractionOK || report.ExtractedEntries != 3 {
		t.Errorf("extraction trial: ok=%v entries=%d, want ok=true entries=3",
			report.ExtractionOK, report.ExtractedEntries)
	}
	for _, check := range report.Checks {
		if !check.OK {
			t.Errorf("entry %s failed its checksum", check.Name)
		}
	}

	// No staging leftovers next to the archive.
	leftovers, err := filepath.Glob(filepath.Join(outputDir, ".zipseal-*.tmp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Errorf("staging files left behind: %v", leftovers)
	}

	// The generated password must never reach the log stream.
	if bytes.Contains(logBuffer.Bytes(), []byte(result.Password.String())) {
		t.Error("generated password appears in log output")
	}
}

func TestPipelineRunSingleFile(t *testing.T) {
	dir := t.TempDir()
	sourceFile := filepath.Join(dir, "secrets.env")
	mustWriteFile(t, sourceFile, "API_KEY=abc123\n")

	var logBuffer bytes.Buffer
	pipeline := testPipeline(t, &logBuffer)

	result, err := pipeline.Run(Job{
		SourcePath:       sourceFile,
		CompressionLevel: DefaultCompressionLevel,
		Verify:           true,
	})
	if err != nil {
		t.Fatalf("pipeline run failed: %v", err)
	}
	defer result.Password.Close()

	if filepath.Dir(result.ArchivePath) != dir {
		t.Errorf("archive %s did not default to the source's directory", result.ArchivePath)
	}
	if result.Report.EntryCount != 1 {
		t.Errorf("archive has %d entries, want 1", result.Report.EntryCount)
	}
}

func TestPipelineRunSkipVerification(t *testing.T) {
	source := t.TempDir()
	mustWriteFile(t, filepath.Join(source, "file.txt"), "content")

	var logBuffer bytes.Buffer
	pipeline := testPipeline(t, &logBuffer)

	result, err := pipeline.Run(Job{
		SourcePath:       source,
		OutputDir:        t.TempDir(),
		CompressionLevel: DefaultCompressionLevel,
		Verify:           false,
	})
	if err != nil {
		t.Fatalf("pipeline run failed: %v", err)
	}
	defer result.Password.Close()

	if result.Report != nil {
		t.Error("unverified run produced a verification report")
	}
	if _, err := os.Stat(result.ArchivePath); err != nil {
		t.Errorf("published archive missing: %v", err)
	}
}

func TestPipelineRunInputErrors(t *testing.T) {
	var logBuffer bytes.Buffer
	pipeline := testPipeline(t, &logBuffer)
	outputDir := t.TempDir()

	tests := []struct {
		name string
		job  Job
	}{
		{
			name: "missing source",
			job: Job{
				SourcePath:       filepath.Join(outputDir, "does-not-exist"),
				OutputDir:        outputDir,
				CompressionLevel: DefaultCompressionLevel,
			},
		},
		{
			name: "level too high",
			job: Job{
				SourcePath:       outputDir,
				OutputDir:        outputDir,
				CompressionLevel: 10,
			},
		},
		{
			name: "negative level",
			job: Job{
				SourcePath:       outputDir,
				OutputDir:        outputDir,
				CompressionLevel: -1,
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := pipeline.Run(test.job)
			if !errors.Is(err, ErrInput) {
				t.Errorf("got error %v, want an input error", err)
			}
			var stageErr *StageError
			if !errors.As(err, &stageErr) || stageErr.Stage != StageInput {
				t.Errorf("error %v does not carry the input stage", err)
			}
		})
	}
}

func TestPipelineRunRejectsInvalidPolicy(t *testing.T) {
	source := t.TempDir()
	mustWriteFile(t, filepath.Join(source, "file.txt"), "content")

	policy := password.DefaultPolicy()
	policy.Length = 4

	var logBuffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuffer, nil))
	pipeline := New(policy, logger, clock.NewFake(time.Date(2026, 8, 29, 14, 30, 5, 0, time.UTC)))

	_, err := pipeline.Run(Job{
		SourcePath:       source,
		OutputDir:        t.TempDir(),
		CompressionLevel: DefaultCompressionLevel,
	})
	if !errors.Is(err, ErrInput) {
		t.Errorf("undersized password policy: got %v, want an input error", err)
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageInput {
		t.Errorf("error %v does not carry the input stage", err)
	}
}

func TestPipelineRunEmptyDirectory(t *testing.T) {
	var logBuffer bytes.Buffer
	pipeline := testPipeline(t, &logBuffer)

	_, err := pipeline.Run(Job{
		SourcePath:       t.TempDir(),
		OutputDir:        t.TempDir(),
		CompressionLevel: DefaultCompressionLevel,
	})
	if !errors.Is(err, ErrInput) {
		t.Errorf("empty source directory: got error %v, want an input error", err)
	}
}

func TestPipelineRunRefusesOverwrite(t *testing.T) {
	source := t.TempDir()
	mustWriteFile(t, filepath.Join(source, "file.txt"), "content")
	outputDir := t.TempDir()

	var logBuffer bytes.Buffer
	pipeline := testPipeline(t, &logBuffer)
	job := Job{
		SourcePath:       source,
		OutputDir:        outputDir,
		CompressionLevel: DefaultCompressionLevel,
	}

	first, err := pipeline.Run(job)
	if err != nil {
		t.Fatal(err)
	}
	first.Password.Close()

	// The fake clock is frozen, so a second run targets the same name.
	_, err = pipeline.Run(job)
	if !errors.Is(err, ErrPublish) {
		t.Errorf("second run over the same archive: got %v, want a publish error", err)
	}

	// The first archive survives the refused second run.
	if _, statErr := os.Stat(first.ArchivePath); statErr != nil {
		t.Errorf("original archive damaged by refused overwrite: %v", statErr)
	}
}
