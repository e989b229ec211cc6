// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive creates password-protected, AES-256 encrypted zip
// archives and verifies them end-to-end before reporting success.
//
// The [Pipeline] sequences the stages of one job: scan the source,
// generate a random password, write the encrypted archive to a
// temporary path, publish it with a single atomic rename, validate
// per-entry checksums, and finally prove the password works with a
// real extraction trial into a discarded temporary directory.
//
// Two invariants anchor the design:
//
//   - A file appears at the public path only as a complete, valid
//     archive. The rename in [publish] is the sole operation crossing
//     the visibility boundary; a crash at any earlier point leaves
//     nothing at the final name.
//   - Success is only reported after the published bytes — not an
//     intermediate copy — have passed checksum validation and a full
//     decrypt-and-extract trial. Checksum validation alone is not
//     trusted: it never exercises the password, so it cannot prove
//     the archive is usable.
//
// Checksum validation works without the password. The writer embeds a
// verification manifest in the archive comment: a BLAKE3 digest of
// every entry's stored payload (the compressed, encrypted bytes as
// they sit on disk). [VerifyIntegrity] recomputes these digests;
// [TestExtraction] then decrypts everything for real. Standard
// extraction tools ignore the comment, so the container stays fully
// interoperable.
//
// The generated password is held in a secret.Buffer (locked memory,
// zeroed on close) and never reaches any log sink; pipeline logs
// carry only its length.
package archive
