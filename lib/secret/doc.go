// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides a memory-safe buffer for sensitive data,
// primarily the generated archive password.
//
// [Buffer] allocates memory outside the Go heap via
// mmap(MAP_ANONYMOUS), locks it into physical RAM via mlock
// (preventing swap), and marks it excluded from core dumps via
// madvise(MADV_DONTDUMP). On Close, the memory is zeroed, unlocked,
// and unmapped. Because the memory lives outside the Go heap, the
// garbage collector cannot copy or relocate it, so no stray copies of
// the password survive in process memory after release.
//
// Constructors:
//
//   - [New] — allocates a zero-filled buffer of a given size
//   - [NewFromBytes] — copies into protected memory, zeros the source
//
// Access via [Buffer.Bytes] (slice into the mmap region) or
// [Buffer.String] (heap copy for API boundaries that demand strings).
// [ReadFromPath] reads a secret from a file or stdin for commands
// that accept a password from the caller. After Close, any access
// panics. Close is idempotent.
//
// Depends on golang.org/x/sys/unix. No zipseal-internal dependencies.
package secret
