// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/yeka/zip"
	"github.com/zeebo/blake3"

	"github.com/zipseal/zipseal/lib/codec"
)

// manifestVersion is the current verification manifest format.
const manifestVersion = 1

// manifestPrefix introduces the manifest in the archive comment.
// Standard extraction tools display or ignore the comment; they never
// act on it, so carrying the manifest there keeps the archive fully
// interoperable.
const manifestPrefix = "zipseal.manifest.v1:"

// maxCommentSize is the zip format's comment capacity: the
// end-of-central-directory record stores the comment length in a
// uint16.
const maxCommentSize = 65535

// manifest is the verification sidecar embedded in the archive
// comment. Each entry's digest covers the stored payload bytes — the
// compressed, encrypted data exactly as it sits on disk — so
// verification needs no password.
type manifest struct {
	Version    int             `cbor:"version"`
	EntryCount int             `cbor:"entry_count"`
	Entries    []manifestEntry `cbor:"entries"`
}

// manifestEntry records one archive entry's identity and payload
// digest.
type manifestEntry struct {
	Name           string `cbor:"name"`
	CompressedSize int64  `cbor:"compressed_size"`
	Digest         []byte `cbor:"digest"`
}

// buildManifest reads the archive at path and computes the manifest
// for its entries: for each entry, the BLAKE3-256 digest of the
// stored payload region located via the entry's data offset and
// compressed size.
func buildManifest(path string) (*manifest, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer reader.Close()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive for payload reads: %w", err)
	}
	defer file.Close()

	m := &manifest{
		Version:    manifestVersion,
		EntryCount: len(reader.File),
	}

	for _, entry := range reader.File {
		offset, err := entry.DataOffset()
		if err != nil {
			return nil, fmt.Errorf("locating payload of %s: %w", entry.Name, err)
		}

		size := int64(entry.CompressedSize64)
		digest, err := digestRegion(file, offset, size)
		if err != nil {
			return nil, fmt.Errorf("hashing payload of %s: %w", entry.Name, err)
		}

		m.Entries = append(m.Entries, manifestEntry{
			Name:           entry.Name,
			CompressedSize: size,
			Digest:         digest,
		})
	}

	return m, nil
}

// digestRegion computes the BLAKE3-256 digest of size bytes starting
// at offset.
func digestRegion(readerAt io.ReaderAt, offset, size int64) ([]byte, error) {
	hasher := blake3.New()
	if _, err := io.Copy(hasher, io.NewSectionReader(readerAt, offset, size)); err != nil {
		return nil, err
	}
	return hasher.Sum(nil), nil
}

// encode serializes the manifest for the archive comment:
// deterministic CBOR, deflate, base64, prefixed. The deflate pass
// costs little on a small manifest and roughly triples how many
// entries fit under the comment's uint16 size cap — the digests
// themselves are incompressible, but the CBOR field names and entry
// names deflate well.
func (m *manifest) encode() (string, error) {
	data, err := codec.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding manifest: %w", err)
	}

	var compressed bytes.Buffer
	deflater, err := flate.NewWriter(&compressed, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("initializing manifest compressor: %w", err)
	}
	if _, err := deflater.Write(data); err != nil {
		return "", fmt.Errorf("compressing manifest: %w", err)
	}
	if err := deflater.Close(); err != nil {
		return "", fmt.Errorf("compressing manifest: %w", err)
	}

	comment := manifestPrefix + base64.StdEncoding.EncodeToString(compressed.Bytes())
	if len(comment) > maxCommentSize {
		return "", fmt.Errorf("manifest for %d entries is %d bytes, exceeding the %d-byte archive comment capacity",
			m.EntryCount, len(comment), maxCommentSize)
	}
	return comment, nil
}

// decodeManifest parses an archive comment produced by encode.
func decodeManifest(comment string) (*manifest, error) {
	encoded, found := strings.CutPrefix(comment, manifestPrefix)
	if !found {
		return nil, fmt.Errorf("archive carries no verification manifest")
	}

	compressed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}

	inflater := flate.NewReader(bytes.NewReader(compressed))
	data, err := io.ReadAll(inflater)
	if err != nil {
		return nil, fmt.Errorf("decompressing manifest: %w", err)
	}
	if err := inflater.Close(); err != nil {
		return nil, fmt.Errorf("decompressing manifest: %w", err)
	}

	var m manifest
	if err := codec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Version != manifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %d", m.Version)
	}
	if m.EntryCount != len(m.Entries) {
		return nil, fmt.Errorf("manifest entry count %d does not match its %d entries",
			m.EntryCount, len(m.Entries))
	}
	return &m, nil
}

// eocdSignature marks the zip end-of-central-directory record.
var eocdSignature = []byte{0x50, 0x4b, 0x05, 0x06}

// eocdSize is the fixed size of the end-of-central-directory record
// when the comment is empty. The final two bytes hold the comment
// length.
const eocdSize = 22

// appendComment attaches a comment to a finished zip file that was
// written without one. The zip writer leaves the
// end-of-central-directory record as the last 22 bytes of the file
// with a zero comment length; this patches the length field in place
// and appends the comment bytes after it, which is exactly where the
// format stores them.
func appendComment(path string, comment string) error {
	if len(comment) > maxCommentSize {
		return fmt.Errorf("comment is %d bytes, maximum is %d", len(comment), maxCommentSize)
	}

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stating archive: %w", err)
	}
	if info.Size() < eocdSize {
		return fmt.Errorf("archive is %d bytes, smaller than an end-of-central-directory record", info.Size())
	}

	record := make([]byte, eocdSize)
	recordOffset := info.Size() - eocdSize
	if _, err := file.ReadAt(record, recordOffset); err != nil {
		return fmt.Errorf("reading end-of-central-directory record: %w", err)
	}

	if !bytes.Equal(record[:4], eocdSignature) {
		return fmt.Errorf("end-of-central-directory signature not found (archive already has a comment?)")
	}
	if existing := binary.LittleEndian.Uint16(record[20:22]); existing != 0 {
		return fmt.Errorf("archive already carries a %d-byte comment", existing)
	}

	binary.LittleEndian.PutUint16(record[20:22], uint16(len(comment)))
	if _, err := file.WriteAt(record[20:22], recordOffset+20); err != nil {
		return fmt.Errorf("updating comment length: %w", err)
	}
	if _, err := file.WriteAt([]byte(comment), info.Size()); err != nil {
		return fmt.Errorf("appending comment: %w", err)
	}

	return file.Sync()
}
