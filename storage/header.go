package storage

import (
	"encoding/binary"
	"io"

	"github.com/aconfig/aconfig-storage/storage/codec"
)

// FileVersion is the on-disk format version this implementation produces and
// the highest version it will consume. Readers refuse anything higher;
// equal or lower is accepted (lower is not yet defined by this version of
// the format).
const FileVersion = uint32(1)

// FileType identifies which of the four companion files a header belongs
// to. The flag value file carries no file_type field at all (§3), so it has
// no constant here.
type FileType uint8

const (
	FileTypePackageMap FileType = 0
	FileTypeFlagMap    FileType = 1
	FileTypeFlagInfo   FileType = 3
)

// View is the read-only random-access surface the query layer and the
// deserializers operate against. A memory-mapped file (golang.org/x/exp/mmap
// ReaderAt) satisfies it directly; tests typically use a plain
// *bytes.Reader or []byte wrapper.
type View interface {
	io.ReaderAt
}

// SniffVersion reads the first four bytes of any aconfig storage file and
// decodes them as the version field, without mapping or parsing the rest of
// the file. Every file type begins with the version per §3's invariant.
func SniffVersion(v View) (uint32, error) {
	var buf [4]byte
	if _, err := v.ReadAt(buf[:], 0); err != nil {
		return 0, newErr(KindBytesParseFail, "read version prefix", err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// checkVersion enforces §4.3's HigherStorageFileVersion rule.
func checkVersion(version uint32) error {
	if version > FileVersion {
		return newErr(KindHigherStorageFileVersion, "file version exceeds supported version", nil)
	}
	return nil
}

// readChunk reads exactly n bytes at offset from v, treating any short read
// as BytesParseFail.
func readChunk(v View, offset int64, n int) ([]byte, error) {
	if offset < 0 || n < 0 {
		return nil, newErr(KindBytesParseFail, "negative offset or length", nil)
	}
	buf := make([]byte, n)
	read, err := v.ReadAt(buf, offset)
	if read < n {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, newErr(KindBytesParseFail, "short read", err)
	}
	return buf, nil
}

// readU32At reads a single little-endian uint32 at the given absolute file
// offset.
func readU32At(v View, offset int64) (uint32, error) {
	buf, err := readChunk(v, offset, 4)
	if err != nil {
		return 0, err
	}
	val, _, err := codec.DecodeU32(buf, 0)
	return val, err
}

// readStringAt reads a length-prefixed string starting at the given
// absolute offset and returns the string plus the number of bytes it
// occupies on disk.
func readStringAt(v View, offset int64) (string, int64, error) {
	lenBuf, err := readChunk(v, offset, 4)
	if err != nil {
		return "", 0, err
	}
	strLen, _, err := codec.DecodeU32(lenBuf, 0)
	if err != nil {
		return "", 0, err
	}
	body, err := readChunk(v, offset, 4+int(strLen))
	if err != nil {
		return "", 0, err
	}
	s, next, err := codec.DecodeString(body, 0)
	if err != nil {
		return "", 0, newErr(KindBytesParseFail, "decode string body", err)
	}
	return s, int64(next), nil
}
