// Package codec implements the little-endian primitive and length-prefixed
// string encoding used by every aconfig storage file.
//
// Decoding is a pure function set over (buffer, cursor): every Decode*
// function takes a byte slice and a starting offset and returns the decoded
// value plus the advanced offset. Short reads and invalid UTF-8 are reported
// as ErrBytesParseFail rather than panicking, since the core must survive
// corrupt or truncated input.
package codec

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// ErrBytesParseFail is returned by any Decode* function on a short read or,
// for strings, invalid UTF-8.
var ErrBytesParseFail = fmt.Errorf("bytes parse fail")

// DecodeU8 reads a single byte at cursor.
func DecodeU8(buf []byte, cursor int) (uint8, int, error) {
	if cursor < 0 || cursor+1 > len(buf) {
		return 0, cursor, fmt.Errorf("decode u8 at offset %d of %d: %w", cursor, len(buf), ErrBytesParseFail)
	}
	return buf[cursor], cursor + 1, nil
}

// DecodeU16 reads a little-endian uint16 at cursor.
func DecodeU16(buf []byte, cursor int) (uint16, int, error) {
	if cursor < 0 || cursor+2 > len(buf) {
		return 0, cursor, fmt.Errorf("decode u16 at offset %d of %d: %w", cursor, len(buf), ErrBytesParseFail)
	}
	return binary.LittleEndian.Uint16(buf[cursor : cursor+2]), cursor + 2, nil
}

// DecodeU32 reads a little-endian uint32 at cursor.
func DecodeU32(buf []byte, cursor int) (uint32, int, error) {
	if cursor < 0 || cursor+4 > len(buf) {
		return 0, cursor, fmt.Errorf("decode u32 at offset %d of %d: %w", cursor, len(buf), ErrBytesParseFail)
	}
	return binary.LittleEndian.Uint32(buf[cursor : cursor+4]), cursor + 4, nil
}

// DecodeBool reads a one-byte boolean (0 or 1 are both accepted as false/true
// by treating any nonzero byte as true, matching the on-disk flag value
// payload).
func DecodeBool(buf []byte, cursor int) (bool, int, error) {
	v, next, err := DecodeU8(buf, cursor)
	if err != nil {
		return false, cursor, err
	}
	return v != 0, next, nil
}

// DecodeString reads a 4-byte length prefix followed by that many bytes of
// UTF-8 text.
func DecodeString(buf []byte, cursor int) (string, int, error) {
	strLen, next, err := DecodeU32(buf, cursor)
	if err != nil {
		return "", cursor, fmt.Errorf("decode string length: %w", err)
	}
	end := next + int(strLen)
	if end < next || end > len(buf) {
		return "", cursor, fmt.Errorf("decode string body of length %d at offset %d of %d: %w", strLen, next, len(buf), ErrBytesParseFail)
	}
	raw := buf[next:end]
	if !utf8.Valid(raw) {
		return "", cursor, fmt.Errorf("decode string: invalid utf-8: %w", ErrBytesParseFail)
	}
	return string(raw), end, nil
}

// EncodeU8 appends a single byte to buf.
func EncodeU8(buf []byte, v uint8) []byte {
	return append(buf, v)
}

// EncodeU16 appends a little-endian uint16 to buf.
func EncodeU16(buf []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(buf, v)
}

// EncodeU32 appends a little-endian uint32 to buf.
func EncodeU32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

// EncodeBool appends a one-byte boolean to buf.
func EncodeBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

// EncodeString appends a 4-byte length prefix and the UTF-8 bytes of s.
func EncodeString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// StringSize returns the on-disk size in bytes of a length-prefixed string.
func StringSize(s string) int {
	return 4 + len(s)
}
