package storage

import "github.com/aconfig/aconfig-storage/storage/codec"

// Attribute bits stored per flag in a flag info file (§3).
const (
	AttrIsSticky    uint8 = 0x1
	AttrIsReadWrite uint8 = 0x2
	AttrHasOverride uint8 = 0x4
)

// FlagInfoFile is the in-memory form of a flag info file: header plus one
// attribute byte per flag (§4.6).
type FlagInfoFile struct {
	Version    uint32
	Container  string
	Attributes []uint8
}

// Serialize writes the flag info file: header then the packed attribute
// array.
func (f *FlagInfoFile) Serialize() []byte {
	headerSize := 4 + codec.StringSize(f.Container) + 1 + 4 + 4 + 4
	fileSize := uint32(headerSize + len(f.Attributes))
	attrOffset := uint32(headerSize)

	buf := make([]byte, 0, fileSize)
	buf = codec.EncodeU32(buf, f.Version)
	buf = codec.EncodeString(buf, f.Container)
	buf = codec.EncodeU8(buf, uint8(FileTypeFlagInfo))
	buf = codec.EncodeU32(buf, fileSize)
	buf = codec.EncodeU32(buf, uint32(len(f.Attributes)))
	buf = codec.EncodeU32(buf, attrOffset)
	buf = append(buf, f.Attributes...)
	return buf
}

// DeserializeFlagInfo reconstructs the full in-memory form of a flag info
// file.
func DeserializeFlagInfo(buf []byte) (*FlagInfoFile, error) {
	version, cursor, err := codec.DecodeU32(buf, 0)
	if err != nil {
		return nil, newErr(KindBytesParseFail, "decode version", err)
	}
	if err := checkVersion(version); err != nil {
		return nil, err
	}
	container, cursor, err := codec.DecodeString(buf, cursor)
	if err != nil {
		return nil, newErr(KindBytesParseFail, "decode container", err)
	}
	fileType, cursor, err := codec.DecodeU8(buf, cursor)
	if err != nil {
		return nil, newErr(KindBytesParseFail, "decode file_type", err)
	}
	if FileType(fileType) != FileTypeFlagInfo {
		return nil, newErr(KindBytesParseFail, "unexpected file_type for flag info", nil)
	}
	_, cursor, err = codec.DecodeU32(buf, cursor) // file_size
	if err != nil {
		return nil, newErr(KindBytesParseFail, "decode file_size", err)
	}
	numFlags, cursor, err := codec.DecodeU32(buf, cursor)
	if err != nil {
		return nil, newErr(KindBytesParseFail, "decode num_flags", err)
	}
	attrOffset, _, err := codec.DecodeU32(buf, cursor)
	if err != nil {
		return nil, newErr(KindBytesParseFail, "decode boolean_flag_offset", err)
	}
	start := int(attrOffset)
	end := start + int(numFlags)
	if end > len(buf) {
		return nil, newErr(KindBytesParseFail, "attribute array runs past end of file", nil)
	}
	attrs := make([]uint8, numFlags)
	copy(attrs, buf[start:end])
	return &FlagInfoFile{Version: version, Container: container, Attributes: attrs}, nil
}

// GetAttribute reads the attribute byte at the given global index from a
// mapped flag info view, analogous to GetBoolean.
func GetAttribute(v View, i uint32) (uint8, error) {
	version, err := SniffVersion(v)
	if err != nil {
		return 0, err
	}
	if err := checkVersion(version); err != nil {
		return 0, err
	}
	_, next, err := readStringAt(v, 4)
	if err != nil {
		return 0, err
	}
	fixed, err := readChunk(v, 4+next, 1+4+4+4)
	if err != nil {
		return 0, err
	}
	fileType, cursor, err := codec.DecodeU8(fixed, 0)
	if err != nil || FileType(fileType) != FileTypeFlagInfo {
		return 0, newErr(KindBytesParseFail, "unexpected file_type", err)
	}
	_, cursor, err = codec.DecodeU32(fixed, cursor) // file_size
	if err != nil {
		return 0, newErr(KindBytesParseFail, "decode file_size", err)
	}
	numFlags, cursor, err := codec.DecodeU32(fixed, cursor)
	if err != nil {
		return 0, newErr(KindBytesParseFail, "decode num_flags", err)
	}
	attrOffset, _, err := codec.DecodeU32(fixed, cursor)
	if err != nil {
		return 0, newErr(KindBytesParseFail, "decode boolean_flag_offset", err)
	}
	if i >= numFlags {
		return 0, newErr(KindInvalidStorageFileOffset, "attribute index out of range", nil)
	}
	raw, err := readChunk(v, int64(attrOffset)+int64(i), 1)
	if err != nil {
		return 0, err
	}
	return raw[0], nil
}
