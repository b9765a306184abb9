package storage

import "github.com/aconfig/aconfig-storage/storage/codec"

// FlagValueFile is the in-memory form of a flag value file: a header plus
// one byte per flag, 0 or 1 (§4.5). It carries no file_type field, unlike
// its three companions.
type FlagValueFile struct {
	Version   uint32
	Container string
	Values    []bool
}

// Serialize writes the flag value file: header then the packed bit array.
func (f *FlagValueFile) Serialize() []byte {
	headerSize := 4 + codec.StringSize(f.Container) + 4 + 4 + 4
	fileSize := uint32(headerSize + len(f.Values))
	boolOffset := uint32(headerSize)

	buf := make([]byte, 0, fileSize)
	buf = codec.EncodeU32(buf, f.Version)
	buf = codec.EncodeString(buf, f.Container)
	buf = codec.EncodeU32(buf, fileSize)
	buf = codec.EncodeU32(buf, uint32(len(f.Values)))
	buf = codec.EncodeU32(buf, boolOffset)
	for _, v := range f.Values {
		buf = codec.EncodeBool(buf, v)
	}
	return buf
}

// DeserializeFlagValue reconstructs the full in-memory form of a flag value
// file.
func DeserializeFlagValue(buf []byte) (*FlagValueFile, error) {
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
	_, cursor, err = codec.DecodeU32(buf, cursor) // file_size
	if err != nil {
		return nil, newErr(KindBytesParseFail, "decode file_size", err)
	}
	numFlags, cursor, err := codec.DecodeU32(buf, cursor)
	if err != nil {
		return nil, newErr(KindBytesParseFail, "decode num_flags", err)
	}
	boolOffset, _, err := codec.DecodeU32(buf, cursor)
	if err != nil {
		return nil, newErr(KindBytesParseFail, "decode boolean_value_offset", err)
	}

	values := make([]bool, numFlags)
	readCursor := int(boolOffset)
	for i := range values {
		var v bool
		v, readCursor, err = codec.DecodeBool(buf, readCursor)
		if err != nil {
			return nil, newErr(KindBytesParseFail, "decode flag value", err)
		}
		values[i] = v
	}
	return &FlagValueFile{Version: version, Container: container, Values: values}, nil
}

// GetBoolean reads the boolean at the given global value-array index from a
// mapped flag value view. i must satisfy 0 <= i < num_flags or
// InvalidStorageFileOffset is returned.
func GetBoolean(v View, i uint32) (bool, error) {
	version, err := SniffVersion(v)
	if err != nil {
		return false, err
	}
	if err := checkVersion(version); err != nil {
		return false, err
	}
	_, next, err := readStringAt(v, 4)
	if err != nil {
		return false, err
	}
	fixed, err := readChunk(v, 4+next, 4+4+4)
	if err != nil {
		return false, err
	}
	_, cursor, err := codec.DecodeU32(fixed, 0) // file_size
	if err != nil {
		return false, newErr(KindBytesParseFail, "decode file_size", err)
	}
	numFlags, cursor, err := codec.DecodeU32(fixed, cursor)
	if err != nil {
		return false, newErr(KindBytesParseFail, "decode num_flags", err)
	}
	boolOffset, _, err := codec.DecodeU32(fixed, cursor)
	if err != nil {
		return false, newErr(KindBytesParseFail, "decode boolean_value_offset", err)
	}
	if i >= numFlags {
		return false, newErr(KindInvalidStorageFileOffset, "value index out of range", nil)
	}
	raw, err := readChunk(v, int64(boolOffset)+int64(i), 1)
	if err != nil {
		return false, err
	}
	val, _, err := codec.DecodeBool(raw, 0)
	return val, err
}
