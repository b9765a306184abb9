package storage

import (
	"github.com/aconfig/aconfig-storage/storage/codec"
	"github.com/aconfig/aconfig-storage/storage/hashtable"
)

// FlagType is the stored classification of a flag (§3/§4.4). These values
// are part of the on-disk format and must never be renumbered.
type FlagType uint16

const (
	ReadWriteBoolean     FlagType = 0
	ReadOnlyBoolean      FlagType = 1
	FixedReadOnlyBoolean FlagType = 2
)

// IsReadWrite reports whether the flag's overlay may be written at runtime.
func (t FlagType) IsReadWrite() bool { return t == ReadWriteBoolean }

// Valid reports whether t is one of the flag-type codes this version of the
// format knows about.
func (t FlagType) Valid() bool {
	switch t {
	case ReadWriteBoolean, ReadOnlyBoolean, FixedReadOnlyBoolean:
		return true
	default:
		return false
	}
}

// FlagNode is the in-memory form of one node in a flag map file (§3).
type FlagNode struct {
	PackageID  uint32
	Name       string
	Type       FlagType
	FlagIndex  uint16
	nextOffset uint32
}

func flagNodeSize(n FlagNode) int {
	return 4 + codec.StringSize(n.Name) + 2 + 2 + 4 // package_id, name, flag_type, flag_index, next_offset
}

// FlagMapFile is the full in-memory form of a flag map.
type FlagMapFile struct {
	Version   uint32
	Container string
	Nodes     []FlagNode
}

// Serialize writes the flag map file, following the same two-pass layout as
// PackageMapFile.Serialize: header, bucket array, then nodes, with each
// node prepended to its bucket's chain (newest first).
func (f *FlagMapFile) Serialize() ([]byte, error) {
	bucketCount, err := hashtable.ChooseBucketCount(len(f.Nodes))
	if err != nil {
		return nil, newErr(KindHashTableSizeLimit, "sizing flag map buckets", err)
	}

	headerSize := 4 + codec.StringSize(f.Container) + 1 + 4 + 4 + 4 + 4
	bucketOffset := uint32(headerSize)
	nodeOffset := bucketOffset + bucketCount*4

	nodeOffsets := make([]uint32, len(f.Nodes))
	offset := nodeOffset
	for i, n := range f.Nodes {
		nodeOffsets[i] = offset
		offset += uint32(flagNodeSize(n))
	}
	fileSize := offset

	buckets := make([]uint32, bucketCount)
	nextOffsets := make([]uint32, len(f.Nodes))
	for i, n := range f.Nodes {
		bucket := hashtable.Bucket(hashtable.HashFlagKey(n.PackageID, n.Name), bucketCount)
		nextOffsets[i] = buckets[bucket]
		buckets[bucket] = nodeOffsets[i]
	}

	buf := make([]byte, 0, fileSize)
	buf = codec.EncodeU32(buf, f.Version)
	buf = codec.EncodeString(buf, f.Container)
	buf = codec.EncodeU8(buf, uint8(FileTypeFlagMap))
	buf = codec.EncodeU32(buf, fileSize)
	buf = codec.EncodeU32(buf, uint32(len(f.Nodes)))
	buf = codec.EncodeU32(buf, bucketOffset)
	buf = codec.EncodeU32(buf, nodeOffset)
	for _, b := range buckets {
		buf = codec.EncodeU32(buf, b)
	}
	for i, n := range f.Nodes {
		buf = codec.EncodeU32(buf, n.PackageID)
		buf = codec.EncodeString(buf, n.Name)
		buf = codec.EncodeU16(buf, uint16(n.Type))
		buf = codec.EncodeU16(buf, n.FlagIndex)
		buf = codec.EncodeU32(buf, nextOffsets[i])
	}
	return buf, nil
}

// DeserializeFlagMap reconstructs the full in-memory form of a flag map
// file, for tests and rewrites.
func DeserializeFlagMap(buf []byte) (*FlagMapFile, error) {
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
	if FileType(fileType) != FileTypeFlagMap {
		return nil, newErr(KindBytesParseFail, "unexpected file_type for flag map", nil)
	}
	fileSize, cursor, err := codec.DecodeU32(buf, cursor)
	if err != nil {
		return nil, newErr(KindBytesParseFail, "decode file_size", err)
	}
	_, cursor, err = codec.DecodeU32(buf, cursor) // num_flags, derivable from len(Nodes)
	if err != nil {
		return nil, newErr(KindBytesParseFail, "decode num_flags", err)
	}
	_, cursor, err = codec.DecodeU32(buf, cursor) // bucket_offset, unused for full deserialize
	if err != nil {
		return nil, newErr(KindBytesParseFail, "decode bucket_offset", err)
	}
	nodeOffset, _, err := codec.DecodeU32(buf, cursor)
	if err != nil {
		return nil, newErr(KindBytesParseFail, "decode node_offset", err)
	}

	out := &FlagMapFile{Version: version, Container: container}
	cursor = int(nodeOffset)
	for cursor < int(fileSize) {
		var node FlagNode
		node.PackageID, cursor, err = codec.DecodeU32(buf, cursor)
		if err != nil {
			return nil, newErr(KindBytesParseFail, "decode package_id", err)
		}
		node.Name, cursor, err = codec.DecodeString(buf, cursor)
		if err != nil {
			return nil, newErr(KindBytesParseFail, "decode flag node name", err)
		}
		rawType, cursor2, err := codec.DecodeU16(buf, cursor)
		if err != nil {
			return nil, newErr(KindBytesParseFail, "decode flag_type", err)
		}
		node.Type = FlagType(rawType)
		if !node.Type.Valid() {
			return nil, newErr(KindInvalidStoredFlagType, "unknown flag_type code", nil)
		}
		cursor = cursor2
		rawIndex, cursor3, err := codec.DecodeU16(buf, cursor)
		if err != nil {
			return nil, newErr(KindBytesParseFail, "decode flag_index", err)
		}
		node.FlagIndex = rawIndex
		cursor = cursor3
		node.nextOffset, cursor, err = codec.DecodeU32(buf, cursor)
		if err != nil {
			return nil, newErr(KindBytesParseFail, "decode next_offset", err)
		}
		out.Nodes = append(out.Nodes, node)
	}
	return out, nil
}

// FlagLookup is the result of a successful FindFlag.
type FlagLookup struct {
	Type      FlagType
	FlagIndex uint16
}

// FindFlag looks up a (package_id, flag name) pair in a mapped flag map
// view. A missing flag is reported as (zero, false, nil), never an error,
// matching FindPackage. An unrecognized flag_type code fails with
// InvalidStoredFlagType.
func FindFlag(v View, packageID uint32, name string) (FlagLookup, bool, error) {
	version, err := SniffVersion(v)
	if err != nil {
		return FlagLookup{}, false, err
	}
	if err := checkVersion(version); err != nil {
		return FlagLookup{}, false, err
	}

	_, next, err := readStringAt(v, 4)
	if err != nil {
		return FlagLookup{}, false, err
	}
	fixed, err := readChunk(v, 4+next, 1+4+4+4+4)
	if err != nil {
		return FlagLookup{}, false, err
	}
	fileType, cursor, err := codec.DecodeU8(fixed, 0)
	if err != nil || FileType(fileType) != FileTypeFlagMap {
		return FlagLookup{}, false, newErr(KindBytesParseFail, "unexpected file_type", err)
	}
	_, cursor, err = codec.DecodeU32(fixed, cursor) // file_size
	if err != nil {
		return FlagLookup{}, false, newErr(KindBytesParseFail, "decode file_size", err)
	}
	numFlags, cursor, err := codec.DecodeU32(fixed, cursor)
	if err != nil {
		return FlagLookup{}, false, newErr(KindBytesParseFail, "decode num_flags", err)
	}
	bucketOffset, cursor, err := codec.DecodeU32(fixed, cursor)
	if err != nil {
		return FlagLookup{}, false, newErr(KindBytesParseFail, "decode bucket_offset", err)
	}
	nodeOffset, _, err := codec.DecodeU32(fixed, cursor)
	if err != nil {
		return FlagLookup{}, false, newErr(KindBytesParseFail, "decode node_offset", err)
	}

	bucketCount := (nodeOffset - bucketOffset) / 4
	if bucketCount == 0 {
		return FlagLookup{}, false, nil
	}
	bucket := hashtable.Bucket(hashtable.HashFlagKey(packageID, name), bucketCount)
	firstOffset, err := readU32At(v, int64(bucketOffset)+int64(bucket)*4)
	if err != nil {
		return FlagLookup{}, false, err
	}
	if firstOffset == 0 {
		return FlagLookup{}, false, nil
	}

	cursorOff := int64(firstOffset)
	for step := uint32(0); step < numFlags+1; step++ {
		nodeFixed, err := readChunk(v, cursorOff, 4)
		if err != nil {
			return FlagLookup{}, false, err
		}
		nodePackageID, _, err := codec.DecodeU32(nodeFixed, 0)
		if err != nil {
			return FlagLookup{}, false, newErr(KindBytesParseFail, "decode package_id", err)
		}
		nodeName, afterName, err := readStringAt(v, cursorOff+4)
		if err != nil {
			return FlagLookup{}, false, err
		}
		rest, err := readChunk(v, cursorOff+4+afterName, 2+2+4)
		if err != nil {
			return FlagLookup{}, false, err
		}
		rawType, restCursor, err := codec.DecodeU16(rest, 0)
		if err != nil {
			return FlagLookup{}, false, newErr(KindBytesParseFail, "decode flag_type", err)
		}
		flagIndex, restCursor, err := codec.DecodeU16(rest, restCursor)
		if err != nil {
			return FlagLookup{}, false, newErr(KindBytesParseFail, "decode flag_index", err)
		}
		nextOffset, _, err := codec.DecodeU32(rest, restCursor)
		if err != nil {
			return FlagLookup{}, false, newErr(KindBytesParseFail, "decode next_offset", err)
		}
		if nodePackageID == packageID && nodeName == name {
			flagType := FlagType(rawType)
			if !flagType.Valid() {
				return FlagLookup{}, false, newErr(KindInvalidStoredFlagType, "unknown flag_type code", nil)
			}
			return FlagLookup{Type: flagType, FlagIndex: flagIndex}, true, nil
		}
		if nextOffset == 0 {
			return FlagLookup{}, false, nil
		}
		cursorOff = int64(nextOffset)
	}
	return FlagLookup{}, false, newErr(KindBytesParseFail, "collision chain exceeded entry count, possible cycle", nil)
}
