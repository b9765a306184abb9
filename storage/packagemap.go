package storage

import (
	"github.com/aconfig/aconfig-storage/storage/codec"
	"github.com/aconfig/aconfig-storage/storage/hashtable"
)

// PackageNode is the in-memory form of one node in a package map file (§3).
type PackageNode struct {
	Name              string
	PackageID         uint32
	BooleanStartIndex uint32
	nextOffset        uint32 // on-disk chain pointer, recomputed by Serialize
}

// packageNodeSize returns the on-disk size of a package node.
func packageNodeSize(n PackageNode) int {
	return codec.StringSize(n.Name) + 4 + 4 + 4 // package_id, boolean_start_index, next_offset
}

// PackageMapHeader is the parsed header of a package map file.
type PackageMapHeader struct {
	Version      uint32
	Container    string
	FileSize     uint32
	NumPackages  uint32
	BucketOffset uint32
	NodeOffset   uint32
}

// BucketCount derives the bucket array length from the header's two offsets.
func (h PackageMapHeader) BucketCount() uint32 {
	return (h.NodeOffset - h.BucketOffset) / 4
}

// PackageMapFile is the full in-memory form of a package map: the header
// plus nodes in insertion order. Serialize writes Nodes in slice order; it
// does not sort them by name.
type PackageMapFile struct {
	Version   uint32
	Container string
	Nodes     []PackageNode
}

// Serialize produces the on-disk bytes for the package map file, following
// §4.3: compute the bucket count, prepend each node to its bucket's chain
// (so a chain lists colliding nodes newest first), write header + bucket
// array + nodes.
func (f *PackageMapFile) Serialize() ([]byte, error) {
	bucketCount, err := hashtable.ChooseBucketCount(len(f.Nodes))
	if err != nil {
		return nil, newErr(KindHashTableSizeLimit, "sizing package map buckets", err)
	}

	headerSize := 4 + codec.StringSize(f.Container) + 1 + 4 + 4 + 4 + 4
	bucketOffset := uint32(headerSize)
	nodeOffset := bucketOffset + bucketCount*4

	nodeOffsets := make([]uint32, len(f.Nodes))
	offset := nodeOffset
	for i, n := range f.Nodes {
		nodeOffsets[i] = offset
		offset += uint32(packageNodeSize(n))
	}
	fileSize := offset

	buckets := make([]uint32, bucketCount)
	nextOffsets := make([]uint32, len(f.Nodes))
	for i, n := range f.Nodes {
		bucket := hashtable.Bucket(hashtable.HashPackageName(n.Name), bucketCount)
		nextOffsets[i] = buckets[bucket]
		buckets[bucket] = nodeOffsets[i]
	}

	buf := make([]byte, 0, fileSize)
	buf = codec.EncodeU32(buf, f.Version)
	buf = codec.EncodeString(buf, f.Container)
	buf = codec.EncodeU8(buf, uint8(FileTypePackageMap))
	buf = codec.EncodeU32(buf, fileSize)
	buf = codec.EncodeU32(buf, uint32(len(f.Nodes)))
	buf = codec.EncodeU32(buf, bucketOffset)
	buf = codec.EncodeU32(buf, nodeOffset)
	for _, b := range buckets {
		buf = codec.EncodeU32(buf, b)
	}
	for i, n := range f.Nodes {
		buf = codec.EncodeString(buf, n.Name)
		buf = codec.EncodeU32(buf, n.PackageID)
		buf = codec.EncodeU32(buf, n.BooleanStartIndex)
		buf = codec.EncodeU32(buf, nextOffsets[i])
	}
	return buf, nil
}

// DeserializePackageMap reconstructs the full in-memory form of a package
// map file, for tests and rewrites (§4.3).
func DeserializePackageMap(buf []byte) (*PackageMapFile, error) {
	header, err := readPackageMapHeader(buf, 0)
	if err != nil {
		return nil, err
	}
	out := &PackageMapFile{Version: header.Version, Container: header.Container}
	bucketCount := header.BucketCount()
	nodeRegionEnd := int(header.FileSize)
	cursor := int(header.NodeOffset)
	for cursor < nodeRegionEnd {
		var node PackageNode
		node.Name, cursor, err = codec.DecodeString(buf, cursor)
		if err != nil {
			return nil, newErr(KindBytesParseFail, "decode package node name", err)
		}
		node.PackageID, cursor, err = codec.DecodeU32(buf, cursor)
		if err != nil {
			return nil, newErr(KindBytesParseFail, "decode package_id", err)
		}
		node.BooleanStartIndex, cursor, err = codec.DecodeU32(buf, cursor)
		if err != nil {
			return nil, newErr(KindBytesParseFail, "decode boolean_start_index", err)
		}
		node.nextOffset, cursor, err = codec.DecodeU32(buf, cursor)
		if err != nil {
			return nil, newErr(KindBytesParseFail, "decode next_offset", err)
		}
		out.Nodes = append(out.Nodes, node)
	}
	_ = bucketCount
	return out, nil
}

func readPackageMapHeader(buf []byte, at int) (PackageMapHeader, error) {
	var h PackageMapHeader
	version, cursor, err := codec.DecodeU32(buf, at)
	if err != nil {
		return h, newErr(KindBytesParseFail, "decode version", err)
	}
	if err := checkVersion(version); err != nil {
		return h, err
	}
	container, cursor, err := codec.DecodeString(buf, cursor)
	if err != nil {
		return h, newErr(KindBytesParseFail, "decode container", err)
	}
	fileType, cursor, err := codec.DecodeU8(buf, cursor)
	if err != nil {
		return h, newErr(KindBytesParseFail, "decode file_type", err)
	}
	if FileType(fileType) != FileTypePackageMap {
		return h, newErr(KindBytesParseFail, "unexpected file_type for package map", nil)
	}
	fileSize, cursor, err := codec.DecodeU32(buf, cursor)
	if err != nil {
		return h, newErr(KindBytesParseFail, "decode file_size", err)
	}
	numPackages, cursor, err := codec.DecodeU32(buf, cursor)
	if err != nil {
		return h, newErr(KindBytesParseFail, "decode num_packages", err)
	}
	bucketOffset, cursor, err := codec.DecodeU32(buf, cursor)
	if err != nil {
		return h, newErr(KindBytesParseFail, "decode bucket_offset", err)
	}
	nodeOffset, _, err := codec.DecodeU32(buf, cursor)
	if err != nil {
		return h, newErr(KindBytesParseFail, "decode node_offset", err)
	}
	h = PackageMapHeader{
		Version:      version,
		Container:    container,
		FileSize:     fileSize,
		NumPackages:  numPackages,
		BucketOffset: bucketOffset,
		NodeOffset:   nodeOffset,
	}
	return h, nil
}

// PackageLookup is the result of a successful FindPackage.
type PackageLookup struct {
	PackageID         uint32
	BooleanStartIndex uint32
}

// FindPackage looks up a package by name in a mapped package map view,
// per §4.3/§4.7. A missing package is reported as (zero, false, nil), never
// an error.
func FindPackage(v View, name string) (PackageLookup, bool, error) {
	var headerBuf [4]byte
	if _, err := v.ReadAt(headerBuf[:], 0); err != nil {
		return PackageLookup{}, false, newErr(KindBytesParseFail, "read version", err)
	}
	version, _, err := codec.DecodeU32(headerBuf[:], 0)
	if err != nil {
		return PackageLookup{}, false, newErr(KindBytesParseFail, "decode version", err)
	}
	if err := checkVersion(version); err != nil {
		return PackageLookup{}, false, err
	}

	container, next, err := readStringAt(v, 4)
	if err != nil {
		return PackageLookup{}, false, err
	}
	_ = container
	fixed, err := readChunk(v, 4+next, 1+4+4+4+4)
	if err != nil {
		return PackageLookup{}, false, err
	}
	fileType, cursor, err := codec.DecodeU8(fixed, 0)
	if err != nil || FileType(fileType) != FileTypePackageMap {
		return PackageLookup{}, false, newErr(KindBytesParseFail, "unexpected file_type", err)
	}
	_, cursor, err = codec.DecodeU32(fixed, cursor) // file_size, unused for lookup
	if err != nil {
		return PackageLookup{}, false, newErr(KindBytesParseFail, "decode file_size", err)
	}
	numPackages, cursor, err := codec.DecodeU32(fixed, cursor)
	if err != nil {
		return PackageLookup{}, false, newErr(KindBytesParseFail, "decode num_packages", err)
	}
	bucketOffset, cursor, err := codec.DecodeU32(fixed, cursor)
	if err != nil {
		return PackageLookup{}, false, newErr(KindBytesParseFail, "decode bucket_offset", err)
	}
	nodeOffset, _, err := codec.DecodeU32(fixed, cursor)
	if err != nil {
		return PackageLookup{}, false, newErr(KindBytesParseFail, "decode node_offset", err)
	}

	bucketCount := (nodeOffset - bucketOffset) / 4
	if bucketCount == 0 {
		return PackageLookup{}, false, nil
	}
	bucket := hashtable.Bucket(hashtable.HashPackageName(name), bucketCount)
	firstOffset, err := readU32At(v, int64(bucketOffset)+int64(bucket)*4)
	if err != nil {
		return PackageLookup{}, false, err
	}
	if firstOffset == 0 {
		return PackageLookup{}, false, nil
	}

	cursorOff := int64(firstOffset)
	for step := uint32(0); step < numPackages+1; step++ {
		nodeName, afterName, err := readStringAt(v, cursorOff)
		if err != nil {
			return PackageLookup{}, false, err
		}
		rest, err := readChunk(v, cursorOff+afterName, 12)
		if err != nil {
			return PackageLookup{}, false, err
		}
		packageID, restCursor, err := codec.DecodeU32(rest, 0)
		if err != nil {
			return PackageLookup{}, false, newErr(KindBytesParseFail, "decode package_id", err)
		}
		booleanStart, restCursor, err := codec.DecodeU32(rest, restCursor)
		if err != nil {
			return PackageLookup{}, false, newErr(KindBytesParseFail, "decode boolean_start_index", err)
		}
		nextOffset, _, err := codec.DecodeU32(rest, restCursor)
		if err != nil {
			return PackageLookup{}, false, newErr(KindBytesParseFail, "decode next_offset", err)
		}
		if nodeName == name {
			return PackageLookup{PackageID: packageID, BooleanStartIndex: booleanStart}, true, nil
		}
		if nextOffset == 0 {
			return PackageLookup{}, false, nil
		}
		cursorOff = int64(nextOffset)
	}
	return PackageLookup{}, false, newErr(KindBytesParseFail, "collision chain exceeded entry count, possible cycle", nil)
}
