package hashtable

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// HashPackageName returns the pinned 64-bit hash of a package name, as used
// to bucket package nodes in the package map file.
//
// The hash is xxHash64 over the UTF-8 bytes of the name, exactly. This
// function's output is part of the on-disk format's implicit contract: a
// producer and a consumer built from different versions of this package
// must still agree on bucket placement, so the algorithm is pinned here and
// must never change.
func HashPackageName(name string) uint64 {
	return xxhash.Sum64String(name)
}

// HashFlagKey returns the pinned 64-bit hash of a (package_id, flag name)
// pair, as used to bucket flag nodes in the flag map file.
//
// The hash is xxHash64 over the UTF-8 bytes of the flag name followed by the
// 4-byte little-endian package_id, per spec.
func HashFlagKey(packageID uint32, name string) uint64 {
	var d xxhash.Digest
	d.Reset()
	_, _ = d.WriteString(name)
	var idBuf [4]byte
	binary.LittleEndian.PutUint32(idBuf[:], packageID)
	_, _ = d.Write(idBuf[:])
	return d.Sum64()
}

// Bucket reduces a 64-bit hash to a bucket index in [0, bucketCount).
func Bucket(hash uint64, bucketCount uint32) uint32 {
	return uint32(hash % uint64(bucketCount))
}
