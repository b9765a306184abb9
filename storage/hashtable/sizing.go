// Package hashtable implements the open-hash bucket sizing rule and the
// pinned hash functions shared by every aconfig storage map file: a bucket
// count is the smallest prime at least twice the entry count (load factor
// <= 0.5), and package/flag keys hash with a fixed, documented 64-bit hash so
// producer and consumer always agree on bucket placement.
package hashtable

import (
	"fmt"
	"sort"
)

// ErrHashTableSizeLimit is returned when an entry count exceeds what the
// fixed prime table can size a bucket array for.
var ErrHashTableSizeLimit = fmt.Errorf("hash table size limit exceeded")

// primes is the fixed ascending sequence of bucket counts aconfig storage
// files are allowed to use. Every value is prime; the sequence roughly
// doubles so that choosing the smallest prime >= 2n keeps the load factor
// bounded without wasting much space. This table must never change once
// artifacts are shipped: it is part of the on-disk format's implicit
// contract between producer and consumer.
var primes = [30]uint64{
	7, 17, 31, 37, 79, 163, 331, 673, 1361, 2729, 5471,
	10949, 21911, 43853, 87719, 175447, 350899, 701819, 1403641, 2807303, 5614657,
	11229331, 22458671, 44917381, 89834777, 179669557, 359339171, 718678369, 1437356741, 1610612741,
}

// MaxBucketCount is the largest bucket count the fixed prime table supports.
const MaxBucketCount = uint32(1610612741)

// ChooseBucketCount returns the smallest prime bucket count >= 2*numEntries.
//
// Returns ErrHashTableSizeLimit if numEntries is large enough that no
// supported prime satisfies the load-factor requirement.
func ChooseBucketCount(numEntries int) (uint32, error) {
	if numEntries < 0 {
		return 0, fmt.Errorf("negative entry count %d", numEntries)
	}
	need := uint64(numEntries) * 2
	idx := sort.Search(len(primes), func(i int) bool { return primes[i] >= need })
	if idx == len(primes) {
		return 0, fmt.Errorf("%d entries need bucket count >= %d, largest supported is %d: %w", numEntries, need, primes[len(primes)-1], ErrHashTableSizeLimit)
	}
	return uint32(primes[idx]), nil
}
