package hashtable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChooseBucketCountKnownValues(t *testing.T) {
	// S1: three packages -> bucket_count = 7.
	n, err := ChooseBucketCount(3)
	require.NoError(t, err)
	require.Equal(t, uint32(7), n)

	// S4: fifteen flags -> bucket_count = 31.
	n, err = ChooseBucketCount(15)
	require.NoError(t, err)
	require.Equal(t, uint32(31), n)
}

func TestChooseBucketCountIsSmallestPrimeAtLeastDouble(t *testing.T) {
	for n := 0; n < 2000; n++ {
		count, err := ChooseBucketCount(n)
		require.NoError(t, err)
		require.GreaterOrEqual(t, uint64(count), uint64(n)*2)
		// No smaller prime in the table also satisfies the bound.
		for _, p := range primes {
			if p < uint64(count) {
				require.Less(t, p, uint64(n)*2)
			}
		}
	}
}

func TestChooseBucketCountOverLimit(t *testing.T) {
	_, err := ChooseBucketCount(int(MaxBucketCount))
	require.ErrorIs(t, err, ErrHashTableSizeLimit)
}

func TestHashFlagKeyIncludesPackageID(t *testing.T) {
	h0 := HashFlagKey(0, "enabled_ro")
	h1 := HashFlagKey(1, "enabled_ro")
	require.NotEqual(t, h0, h1)
}

func TestHashDeterministic(t *testing.T) {
	require.Equal(t, HashPackageName("com.a.y"), HashPackageName("com.a.y"))
}
