package storage

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aconfig/aconfig-storage/storage/hashtable"
)

// These three tests exercise §8's randomized-input invariants 1-3. Each
// seeds its own *rand.Rand explicitly (no time-based seed) so a failure
// reproduces from the printed seed.

// TestPropertyMapFileSizingAndLookup covers invariant 1: for every map file
// built from N unique keys, bucket_count equals the smallest prime >= 2N,
// every inserted key is found, and an uninserted key is reported absent.
func TestPropertyMapFileSizingAndLookup(t *testing.T) {
	const seed = 20260115
	rng := rand.New(rand.NewSource(seed))

	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(200) + 1

		order := rng.Perm(n)
		f := &PackageMapFile{Version: FileVersion, Container: "system"}
		names := make([]string, n)
		for i := 0; i < n; i++ {
			names[i] = fmt.Sprintf("com.random.p%04d", i)
		}
		for _, i := range order {
			f.Nodes = append(f.Nodes, PackageNode{Name: names[i], PackageID: uint32(i), BooleanStartIndex: uint32(i)})
		}

		buf, err := f.Serialize()
		require.NoErrorf(t, err, "seed=%d trial=%d n=%d", seed, trial, n)

		header, err := readPackageMapHeader(buf, 0)
		require.NoError(t, err)
		wantBucketCount, err := hashtable.ChooseBucketCount(n)
		require.NoError(t, err)
		require.Equalf(t, wantBucketCount, header.BucketCount(), "seed=%d trial=%d n=%d", seed, trial, n)

		for i, name := range names {
			result, found, err := FindPackage(bytes.NewReader(buf), name)
			require.NoErrorf(t, err, "seed=%d trial=%d name=%s", seed, trial, name)
			require.Truef(t, found, "seed=%d trial=%d name=%s", seed, trial, name)
			require.Equal(t, uint32(i), result.PackageID)
		}

		_, found, err := FindPackage(bytes.NewReader(buf), "com.never.inserted")
		require.NoError(t, err)
		require.False(t, found)
	}
}

// TestPropertySerializeDeserializeRoundTrip covers invariant 2: serialize
// then deserialize is the identity on all four file types, across random
// container sizes and content.
func TestPropertySerializeDeserializeRoundTrip(t *testing.T) {
	const seed = 20260116
	rng := rand.New(rand.NewSource(seed))

	for trial := 0; trial < 50; trial++ {
		numPackages := rng.Intn(30) + 1
		numFlags := rng.Intn(30) + 1
		numValues := rng.Intn(100)

		packages := &PackageMapFile{Version: FileVersion, Container: "system"}
		for i := 0; i < numPackages; i++ {
			packages.Nodes = append(packages.Nodes, PackageNode{
				Name:              fmt.Sprintf("com.random.p%04d", i),
				PackageID:         uint32(i),
				BooleanStartIndex: uint32(i),
			})
		}
		pkgBuf, err := packages.Serialize()
		require.NoError(t, err)
		outPackages, err := DeserializePackageMap(pkgBuf)
		require.NoErrorf(t, err, "seed=%d trial=%d", seed, trial)
		require.Equal(t, packages.Container, outPackages.Container)
		require.Len(t, outPackages.Nodes, numPackages)
		for i, n := range packages.Nodes {
			require.Equal(t, n.Name, outPackages.Nodes[i].Name)
			require.Equal(t, n.PackageID, outPackages.Nodes[i].PackageID)
			require.Equal(t, n.BooleanStartIndex, outPackages.Nodes[i].BooleanStartIndex)
		}

		flags := &FlagMapFile{Version: FileVersion, Container: "system"}
		for i := 0; i < numFlags; i++ {
			flags.Nodes = append(flags.Nodes, FlagNode{
				PackageID: uint32(rng.Intn(numPackages)),
				Name:      fmt.Sprintf("flag_%04d", i),
				Type:      FlagType(rng.Intn(3)),
				FlagIndex: uint16(i),
			})
		}
		flagBuf, err := flags.Serialize()
		require.NoError(t, err)
		outFlags, err := DeserializeFlagMap(flagBuf)
		require.NoErrorf(t, err, "seed=%d trial=%d", seed, trial)
		require.Len(t, outFlags.Nodes, numFlags)
		for i, n := range flags.Nodes {
			require.Equal(t, n.PackageID, outFlags.Nodes[i].PackageID)
			require.Equal(t, n.Name, outFlags.Nodes[i].Name)
			require.Equal(t, n.Type, outFlags.Nodes[i].Type)
			require.Equal(t, n.FlagIndex, outFlags.Nodes[i].FlagIndex)
		}

		values := make([]bool, numValues)
		for i := range values {
			values[i] = rng.Intn(2) == 1
		}
		valueFile := &FlagValueFile{Version: FileVersion, Container: "system", Values: values}
		valueBuf := valueFile.Serialize()
		outValues, err := DeserializeFlagValue(valueBuf)
		require.NoErrorf(t, err, "seed=%d trial=%d", seed, trial)
		require.Equal(t, values, outValues.Values)

		attrs := make([]uint8, numValues)
		for i := range attrs {
			attrs[i] = uint8(rng.Intn(8))
		}
		infoFile := &FlagInfoFile{Version: FileVersion, Container: "system", Attributes: attrs}
		infoBuf := infoFile.Serialize()
		outInfo, err := DeserializeFlagInfo(infoBuf)
		require.NoErrorf(t, err, "seed=%d trial=%d", seed, trial)
		require.Equal(t, attrs, outInfo.Attributes)
	}
}

// TestPropertyFlagValueBoundsAndContent covers invariant 3: get_boolean(V,
// i) equals the i-th input bit for 0 <= i < n, and i = n yields
// InvalidStorageFileOffset, across random n and random bit patterns.
func TestPropertyFlagValueBoundsAndContent(t *testing.T) {
	const seed = 20260117
	rng := rand.New(rand.NewSource(seed))

	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(300) + 1
		bits := make([]bool, n)
		for i := range bits {
			bits[i] = rng.Intn(2) == 1
		}

		f := &FlagValueFile{Version: FileVersion, Container: "system", Values: bits}
		buf := f.Serialize()

		for i, want := range bits {
			got, err := GetBoolean(bytes.NewReader(buf), uint32(i))
			require.NoErrorf(t, err, "seed=%d trial=%d n=%d i=%d", seed, trial, n, i)
			require.Equalf(t, want, got, "seed=%d trial=%d n=%d i=%d", seed, trial, n, i)
		}

		_, err := GetBoolean(bytes.NewReader(buf), uint32(n))
		require.ErrorIsf(t, err, ErrKind(KindInvalidStorageFileOffset), "seed=%d trial=%d n=%d", seed, trial, n)
	}
}
