package storage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aconfig/aconfig-storage/storage/storagetest"
)

func threePackages() *PackageMapFile {
	return &PackageMapFile{
		Version:   FileVersion,
		Container: "system",
		Nodes: []PackageNode{
			{Name: "com.a.x", PackageID: 0, BooleanStartIndex: 0},
			{Name: "com.a.y", PackageID: 1, BooleanStartIndex: 1},
			{Name: "com.a.z", PackageID: 2, BooleanStartIndex: 2},
		},
	}
}

func TestPackageMapS1(t *testing.T) {
	c, err := storagetest.Build(
		"system",
		[]storagetest.Package{
			{Name: "com.a.x", PackageID: 0, BooleanStartIndex: 0},
			{Name: "com.a.y", PackageID: 1, BooleanStartIndex: 1},
			{Name: "com.a.z", PackageID: 2, BooleanStartIndex: 2},
		},
		nil, nil, nil,
	)
	require.NoError(t, err)

	header, err := readPackageMapHeader(c.PackageMap, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(7), header.BucketCount())

	result, found, err := FindPackage(c.Views.PackageMap, "com.a.y")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, PackageLookup{PackageID: 1, BooleanStartIndex: 1}, result)
}

func TestPackageMapMissingIsNotError(t *testing.T) {
	f := threePackages()
	buf, err := f.Serialize()
	require.NoError(t, err)

	_, found, err := FindPackage(bytes.NewReader(buf), "com.a.w")
	require.NoError(t, err)
	require.False(t, found)
}

func TestPackageMapSerializeDeserializeRoundTrip(t *testing.T) {
	f := threePackages()
	buf, err := f.Serialize()
	require.NoError(t, err)

	out, err := DeserializePackageMap(buf)
	require.NoError(t, err)
	require.Equal(t, f.Version, out.Version)
	require.Equal(t, f.Container, out.Container)
	require.Len(t, out.Nodes, len(f.Nodes))
	for i, n := range f.Nodes {
		require.Equal(t, n.Name, out.Nodes[i].Name)
		require.Equal(t, n.PackageID, out.Nodes[i].PackageID)
		require.Equal(t, n.BooleanStartIndex, out.Nodes[i].BooleanStartIndex)
	}
}

func TestPackageMapHigherVersionRejected(t *testing.T) {
	f := threePackages()
	f.Version = 2
	buf, err := f.Serialize()
	require.NoError(t, err)

	_, _, err = FindPackage(bytes.NewReader(buf), "com.a.y")
	require.ErrorIs(t, err, ErrKind(KindHigherStorageFileVersion))
}

func TestPackageMapEveryInsertedKeyFound(t *testing.T) {
	names := []string{"com.a.x", "com.a.y", "com.a.z", "com.b.p", "com.b.q", "com.c.r"}
	var packages []storagetest.Package
	for i, n := range names {
		packages = append(packages, storagetest.Package{Name: n, PackageID: uint32(i), BooleanStartIndex: uint32(i)})
	}
	c, err := storagetest.Build("system", packages, nil, nil, nil)
	require.NoError(t, err)

	for i, n := range names {
		result, found, err := FindPackage(c.Views.PackageMap, n)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, uint32(i), result.PackageID)
	}
	_, found, err := FindPackage(c.Views.PackageMap, "com.never.inserted")
	require.NoError(t, err)
	require.False(t, found)
}
