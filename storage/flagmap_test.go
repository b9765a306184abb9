package storage

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlagMapS4(t *testing.T) {
	f := &FlagMapFile{Version: FileVersion, Container: "system"}
	for i := 0; i < 15; i++ {
		f.Nodes = append(f.Nodes, FlagNode{
			PackageID: 0,
			Name:      fmt.Sprintf("flag_%02d", i),
			Type:      ReadWriteBoolean,
			FlagIndex: uint16(i),
		})
	}
	buf, err := f.Serialize()
	require.NoError(t, err)

	decoded, err := DeserializeFlagMap(buf)
	require.NoError(t, err)
	require.Len(t, decoded.Nodes, 15)

	for i := 0; i < 15; i++ {
		result, found, err := FindFlag(bytes.NewReader(buf), 0, fmt.Sprintf("flag_%02d", i))
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, uint16(i), result.FlagIndex)
	}
}

func TestFlagMapDistinguishesPackages(t *testing.T) {
	f := &FlagMapFile{
		Version:   FileVersion,
		Container: "system",
		Nodes: []FlagNode{
			{PackageID: 0, Name: "enabled_ro", Type: ReadOnlyBoolean, FlagIndex: 0},
			{PackageID: 1, Name: "enabled_ro", Type: ReadWriteBoolean, FlagIndex: 0},
		},
	}
	buf, err := f.Serialize()
	require.NoError(t, err)

	r0, found, err := FindFlag(bytes.NewReader(buf), 0, "enabled_ro")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, ReadOnlyBoolean, r0.Type)

	r1, found, err := FindFlag(bytes.NewReader(buf), 1, "enabled_ro")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, ReadWriteBoolean, r1.Type)

	_, found, err = FindFlag(bytes.NewReader(buf), 2, "enabled_ro")
	require.NoError(t, err)
	require.False(t, found)
}

func TestFlagMapInvalidStoredFlagType(t *testing.T) {
	f := &FlagMapFile{
		Version:   FileVersion,
		Container: "system",
		Nodes:     []FlagNode{{PackageID: 0, Name: "enabled_ro", Type: ReadWriteBoolean, FlagIndex: 0}},
	}
	buf, err := f.Serialize()
	require.NoError(t, err)

	// Corrupt the stored flag_type in place: it's the first u16 right after
	// the flag name's length-prefixed bytes in the single node we wrote.
	corrupt := append([]byte(nil), buf...)
	typeOffset := len(buf) - (2 + 2 + 4) // flag_type, flag_index, next_offset trailer
	corrupt[typeOffset] = 0xFF
	corrupt[typeOffset+1] = 0xFF

	_, _, err = FindFlag(bytes.NewReader(corrupt), 0, "enabled_ro")
	require.ErrorIs(t, err, ErrKind(KindInvalidStoredFlagType))
}
