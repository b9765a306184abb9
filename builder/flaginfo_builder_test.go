package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aconfig/aconfig-storage/storage"
	"github.com/aconfig/aconfig-storage/storage/storagetest"
)

func writeAt(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func readAt(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func TestCreateFlagInfoS5(t *testing.T) {
	dir := t.TempDir()

	c, err := storagetest.Build(
		"system",
		[]storagetest.Package{
			{Name: "com.a.x", PackageID: 0, BooleanStartIndex: 0},
			{Name: "com.a.y", PackageID: 1, BooleanStartIndex: 2},
		},
		[]storagetest.Flag{
			{PackageID: 0, Name: "f0", Type: storage.ReadOnlyBoolean, FlagIndex: 0},
			{PackageID: 0, Name: "f1", Type: storage.ReadOnlyBoolean, FlagIndex: 1},
			{PackageID: 1, Name: "enabled_rw", Type: storage.ReadWriteBoolean, FlagIndex: 0},
		},
		nil, nil,
	)
	require.NoError(t, err)

	packagePath := filepath.Join(dir, "package.map")
	flagPath := filepath.Join(dir, "flag.map")
	infoPath := filepath.Join(dir, "flag.info")
	require.NoError(t, writeAt(packagePath, c.PackageMap))
	require.NoError(t, writeAt(flagPath, c.FlagMap))

	err = CreateFlagInfo(packagePath, flagPath, infoPath)
	require.NoError(t, err)

	infoBuf, err := readAt(infoPath)
	require.NoError(t, err)
	info, err := storage.DeserializeFlagInfo(infoBuf)
	require.NoError(t, err)

	// enabled_rw is package 1's flag_index 0, boolean_start_index 2 -> global index 2.
	require.Equal(t, storage.AttrIsReadWrite, info.Attributes[2]&0x2)
	require.Equal(t, uint8(0), info.Attributes[0]&0x2)
	require.Equal(t, uint8(0), info.Attributes[1]&0x2)
}

func TestCreateFlagInfoContainerMismatch(t *testing.T) {
	dir := t.TempDir()
	packages := &storage.PackageMapFile{Version: storage.FileVersion, Container: "system"}
	flags := &storage.FlagMapFile{Version: storage.FileVersion, Container: "product"}
	packageBuf, err := packages.Serialize()
	require.NoError(t, err)
	flagBuf, err := flags.Serialize()
	require.NoError(t, err)

	packagePath := filepath.Join(dir, "package.map")
	flagPath := filepath.Join(dir, "flag.map")
	infoPath := filepath.Join(dir, "flag.info")
	require.NoError(t, writeAt(packagePath, packageBuf))
	require.NoError(t, writeAt(flagPath, flagBuf))

	err = CreateFlagInfo(packagePath, flagPath, infoPath)
	require.ErrorIs(t, err, storage.ErrKind(storage.KindFileCreationFail))
}
