package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aconfig/aconfig-storage/locator"
	"github.com/aconfig/aconfig-storage/storage"
	"github.com/aconfig/aconfig-storage/storage/storagetest"
)

func writeContainerFiles(t *testing.T, dir string, perm os.FileMode) locator.Entry {
	t.Helper()
	c, err := storagetest.Build(
		"system",
		[]storagetest.Package{{Name: "com.a.x", PackageID: 0, BooleanStartIndex: 0}},
		nil,
		[]bool{true},
		[]uint8{0},
	)
	require.NoError(t, err)

	packageMap := filepath.Join(dir, "package.map")
	flagMap := filepath.Join(dir, "flag.map")
	flagVal := filepath.Join(dir, "flag.val")
	flagInfo := filepath.Join(dir, "flag.info")

	require.NoError(t, os.WriteFile(packageMap, c.PackageMap, perm))
	require.NoError(t, os.WriteFile(flagMap, c.FlagMap, perm))
	require.NoError(t, os.WriteFile(flagVal, c.FlagValue, perm))
	require.NoError(t, os.WriteFile(flagInfo, c.FlagInfo, perm))

	return locator.Entry{
		Version:    1,
		Container:  "system",
		PackageMap: packageMap,
		FlagMap:    flagMap,
		FlagVal:    flagVal,
		FlagInfo:   flagInfo,
	}
}

// TestCacheGetS7RejectsWritableFile covers spec.md §8 testable property 6
// and scenario S7: mapping a writable file must fail with MapFileFail
// rather than mmap a file that could change underneath the mapping.
func TestCacheGetS7RejectsWritableFile(t *testing.T) {
	dir := t.TempDir()
	entry := writeContainerFiles(t, dir, 0o444)
	require.NoError(t, os.Chmod(entry.FlagVal, 0o644))

	locatorPath := filepath.Join(dir, "locator.pb")
	require.NoError(t, os.WriteFile(locatorPath, locator.Encode([]locator.Entry{entry}), 0o644))

	cache := New(locatorPath)
	_, err := cache.Get("system")
	require.ErrorIs(t, err, storage.ErrKind(storage.KindMapFileFail))
}

func TestCacheGetMapsReadOnlyFilesAndCachesResult(t *testing.T) {
	dir := t.TempDir()
	entry := writeContainerFiles(t, dir, 0o444)

	locatorPath := filepath.Join(dir, "locator.pb")
	require.NoError(t, os.WriteFile(locatorPath, locator.Encode([]locator.Entry{entry}), 0o644))

	cache := New(locatorPath)
	views, err := cache.Get("system")
	require.NoError(t, err)
	require.Equal(t, "system", views.Container)

	again, err := cache.Get("system")
	require.NoError(t, err)
	require.Equal(t, views, again)
}
