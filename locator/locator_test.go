package locator

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aconfig/aconfig-storage/storage"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	entries := []Entry{
		{Version: 1, Container: "system", PackageMap: "/a/package.map", FlagMap: "/a/flag.map", FlagVal: "/a/flag.val", FlagInfo: "/a/flag.info", Timestamp: 1700000000},
		{Version: 1, Container: "product", PackageMap: "/b/package.map", FlagMap: "/b/flag.map", FlagVal: "/b/flag.val", FlagInfo: "/b/flag.info", Timestamp: 1700000001},
	}
	data := Encode(entries)

	decoded, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, entries, decoded)
}

func TestLookupS6MissingContainer(t *testing.T) {
	entries := []Entry{{Version: 1, Container: "system", PackageMap: "p", FlagMap: "f", FlagVal: "v", FlagInfo: "i"}}
	data := Encode(entries)

	path := t.TempDir() + "/locator.pb"
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err := Lookup(path, "vendor")
	require.ErrorIs(t, err, storage.ErrKind(storage.KindStorageFileNotFound))
}
