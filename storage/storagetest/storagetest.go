// Package storagetest builds in-memory aconfig storage containers for
// table-driven tests, the way aconfig_storage_read_api's test_utils.rs
// builds a fixture container without touching disk (§12). Every storage
// and builder test that needs a package map, flag map, flag value, and
// (optionally) flag info file goes through Build instead of hand-rolling
// the four structs and calling Serialize itself.
package storagetest

import (
	"bytes"

	"github.com/aconfig/aconfig-storage/storage"
)

// Package is one row of a package map fixture.
type Package struct {
	Name              string
	PackageID         uint32
	BooleanStartIndex uint32
}

// Flag is one row of a flag map fixture.
type Flag struct {
	PackageID uint32
	Name      string
	Type      storage.FlagType
	FlagIndex uint16
}

// Container bundles the serialized bytes for all four files alongside a
// storage.Views ready to pass straight to storage.GetBooleanFlag. Tests that
// write fixtures to disk (e.g. to exercise builder.CreateFlagInfo) use the
// byte fields directly; tests that query in-memory use Views.
type Container struct {
	PackageMap []byte
	FlagMap    []byte
	FlagValue  []byte
	FlagInfo   []byte // nil when Build was called with attrs == nil

	Views storage.Views
}

// Build serializes a package map, flag map, flag value file, and (when attrs
// is non-nil) a flag info file for container, all sharing the same name.
// values and attrs are indexed by global boolean index, matching the
// producer-side contract described in §4.4/§4.9.
func Build(container string, packages []Package, flags []Flag, values []bool, attrs []uint8) (Container, error) {
	pkgFile := &storage.PackageMapFile{Version: storage.FileVersion, Container: container}
	for _, p := range packages {
		pkgFile.Nodes = append(pkgFile.Nodes, storage.PackageNode{
			Name:              p.Name,
			PackageID:         p.PackageID,
			BooleanStartIndex: p.BooleanStartIndex,
		})
	}
	pkgBuf, err := pkgFile.Serialize()
	if err != nil {
		return Container{}, err
	}

	flagFile := &storage.FlagMapFile{Version: storage.FileVersion, Container: container}
	for _, f := range flags {
		flagFile.Nodes = append(flagFile.Nodes, storage.FlagNode{
			PackageID: f.PackageID,
			Name:      f.Name,
			Type:      f.Type,
			FlagIndex: f.FlagIndex,
		})
	}
	flagBuf, err := flagFile.Serialize()
	if err != nil {
		return Container{}, err
	}

	valueFile := &storage.FlagValueFile{Version: storage.FileVersion, Container: container, Values: values}
	valueBuf := valueFile.Serialize()

	c := Container{
		PackageMap: pkgBuf,
		FlagMap:    flagBuf,
		FlagValue:  valueBuf,
		Views: storage.Views{
			PackageMap: bytes.NewReader(pkgBuf),
			FlagMap:    bytes.NewReader(flagBuf),
			FlagValue:  bytes.NewReader(valueBuf),
		},
	}

	if attrs != nil {
		infoFile := &storage.FlagInfoFile{Version: storage.FileVersion, Container: container, Attributes: attrs}
		c.FlagInfo = infoFile.Serialize()
		c.Views.FlagInfo = bytes.NewReader(c.FlagInfo)
	}

	return c, nil
}
