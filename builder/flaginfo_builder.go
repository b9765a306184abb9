package builder

import (
	"os"

	"k8s.io/klog/v2"

	"github.com/aconfig/aconfig-storage/storage"
)

// CreateFlagInfo joins a package map and a flag map into a flag info file
// (§4.9): it reads both inputs, asserts they share a container, computes
// each flag's global boolean-array index from the package's
// boolean_start_index and the flag's flag_index, and sets IsReadWrite iff
// the flag's type is ReadWriteBoolean. The output is sized, written, and
// marked read-only before this function returns, satisfying the mapping
// cache's read-only-before-mmap requirement (§5).
func CreateFlagInfo(packageMapPath, flagMapPath, outPath string) error {
	packageBytes, err := os.ReadFile(packageMapPath)
	if err != nil {
		return wrapCreationFail("read package map", err)
	}
	flagBytes, err := os.ReadFile(flagMapPath)
	if err != nil {
		return wrapCreationFail("read flag map", err)
	}

	packages, err := storage.DeserializePackageMap(packageBytes)
	if err != nil {
		return err
	}
	flags, err := storage.DeserializeFlagMap(flagBytes)
	if err != nil {
		return err
	}
	if packages.Container != flags.Container {
		return storage.ErrKind(storage.KindFileCreationFail)
	}

	startIndexByPackage := make(map[uint32]uint32, len(packages.Nodes))
	for _, p := range packages.Nodes {
		startIndexByPackage[p.PackageID] = p.BooleanStartIndex
	}

	numFlags := 0
	for _, f := range flags.Nodes {
		idx := int(startIndexByPackage[f.PackageID]) + int(f.FlagIndex) + 1
		if idx > numFlags {
			numFlags = idx
		}
	}

	attrs := make([]uint8, numFlags)
	for _, f := range flags.Nodes {
		globalIndex := startIndexByPackage[f.PackageID] + uint32(f.FlagIndex)
		if f.Type.IsReadWrite() {
			attrs[globalIndex] |= storage.AttrIsReadWrite
		}
	}

	info := &storage.FlagInfoFile{
		Version:    storage.FileVersion,
		Container:  packages.Container,
		Attributes: attrs,
	}
	out := info.Serialize()

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return wrapCreationFail("write flag info", err)
	}
	if err := os.Chmod(outPath, 0o444); err != nil {
		return wrapCreationFail("mark flag info read-only", err)
	}
	klog.V(1).InfoS("created flag info file", "container", packages.Container, "numFlags", numFlags, "path", outPath)
	return nil
}

func wrapCreationFail(step string, cause error) error {
	klog.ErrorS(cause, "flag info creation failed", "step", step)
	return storage.Wrap(storage.KindFileCreationFail, step, cause)
}
