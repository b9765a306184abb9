package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/aconfig/aconfig-storage/locator"
	"github.com/aconfig/aconfig-storage/storage"
)

func newCmd_Dump() *cli.Command {
	return &cli.Command{
		Name:        "dump",
		Usage:       "Dump every package and flag in a container.",
		Description: "Resolves a container through the locator record, reads its four files directly off disk, and prints every package in package-map order, then every flag with its value and attribute in flag-map order.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to an aconfig config file (locator.path used when --locator is omitted)"},
			&cli.StringFlag{Name: "locator", Usage: "path to the locator record; overrides the config file's locator.path"},
			&cli.StringFlag{Name: "container", Required: true, Usage: "container name, e.g. system"},
		},
		Action: func(c *cli.Context) error {
			locatorPath, err := resolveLocatorPath(c)
			if err != nil {
				return err
			}
			entry, err := locator.Lookup(locatorPath, c.String("container"))
			if err != nil {
				return err
			}

			packages, err := readPackageMap(entry.PackageMap)
			if err != nil {
				return err
			}
			flags, err := readFlagMap(entry.FlagMap)
			if err != nil {
				return err
			}
			values, err := readFlagValue(entry.FlagVal)
			if err != nil {
				return err
			}
			var info *storage.FlagInfoFile
			if entry.FlagInfo != "" {
				info, err = readFlagInfo(entry.FlagInfo)
				if err != nil {
					return err
				}
			}

			startIndexByPackage := make(map[uint32]uint32, len(packages.Nodes))
			nameByPackage := make(map[uint32]string, len(packages.Nodes))
			for _, p := range packages.Nodes {
				startIndexByPackage[p.PackageID] = p.BooleanStartIndex
				nameByPackage[p.PackageID] = p.Name
			}

			fmt.Printf("container=%s packages=%d flags=%d\n", packages.Container, len(packages.Nodes), len(flags.Nodes))
			for _, p := range packages.Nodes {
				fmt.Printf("package %s id=%d boolean_start_index=%d\n", p.Name, p.PackageID, p.BooleanStartIndex)
			}
			for _, f := range flags.Nodes {
				globalIndex := startIndexByPackage[f.PackageID] + uint32(f.FlagIndex)
				var value bool
				if int(globalIndex) < len(values.Values) {
					value = values.Values[globalIndex]
				}
				line := fmt.Sprintf("  %s.%s type=%d flag_index=%d value=%t",
					nameByPackage[f.PackageID], f.Name, f.Type, f.FlagIndex, value)
				if info != nil && int(globalIndex) < len(info.Attributes) {
					line += fmt.Sprintf(" attribute=0x%x", info.Attributes[globalIndex])
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func readPackageMap(path string) (*storage.PackageMapFile, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		klog.ErrorS(err, "reading package map", "path", path)
		return nil, storage.Wrap(storage.KindFileReadFail, "read package map", err)
	}
	return storage.DeserializePackageMap(buf)
}

func readFlagMap(path string) (*storage.FlagMapFile, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		klog.ErrorS(err, "reading flag map", "path", path)
		return nil, storage.Wrap(storage.KindFileReadFail, "read flag map", err)
	}
	return storage.DeserializeFlagMap(buf)
}

func readFlagValue(path string) (*storage.FlagValueFile, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		klog.ErrorS(err, "reading flag value", "path", path)
		return nil, storage.Wrap(storage.KindFileReadFail, "read flag value", err)
	}
	return storage.DeserializeFlagValue(buf)
}

func readFlagInfo(path string) (*storage.FlagInfoFile, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		klog.ErrorS(err, "reading flag info", "path", path)
		return nil, storage.Wrap(storage.KindFileReadFail, "read flag info", err)
	}
	return storage.DeserializeFlagInfo(buf)
}
