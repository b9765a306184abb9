package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/aconfig/aconfig-storage/builder"
	"github.com/aconfig/aconfig-storage/internal/aconfigcfg"
)

func newCmd_BuildFlagInfo() *cli.Command {
	return &cli.Command{
		Name:        "build-flag-info",
		Usage:       "Build a flag info file from a package map and a flag map.",
		Description: "Joins a package map and a flag map into a flag info file, computing each flag's global boolean-array index and its IsReadWrite attribute bit.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to an aconfig config file (builder.* paths used as defaults)"},
			&cli.StringFlag{Name: "package-map", Usage: "path to the input package map file; overrides the config file's builder.package_map"},
			&cli.StringFlag{Name: "flag-map", Usage: "path to the input flag map file; overrides the config file's builder.flag_map"},
			&cli.StringFlag{Name: "out", Usage: "path to write the flag info file; overrides the config file's builder.flag_info"},
		},
		Action: func(c *cli.Context) error {
			packageMap, flagMap, out := c.String("package-map"), c.String("flag-map"), c.String("out")
			if configPath := c.String("config"); configPath != "" && (packageMap == "" || flagMap == "" || out == "") {
				cfg, err := aconfigcfg.LoadConfig(configPath)
				if err != nil {
					return err
				}
				if packageMap == "" {
					packageMap = cfg.Builder.PackageMap
				}
				if flagMap == "" {
					flagMap = cfg.Builder.FlagMap
				}
				if out == "" {
					out = cfg.Builder.FlagInfo
				}
			}
			if packageMap == "" || flagMap == "" || out == "" {
				return fmt.Errorf("--package-map, --flag-map, and --out must each be set directly or via --config")
			}

			if err := builder.CreateFlagInfo(packageMap, flagMap, out); err != nil {
				klog.ErrorS(err, "building flag info failed")
				return err
			}
			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}
}
