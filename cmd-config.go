package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/aconfig/aconfig-storage/internal/aconfigcfg"
)

// resolveLocatorPath returns the locator record path to use for a command:
// the explicit --locator flag if given, otherwise locator.path from the
// --config file. At least one of the two must be set; when both are,
// --locator is used and --config is not read.
func resolveLocatorPath(c *cli.Context) (string, error) {
	if locator := c.String("locator"); locator != "" {
		return locator, nil
	}
	configPath := c.String("config")
	if configPath == "" {
		return "", fmt.Errorf("either --locator or --config must be set")
	}
	cfg, err := aconfigcfg.LoadConfig(configPath)
	if err != nil {
		return "", err
	}
	return cfg.Locator.Path, nil
}
