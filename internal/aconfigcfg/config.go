// Package aconfigcfg loads the small YAML/JSON config file that points the
// inspection CLI and the builder at a locator record and a set of default
// output paths, the way the teacher's own config.go loads its indexing
// config (§10.3).
package aconfigcfg

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigVersion is the only config schema version this package accepts.
const ConfigVersion = 1

// Config is the on-disk shape of an aconfig config file: where to find the
// locator record, and default output paths for the flag-info builder.
type Config struct {
	originalFilepath string
	hashOfConfigFile string

	Version uint64 `json:"version" yaml:"version"`
	Locator struct {
		Path string `json:"path" yaml:"path"`
	} `json:"locator" yaml:"locator"`
	Builder struct {
		PackageMap string `json:"package_map" yaml:"package_map"`
		FlagMap    string `json:"flag_map" yaml:"flag_map"`
		FlagInfo   string `json:"flag_info" yaml:"flag_info"`
	} `json:"builder" yaml:"builder"`
}

// LoadConfig reads and validates an aconfig config file, sniffing its
// extension to pick a JSON or YAML decoder.
func LoadConfig(configFilepath string) (*Config, error) {
	var config Config
	switch {
	case isJSONFile(configFilepath):
		if err := loadFromJSON(configFilepath, &config); err != nil {
			return nil, err
		}
	case isYAMLFile(configFilepath):
		if err := loadFromYAML(configFilepath, &config); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("config file %q must be JSON or YAML", configFilepath)
	}

	config.originalFilepath = configFilepath
	sum, err := hashFileSha256(configFilepath)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %w", configFilepath, err)
	}
	config.hashOfConfigFile = sum

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config file %q: %w", configFilepath, err)
	}
	return &config, nil
}

// ConfigFilepath returns the path the config was loaded from.
func (c *Config) ConfigFilepath() string { return c.originalFilepath }

// HashOfConfigFile returns the sha256 of the config file's bytes at load
// time, usable to detect whether the file has changed on disk since.
func (c *Config) HashOfConfigFile() string { return c.hashOfConfigFile }

// IsSameHashAsFile reports whether filepath's current contents hash the
// same as the config that was loaded.
func (c *Config) IsSameHashAsFile(filepath string) bool {
	sum, err := hashFileSha256(filepath)
	if err != nil {
		return false
	}
	return c.hashOfConfigFile == sum
}

// Validate checks the required fields are present and the version matches.
func (c *Config) Validate() error {
	if c.Version != ConfigVersion {
		return fmt.Errorf("version must be %d", ConfigVersion)
	}
	if c.Locator.Path == "" {
		return fmt.Errorf("locator.path must be set")
	}
	return nil
}

func hashFileSha256(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func isJSONFile(filepath string) bool {
	return len(filepath) >= 5 && filepath[len(filepath)-5:] == ".json"
}

func isYAMLFile(filepath string) bool {
	return (len(filepath) >= 5 && filepath[len(filepath)-5:] == ".yaml") ||
		(len(filepath) >= 4 && filepath[len(filepath)-4:] == ".yml")
}

func loadFromJSON(configFilepath string, dst any) error {
	file, err := os.Open(configFilepath)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()
	return json.NewDecoder(file).Decode(dst)
}

func loadFromYAML(configFilepath string, dst any) error {
	file, err := os.Open(configFilepath)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()
	return yaml.NewDecoder(file).Decode(dst)
}
