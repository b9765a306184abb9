package aconfigcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aconfig.yaml")
	contents := "version: 1\n" +
		"locator:\n" +
		"  path: /var/run/aconfig/locator.pb\n" +
		"builder:\n" +
		"  package_map: /tmp/package.map\n" +
		"  flag_map: /tmp/flag.map\n" +
		"  flag_info: /tmp/flag.info\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/var/run/aconfig/locator.pb", cfg.Locator.Path)
	require.Equal(t, "/tmp/flag.info", cfg.Builder.FlagInfo)
	require.Equal(t, path, cfg.ConfigFilepath())
	require.True(t, cfg.IsSameHashAsFile(path))
}

func TestLoadConfigJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aconfig.json")
	contents := `{"version":1,"locator":{"path":"/var/run/aconfig/locator.pb"}}`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/var/run/aconfig/locator.pb", cfg.Locator.Path)
}

func TestLoadConfigRejectsMissingLocatorPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aconfig.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aconfig.txt")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigRejectsWrongVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aconfig.yaml")
	contents := "version: 2\nlocator:\n  path: /x\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}
