package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/cmf/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

// configExts lists the configuration file extensions, in load order. Values
// from later files take precedence.
var configExts = []string{".json", ".yaml", ".yml", ".toml"}

var defaultDirMode os.FileMode = 0o700

// configPath returns the configuration file with the given extension.
func configPath(ext string) string {
	return filepath.Join(pkg.ConfigDir(), baseConfig+ext)
}

// mkdirAllRequired creates the configuration, schema and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{
		pkg.ConfigDir(),
		filepath.Join(pkg.ConfigDir(), "schema"),
		pkg.CacheDir(),
	} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
