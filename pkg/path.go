package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// Prefix returns the base name used for the per-user config and cache
// directories.
//
// It is the base name of the executable with these substitutions:
//   - "__debug_bin<N>" (dlv output): replaced with [Name]
//   - leading dots: removed
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = strings.TrimSuffix(filepath.Base(id), filepath.Ext(id))
		id = regexp.MustCompile(`^__debug_bin\d*$`).ReplaceAllString(id, Name)
		id = strings.TrimLeft(id, ".")

		if id == "" {
			return Name
		}

		return id
	},
)

// userDir resolves a per-user base directory, falling back to a dotted
// directory under $HOME and finally to the working directory.
func userDir(base func() (string, error), dot string) string {
	dir, err := base()
	if err == nil {
		return filepath.Join(dir, Prefix())
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, dot, Prefix())
	}

	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "."+Prefix())
	}

	return "." + Prefix()
}

// ConfigDir returns the configuration directory path.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string { return userDir(os.UserConfigDir, ".config") },
)

// CacheDir returns the cache directory path used for REPL history and
// profiles.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string { return userDir(os.UserCacheDir, ".cache") },
)

// SchemaDirs returns the ordered schema search path: the entries of the
// [PathEnv] environment variable followed by <ConfigDir>/schema.
// Duplicate and empty entries are removed.
func SchemaDirs() []string {
	// Prefix items are prepended one at a time; the last one given leads.
	prefix := filepath.SplitList(os.Getenv(PathEnv))
	slices.Reverse(prefix)

	list := mung.Make(
		mung.WithSubjectItems(filepath.Join(ConfigDir(), "schema")),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(func(s string) bool { return s != "" }),
	).String()

	var dirs []string

	seen := map[string]bool{}

	for dir := range strings.SplitSeq(list, string(os.PathListSeparator)) {
		if dir == "" || seen[dir] {
			continue
		}

		seen[dir] = true
		dirs = append(dirs, dir)
	}

	return dirs
}

// FindSchema returns name unchanged if it names an existing file. Otherwise
// it searches [SchemaDirs] for name, then for name with a ".cmf" extension.
// The second result reports whether a file was found.
func FindSchema(name string) (string, bool) {
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		return name, true
	}

	if filepath.IsAbs(name) {
		return name, false
	}

	for _, dir := range SchemaDirs() {
		for _, cand := range []string{name, name + ".cmf"} {
			path := filepath.Join(dir, cand)
			if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
				return path, true
			}
		}
	}

	return name, false
}
