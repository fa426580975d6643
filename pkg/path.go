package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// Prefix returns the base prefix string used to construct the path to the
// configuration directory.
//
// By default, Prefix is the base name of the executable file unless it matches
// one of the following substitution rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with [Name]
//   - "^\.+" (dot-prefixed names): remove the dot prefix
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		exe, err := os.Executable()
		if err == nil {
			id = exe
		}

		ext := filepath.Ext(filepath.Base(id))
		id = strings.TrimSuffix(filepath.Base(id), ext)

		for rex, rep := range map[*regexp.Regexp]string{
			regexp.MustCompile(`^__debug_bin\d+$`): Name, // default output from dlv
			regexp.MustCompile(`^\.+`):             "",   // remove leading dot(s)
		} {
			id = rex.ReplaceAllString(id, rep)
		}

		if id == "" || strings.HasSuffix(id, ".test") {
			id = Name
		}

		return id
	},
)

// userDir returns [Prefix] joined to the directory reported by primary,
// falling back to $HOME/fallback and finally the working directory.
func userDir(primary func() (string, error), fallback string) string {
	dir, err := primary()
	if err != nil {
		dir, err = os.UserHomeDir()
		if err == nil {
			dir = filepath.Join(dir, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}

// ConfigDir returns the configuration directory path.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string { return userDir(os.UserConfigDir, ".config") },
)

// CacheDir returns the cache directory path used for transient files.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string { return userDir(os.UserCacheDir, ".cache") },
)

// SearchPath returns the directories searched for relative mapping file
// names: the configuration directory's "mappings" subdirectory followed by
// the entries of [PathEnv]. Duplicates and entries that are not existing
// directories are dropped.
func SearchPath() []string {
	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(PathEnv)),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(filepath.Join(ConfigDir(), "mappings")),
		mung.WithFilter(isDir),
	).String()

	if list == "" {
		return nil
	}

	return filepath.SplitList(list)
}

// Locate resolves name to an existing file. Absolute names and names that
// exist relative to the working directory are returned unchanged. Otherwise
// each directory of [SearchPath] is tried in order. The empty string is
// returned if nothing matches.
func Locate(name string) string {
	if name == "" {
		return ""
	}

	if isFile(name) {
		return name
	}

	if filepath.IsAbs(name) {
		return ""
	}

	for _, dir := range SearchPath() {
		if p := filepath.Join(dir, name); isFile(p) {
			return p
		}
	}

	return ""
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}
