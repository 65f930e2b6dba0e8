// Package resource resolves a logical file name used by the copy and
// template modules into an absolute path on disk, searching role
// resource directories before the play's own base directory.
//
// Grounded on original_source/src/task/copy.rs::resolve_local_file.
package resource

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cinderops/cinder/pkg/types"
)

// Resolve searches for name (a "files" or "templates" entry) and
// returns the first candidate that exists on disk.
//
// Search order:
//  1. name verbatim, if it is already absolute.
//  2. for each dir in resourceDirs (caller-supplied order — most
//     recently declared role first): <dir>/<subdir>/<name>, then
//     <dir>/<name>.
//  3. <basedir>/<name>, then <basedir>/<subdir>/<name>.
func Resolve(name, subdir, basedir string, resourceDirs []string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}

	for _, dir := range resourceDirs {
		if p := filepath.Join(dir, subdir, name); exists(p) {
			return p, nil
		}
		if p := filepath.Join(dir, name); exists(p) {
			return p, nil
		}
	}

	if p := filepath.Join(basedir, name); exists(p) {
		return p, nil
	}
	if p := filepath.Join(basedir, subdir, name); exists(p) {
		return p, nil
	}

	return "", types.NewResolutionError(name, fmt.Sprintf("could not find file specified as '%s'", name))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
