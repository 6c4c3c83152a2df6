// Package lookup resolves bare command names to executable paths using a
// colon-separated search list.
package lookup

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound is returned when no PATH entry holds an executable of the
// requested name.
var ErrNotFound = errors.New("command not found")

// Resolver searches a PATH list for executables. Relative PATH entries are
// interpreted against Dir.
type Resolver struct {
	Fs   afero.Fs
	Path string // colon-separated search list
	Dir  string // working directory for relative entries
}

// New returns a Resolver over the real filesystem.
func New(path, dir string) *Resolver {
	return &Resolver{Fs: afero.NewOsFs(), Path: path, Dir: dir}
}

// Resolve returns the executable path for name. Names containing a slash are
// returned unchanged; whether they exist is left to execution. Otherwise the
// first PATH entry holding an executable regular file wins.
func (r *Resolver) Resolve(name string) (string, error) {
	if name == "" {
		return "", ErrNotFound
	}
	if strings.Contains(name, "/") {
		return name, nil
	}
	for _, dir := range strings.Split(r.Path, ":") {
		if dir == "" {
			continue
		}
		candidate := dir + "/" + name
		if r.executable(candidate) {
			return candidate, nil
		}
	}
	return "", ErrNotFound
}

func (r *Resolver) executable(path string) bool {
	if !filepath.IsAbs(path) && r.Dir != "" {
		path = filepath.Join(r.Dir, path)
	}
	fi, err := r.Fs.Stat(path)
	if err != nil {
		return false
	}
	m := fi.Mode()
	return m.IsRegular() && m&fs.ModePerm&0111 != 0
}
