// SPDX-License-Identifier: GPL-2.0-or-later

// Package filesystem resolves relative names against an ordered list of
// search roots. A root is a directory or a .pak archive; the first root
// that can open a name wins.
package filesystem

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"halfmapper/conlog"
	"halfmapper/pack"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("not found in any search root")

// FileSystem is one search root.
type FileSystem interface {
	Open(name string) (io.ReadCloser, error)
	String() string
}

type dirFileSystem string

func (d dirFileSystem) Open(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(string(d), filepath.FromSlash(name)))
}

func (d dirFileSystem) String() string {
	return string(d)
}

type packFileSystem struct {
	p *pack.Pack
}

func (p packFileSystem) Open(name string) (io.ReadCloser, error) {
	// inside a pack file there is no 'root'. all files are relative to '.'
	name = strings.TrimPrefix(filepath.ToSlash(name), "/")
	f, err := p.p.Open(name)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(f), nil
}

func (p packFileSystem) String() string {
	return p.p.String()
}

// Roots is an ordered list of search roots.
type Roots struct {
	fs    []FileSystem
	packs []*pack.Pack
}

// NewRoots binds every path in order. Paths ending in .pak are opened as
// archives; a broken archive is skipped with a warning so that the remaining
// roots stay usable.
func NewRoots(paths ...string) *Roots {
	r := &Roots{}
	for _, p := range paths {
		if strings.EqualFold(Ext(p), ".pak") {
			pk, err := pack.NewPackReader(p)
			if err != nil {
				conlog.Warnf("Skipping search root %s: %v", p, err)
				continue
			}
			r.packs = append(r.packs, pk)
			r.fs = append(r.fs, packFileSystem{pk})
			continue
		}
		r.fs = append(r.fs, dirFileSystem(p))
	}
	return r
}

// Add appends an already opened root.
func (r *Roots) Add(fs FileSystem) {
	r.fs = append(r.fs, fs)
}

func (r *Roots) String() string {
	s := make([]string, 0, len(r.fs))
	for _, f := range r.fs {
		s = append(s, f.String())
	}
	return strings.Join(s, ";")
}

// Open tries each root in order until one yields a readable stream.
func (r *Roots) Open(name string) (io.ReadCloser, error) {
	for _, f := range r.fs {
		rc, err := f.Open(name)
		if err == nil {
			return rc, nil
		}
	}
	return nil, errors.Wrap(ErrNotFound, name)
}

func (r *Roots) ReadFile(name string) ([]byte, error) {
	file, err := r.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func (r *Roots) Close() error {
	var first error
	for _, p := range r.packs {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.packs = nil
	return first
}

func isSep(c uint8) bool {
	return c == '/' || c == '\\'
}

func Ext(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func StripExt(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
