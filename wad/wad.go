// SPDX-License-Identifier: GPL-2.0-or-later

// Package wad reads texture archives (WAD3, and WAD2 with a separate
// palette) into the shared texture cache.
package wad

import (
	"bytes"
	"encoding/binary"
	"strings"

	"halfmapper/conlog"
	"halfmapper/palette"
	"halfmapper/texture"

	"github.com/pkg/errors"
)

const (
	typMipTex2 = 0x44 // WAD2
	typMipTex3 = 0x43 // WAD3

	mipHeaderSize = 40
)

var (
	ErrNotWad    = errors.New("not a texture archive")
	ErrNoPalette = errors.New("WAD2 archive needs an external palette")
)

type header struct {
	M          [4]byte
	EntryCount uint32
	DirOffset  uint32
}

type lump struct {
	Offset      int32
	Dsize       int32
	Size        int32
	Typ         byte
	Compression byte
	Dummy       int16
	Name        [16]byte
}

type mipHeader struct {
	Name   [16]byte
	Width  uint32
	Height uint32
	Offset [palette.MipLevels]uint32
}

// CString returns the bytes up to the first NUL, lower cased. Texture names
// are matched case insensitively by the game.
func CString(b []byte) string {
	if n := bytes.IndexByte(b, 0); n >= 0 {
		b = b[:n]
	}
	return strings.ToLower(string(b))
}

type Archive struct {
	name  string
	data  []byte
	wad3  bool
	lumps []lump
}

func Decode(name string, data []byte) (*Archive, error) {
	buf := bytes.NewReader(data)
	h := header{}
	if err := binary.Read(buf, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(ErrNotWad, name)
	}
	a := &Archive{name: name, data: data}
	switch h.M {
	case [4]byte{'W', 'A', 'D', '3'}:
		a.wad3 = true
	case [4]byte{'W', 'A', 'D', '2'}:
	default:
		return nil, errors.Wrapf(ErrNotWad, "%s has magic %q", name, h.M[:])
	}
	dirSize := int64(h.EntryCount) * int64(binary.Size(lump{}))
	if int64(h.DirOffset)+dirSize > int64(len(data)) {
		return nil, errors.Wrapf(ErrNotWad, "%s: directory outside of file", name)
	}
	a.lumps = make([]lump, h.EntryCount)
	dir := bytes.NewReader(data[h.DirOffset : int64(h.DirOffset)+dirSize])
	if err := binary.Read(dir, binary.LittleEndian, a.lumps); err != nil {
		return nil, errors.Wrap(err, name)
	}
	return a, nil
}

func (a *Archive) String() string {
	return a.name
}

// Len returns the number of directory entries.
func (a *Archive) Len() int {
	return len(a.lumps)
}

func (a *Archive) mipTex(l lump, pal *palette.Palette) (*texture.Texture, error) {
	if l.Offset < 0 || l.Size < mipHeaderSize || int64(l.Offset)+int64(l.Size) > int64(len(a.data)) {
		return nil, errors.Wrapf(palette.ErrCorrupt, "entry %s outside of archive", CString(l.Name[:]))
	}
	blob := a.data[l.Offset : l.Offset+l.Size]
	var mh mipHeader
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, &mh); err != nil {
		return nil, err
	}
	name := CString(mh.Name[:])
	if name == "" {
		name = CString(l.Name[:])
	}
	mips, err := palette.DecodeMips(blob, int(mh.Width), int(mh.Height), mh.Offset, pal)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	return texture.NewTexture(name, int(mh.Width), int(mh.Height), texture.TexPrefNone, a.name, mips), nil
}

// Load decodes every texture not yet in the cache and registers it. pal is
// only used for WAD2 archives, WAD3 textures carry their own palette. Broken
// entries are skipped with a warning.
func (a *Archive) Load(cache *texture.Cache, pal *palette.Palette) (int, error) {
	if a.wad3 {
		pal = nil
	} else if pal == nil {
		return 0, errors.Wrap(ErrNoPalette, a.name)
	}
	added := 0
	for _, l := range a.lumps {
		if l.Typ != typMipTex2 && l.Typ != typMipTex3 {
			continue
		}
		name := CString(l.Name[:])
		if l.Compression != 0 {
			conlog.Warnf("%s: %s is compressed, skipping", a.name, name)
			continue
		}
		if cache.Has(name) {
			continue
		}
		t, err := a.mipTex(l, pal)
		if err != nil {
			conlog.Warnf("%s: %v", a.name, err)
			continue
		}
		if _, ok := cache.AddIfAbsent(t); ok {
			added++
		}
	}
	return added, nil
}
