// SPDX-License-Identifier: GPL-2.0-or-later

// Package palette expands 8 bit indexed, mip mapped textures to RGBA.
// Textures embedded in a level and textures from WAD3 archives share one
// layout: four mip levels, a 16 bit color count and a 256 entry RGB palette
// directly behind mip level 3.
package palette

import (
	"encoding/binary"
	"image"
	"io"

	"github.com/pkg/errors"
)

const (
	Colors    = 256
	MipLevels = 4
	// MaxSize bounds a texture edge; anything larger is a corrupt header.
	MaxSize = 4096
)

var (
	// ErrExternal is returned for textures without embedded data. Their
	// pixels live in a texture archive.
	ErrExternal = errors.New("texture is stored externally")
	ErrCorrupt  = errors.New("corrupt texture data")
)

// ColorKey is the color that turns fully transparent.
var ColorKey = [3]byte{0, 0, 255}

// Palette holds 256 RGB triplets.
type Palette [Colors * 3]byte

// Load reads a 768 byte RGB palette like gfx/palette.lmp.
func Load(r io.Reader) (*Palette, error) {
	p := &Palette{}
	if _, err := io.ReadFull(r, p[:]); err != nil {
		return nil, errors.Wrap(err, "palette has wrong size")
	}
	return p, nil
}

// Expand writes one RGBA pixel per index into dst. Pixels whose palette color
// is the color key become transparent black.
func (p *Palette) Expand(dst []byte, indices []byte) {
	for i, c := range indices {
		pixel := p[int(c)*3 : int(c)*3+3]
		d := dst[i*4 : i*4+4]
		if pixel[0] == ColorKey[0] && pixel[1] == ColorKey[1] && pixel[2] == ColorKey[2] {
			d[0], d[1], d[2], d[3] = 0, 0, 0, 0
			continue
		}
		d[0] = pixel[0]
		d[1] = pixel[1]
		d[2] = pixel[2]
		d[3] = 255
	}
}

// External reports whether all mip offsets are zero.
func External(offsets [MipLevels]uint32) bool {
	return offsets == [MipLevels]uint32{}
}

func span(blob []byte, offset, size int) ([]byte, error) {
	if offset < 0 || size < 0 || offset+size > len(blob) {
		return nil, errors.Wrapf(ErrCorrupt, "%d bytes at %d outside of %d", size, offset, len(blob))
	}
	return blob[offset : offset+size], nil
}

// DecodeMips decodes all mip levels of a texture. blob starts at the texture
// header; offsets are relative to it. With a nil palette the embedded one is
// used.
func DecodeMips(blob []byte, width, height int, offsets [MipLevels]uint32, pal *Palette) ([]*image.NRGBA, error) {
	if External(offsets) {
		return nil, ErrExternal
	}
	if width <= 0 || height <= 0 || width > MaxSize || height > MaxSize {
		return nil, errors.Wrapf(ErrCorrupt, "bad size %dx%d", width, height)
	}
	var indices [MipLevels][]byte
	var end int
	for i := 0; i < MipLevels; i++ {
		size := (width >> i) * (height >> i)
		d, err := span(blob, int(offsets[i]), size)
		if err != nil {
			return nil, errors.Wrapf(err, "mip %d", i)
		}
		indices[i] = d
		end = int(offsets[i]) + size
	}
	if pal == nil {
		raw, err := span(blob, end, 2+len(Palette{}))
		if err != nil {
			return nil, errors.Wrap(err, "palette")
		}
		if n := binary.LittleEndian.Uint16(raw); n > Colors {
			return nil, errors.Wrapf(ErrCorrupt, "palette with %d colors", n)
		}
		pal = &Palette{}
		copy(pal[:], raw[2:])
	}
	mips := make([]*image.NRGBA, MipLevels)
	for i := range mips {
		img := image.NewNRGBA(image.Rect(0, 0, width>>i, height>>i))
		pal.Expand(img.Pix, indices[i])
		mips[i] = img
	}
	return mips, nil
}
