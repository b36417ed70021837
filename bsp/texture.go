// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"halfmapper/palette"
	"halfmapper/texture"

	"github.com/pkg/errors"
)

// External reports whether the pixels live in a texture archive.
func (m *MipTexture) External() bool {
	return m.Missing || palette.External(m.Offsets)
}

// uvSize returns the size used to normalize texture coordinates.
func (m *MipTexture) uvSize() (float32, float32) {
	w, h := float32(m.Width), float32(m.Height)
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return w, h
}

// Decode expands an embedded texture with its own palette. External
// textures return palette.ErrExternal without touching Data.
func (m *MipTexture) Decode(source string) (*texture.Texture, error) {
	if m.Missing {
		return nil, palette.ErrExternal
	}
	mips, err := palette.DecodeMips(m.Data, m.Width, m.Height, m.Offsets, nil)
	if err != nil {
		return nil, errors.Wrap(err, m.Name)
	}
	return texture.NewTexture(m.Name, m.Width, m.Height, texture.TexPrefNone, source, mips), nil
}
