// SPDX-License-Identifier: GPL-2.0-or-later

// Package wadtest writes small texture archives for tests.
package wadtest

import (
	"bytes"
	"encoding/binary"

	"halfmapper/palette"
)

const (
	headerSize    = 12
	mipHeaderSize = 40
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

// Texture describes a 16x16 single color texture for Build.
type Texture struct {
	Name  string
	Index byte
	Color [3]byte
}

func mipBlob(name string, w, h int, index byte, color [3]byte, withPalette bool) []byte {
	var buf bytes.Buffer
	mh := mipHeader{Width: uint32(w), Height: uint32(h)}
	copy(mh.Name[:], name)
	off := uint32(mipHeaderSize)
	for i := 0; i < palette.MipLevels; i++ {
		mh.Offset[i] = off
		off += uint32((w >> i) * (h >> i))
	}
	binary.Write(&buf, binary.LittleEndian, mh)
	for i := 0; i < palette.MipLevels; i++ {
		buf.Write(bytes.Repeat([]byte{index}, (w>>i)*(h>>i)))
	}
	if withPalette {
		binary.Write(&buf, binary.LittleEndian, uint16(palette.Colors))
		var pal palette.Palette
		copy(pal[int(index)*3:], color[:])
		buf.Write(pal[:])
	}
	return buf.Bytes()
}

// Build writes an archive; magic is "WAD2" or "WAD3". WAD2 textures carry
// no palette.
func Build(magic string, texs []Texture) []byte {
	var body bytes.Buffer
	var lumps []lump
	for _, tt := range texs {
		blob := mipBlob(tt.Name, 16, 16, tt.Index, tt.Color, magic == "WAD3")
		l := lump{
			Offset: int32(headerSize + body.Len()),
			Dsize:  int32(len(blob)),
			Size:   int32(len(blob)),
			Typ:    0x43,
		}
		if magic == "WAD2" {
			l.Typ = 0x44
		}
		copy(l.Name[:], tt.Name)
		body.Write(blob)
		lumps = append(lumps, l)
	}
	var out bytes.Buffer
	h := header{EntryCount: uint32(len(lumps)), DirOffset: uint32(headerSize + body.Len())}
	copy(h.M[:], magic)
	binary.Write(&out, binary.LittleEndian, h)
	out.Write(body.Bytes())
	binary.Write(&out, binary.LittleEndian, lumps)
	return out.Bytes()
}
