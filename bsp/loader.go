// SPDX-License-Identifier: GPL-2.0-or-later

// Package bsp decodes version 30 level files into geometry, textures,
// light samples and entities.
package bsp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const DefaultVersion = 30

var (
	ErrUnsupportedVersion = errors.New("unsupported bsp version")
	ErrCorruptLump        = errors.New("corrupt lump")
)

// LumpError describes a lump that cannot be decoded.
type LumpError struct {
	Kind   LumpKind
	Offset int32
	Size   int32
	Reason string
}

func (e *LumpError) Error() string {
	return fmt.Sprintf("corrupt %s lump (offset %d, size %d): %s", e.Kind, e.Offset, e.Size, e.Reason)
}

func (e *LumpError) Unwrap() error {
	return ErrCorruptLump
}

func lumpError(h *header, k LumpKind, format string, args ...any) *LumpError {
	return &LumpError{
		Kind:   k,
		Offset: h.Lumps[k].Offset,
		Size:   h.Lumps[k].Size,
		Reason: fmt.Sprintf(format, args...),
	}
}

func lumpBytes(data []byte, h *header, k LumpKind) ([]byte, error) {
	d := h.Lumps[k]
	if d.Offset < 0 || d.Size < 0 || int64(d.Offset)+int64(d.Size) > int64(len(data)) {
		return nil, lumpError(h, k, "outside of file (%d bytes)", len(data))
	}
	raw := data[d.Offset : d.Offset+d.Size]
	if rs := recordSize[k]; rs > 1 && len(raw)%rs != 0 {
		return nil, lumpError(h, k, "size is not a multiple of %d", rs)
	}
	return raw, nil
}

func readLump[T any](data []byte, h *header, k LumpKind) ([]T, error) {
	raw, err := lumpBytes(data, h, k)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(raw)/recordSize[k])
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, out); err != nil {
		return nil, lumpError(h, k, "%v", err)
	}
	return out, nil
}

// Decode parses a whole level. Any lump that does not fit the file or its
// record size fails the level with a *LumpError.
func Decode(data []byte, version int32) (*File, error) {
	h := header{}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(ErrCorruptLump, "short header")
	}
	if h.Version != version {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "has version %d should be %d", h.Version, version)
	}
	// Lumps the geometry does not use are still validated.
	for k := LumpKind(0); k < LumpCount; k++ {
		if _, err := lumpBytes(data, &h, k); err != nil {
			return nil, err
		}
	}
	f := &File{Version: h.Version}
	var err error
	if f.Vertices, err = readLump[Vertex](data, &h, LumpVertices); err != nil {
		return nil, err
	}
	if f.Edges, err = readLump[Edge](data, &h, LumpEdges); err != nil {
		return nil, err
	}
	if f.SurfEdges, err = readLump[int32](data, &h, LumpSurfEdges); err != nil {
		return nil, err
	}
	if f.Faces, err = readLump[Face](data, &h, LumpFaces); err != nil {
		return nil, err
	}
	if f.TexInfos, err = readLump[TexInfo](data, &h, LumpTexInfo); err != nil {
		return nil, err
	}
	if f.Models, err = readLump[Model](data, &h, LumpModels); err != nil {
		return nil, err
	}
	if f.Lighting, err = lumpBytes(data, &h, LumpLighting); err != nil {
		return nil, err
	}
	ent, err := lumpBytes(data, &h, LumpEntities)
	if err != nil {
		return nil, err
	}
	if n := bytes.IndexByte(ent, 0); n >= 0 {
		ent = ent[:n]
	}
	f.Entities = string(ent)
	if f.Textures, err = readTextures(data, &h); err != nil {
		return nil, err
	}
	return f, nil
}

func cString(b []byte) string {
	if n := bytes.IndexByte(b, 0); n >= 0 {
		b = b[:n]
	}
	return strings.ToLower(string(b))
}

func readTextures(data []byte, h *header) ([]MipTexture, error) {
	raw, err := lumpBytes(data, h, LumpTextures)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	if len(raw) < 4 {
		return nil, lumpError(h, LumpTextures, "missing texture count")
	}
	count := binary.LittleEndian.Uint32(raw)
	if int64(count)*4+4 > int64(len(raw)) {
		return nil, lumpError(h, LumpTextures, "%d textures do not fit", count)
	}
	offsets := make([]int32, count)
	if err := binary.Read(bytes.NewReader(raw[4:]), binary.LittleEndian, offsets); err != nil {
		return nil, lumpError(h, LumpTextures, "%v", err)
	}
	tex := make([]MipTexture, count)
	for i, o := range offsets {
		if o == -1 {
			tex[i].Missing = true
			continue
		}
		if o < 0 || int64(o)+mipHeaderSize > int64(len(raw)) {
			return nil, lumpError(h, LumpTextures, "texture %d at %d outside of lump", i, o)
		}
		mh := mipHeader{}
		if err := binary.Read(bytes.NewReader(raw[o:]), binary.LittleEndian, &mh); err != nil {
			return nil, lumpError(h, LumpTextures, "%v", err)
		}
		tex[i] = MipTexture{
			Name:    cString(mh.Name[:]),
			Width:   int(mh.Width),
			Height:  int(mh.Height),
			Offsets: mh.Offset,
			Data:    raw[o:],
		}
	}
	return tex, nil
}
