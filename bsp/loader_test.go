// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"testing"

	"halfmapper/bsp/bsptest"
	"halfmapper/palette"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	axisS = [4]float32{1, 0, 0, 0}
	axisT = [4]float32{0, 1, 0, 0}
)

func simpleLevel() *bsptest.Builder {
	b := bsptest.New()
	tex := b.AddTexture("CRATE", 64, 64, true, [3]byte{10, 20, 30})
	ti := b.AddTexInfo(axisS, axisT, tex)
	b.AddFace(ti, 0, bsptest.Square(0, 0, 64)...)
	b.Lighting = make([]byte, 5*5*3)
	b.AddModel(0, 1)
	b.AddEntity("classname", "worldspawn")
	return b
}

func TestDecode(t *testing.T) {
	f, err := Decode(simpleLevel().Bytes(), DefaultVersion)
	require.NoError(t, err)
	assert.Equal(t, int32(30), f.Version)
	assert.Len(t, f.Vertices, 4)
	assert.Len(t, f.Edges, 5)
	assert.Equal(t, []int32{1, -2, 3, -4}, f.SurfEdges)
	require.Len(t, f.Faces, 1)
	assert.Equal(t, uint16(4), f.Faces[0].EdgeCount)
	assert.Len(t, f.TexInfos, 1)
	assert.Len(t, f.Models, 1)
	assert.Len(t, f.Lighting, 75)
	require.Len(t, f.Textures, 1)
	assert.Equal(t, "crate", f.Textures[0].Name)
	assert.Equal(t, 64, f.Textures[0].Width)
	assert.Contains(t, f.Entities, "worldspawn")
	assert.NotContains(t, f.Entities, "\x00")
}

func TestDecodeWrongVersion(t *testing.T) {
	b := simpleLevel()
	b.Version = 31
	_, err := Decode(b.Bytes(), DefaultVersion)
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestDecodeCorruptLump(t *testing.T) {
	data := simpleLevel().Bytes()
	bsptest.SetLumpSize(data, bsptest.Faces, 21)
	_, err := Decode(data, DefaultVersion)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptLump))
	var le *LumpError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, LumpFaces, le.Kind)
	assert.Contains(t, err.Error(), "faces")
}

func TestDecodeLumpOutsideFile(t *testing.T) {
	data := simpleLevel().Bytes()
	bsptest.SetLumpSize(data, bsptest.Vertices, 1<<20)
	_, err := Decode(data, DefaultVersion)
	var le *LumpError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, LumpVertices, le.Kind)
}

func TestDecodeShortHeader(t *testing.T) {
	_, err := Decode([]byte{30, 0, 0, 0}, DefaultVersion)
	assert.True(t, errors.Is(err, ErrCorruptLump))
}

func TestTextures(t *testing.T) {
	b := bsptest.New()
	b.AddTexture("wall", 16, 16, true, [3]byte{1, 2, 3})
	b.AddTexture("outside", 32, 16, false, [3]byte{})
	b.AddMissingTexture()
	f, err := Decode(b.Bytes(), DefaultVersion)
	require.NoError(t, err)
	require.Len(t, f.Textures, 3)

	wall, err := f.Textures[0].Decode("c1a0")
	require.NoError(t, err)
	assert.Equal(t, "wall", wall.Name())
	assert.Equal(t, "c1a0", wall.Source)
	assert.Len(t, wall.Mips, palette.MipLevels)
	assert.Equal(t, []byte{1, 2, 3, 255}, wall.Mips[0].Pix[:4])

	assert.True(t, f.Textures[1].External())
	_, err = f.Textures[1].Decode("c1a0")
	assert.True(t, errors.Is(err, palette.ErrExternal))

	assert.True(t, f.Textures[2].Missing)
	assert.True(t, f.Textures[2].External())
	assert.Equal(t, "", f.Textures[2].Name)
}

func TestLumpKindString(t *testing.T) {
	assert.Equal(t, "entities", LumpEntities.String())
	assert.Equal(t, "models", LumpModels.String())
	assert.Equal(t, "lump(99)", LumpKind(99).String())
}
