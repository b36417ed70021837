// SPDX-License-Identifier: GPL-2.0-or-later

// Package bsptest writes small synthetic level files for tests.
package bsptest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

const lumpCount = 15

// Lump indices, in directory order.
const (
	Entities = iota
	Planes
	Textures
	Vertices
	Visibility
	Nodes
	TexInfo
	Faces
	Lighting
	ClipNodes
	Leaves
	MarkSurfaces
	Edges
	SurfEdges
	Models
)

type face struct {
	PlaneID     uint16
	Side        uint16
	FirstEdge   int32
	EdgeCount   uint16
	TexInfoID   uint16
	Styles      [4]uint8
	LightOffset int32
}

type texInfo struct {
	S         [3]float32
	DistS     float32
	T         [3]float32
	DistT     float32
	TextureID uint32
	Flags     uint32
}

type model struct {
	BoundingBox  [6]float32
	Origin       [3]float32
	HeadNode     [4]int32
	VisLeafCount int32
	FirstFace    int32
	FaceCount    int32
}

type tex struct {
	name     string
	w, h     int
	embedded bool
	missing  bool
	color    [3]byte
}

// Builder collects records and serializes them with Bytes.
type Builder struct {
	Version  int32
	Lighting []byte
	entities []string
	vertices [][3]float32
	edges    [][2]uint16
	surf     []int32
	faces    []face
	infos    []texInfo
	textures []tex
	models   []model
}

func New() *Builder {
	return &Builder{
		Version: 30,
		// edge 0 is never referenced
		edges: [][2]uint16{{0, 0}},
	}
}

// AddEntity appends one entity block built from key/value pairs.
func (b *Builder) AddEntity(kv ...string) {
	var sb strings.Builder
	sb.WriteString("{\n")
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&sb, "%q %q\n", kv[i], kv[i+1])
	}
	sb.WriteString("}\n")
	b.entities = append(b.entities, sb.String())
}

// AddTexture adds a texture directory entry. Embedded textures are filled
// with a single color, others only carry a header.
func (b *Builder) AddTexture(name string, w, h int, embedded bool, color [3]byte) uint32 {
	b.textures = append(b.textures, tex{name: name, w: w, h: h, embedded: embedded, color: color})
	return uint32(len(b.textures) - 1)
}

// AddMissingTexture adds a directory slot with offset -1.
func (b *Builder) AddMissingTexture() uint32 {
	b.textures = append(b.textures, tex{missing: true})
	return uint32(len(b.textures) - 1)
}

// AddTexInfo adds a projection; s and t hold the axis followed by the shift.
func (b *Builder) AddTexInfo(s, t [4]float32, texture uint32) uint16 {
	b.infos = append(b.infos, texInfo{
		S:         [3]float32{s[0], s[1], s[2]},
		DistS:     s[3],
		T:         [3]float32{t[0], t[1], t[2]},
		DistT:     t[3],
		TextureID: texture,
	})
	return uint16(len(b.infos) - 1)
}

// AddFace adds a face with its own vertices and edges. Every second edge is
// stored reversed and referenced by a negative surfedge.
func (b *Builder) AddFace(info uint16, lightOffset int32, points ...[3]float32) int {
	first := len(b.surf)
	base := len(b.vertices)
	b.vertices = append(b.vertices, points...)
	for i := range points {
		v0 := uint16(base + i)
		v1 := uint16(base + (i+1)%len(points))
		if i%2 == 0 {
			b.edges = append(b.edges, [2]uint16{v0, v1})
			b.surf = append(b.surf, int32(len(b.edges)-1))
		} else {
			b.edges = append(b.edges, [2]uint16{v1, v0})
			b.surf = append(b.surf, -int32(len(b.edges)-1))
		}
	}
	b.faces = append(b.faces, face{
		FirstEdge:   int32(first),
		EdgeCount:   uint16(len(points)),
		TexInfoID:   info,
		Styles:      [4]uint8{0, 255, 255, 255},
		LightOffset: lightOffset,
	})
	return len(b.faces) - 1
}

// AddModel adds a brush model spanning count faces from first.
func (b *Builder) AddModel(first, count int) int {
	b.models = append(b.models, model{FirstFace: int32(first), FaceCount: int32(count)})
	return len(b.models) - 1
}

func (b *Builder) textureLump() []byte {
	if len(b.textures) == 0 {
		return nil
	}
	var body bytes.Buffer
	head := 4 + 4*len(b.textures)
	offsets := make([]int32, len(b.textures))
	for i, t := range b.textures {
		if t.missing {
			offsets[i] = -1
			continue
		}
		offsets[i] = int32(head + body.Len())
		var name [16]byte
		copy(name[:], t.name)
		binary.Write(&body, binary.LittleEndian, name)
		binary.Write(&body, binary.LittleEndian, [2]uint32{uint32(t.w), uint32(t.h)})
		var mo [4]uint32
		if t.embedded {
			o := uint32(40)
			for l := 0; l < 4; l++ {
				mo[l] = o
				o += uint32((t.w >> l) * (t.h >> l))
			}
		}
		binary.Write(&body, binary.LittleEndian, mo)
		if !t.embedded {
			continue
		}
		for l := 0; l < 4; l++ {
			body.Write(bytes.Repeat([]byte{1}, (t.w>>l)*(t.h>>l)))
		}
		binary.Write(&body, binary.LittleEndian, uint16(256))
		var pal [768]byte
		copy(pal[3:], t.color[:])
		body.Write(pal[:])
	}
	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, uint32(len(b.textures)))
	binary.Write(&out, binary.LittleEndian, offsets)
	out.Write(body.Bytes())
	return out.Bytes()
}

func encode(v any) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, v)
	return buf.Bytes()
}

// Bytes serializes the level. Lumps without records are empty.
func (b *Builder) Bytes() []byte {
	var lumps [lumpCount][]byte
	if len(b.entities) > 0 {
		lumps[Entities] = append([]byte(strings.Join(b.entities, "")), 0)
	}
	lumps[Textures] = b.textureLump()
	lumps[Vertices] = encode(b.vertices)
	lumps[TexInfo] = encode(b.infos)
	lumps[Faces] = encode(b.faces)
	lumps[Lighting] = b.Lighting
	lumps[Edges] = encode(b.edges)
	lumps[SurfEdges] = encode(b.surf)
	lumps[Models] = encode(b.models)

	headerSize := 4 + lumpCount*8
	var dir [lumpCount][2]int32
	var body bytes.Buffer
	for i, l := range lumps {
		dir[i] = [2]int32{int32(headerSize + body.Len()), int32(len(l))}
		body.Write(l)
		for body.Len()%4 != 0 {
			body.WriteByte(0)
		}
	}
	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, b.Version)
	binary.Write(&out, binary.LittleEndian, dir)
	out.Write(body.Bytes())
	return out.Bytes()
}

// SetLumpSize patches the directory entry of a serialized level.
func SetLumpSize(data []byte, lump int, size int32) {
	binary.LittleEndian.PutUint32(data[4+lump*8+4:], uint32(size))
}

// Square returns the corners of an axis aligned square in the z=0 plane.
func Square(x, y, size float32) [][3]float32 {
	return [][3]float32{
		{x, y, 0},
		{x + size, y, 0},
		{x + size, y + size, 0},
		{x, y + size, 0},
	}
}
