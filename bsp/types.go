// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import "fmt"

// LumpKind indexes the lump directory. The order is the on disk order.
type LumpKind int

const (
	LumpEntities LumpKind = iota
	LumpPlanes
	LumpTextures
	LumpVertices
	LumpVisibility
	LumpNodes
	LumpTexInfo
	LumpFaces
	LumpLighting
	LumpClipNodes
	LumpLeaves
	LumpMarkSurfaces
	LumpEdges
	LumpSurfEdges
	LumpModels
	LumpCount
)

var lumpNames = [LumpCount]string{
	"entities", "planes", "textures", "vertices", "visibility", "nodes",
	"texinfo", "faces", "lighting", "clipnodes", "leaves", "marksurfaces",
	"edges", "surfedges", "models",
}

func (k LumpKind) String() string {
	if k < 0 || k >= LumpCount {
		return fmt.Sprintf("lump(%d)", int(k))
	}
	return lumpNames[k]
}

// recordSize is the fixed record size per lump; 0 for lumps without fixed
// records (text, texture directory) and 1 for raw bytes.
var recordSize = [LumpCount]int{
	LumpEntities:     0,
	LumpPlanes:       20,
	LumpTextures:     0,
	LumpVertices:     12,
	LumpVisibility:   1,
	LumpNodes:        24,
	LumpTexInfo:      40,
	LumpFaces:        20,
	LumpLighting:     1,
	LumpClipNodes:    8,
	LumpLeaves:       28,
	LumpMarkSurfaces: 2,
	LumpEdges:        4,
	LumpSurfEdges:    4,
	LumpModels:       64,
}

// called lump_t in c
type directory struct {
	Offset int32
	Size   int32
}

type header struct {
	Version int32
	Lumps   [LumpCount]directory
}

type Vertex struct {
	X float32
	Y float32
	Z float32
}

// the first edge of the list is never used
type Edge struct {
	V0 uint16
	V1 uint16
}

type Face struct {
	PlaneID     uint16
	Side        uint16
	FirstEdge   int32 // index into surfedges
	EdgeCount   uint16
	TexInfoID   uint16
	Styles      [4]uint8
	LightOffset int32 // byte offset into the lighting lump, or -1
}

type TexInfo struct {
	S         [3]float32 // S vector, horizontal in texture space
	DistS     float32    // horizontal offset in texture space
	T         [3]float32 // T vector, vertical in texture space
	DistT     float32    // vertical offset in texture space
	TextureID uint32
	Flags     uint32
}

// Model, either the level or a brush entity inside of it
type Model struct {
	BoundingBox  [6]float32
	Origin       [3]float32
	HeadNode     [4]int32
	VisLeafCount int32 // not including the solid leaf 0
	FirstFace    int32
	FaceCount    int32
}

type mipHeader struct {
	Name   [16]byte
	Width  uint32
	Height uint32
	// Offset[0] to Pix[width * height]
	// 1: to Pix[width/2 * height/2]
	// 2: to Pix[width/4 * height/4]
	// 3: to Pix[width/8 * height/8]
	Offset [4]uint32
}

const mipHeaderSize = 40

// MipTexture is one entry of the texture directory. Data starts at the
// entry header and runs to the end of the lump, so the mip offsets index
// into it.
type MipTexture struct {
	Name    string
	Width   int
	Height  int
	Offsets [4]uint32
	Data    []byte
	// Missing is set for directory slots with offset -1.
	Missing bool
}

// File is a decoded level.
type File struct {
	Version   int32
	Entities  string
	Vertices  []Vertex
	Edges     []Edge
	SurfEdges []int32
	Faces     []Face
	TexInfos  []TexInfo
	Models    []Model
	Lighting  []byte
	Textures  []MipTexture
}
