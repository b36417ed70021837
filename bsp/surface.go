// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"halfmapper/lightmap"
	"halfmapper/math/vec"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// nonVisual names tool textures. Their surfaces are kept but tagged so a
// renderer can hide them.
var nonVisual = map[string]bool{
	"aaatrigger": true,
	"clip":       true,
	"origin":     true,
	"sky":        true,
	"null":       true,
	"hint":       true,
	"skip":       true,
}

func IsNonVisual(texture string) bool {
	return nonVisual[texture]
}

// RenderVertex is a hand fixed position with texture and light map
// coordinates, both normalized.
type RenderVertex struct {
	Pos    vec.Vec3
	S, T   float32
	LightS float32
	LightT float32
}

// SurfaceGroup holds the triangles of one texture, three vertices each.
type SurfaceGroup struct {
	Texture   string
	NonVisual bool
	Vertices  []RenderVertex
}

func (g *SurfaceGroup) Triangles() int {
	return len(g.Vertices) / 3
}

type Geometry struct {
	// Groups in order of first use.
	Groups     []*SurfaceGroup
	index      map[string]*SurfaceGroup
	Surfaces   int
	Triangles  int
	Degenerate int
	// AtlasErr is set when the light map atlas ran full. Surfaces after
	// that point have no light data.
	AtlasErr error
}

func (g *Geometry) Group(texture string) (*SurfaceGroup, bool) {
	s, ok := g.index[texture]
	return s, ok
}

func (g *Geometry) group(texture string) *SurfaceGroup {
	if s, ok := g.index[texture]; ok {
		return s
	}
	s := &SurfaceGroup{Texture: texture, NonVisual: IsNonVisual(texture)}
	g.index[texture] = s
	g.Groups = append(g.Groups, s)
	return s
}

// SuppressedFaces expands brush model indices to face indices.
func (f *File) SuppressedFaces(models map[int]bool) (map[int]bool, error) {
	faces := make(map[int]bool)
	for m := range models {
		if m >= len(f.Models) {
			// trigger referencing a model that does not exist, nothing to hide
			continue
		}
		md := f.Models[m]
		if md.FirstFace < 0 || md.FaceCount < 0 || int(md.FirstFace)+int(md.FaceCount) > len(f.Faces) {
			return nil, &LumpError{Kind: LumpModels, Reason: "model faces outside of face lump"}
		}
		for i := md.FirstFace; i < md.FirstFace+md.FaceCount; i++ {
			faces[int(i)] = true
		}
	}
	return faces, nil
}

// loop resolves the boundary of a face to vertex positions in level space.
func (f *File) loop(fc *Face) ([]vec.Vec3, error) {
	n := int(fc.EdgeCount)
	if fc.FirstEdge < 0 || int(fc.FirstEdge)+n > len(f.SurfEdges) {
		return nil, &LumpError{Kind: LumpFaces, Reason: "surfedges outside of lump"}
	}
	pts := make([]vec.Vec3, n)
	for k, se := range f.SurfEdges[fc.FirstEdge : int(fc.FirstEdge)+n] {
		var vi uint16
		switch {
		case se >= 0 && int(se) < len(f.Edges):
			vi = f.Edges[se].V0
		case se < 0 && -int64(se) < int64(len(f.Edges)):
			vi = f.Edges[-se].V1
		default:
			return nil, &LumpError{Kind: LumpSurfEdges, Reason: "edge index outside of lump"}
		}
		if int(vi) >= len(f.Vertices) {
			return nil, &LumpError{Kind: LumpEdges, Reason: "vertex index outside of lump"}
		}
		v := f.Vertices[vi]
		pts[k] = vec.Vec3{X: v.X, Y: v.Y, Z: v.Z}
	}
	return pts, nil
}

func (f *File) texture(fc *Face) (*TexInfo, *MipTexture, error) {
	if int(fc.TexInfoID) >= len(f.TexInfos) {
		return nil, nil, &LumpError{Kind: LumpFaces, Reason: "texinfo index outside of lump"}
	}
	ti := &f.TexInfos[fc.TexInfoID]
	if int(ti.TextureID) >= len(f.Textures) {
		return nil, nil, &LumpError{Kind: LumpTexInfo, Reason: "texture index outside of lump"}
	}
	return ti, &f.Textures[ti.TextureID], nil
}

// samples returns the raw light samples of a face, possibly short, or nil
// if the offset lies outside of the lighting lump.
func (f *File) samples(fc *Face, w, h int) []byte {
	if fc.LightOffset < 0 || int(fc.LightOffset) >= len(f.Lighting) {
		return nil
	}
	end := int(fc.LightOffset) + w*h*3
	if end > len(f.Lighting) {
		end = len(f.Lighting)
	}
	return f.Lighting[fc.LightOffset:end]
}

// BuildGeometry fans every visible face into triangles grouped by texture.
// Light tiles are packed into atlas in face order. Faces of suppressed
// brush models and faces with fewer than three edges produce nothing.
func BuildGeometry(f *File, suppressed map[int]bool, atlas *lightmap.Atlas) (*Geometry, error) {
	skip, err := f.SuppressedFaces(suppressed)
	if err != nil {
		return nil, err
	}
	g := &Geometry{index: make(map[string]*SurfaceGroup)}
	size := float32(atlas.Size())
	for i := range f.Faces {
		fc := &f.Faces[i]
		if skip[i] || fc.EdgeCount < 3 {
			continue
		}
		pts, err := f.loop(fc)
		if err != nil {
			return nil, err
		}
		ti, mt, err := f.texture(fc)
		if err != nil {
			return nil, err
		}
		sAxis, tAxis := vec.VFromA(ti.S), vec.VFromA(ti.T)
		us := make([]float32, len(pts))
		vs := make([]float32, len(pts))
		minU, minV := math32.Inf(1), math32.Inf(1)
		maxU, maxV := math32.Inf(-1), math32.Inf(-1)
		for k, p := range pts {
			us[k] = vec.Dot(p, sAxis) + ti.DistS
			vs[k] = vec.Dot(p, tAxis) + ti.DistT
			minU, maxU = math32.Min(minU, us[k]), math32.Max(maxU, us[k])
			minV, maxV = math32.Min(minV, vs[k]), math32.Max(maxV, vs[k])
		}
		fw := math32.Ceil(maxU/lightmap.TexelSize) - math32.Floor(minU/lightmap.TexelSize) + 1
		fh := math32.Ceil(maxV/lightmap.TexelSize) - math32.Floor(minV/lightmap.TexelSize) + 1

		var tile lightmap.Rect
		var w, h int
		// NaN fails both bounds, Inf fails one
		degenerate := !(fw >= 1 && fw <= lightmap.MaxTileSize && fh >= 1 && fh <= lightmap.MaxTileSize)
		if degenerate {
			g.Degenerate++
			tile, err = atlas.Placeholder()
		} else {
			w, h = int(fw), int(fh)
			tile, err = atlas.Add(w, h, f.samples(fc, w, h))
		}
		packed := err == nil
		if errors.Is(err, lightmap.ErrAtlasExhausted) && g.AtlasErr == nil {
			g.AtlasErr = err
		}

		midU, midV := (minU+maxU)/2, (minV+maxV)/2
		texW, texH := mt.uvSize()
		rv := make([]RenderVertex, len(pts))
		for k, p := range pts {
			v := RenderVertex{
				Pos: p.HandFix(),
				S:   us[k] / texW,
				T:   vs[k] / texH,
			}
			switch {
			case !packed:
			case degenerate:
				v.LightS = (float32(tile.X) + 0.5) / size
				v.LightT = (float32(tile.Y) + 0.5) / size
			default:
				v.LightS = (float32(w)/2 + (us[k]-midU)/lightmap.TexelSize + float32(tile.X)) / size
				v.LightT = (float32(h)/2 + (vs[k]-midV)/lightmap.TexelSize + float32(tile.Y)) / size
			}
			rv[k] = v
		}
		sg := g.group(mt.Name)
		for k := 1; k < len(rv)-1; k++ {
			sg.Vertices = append(sg.Vertices, rv[0], rv[k], rv[k+1])
		}
		g.Surfaces++
		g.Triangles += len(rv) - 2
	}
	return g, nil
}
