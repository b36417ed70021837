// SPDX-License-Identifier: GPL-2.0-or-later

// Package world loads a campaign: texture archives first, then every level
// in parallel, then the landmark stitching over all of them.
package world

import (
	"bytes"
	"context"

	"halfmapper/bsp"
	"halfmapper/conlog"
	"halfmapper/filesystem"
	"halfmapper/lightmap"
	"halfmapper/maps"
	"halfmapper/math/vec"
	"halfmapper/palette"
	"halfmapper/stitch"
	"halfmapper/texture"
	"halfmapper/wad"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type Level struct {
	ID            string
	Chapter       string
	Geometry      *bsp.Geometry
	Atlas         *lightmap.Atlas
	Landmarks     []bsp.Landmark
	Offset        vec.Vec3
	ChapterOffset vec.Vec3
	Parent        string
}

// DisplayOffset is the resolved offset moved by the chapter offset. The
// chapter offset never takes part in landmark math.
func (l *Level) DisplayOffset() vec.Vec3 {
	return vec.Add(l.Offset, l.ChapterOffset)
}

// Skipped is a level left out of the world.
type Skipped struct {
	ID  string
	Err error
}

// Context is the state shared by all levels of one load.
type Context struct {
	Textures  *texture.Cache
	Landmarks *stitch.Table
}

func NewContext() *Context {
	return &Context{
		Textures:  texture.NewCache(),
		Landmarks: stitch.NewTable(),
	}
}

type World struct {
	*Context
	Levels  []*Level
	Skipped []Skipped
	Stitch  *stitch.Result
	byID    map[string]*Level
}

func (w *World) Level(id string) (*Level, bool) {
	l, ok := w.byID[id]
	return l, ok
}

type Loader struct {
	Campaign *maps.Campaign
	Roots    *filesystem.Roots
	// Workers bounds the levels decoded at once; 0 means one per level.
	Workers int
	Metrics *Metrics
}

// decoded is the result of one worker. Nothing in it is shared until the
// loader publishes it.
type decoded struct {
	level    *Level
	textures []*texture.Texture
	external []string
	err      error
}

func (l *Loader) loadWads(ctx *Context) {
	var pal *palette.Palette
	if l.Campaign.Palette != "" {
		data, err := l.Roots.ReadFile(l.Campaign.Palette)
		if err == nil {
			pal, err = palette.Load(bytes.NewReader(data))
		}
		if err != nil {
			conlog.Warnf("palette %s: %v", l.Campaign.Palette, err)
		}
	}
	for _, name := range l.Campaign.Wads {
		file := name + ".wad"
		data, err := l.Roots.ReadFile(file)
		if err != nil {
			conlog.Warnf("Couldn't load %s: %v", file, err)
			continue
		}
		a, err := wad.Decode(file, data)
		if err != nil {
			conlog.Warnf("%v", err)
			continue
		}
		n, err := a.Load(ctx.Textures, pal)
		if err != nil {
			conlog.Warnf("%v", err)
			continue
		}
		conlog.Printf("Loaded %d textures from %s", n, file)
	}
}

// decode reads one level. It only reads the texture cache, to avoid
// decoding textures an archive already provided.
func (l *Loader) decode(ctx *Context, ml maps.Level) *decoded {
	d := &decoded{}
	data, err := l.Roots.ReadFile(ml.File())
	if err != nil {
		d.err = err
		return d
	}
	f, err := bsp.Decode(data, l.Campaign.ExpectedVersion())
	if err != nil {
		d.err = err
		return d
	}
	log := conlog.With("level", ml.ID)
	ents, warns := bsp.ParseEntities(f.Entities)
	info := bsp.ClassifyEntities(ents, ml.Correction)
	for _, w := range append(warns, info.Warnings...) {
		log.Warn("entity", "err", w)
	}
	atlas := lightmap.NewAtlas()
	geo, err := bsp.BuildGeometry(f, info.Suppressed, atlas)
	if err != nil {
		d.err = err
		return d
	}
	if geo.AtlasErr != nil {
		log.Warn("Lightmap atlas is too small", "err", geo.AtlasErr)
	}
	for i := range f.Textures {
		mt := &f.Textures[i]
		if mt.Name == "" || ctx.Textures.Has(mt.Name) {
			continue
		}
		if mt.External() {
			d.external = append(d.external, mt.Name)
			continue
		}
		t, err := mt.Decode(ml.ID)
		if err != nil {
			log.Warn("texture", "err", err)
			d.external = append(d.external, mt.Name)
			continue
		}
		d.textures = append(d.textures, t)
	}
	d.level = &Level{
		ID:            ml.ID,
		Chapter:       ml.Chapter,
		Geometry:      geo,
		Atlas:         atlas,
		Landmarks:     info.Published(),
		ChapterOffset: ml.ChapterOffset,
	}
	return d
}

// Load builds the world. Levels that cannot be read are skipped with a
// warning; only a cancelled context fails the load.
func (l *Loader) Load(c context.Context) (*World, error) {
	if l.Metrics == nil {
		l.Metrics = NewMetrics()
	}
	ctx := NewContext()
	l.loadWads(ctx)

	levels := l.Campaign.Levels()
	results := make([]*decoded, len(levels))
	g, gc := errgroup.WithContext(c)
	if l.Workers > 0 {
		g.SetLimit(l.Workers)
	}
	for i, ml := range levels {
		g.Go(func() error {
			if err := gc.Err(); err != nil {
				return err
			}
			results[i] = l.decode(ctx, ml)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "load")
	}

	w := &World{Context: ctx, byID: make(map[string]*Level)}
	var external []string
	var ids []string
	for i, d := range results {
		id := levels[i].ID
		if d.err != nil {
			conlog.Warnf("Skipping %s: %v", id, d.err)
			w.Skipped = append(w.Skipped, Skipped{ID: id, Err: d.err})
			l.Metrics.skipped.WithLabelValues(skipReason(d.err)).Inc()
			continue
		}
		for _, t := range d.textures {
			ctx.Textures.AddIfAbsent(t)
		}
		external = append(external, d.external...)
		ctx.Landmarks.Register(id, d.level.Landmarks)
		w.Levels = append(w.Levels, d.level)
		w.byID[id] = d.level
		ids = append(ids, id)
		l.Metrics.levels.Inc()
		l.Metrics.triangles.Add(float64(d.level.Geometry.Triangles))
		if d.level.Geometry.AtlasErr != nil {
			l.Metrics.atlasFull.Inc()
		}
	}
	for _, name := range external {
		if _, ok := ctx.Textures.AddIfAbsent(texture.NewPlaceholder(name, "")); ok {
			conlog.Warnf("Texture %s not found", name)
		}
	}

	w.Stitch = stitch.Resolve(ids, ctx.Landmarks, stitch.Config{
		Roots:           l.Campaign.Roots,
		ParentOverrides: l.Campaign.ParentOverrides(),
	})
	for _, lv := range w.Levels {
		lv.Offset = w.Stitch.Offset(lv.ID)
		lv.Parent = w.Stitch.Parent(lv.ID)
	}
	l.Metrics.textures.Set(float64(ctx.Textures.Len()))
	l.Metrics.unresolved.Set(float64(len(w.Stitch.Unresolved)))
	conlog.Printf("%d maps loaded, %d skipped, %d textures", len(w.Levels), len(w.Skipped), ctx.Textures.Len())
	return w, nil
}
