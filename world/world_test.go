// SPDX-License-Identifier: GPL-2.0-or-later

package world

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"halfmapper/bsp"
	"halfmapper/bsp/bsptest"
	"halfmapper/filesystem"
	"halfmapper/maps"
	"halfmapper/math/vec"
	"halfmapper/wad/wadtest"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	axisS = [4]float32{1, 0, 0, 0}
	axisT = [4]float32{0, 1, 0, 0}
)

// level writes a one face level with a landmark per entry of marks.
func level(t *testing.T, dir, id string, version int32, tex string, embedded bool, marks map[string][3]float32) {
	t.Helper()
	b := bsptest.New()
	b.Version = version
	ti := b.AddTexInfo(axisS, axisT, b.AddTexture(tex, 16, 16, embedded, [3]byte{9, 8, 7}))
	b.AddFace(ti, -1, bsptest.Square(0, 0, 32)...)
	b.AddEntity("classname", "worldspawn")
	for name, p := range marks {
		b.AddEntity("classname", "info_landmark", "targetname", name,
			"origin", fmt.Sprintf("%g %g %g", p[0], p[1], p[2]))
		b.AddEntity("classname", "trigger_changelevel", "landmark", name)
	}
	p := filepath.Join(dir, "maps", id+".bsp")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, b.Bytes(), 0644))
}

func campaign() *maps.Campaign {
	return &maps.Campaign{
		Name:  "test",
		Wads:  []string{"halflife", "nowhere"},
		Roots: []string{"c0"},
		Chapters: []maps.Chapter{
			{Name: "one", Maps: []maps.Map{{Name: "c0"}, {Name: "c1"}, {Name: "old"}}},
			{Name: "two", Offset: [3]float32{0, 500, 0}, Maps: []maps.Map{{Name: "c2"}, {Name: "gone"}, {Name: "island"}}},
		},
	}
}

func setup(t *testing.T) string {
	dir := t.TempDir()
	level(t, dir, "c0", 30, "crate", true, map[string][3]float32{"a": {0, 0, 0}})
	level(t, dir, "c1", 30, "crate", true, map[string][3]float32{"a": {100, 0, 0}, "b": {0, 0, 0}})
	level(t, dir, "old", 31, "crate", true, nil)
	level(t, dir, "c2", 30, "outside", false, map[string][3]float32{"b": {0, 50, 0}})
	level(t, dir, "island", 30, "{fence", true, map[string][3]float32{"z": {1, 1, 1}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "halflife.wad"),
		wadtest.Build("WAD3", []wadtest.Texture{{Name: "{fence", Index: 3, Color: [3]byte{1, 1, 1}}}), 0644))
	return dir
}

func TestLoad(t *testing.T) {
	dir := setup(t)
	roots := filesystem.NewRoots(dir)
	defer roots.Close()
	l := &Loader{Campaign: campaign(), Roots: roots, Workers: 2}
	w, err := l.Load(context.Background())
	require.NoError(t, err)

	ids := []string{}
	for _, lv := range w.Levels {
		ids = append(ids, lv.ID)
	}
	assert.Equal(t, []string{"c0", "c1", "c2", "island"}, ids)

	require.Len(t, w.Skipped, 2)
	assert.Equal(t, "old", w.Skipped[0].ID)
	assert.True(t, errors.Is(w.Skipped[0].Err, bsp.ErrUnsupportedVersion))
	assert.Equal(t, "gone", w.Skipped[1].ID)
	assert.True(t, errors.Is(w.Skipped[1].Err, filesystem.ErrNotFound))

	// hand fixed landmark positions: (x,y,z) -> (-x,z,y)
	c1, ok := w.Level("c1")
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{X: 100}, c1.Offset)
	assert.Equal(t, "c0", c1.Parent)
	c2, _ := w.Level("c2")
	assert.Equal(t, vec.Vec3{X: 100, Z: -50}, c2.Offset)
	assert.Equal(t, "c1", c2.Parent)
	assert.Equal(t, vec.Vec3{X: 100, Z: -50, Y: 500}, c2.DisplayOffset())

	island, _ := w.Level("island")
	assert.Equal(t, vec.Vec3{}, island.Offset)
	assert.Equal(t, []string{"island"}, w.Stitch.Unresolved)

	// archive texture wins over the embedded one
	fence, ok := w.Textures.Get("{fence")
	require.True(t, ok)
	assert.Equal(t, "halflife.wad", fence.Source)
	crate, ok := w.Textures.Get("crate")
	require.True(t, ok)
	assert.Equal(t, "c0", crate.Source)
	assert.Equal(t, []byte{9, 8, 7, 255}, crate.Mips[0].Pix[:4])
	outside, ok := w.Textures.Get("outside")
	require.True(t, ok)
	assert.Equal(t, 1, outside.Width)

	assert.Equal(t, float64(4), testutil.ToFloat64(l.Metrics.levels))
	assert.Equal(t, float64(8), testutil.ToFloat64(l.Metrics.triangles))
	assert.Equal(t, float64(1), testutil.ToFloat64(l.Metrics.skipped.WithLabelValues("version")))
	assert.Equal(t, float64(1), testutil.ToFloat64(l.Metrics.skipped.WithLabelValues("not_found")))
	assert.Equal(t, float64(1), testutil.ToFloat64(l.Metrics.unresolved))
	assert.Equal(t, float64(3), testutil.ToFloat64(l.Metrics.textures))

	out := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, l.Metrics.WriteFile(out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "halfmapper_levels_loaded_total 4")
}

func TestLoadDeterministic(t *testing.T) {
	dir := setup(t)
	var first *World
	for _, workers := range []int{1, 4, 0} {
		roots := filesystem.NewRoots(dir)
		w, err := (&Loader{Campaign: campaign(), Roots: roots, Workers: workers}).Load(context.Background())
		roots.Close()
		require.NoError(t, err)
		if first == nil {
			first = w
			continue
		}
		assert.Equal(t, first.Textures.Names(), w.Textures.Names())
		for _, lv := range first.Levels {
			other, ok := w.Level(lv.ID)
			require.True(t, ok)
			assert.Equal(t, lv.Offset, other.Offset)
			assert.Equal(t, lv.Atlas.Image.Pix, other.Atlas.Image.Pix)
		}
	}
}

func TestLoadCancelled(t *testing.T) {
	dir := setup(t)
	roots := filesystem.NewRoots(dir)
	defer roots.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Loader{Campaign: campaign(), Roots: roots}).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSkipReason(t *testing.T) {
	assert.Equal(t, "corrupt", skipReason(errors.Wrap(bsp.ErrCorruptLump, "x")))
	assert.Equal(t, "other", skipReason(errors.New("x")))
}
