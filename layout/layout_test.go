// SPDX-License-Identifier: GPL-2.0-or-later

package layout

import (
	"os"
	"path/filepath"
	"testing"

	"halfmapper/math/vec"
	"halfmapper/stitch"
	"halfmapper/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorld() *world.World {
	return &world.World{
		Levels: []*world.Level{
			{ID: "c0a0"},
			{ID: "c0a0a", Offset: vec.Vec3{X: 12.5, Y: -3}, ChapterOffset: vec.Vec3{Z: 1000}, Parent: "c0a0"},
			{ID: "c4a1"},
		},
		Stitch: &stitch.Result{Levels: map[string]*stitch.Resolution{
			"c0a0":  {State: stitch.Resolved},
			"c0a0a": {State: stitch.Resolved, Parent: "c0a0"},
			"c4a1":  {},
		}},
	}
}

func TestFromWorld(t *testing.T) {
	prev := &Layout{Entries: []Entry{{ID: "c4a1", Manual: vec.Vec3{Y: 7}}, {ID: "gone", Manual: vec.Vec3{X: 1}}}}
	l := FromWorld("Half-Life", testWorld(), prev)
	require.Len(t, l.Entries, 3)
	assert.Equal(t, "c0a0", l.Entries[1].Parent)
	assert.True(t, l.Entries[1].Resolved)
	assert.False(t, l.Entries[2].Resolved)
	assert.Equal(t, vec.Vec3{Y: 7}, l.Entries[2].Manual)
	assert.Equal(t, map[string]vec.Vec3{"c4a1": {Y: 7}}, l.Manual())

	assert.Empty(t, FromWorld("x", testWorld(), nil).Manual())
}

func TestSaveLoad(t *testing.T) {
	l := FromWorld("Half-Life", testWorld(), nil)
	l.Entries[0].Manual = vec.Vec3{X: -4}
	p := filepath.Join(t.TempDir(), "layout.pb")
	require.NoError(t, l.Save(p))
	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, l, got)
}

func TestLoadMissing(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "none.pb"))
	require.NoError(t, err)
	assert.Empty(t, l.Entries)
}

func TestUnmarshalGarbage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.pb")
	require.NoError(t, os.WriteFile(p, []byte{0xff, 0xff, 0xff}, 0644))
	_, err := Load(p)
	assert.Error(t, err)
}
