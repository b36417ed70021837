// SPDX-License-Identifier: GPL-2.0-or-later

// Package maps describes a campaign: the levels to load, grouped into
// chapters, and the data needed to stitch them together.
package maps

import (
	"halfmapper/bsp"
	"halfmapper/math/vec"
)

type Map struct {
	Name   string `yaml:"name" toml:"name"`
	Render *bool  `yaml:"render,omitempty" toml:"render,omitempty"`
	// Landmark names a landmark whose position is off in the shipped level;
	// Correction is added to it.
	Landmark   string     `yaml:"landmark,omitempty" toml:"landmark,omitempty"`
	Correction [3]float32 `yaml:"correction,omitempty" toml:"correction,omitempty"`
	// Parent forces the stitching parent. An empty string means none.
	Parent *string `yaml:"parent,omitempty" toml:"parent,omitempty"`
}

func (m *Map) Rendered() bool {
	return m.Render == nil || *m.Render
}

type Chapter struct {
	Name   string `yaml:"name" toml:"name"`
	Render *bool  `yaml:"render,omitempty" toml:"render,omitempty"`
	// Offset moves every level of the chapter for display only.
	Offset [3]float32 `yaml:"offset,omitempty" toml:"offset,omitempty"`
	Maps   []Map      `yaml:"maps" toml:"maps"`
}

func (c *Chapter) Rendered() bool {
	return c.Render == nil || *c.Render
}

type Campaign struct {
	Name    string `yaml:"name" toml:"name"`
	Version int32  `yaml:"version,omitempty" toml:"version,omitempty"`
	// Paths are search roots, directories or .pak files, tried in order.
	Paths []string `yaml:"paths" toml:"paths"`
	// Wads are texture archives relative to the search roots, without
	// extension.
	Wads []string `yaml:"wads,omitempty" toml:"wads,omitempty"`
	// Palette is only needed for WAD2 archives.
	Palette  string    `yaml:"palette,omitempty" toml:"palette,omitempty"`
	Roots    []string  `yaml:"roots" toml:"roots"`
	Chapters []Chapter `yaml:"chapters" toml:"chapters"`
}

// Level is one map to load, with everything inherited from its chapter.
type Level struct {
	ID            string
	Chapter       string
	ChapterOffset vec.Vec3
	Correction    bsp.Correction
}

// File returns the level path relative to a search root.
func (l Level) File() string {
	return "maps/" + l.ID + ".bsp"
}

// Levels returns the rendered levels in campaign order.
func (c *Campaign) Levels() []Level {
	var ls []Level
	for _, ch := range c.Chapters {
		if !ch.Rendered() {
			continue
		}
		for _, m := range ch.Maps {
			if !m.Rendered() {
				continue
			}
			ls = append(ls, Level{
				ID:            m.Name,
				Chapter:       ch.Name,
				ChapterOffset: vec.VFromA(ch.Offset),
				Correction: bsp.Correction{
					Name:   m.Landmark,
					Offset: vec.VFromA(m.Correction),
				},
			})
		}
	}
	return ls
}

// ParentOverrides collects the forced parents of all maps.
func (c *Campaign) ParentOverrides() map[string]string {
	o := make(map[string]string)
	for _, ch := range c.Chapters {
		for _, m := range ch.Maps {
			if m.Parent != nil {
				o[m.Name] = *m.Parent
			}
		}
	}
	return o
}

// ExpectedVersion returns the configured level version or the default.
func (c *Campaign) ExpectedVersion() int32 {
	if c.Version == 0 {
		return bsp.DefaultVersion
	}
	return c.Version
}
