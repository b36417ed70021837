// SPDX-License-Identifier: GPL-2.0-or-later

// Package lightmap packs per surface light sample tiles into one shared
// square atlas.
package lightmap

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	AtlasSize = 1024
	// TexelSize is the number of texture units covered by one light texel.
	TexelSize = 16
	// MaxTileSize is the largest tile edge a surface may ask for.
	MaxTileSize = 17
)

var ErrAtlasExhausted = errors.New("light map atlas exhausted")

// Rect is a placed tile in atlas pixels.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", r.W, r.H, r.X, r.Y)
}

// Overlaps reports whether both rects share at least one pixel.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Packer is a greedy shelf packer. It keeps the filled height of every
// column and drops each tile at the lowest window it fits into. Placement
// depends on call order.
type Packer struct {
	width, height int
	profile       []int
	err           error
}

func NewPacker(width, height int) *Packer {
	return &Packer{
		width:   width,
		height:  height,
		profile: make([]int, width),
	}
}

// Err returns the error that stopped the packer, if any.
func (p *Packer) Err() error {
	return p.err
}

// Place reserves a w*h tile. Once the atlas ran out of space every further
// call fails with ErrAtlasExhausted.
func (p *Packer) Place(w, h int) (Rect, error) {
	if p.err != nil {
		return Rect{}, p.err
	}
	if w <= 0 || h <= 0 || w > p.width {
		return Rect{}, errors.Errorf("invalid tile size %dx%d", w, h)
	}
	best := p.height
	bestCol := -1
	for a := 0; a <= p.width-w; a++ {
		m := 0
		for _, c := range p.profile[a : a+w] {
			if c >= best {
				m = best
				break
			}
			if c > m {
				m = c
			}
		}
		if m < best {
			best = m
			bestCol = a
		}
	}
	if bestCol < 0 || best+h > p.height {
		p.err = errors.Wrapf(ErrAtlasExhausted, "no room for %dx%d", w, h)
		return Rect{}, p.err
	}
	for i := bestCol; i < bestCol+w; i++ {
		p.profile[i] = best + h
	}
	return Rect{X: bestCol, Y: best, W: w, H: h}, nil
}
