// SPDX-License-Identifier: GPL-2.0-or-later

package lightmap

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"golang.org/x/image/draw"
)

// PlaceholderColor fills tiles without light samples.
var PlaceholderColor = color.NRGBA{200, 50, 255, 255}

var gammaTable [256]byte

func init() {
	for i := range gammaTable {
		gammaTable[i] = byte(math32.Round(255 * math32.Pow(float32(i)/255, 1.0/3)))
	}
}

// Gamma returns the brightened value of one light sample channel.
func Gamma(v byte) byte {
	return gammaTable[v]
}

// Atlas is a light map bitmap together with the packer that fills it.
type Atlas struct {
	Image       *image.NRGBA
	packer      *Packer
	placeholder *Rect
	tiles       int
}

func NewAtlas() *Atlas {
	return NewAtlasSize(AtlasSize)
}

func NewAtlasSize(size int) *Atlas {
	return &Atlas{
		Image:  image.NewNRGBA(image.Rect(0, 0, size, size)),
		packer: NewPacker(size, size),
	}
}

// Size returns the edge length in pixels.
func (a *Atlas) Size() int {
	return a.Image.Bounds().Dx()
}

// Tiles returns the number of placed tiles.
func (a *Atlas) Tiles() int {
	return a.tiles
}

func (a *Atlas) Err() error {
	return a.packer.Err()
}

// Add places a w*h tile and copies the gamma corrected RGB samples into it.
// Samples that are missing or too short for the tile are replaced by the
// placeholder color.
func (a *Atlas) Add(w, h int, samples []byte) (Rect, error) {
	r, err := a.packer.Place(w, h)
	if err != nil {
		return r, err
	}
	a.tiles++
	dst := image.Rect(r.X, r.Y, r.X+w, r.Y+h)
	if len(samples) < w*h*3 {
		draw.Draw(a.Image, dst, image.NewUniform(PlaceholderColor), image.Point{}, draw.Src)
		return r, nil
	}
	tile := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		tile.Pix[i*4] = gammaTable[samples[i*3]]
		tile.Pix[i*4+1] = gammaTable[samples[i*3+1]]
		tile.Pix[i*4+2] = gammaTable[samples[i*3+2]]
		tile.Pix[i*4+3] = 255
	}
	draw.Draw(a.Image, dst, tile, image.Point{}, draw.Src)
	return r, nil
}

// Placeholder returns the shared 1x1 tile for surfaces whose light map is
// too large. It is packed on first use.
func (a *Atlas) Placeholder() (Rect, error) {
	if a.placeholder != nil {
		return *a.placeholder, nil
	}
	r, err := a.Add(1, 1, nil)
	if err != nil {
		return r, err
	}
	a.placeholder = &r
	return r, nil
}
