// SPDX-License-Identifier: GPL-2.0-or-later

// Package image writes light map atlases and decoded textures.
package image

import (
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"halfmapper/math"

	"github.com/HugoSmits86/nativewebp"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

type Format int

const (
	PNG Format = iota
	WebP
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "png", "":
		return PNG, nil
	case "webp":
		return WebP, nil
	}
	return PNG, errors.Errorf("unknown image format %q", s)
}

func (f Format) String() string {
	if f == WebP {
		return "webp"
	}
	return "png"
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + f.String()
}

// Encode writes img losslessly.
func Encode(w io.Writer, img image.Image, f Format) error {
	if f == WebP {
		return nativewebp.Encode(w, img, nil)
	}
	return png.Encode(w, img)
}

// Write stores img under name.
func Write(name string, img image.Image, f Format) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := Encode(file, img, f); err != nil {
		file.Close()
		return errors.Wrap(err, name)
	}
	return file.Close()
}

// Preview scales img so that its longer edge is at most size pixels.
// Smaller images and a size of 0 return img unchanged.
func Preview(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if size <= 0 || (w <= size && h <= size) {
		return img
	}
	if w >= h {
		h = math.Clamp(1, h*size/w, size)
		w = size
	} else {
		w = math.Clamp(1, w*size/h, size)
		h = size
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
