// SPDX-License-Identifier: GPL-2.0-or-later

// Package texture holds decoded textures and the shared, name keyed cache.
// Texture identity is the name: the first registration wins, later
// duplicates from other levels or archives are ignored.
package texture

import (
	"image"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type TexPref uint32

const (
	TexPrefMipMap TexPref = 1 << iota
	TexPrefAlpha
	// TexPrefExternal marks a placeholder for a texture whose pixels were
	// expected in an archive that did not provide them.
	TexPrefExternal
	TexPrefNone TexPref = 0
)

type Texture struct {
	// Handle is opaque to the decoder; renderers key their GPU objects by it.
	Handle uuid.UUID
	Width  int
	Height int
	flags  TexPref
	name   string
	Mips   []*image.NRGBA
	// Source names the level or archive that registered the texture.
	Source string
}

// NewTexture wraps decoded mip levels. Names starting with '{' are alpha
// tested by the game engine and get TexPrefAlpha.
func NewTexture(name string, w, h int, flags TexPref, source string, mips []*image.NRGBA) *Texture {
	if strings.HasPrefix(name, "{") {
		flags |= TexPrefAlpha
	}
	if len(mips) > 1 {
		flags |= TexPrefMipMap
	}
	return &Texture{
		Handle: uuid.New(),
		Width:  w,
		Height: h,
		flags:  flags,
		name:   name,
		Mips:   mips,
		Source: source,
	}
}

// NewPlaceholder registers a 1x1 texture for a name without pixels.
func NewPlaceholder(name, source string) *Texture {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	copy(img.Pix, []byte{255, 255, 255, 255})
	return NewTexture(name, 1, 1, TexPrefExternal, source, []*image.NRGBA{img})
}

func (t *Texture) Name() string {
	return t.name
}

func (t *Texture) Flags(f TexPref) bool {
	return t.flags&f != 0
}

func (t *Texture) Texels() int {
	n := 0
	for _, m := range t.Mips {
		n += m.Bounds().Dx() * m.Bounds().Dy()
	}
	return n
}

// Cache is safe for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*Texture
	order []string
}

func NewCache() *Cache {
	return &Cache{items: make(map[string]*Texture)}
}

// AddIfAbsent inserts t unless a texture of the same name exists. It returns
// the cached texture and whether t was inserted.
func (c *Cache) AddIfAbsent(t *Texture) (*Texture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.items[t.name]; ok {
		return old, false
	}
	c.items[t.name] = t
	c.order = append(c.order, t.name)
	return t, true
}

func (c *Cache) Get(name string) (*Texture, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.items[name]
	return t, ok
}

func (c *Cache) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Names returns the texture names in registration order.
func (c *Cache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
