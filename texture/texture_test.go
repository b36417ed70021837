// SPDX-License-Identifier: GPL-2.0-or-later

package texture

import (
	"fmt"
	"image"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mips(w, h int) []*image.NRGBA {
	var m []*image.NRGBA
	for i := 0; i < 4; i++ {
		m = append(m, image.NewNRGBA(image.Rect(0, 0, w>>i, h>>i)))
	}
	return m
}

func TestFirstWins(t *testing.T) {
	c := NewCache()
	first := NewTexture("crate01", 64, 64, TexPrefNone, "halflife.wad", mips(64, 64))
	got, added := c.AddIfAbsent(first)
	require.True(t, added)
	assert.Same(t, first, got)

	second := NewTexture("crate01", 32, 32, TexPrefNone, "c1a0", mips(32, 32))
	got, added = c.AddIfAbsent(second)
	assert.False(t, added)
	assert.Same(t, first, got)
	assert.Equal(t, 1, c.Len())

	cached, ok := c.Get("crate01")
	require.True(t, ok)
	assert.Equal(t, "halflife.wad", cached.Source)
}

func TestFlags(t *testing.T) {
	tex := NewTexture("{grate", 16, 16, TexPrefNone, "", mips(16, 16))
	assert.True(t, tex.Flags(TexPrefAlpha))
	assert.True(t, tex.Flags(TexPrefMipMap))
	assert.Equal(t, 16*16+8*8+4*4+2*2, tex.Texels())

	p := NewPlaceholder("sky", "c0a0")
	assert.True(t, p.Flags(TexPrefExternal))
	assert.False(t, p.Flags(TexPrefMipMap))
	assert.Equal(t, 1, p.Width)
	assert.NotEqual(t, tex.Handle, p.Handle)
}

func TestConcurrentInsert(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	var mu sync.Mutex
	inserted := 0
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				name := fmt.Sprintf("tex%d", i)
				if _, ok := c.AddIfAbsent(NewPlaceholder(name, "")); ok {
					mu.Lock()
					inserted++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, inserted)
	assert.Equal(t, 50, c.Len())
	assert.Len(t, c.Names(), 50)
}
