// SPDX-License-Identifier: GPL-2.0-or-later

package palette

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// miptex lays out a 16x8 texture the way the level files do: 40 byte header
// space, four mips filled with their index, color count and palette.
func miptex(pal *Palette) ([]byte, [MipLevels]uint32) {
	var buf bytes.Buffer
	buf.Write(make([]byte, 40))
	var offsets [MipLevels]uint32
	for i := 0; i < MipLevels; i++ {
		offsets[i] = uint32(buf.Len())
		buf.Write(bytes.Repeat([]byte{byte(i)}, (16>>i)*(8>>i)))
	}
	binary.Write(&buf, binary.LittleEndian, uint16(Colors))
	buf.Write(pal[:])
	return buf.Bytes(), offsets
}

func testPalette() *Palette {
	p := &Palette{}
	copy(p[0:], []byte{10, 20, 30})
	copy(p[3:], ColorKey[:])
	copy(p[6:], []byte{0, 0, 254})
	copy(p[9:], []byte{255, 255, 255})
	return p
}

func TestDecodeMips(t *testing.T) {
	blob, offsets := miptex(testPalette())
	mips, err := DecodeMips(blob, 16, 8, offsets, nil)
	require.NoError(t, err)
	require.Len(t, mips, MipLevels)

	for i, m := range mips {
		assert.Equal(t, 16>>i, m.Bounds().Dx(), "mip %d width", i)
		assert.Equal(t, 8>>i, m.Bounds().Dy(), "mip %d height", i)
	}
	assert.Equal(t, []byte{10, 20, 30, 255}, mips[0].Pix[:4])
	// index 1 is the color key
	assert.Equal(t, []byte{0, 0, 0, 0}, mips[1].Pix[:4])
	// almost blue stays opaque
	assert.Equal(t, []byte{0, 0, 254, 255}, mips[2].Pix[:4])
	assert.Equal(t, []byte{255, 255, 255, 255}, mips[3].Pix[:4])
}

func TestExternalPalette(t *testing.T) {
	blob, offsets := miptex(testPalette())
	other := &Palette{}
	copy(other[:], []byte{1, 2, 3})
	mips, err := DecodeMips(blob, 16, 8, offsets, other)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 255}, mips[0].Pix[:4])
}

func TestExternalTexture(t *testing.T) {
	// no data at all: any dereference would fail the bounds check
	_, err := DecodeMips(nil, 64, 64, [MipLevels]uint32{}, nil)
	assert.True(t, errors.Is(err, ErrExternal))
}

func TestTruncated(t *testing.T) {
	blob, offsets := miptex(testPalette())
	_, err := DecodeMips(blob[:len(blob)-10], 16, 8, offsets, nil)
	assert.True(t, errors.Is(err, ErrCorrupt))

	_, err = DecodeMips(blob, 16, 16, offsets, nil)
	assert.True(t, errors.Is(err, ErrCorrupt))

	_, err = DecodeMips(blob, 0, 8, offsets, nil)
	assert.True(t, errors.Is(err, ErrCorrupt))
}

func TestExpandColorKey(t *testing.T) {
	p := testPalette()
	dst := make([]byte, 8)
	p.Expand(dst, []byte{1, 3})
	assert.Equal(t, []byte{0, 0, 0, 0, 255, 255, 255, 255}, dst)
}

func TestLoad(t *testing.T) {
	raw := bytes.Repeat([]byte{7}, Colors*3)
	p, err := Load(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, byte(7), p[767])

	_, err = Load(bytes.NewReader(raw[:100]))
	assert.Error(t, err)
}
