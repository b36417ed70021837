// SPDX-License-Identifier: GPL-2.0-or-later

// Package packtest assembles PACK archives for tests of packages that read
// through search roots.
package packtest

import (
	"bytes"
	"encoding/binary"
	"sort"
)

const headerSize = 12

type header struct {
	ID     [4]byte
	Offset int32
	Size   int32
}

type entry struct {
	Name   [56]byte
	Offset int32
	Size   int32
}

// Build assembles a PACK archive from name/content pairs.
func Build(files map[string][]byte) []byte {
	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)

	var body bytes.Buffer
	entries := make([]entry, 0, len(names))
	for _, n := range names {
		var e entry
		copy(e.Name[:], n)
		e.Offset = int32(headerSize + body.Len())
		e.Size = int32(len(files[n]))
		body.Write(files[n])
		entries = append(entries, e)
	}
	var out bytes.Buffer
	h := header{
		ID:     [4]byte{'P', 'A', 'C', 'K'},
		Offset: int32(headerSize + body.Len()),
		Size:   int32(len(entries) * binary.Size(entry{})),
	}
	binary.Write(&out, binary.LittleEndian, h)
	out.Write(body.Bytes())
	binary.Write(&out, binary.LittleEndian, entries)
	return out.Bytes()
}
