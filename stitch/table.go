// SPDX-License-Identifier: GPL-2.0-or-later

// Package stitch places independently authored levels in one world frame
// by chaining translations through shared transition landmarks.
package stitch

import (
	"sort"
	"sync"

	"halfmapper/bsp"
	"halfmapper/math/vec"
)

// Occurrence is one level's copy of a landmark.
type Occurrence struct {
	Level string
	Pos   vec.Vec3
}

// Table maps landmark names to their occurrences in registration order.
type Table struct {
	mu      sync.RWMutex
	entries map[string][]Occurrence
}

func NewTable() *Table {
	return &Table{entries: make(map[string][]Occurrence)}
}

func (t *Table) Add(name, level string, pos vec.Vec3) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[name] = append(t.entries[name], Occurrence{Level: level, Pos: pos})
}

// Register adds all published landmarks of a level.
func (t *Table) Register(level string, ls []bsp.Landmark) {
	for _, l := range ls {
		t.Add(l.Name, level, l.Pos)
	}
}

// Names returns all landmark names, sorted.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := make([]string, 0, len(t.entries))
	for k := range t.entries {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

func (t *Table) Occurrences(name string) []Occurrence {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Occurrence(nil), t.entries[name]...)
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
