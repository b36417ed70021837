// SPDX-License-Identifier: GPL-2.0-or-later

package stitch

import (
	"sort"
	"strings"

	"halfmapper/conlog"
	"halfmapper/math/vec"

	"github.com/pkg/errors"
)

var ErrUnresolvedLandmark = errors.New("no resolved level shares a landmark")

type State int

const (
	Unresolved State = iota
	Resolved
)

func (s State) String() string {
	if s == Resolved {
		return "resolved"
	}
	return "unresolved"
}

type Resolution struct {
	State  State
	Offset vec.Vec3
	// Parent is the level the offset was chained from. Roots and levels
	// forced parentless have none.
	Parent string
	// Via names the landmark used.
	Via string
}

type Config struct {
	// Roots start resolved at the origin.
	Roots []string
	// ParentOverrides replaces the discovered parent of a level. An empty
	// value makes the level parentless. Offsets are not affected.
	ParentOverrides map[string]string
}

type Result struct {
	Levels map[string]*Resolution
	// Unresolved lists levels without a match, in campaign order.
	Unresolved []string
	// Passes is the number of scans until nothing changed.
	Passes int
}

// Offset returns the translation of level, zero if it is unknown or
// unresolved.
func (r *Result) Offset(level string) vec.Vec3 {
	if res, ok := r.Levels[level]; ok {
		return res.Offset
	}
	return vec.Vec3{}
}

func (r *Result) Parent(level string) string {
	if res, ok := r.Levels[level]; ok {
		return res.Parent
	}
	return ""
}

// Err reports levels that kept the zero offset.
func (r *Result) Err() error {
	if len(r.Unresolved) == 0 {
		return nil
	}
	return errors.Wrap(ErrUnresolvedLandmark, strings.Join(r.Unresolved, ", "))
}

// Resolve computes an offset for every level in levels. A level becomes
// resolved when it shares a landmark with a neighboring occurrence whose
// level is already resolved; scanning repeats until a full pass changes
// nothing. Every level reachable from a root gets resolved whatever the
// order of levels. When several neighbors qualify, the first match in pass
// and sorted landmark name order sets the offset.
func Resolve(levels []string, t *Table, cfg Config) *Result {
	r := &Result{Levels: make(map[string]*Resolution, len(levels))}
	for _, l := range levels {
		r.Levels[l] = &Resolution{}
	}
	for _, root := range cfg.Roots {
		if res, ok := r.Levels[root]; ok {
			res.State = Resolved
		}
	}
	names := t.Names()
	for changed := true; changed; {
		changed = false
		r.Passes++
		for _, l := range levels {
			if r.Levels[l].State == Resolved {
				continue
			}
			if r.resolve(l, names, t, cfg) {
				changed = true
			}
		}
	}
	for _, l := range levels {
		if r.Levels[l].State != Resolved {
			r.Unresolved = append(r.Unresolved, l)
			conlog.Warnf("Cant find matching landmarks for %s", l)
		}
	}
	return r
}

func (r *Result) resolve(level string, names []string, t *Table, cfg Config) bool {
	for _, name := range names {
		occ := t.Occurrences(name)
		if len(occ) < 2 {
			continue
		}
		for i, o := range occ {
			if o.Level != level {
				continue
			}
			for _, j := range [2]int{i - 1, i + 1} {
				if j < 0 || j >= len(occ) || occ[j].Level == level {
					continue
				}
				n := occ[j]
				nr, ok := r.Levels[n.Level]
				if !ok || nr.State != Resolved {
					continue
				}
				res := r.Levels[level]
				res.State = Resolved
				res.Offset = vec.Sub(vec.Add(n.Pos, nr.Offset), o.Pos)
				res.Parent = n.Level
				res.Via = name
				if p, ok := cfg.ParentOverrides[level]; ok {
					res.Parent = p
				}
				conlog.Debugf("Matched %s %s via %s", level, n.Level, name)
				return true
			}
		}
	}
	return false
}

// Propagate sums per level manual offsets down the parent chain, so moving
// a level by hand drags its descendants along.
func (r *Result) Propagate(manual map[string]vec.Vec3) map[string]vec.Vec3 {
	out := make(map[string]vec.Vec3, len(r.Levels))
	visiting := make(map[string]bool)
	var sum func(l string) vec.Vec3
	sum = func(l string) vec.Vec3 {
		if v, ok := out[l]; ok {
			return v
		}
		if visiting[l] {
			// overrides formed a cycle, stop here
			return vec.Vec3{}
		}
		visiting[l] = true
		v := manual[l]
		if p := r.Parent(l); p != "" {
			v = vec.Add(v, sum(p))
		}
		out[l] = v
		return v
	}
	levels := make([]string, 0, len(r.Levels))
	for l := range r.Levels {
		levels = append(levels, l)
	}
	sort.Strings(levels)
	for _, l := range levels {
		sum(l)
	}
	return out
}
