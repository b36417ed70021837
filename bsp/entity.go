// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"sort"
	"strconv"
	"strings"

	"halfmapper/math/vec"

	"github.com/pkg/errors"
)

type Entity struct {
	properties map[string]string
}

func (e *Entity) Property(name string) (string, bool) {
	v, ok := e.properties[name]
	return v, ok
}

// Name returns the classname.
func (e *Entity) Name() (string, bool) {
	v, ok := e.properties["classname"]
	return v, ok
}

func (e *Entity) PropertyNames() []string {
	n := make([]string, 0, len(e.properties))
	for k := range e.properties {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

type token struct {
	text   string
	quoted bool
	line   int
}

func (t token) is(s string) bool {
	return !t.quoted && t.text == s
}

type tokenizer struct {
	data []byte
	pos  int
	line int
	errs []error
}

func (t *tokenizer) skipSpace() {
	for t.pos < len(t.data) {
		c := t.data[t.pos]
		switch {
		case c == '\n':
			t.line++
			t.pos++
		case c <= ' ':
			t.pos++
		case c == '/' && t.pos+1 < len(t.data) && t.data[t.pos+1] == '/':
			for t.pos < len(t.data) && t.data[t.pos] != '\n' {
				t.pos++
			}
		default:
			return
		}
	}
}

func (t *tokenizer) next() (token, bool) {
	t.skipSpace()
	if t.pos >= len(t.data) {
		return token{}, false
	}
	start := t.pos
	tok := token{line: t.line}
	switch c := t.data[t.pos]; c {
	case '{', '}':
		t.pos++
		tok.text = string(c)
	case '"':
		t.pos++
		start = t.pos
		for t.pos < len(t.data) && t.data[t.pos] != '"' {
			if t.data[t.pos] == '\n' {
				t.line++
			}
			t.pos++
		}
		tok.text = string(t.data[start:t.pos])
		tok.quoted = true
		if t.pos >= len(t.data) {
			t.errs = append(t.errs, errors.Errorf("line %d: unterminated string", tok.line))
		} else {
			t.pos++
		}
	default:
		for t.pos < len(t.data) {
			c := t.data[t.pos]
			if c <= ' ' || c == '{' || c == '}' || c == '"' {
				break
			}
			t.pos++
		}
		tok.text = string(t.data[start:t.pos])
	}
	return tok, true
}

// ParseEntities splits the entity lump into key/value blocks:
//
//	{
//	"classname" "info_landmark"
//	"origin" "0 0 0"
//	}
//
// Broken blocks are dropped and reported; parsing continues at the next
// block.
func ParseEntities(text string) ([]*Entity, []error) {
	t := &tokenizer{data: []byte(text), line: 1}
	var es []*Entity
	var pending *token
	next := func() (token, bool) {
		if pending != nil {
			tok := *pending
			pending = nil
			return tok, true
		}
		return t.next()
	}
outer:
	for {
		tok, ok := next()
		if !ok {
			break
		}
		if !tok.is("{") {
			t.errs = append(t.errs, errors.Errorf("line %d: unexpected %q outside of entity", tok.line, tok.text))
			continue
		}
		start := tok.line
		e := &Entity{properties: make(map[string]string)}
		for {
			key, ok := next()
			if !ok {
				t.errs = append(t.errs, errors.Errorf("line %d: unterminated entity", start))
				break outer
			}
			if key.is("}") {
				es = append(es, e)
				continue outer
			}
			if key.is("{") {
				t.errs = append(t.errs, errors.Errorf("line %d: unterminated entity", start))
				pending = &key
				continue outer
			}
			value, ok := next()
			if !ok {
				t.errs = append(t.errs, errors.Errorf("line %d: unterminated entity", start))
				break outer
			}
			if value.is("}") || value.is("{") {
				t.errs = append(t.errs, errors.Errorf("line %d: key %q without value", key.line, key.text))
				if value.is("}") {
					es = append(es, e)
				} else {
					pending = &value
				}
				continue outer
			}
			e.properties[key.text] = value.text
		}
	}
	return es, t.errs
}

// Classes whose brush models move or hurt at runtime. Their faces are not
// part of the static world.
var suppressedClasses = map[string]bool{
	"trigger_teleport":   true,
	"func_pendulum":      true,
	"trigger_transition": true,
	"trigger_hurt":       true,
	"func_train":         true,
	"func_door_rotating": true,
}

// Correction moves one landmark of a level whose transition does not line
// up in the shipped data.
type Correction struct {
	Name   string
	Offset vec.Vec3
}

type Landmark struct {
	Name string
	Pos  vec.Vec3
}

// EntityInfo is what the mapper needs from a level's entities.
type EntityInfo struct {
	// Landmarks by targetname, hand fixed.
	Landmarks map[string]vec.Vec3
	// Transitions holds every landmark name used by a changelevel.
	Transitions map[string]bool
	// Suppressed holds brush model indices whose faces are skipped.
	Suppressed map[int]bool
	Warnings   []error
}

func parseOrigin(s string) (vec.Vec3, error) {
	f := strings.Fields(s)
	if len(f) != 3 {
		return vec.Vec3{}, errors.Errorf("origin %q needs 3 values", s)
	}
	var a [3]float32
	for i, p := range f {
		v, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return vec.Vec3{}, errors.Wrapf(err, "origin %q", s)
		}
		a[i] = float32(v)
	}
	return vec.VFromA(a), nil
}

// modelIndex parses brush model references of the form "*N".
func modelIndex(s string) (int, bool) {
	if !strings.HasPrefix(s, "*") {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func ClassifyEntities(es []*Entity, c Correction) *EntityInfo {
	info := &EntityInfo{
		Landmarks:   make(map[string]vec.Vec3),
		Transitions: make(map[string]bool),
		Suppressed:  make(map[int]bool),
	}
	suppress := func(e *Entity) {
		m, ok := e.Property("model")
		if !ok {
			return
		}
		if n, ok := modelIndex(m); ok {
			info.Suppressed[n] = true
		}
	}
	for _, e := range es {
		class, _ := e.Name()
		switch {
		case class == "info_landmark":
			name, _ := e.Property("targetname")
			o, _ := e.Property("origin")
			p, err := parseOrigin(o)
			if err != nil {
				info.Warnings = append(info.Warnings, errors.Wrapf(err, "landmark %q", name))
				continue
			}
			p = p.HandFix()
			if c.Name != "" && name == c.Name {
				p = vec.Add(p, c.Offset)
			}
			info.Landmarks[name] = p
		case class == "trigger_changelevel":
			if l, ok := e.Property("landmark"); ok && l != "" {
				info.Transitions[l] = true
			}
			suppress(e)
		case suppressedClasses[class]:
			suppress(e)
		}
	}
	return info
}

// Published returns the named landmarks that take part in a level
// transition, sorted by name.
func (i *EntityInfo) Published() []Landmark {
	var ls []Landmark
	for name, p := range i.Landmarks {
		if name != "" && i.Transitions[name] {
			ls = append(ls, Landmark{Name: name, Pos: p})
		}
	}
	sort.Slice(ls, func(a, b int) bool { return ls[a].Name < ls[b].Name })
	return ls
}
