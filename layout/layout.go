// SPDX-License-Identifier: GPL-2.0-or-later

// Package layout stores where every level ended up: the resolved offset,
// the stitching parent, the chapter offset and any manual adjustment made
// by a viewer. The file is a protobuf encoded google.protobuf.Struct.
package layout

import (
	"os"

	"halfmapper/math/vec"
	"halfmapper/stitch"
	"halfmapper/world"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type Entry struct {
	ID            string
	Offset        vec.Vec3
	ChapterOffset vec.Vec3
	// Manual is owned by whoever edits the layout; it is carried through
	// unchanged.
	Manual   vec.Vec3
	Parent   string
	Resolved bool
}

type Layout struct {
	Campaign string
	Entries  []Entry
}

// FromWorld captures a loaded world. Manual offsets are taken from prev when
// it knows the level.
func FromWorld(campaign string, w *world.World, prev *Layout) *Layout {
	manual := prev.Manual()
	l := &Layout{Campaign: campaign}
	for _, lv := range w.Levels {
		l.Entries = append(l.Entries, Entry{
			ID:            lv.ID,
			Offset:        lv.Offset,
			ChapterOffset: lv.ChapterOffset,
			Manual:        manual[lv.ID],
			Parent:        lv.Parent,
			Resolved:      w.Stitch.Levels[lv.ID].State == stitch.Resolved,
		})
	}
	return l
}

// Manual returns the manual offsets by level id. A nil layout has none.
func (l *Layout) Manual() map[string]vec.Vec3 {
	m := make(map[string]vec.Vec3)
	if l == nil {
		return m
	}
	for _, e := range l.Entries {
		if e.Manual != (vec.Vec3{}) {
			m[e.ID] = e.Manual
		}
	}
	return m
}

func vecValue(v vec.Vec3) *structpb.Value {
	return structpb.NewListValue(&structpb.ListValue{Values: []*structpb.Value{
		structpb.NewNumberValue(float64(v.X)),
		structpb.NewNumberValue(float64(v.Y)),
		structpb.NewNumberValue(float64(v.Z)),
	}})
}

func valueVec(v *structpb.Value) (vec.Vec3, error) {
	if v == nil {
		return vec.Vec3{}, nil
	}
	l := v.GetListValue().GetValues()
	if len(l) != 3 {
		return vec.Vec3{}, errors.Errorf("vector with %d values", len(l))
	}
	return vec.Vec3{
		X: float32(l[0].GetNumberValue()),
		Y: float32(l[1].GetNumberValue()),
		Z: float32(l[2].GetNumberValue()),
	}, nil
}

func (l *Layout) Marshal() ([]byte, error) {
	entries := make([]*structpb.Value, 0, len(l.Entries))
	for _, e := range l.Entries {
		entries = append(entries, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"id":             structpb.NewStringValue(e.ID),
			"offset":         vecValue(e.Offset),
			"chapter_offset": vecValue(e.ChapterOffset),
			"manual":         vecValue(e.Manual),
			"parent":         structpb.NewStringValue(e.Parent),
			"resolved":       structpb.NewBoolValue(e.Resolved),
		}}))
	}
	s := &structpb.Struct{Fields: map[string]*structpb.Value{
		"campaign": structpb.NewStringValue(l.Campaign),
		"levels":   structpb.NewListValue(&structpb.ListValue{Values: entries}),
	}}
	out, err := proto.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode layout")
	}
	return out, nil
}

func Unmarshal(data []byte) (*Layout, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, "failed to decode layout")
	}
	l := &Layout{Campaign: s.GetFields()["campaign"].GetStringValue()}
	for _, v := range s.GetFields()["levels"].GetListValue().GetValues() {
		f := v.GetStructValue().GetFields()
		e := Entry{
			ID:       f["id"].GetStringValue(),
			Parent:   f["parent"].GetStringValue(),
			Resolved: f["resolved"].GetBoolValue(),
		}
		if e.ID == "" {
			return nil, errors.New("layout entry without id")
		}
		var err error
		if e.Offset, err = valueVec(f["offset"]); err != nil {
			return nil, errors.Wrap(err, e.ID)
		}
		if e.ChapterOffset, err = valueVec(f["chapter_offset"]); err != nil {
			return nil, errors.Wrap(err, e.ID)
		}
		if e.Manual, err = valueVec(f["manual"]); err != nil {
			return nil, errors.Wrap(err, e.ID)
		}
		l.Entries = append(l.Entries, e)
	}
	return l, nil
}

// Load reads a layout file. A missing file is an empty layout.
func Load(path string) (*Layout, error) {
	in, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Layout{}, nil
	}
	if err != nil {
		return nil, err
	}
	return Unmarshal(in)
}

func (l *Layout) Save(path string) error {
	out, err := l.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0660); err != nil {
		return errors.Wrap(err, "failed to write layout file")
	}
	return nil
}
