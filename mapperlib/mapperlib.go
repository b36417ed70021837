// SPDX-License-Identifier: GPL-2.0-or-later

// Package mapperlib ties the pieces together: campaign, search roots,
// loading, and the files written for viewers.
package mapperlib

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"halfmapper/commandline"
	"halfmapper/conlog"
	"halfmapper/filesystem"
	"halfmapper/image"
	"halfmapper/layout"
	"halfmapper/maps"
	"halfmapper/math/vec"
	"halfmapper/texture"
	"halfmapper/world"

	"github.com/pkg/errors"
)

type Options struct {
	Config  string
	Paths   []string
	Out     string
	Format  image.Format
	Preview int
	Workers int
	Layout  string
	Metrics string
}

func OptionsFromFlags() (Options, error) {
	f, err := image.ParseFormat(commandline.Format())
	if err != nil {
		return Options{}, err
	}
	o := Options{
		Config:  commandline.Config(),
		Paths:   commandline.Paths(),
		Out:     commandline.Out(),
		Format:  f,
		Workers: commandline.Workers(),
		Layout:  commandline.Layout(),
		Metrics: commandline.Metrics(),
	}
	if commandline.Preview() {
		o.Preview = commandline.PreviewSize()
	}
	return o, nil
}

// Run loads the campaign once and writes every requested output.
func Run(ctx context.Context, o Options) (*world.World, error) {
	campaign, err := maps.Load(o.Config)
	if err != nil {
		return nil, err
	}
	roots := filesystem.NewRoots(append(append([]string(nil), o.Paths...), campaign.Paths...)...)
	defer roots.Close()
	conlog.SafePrintf("Search roots: %s", roots)

	loader := &world.Loader{
		Campaign: campaign,
		Roots:    roots,
		Workers:  o.Workers,
		Metrics:  world.NewMetrics(),
	}
	w, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := w.Stitch.Err(); err != nil {
		conlog.Warnf("%v", err)
	}
	if o.Out != "" {
		if err := export(w, o); err != nil {
			return nil, err
		}
	}
	if o.Layout != "" {
		if err := saveLayout(campaign.Name, w, o.Layout); err != nil {
			return nil, err
		}
	}
	if o.Metrics != "" {
		if err := loader.Metrics.WriteFile(o.Metrics); err != nil {
			return nil, errors.Wrap(err, "metrics")
		}
	}
	return w, nil
}

func saveLayout(campaign string, w *world.World, path string) error {
	prev, err := layout.Load(path)
	if err != nil {
		conlog.Warnf("Ignoring old layout: %v", err)
		prev = nil
	}
	manual := w.Stitch.Propagate(prev.Manual())
	for _, lv := range w.Levels {
		conlog.SafePrintf("%s at %v (parent %q)", lv.ID, vec.Add(lv.DisplayOffset(), manual[lv.ID]), lv.Parent)
	}
	return layout.FromWorld(campaign, w, prev).Save(path)
}

// FileName turns a texture or level name into a portable file name.
func FileName(name string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "*", "#", ":", "_").Replace(name)
}

func export(w *world.World, o Options) error {
	texDir := filepath.Join(o.Out, "textures")
	if err := os.MkdirAll(texDir, 0755); err != nil {
		return err
	}
	previewDir := filepath.Join(o.Out, "preview")
	if o.Preview > 0 {
		if err := os.MkdirAll(previewDir, 0755); err != nil {
			return err
		}
	}
	ext := o.Format.Ext()
	for _, lv := range w.Levels {
		name := FileName(lv.ID) + "_lightmap" + ext
		if err := image.Write(filepath.Join(o.Out, name), lv.Atlas.Image, o.Format); err != nil {
			return err
		}
		if o.Preview > 0 {
			if err := image.Write(filepath.Join(previewDir, name), image.Preview(lv.Atlas.Image, o.Preview), o.Format); err != nil {
				return err
			}
		}
	}
	n := 0
	for _, name := range w.Textures.Names() {
		t, _ := w.Textures.Get(name)
		if t.Flags(texture.TexPrefExternal) {
			continue
		}
		if err := image.Write(filepath.Join(texDir, FileName(name)+ext), t.Mips[0], o.Format); err != nil {
			return err
		}
		n++
	}
	conlog.Printf("Wrote %d atlases and %d textures to %s", len(w.Levels), n, o.Out)
	return nil
}

// Main runs the mapper as configured on the command line and returns the
// process exit code.
func Main() int {
	conlog.SetDebug(commandline.Debug())
	o, err := OptionsFromFlags()
	if err != nil {
		conlog.Errorf("%v", err)
		return 2
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if commandline.Watch() {
		err = Watch(ctx, o)
	} else {
		_, err = Run(ctx, o)
	}
	if err != nil {
		conlog.Errorf("%v", err)
		return 1
	}
	return 0
}
