// SPDX-License-Identifier: GPL-2.0-or-later

// Package commandline holds the flags of the mapper. Values given here take
// precedence over the campaign file.
package commandline

import (
	"flag"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

var (
	debug bool
	watch bool

	preview = boolInt{false, 256}

	workers int

	config      string
	out         string
	format      string
	layoutFile  string
	metricsFile string

	paths stringList
)

type boolInt struct {
	set bool
	num int
}

func (b *boolInt) IsBoolFlag() bool {
	// We can not support both "-flag" and "-flag 10"
	// This allows "-flag", and "-flag=10"
	// and also "-flag=true" and "-flag=false"
	// but not "-flag 10"
	return true
}

func (b *boolInt) Set(s string) error {
	v, err := strconv.ParseInt(s, 0, strconv.IntSize)
	if err != nil {
		v, err := strconv.ParseBool(s)
		b.set = v
		return err
	}
	b.set = true
	b.num = int(v)
	return nil
}

func (b *boolInt) String() string {
	return fmt.Sprintf("Set: %v, Num: %v", b.set, b.num)
}

// stringList collects a repeated flag in order.
type stringList []string

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func init() {
	flag.BoolVar(&debug, "debug", false, "print debug diagnostics")
	flag.BoolVar(&watch, "watch", false, "reload when the campaign or a texture archive changes")

	flag.Var(&preview, "preview", "also write downscaled atlases, optional edge length (-preview=512)")
	flag.Var(&paths, "path", "search root, directory or .pak; repeatable, tried before the campaign paths")

	flag.IntVar(&workers, "workers", runtime.NumCPU(), "levels decoded in parallel")

	flag.StringVar(&config, "config", "", "campaign file (.yaml or .toml), default $HALFMAPPER_CONFIG or Half-Life")
	flag.StringVar(&out, "out", "", "directory for atlases and textures, nothing is written if empty")
	flag.StringVar(&format, "format", "png", "image format: png or webp")
	flag.StringVar(&layoutFile, "layout", "", "layout file to update with the resolved offsets")
	flag.StringVar(&metricsFile, "metrics", "", "write load metrics in the prometheus text format")
}

func Debug() bool {
	return debug
}

func Watch() bool {
	return watch
}

func Preview() bool {
	return preview.set
}

func PreviewSize() int {
	return preview.num
}

func Workers() int {
	return workers
}

func Config() string {
	return config
}

func Out() string {
	return out
}

func Format() string {
	return format
}

func Layout() string {
	return layoutFile
}

func Metrics() string {
	return metricsFile
}

func Paths() []string {
	return append([]string(nil), paths...)
}
