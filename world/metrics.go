// SPDX-License-Identifier: GPL-2.0-or-later

package world

import (
	"halfmapper/bsp"
	"halfmapper/filesystem"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics summarizes a load. Each loader owns its registry so repeated runs
// in watch mode and tests do not collide.
type Metrics struct {
	Registry   *prometheus.Registry
	levels     prometheus.Counter
	skipped    *prometheus.CounterVec
	triangles  prometheus.Counter
	textures   prometheus.Gauge
	atlasFull  prometheus.Counter
	unresolved prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		levels: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "halfmapper",
			Name:      "levels_loaded_total",
			Help:      "Levels decoded and stitched.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "halfmapper",
			Name:      "levels_skipped_total",
			Help:      "Levels left out of the world, by reason.",
		}, []string{"reason"}),
		triangles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "halfmapper",
			Name:      "triangles_total",
			Help:      "Triangles produced over all levels.",
		}),
		textures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "halfmapper",
			Name:      "textures",
			Help:      "Textures in the shared cache.",
		}),
		atlasFull: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "halfmapper",
			Name:      "atlas_exhausted_total",
			Help:      "Levels whose light map atlas ran out of space.",
		}),
		unresolved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "halfmapper",
			Name:      "levels_unresolved",
			Help:      "Levels without a landmark match, kept at the origin.",
		}),
	}
	m.Registry.MustRegister(m.levels, m.skipped, m.triangles, m.textures, m.atlasFull, m.unresolved)
	return m
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, filesystem.ErrNotFound):
		return "not_found"
	case errors.Is(err, bsp.ErrUnsupportedVersion):
		return "version"
	case errors.Is(err, bsp.ErrCorruptLump):
		return "corrupt"
	default:
		return "other"
	}
}

// WriteFile stores the metrics in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
