package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/chargesim/internal/dynamo"
)

const (
	background   = "#0a0a0a"
	defaultColor = "#00ff00"
)

// SceneToSVG draws particles as filled circles in a width×height box, using
// the same coordinates the walls do. Radii are scaled by pixelsPerUnit.
func SceneToSVG(ps []dynamo.Particle, width, height, pixelsPerUnit float64) string {
	var sb strings.Builder
	header(&sb, width, height)

	for _, p := range ps {
		stroke := ""
		if p.Fixed {
			stroke = ` stroke="#ffffff" stroke-width="1.5"`
		}
		fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"%s/>
`, p.Position.X, p.Position.Y, p.Radius*pixelsPerUnit, color(p), stroke)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoriesToSVG draws one polyline per particle across samples, in the
// particle's own color, with the final positions marked.
func TrajectoriesToSVG(samples []dynamo.Sample, width, height, pixelsPerUnit float64) string {
	if len(samples) == 0 {
		return ""
	}

	var sb strings.Builder
	header(&sb, width, height)

	final := samples[len(samples)-1].Particles
	for id := range final {
		points := make([]dynamo.Vec2, 0, len(samples))
		for _, s := range samples {
			if id < len(s.Particles) {
				points = append(points, s.Particles[id].Position)
			}
		}
		if len(points) < 2 {
			continue
		}

		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-opacity="0.6" stroke-width="1" d="M`, color(final[id]))
		for i, pt := range points {
			if i == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", pt.X, pt.Y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", pt.X, pt.Y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	for _, p := range final {
		fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>
`, p.Position.X, p.Position.Y, p.Radius*pixelsPerUnit, color(p))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG plots a single series, such as total energy per step, scaled
// to fill the image.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		lo -= 0.5
		span = 1
	} else {
		lo -= span * 0.1
		span *= 1.2
	}

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	for i, v := range values {
		x := float64(i) / float64(len(values)-1) * float64(width)
		y := float64(height) - (v-lo)/span*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

func color(p dynamo.Particle) string {
	if p.Color == "" {
		return defaultColor
	}
	return p.Color
}
