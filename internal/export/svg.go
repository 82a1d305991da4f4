// Package export renders saved results to SVG for use outside the terminal.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/battsim/internal/series"
)

var strokeColors = []string{"#00ff00", "#00bfff", "#ff6060", "#ffd700", "#da70d6", "#ff8c00"}

// GroupToSVG draws every trace of a graph group as a polyline over its
// companion axis. Traces without a matching axis fall back to the sample
// index.
func GroupToSVG(g series.GraphGroup, width, height int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<text x="10" y="20" fill="#cccccc" font-family="monospace" font-size="14">%s</text>
`, width, height, width, height, escape(g.Title)))

	color := 0
	var axis []float64
	for _, s := range g.Graphs {
		if s.FName == "" {
			axis = s.Values
			continue
		}
		x := axis
		if len(x) != len(s.Values) {
			x = series.Linspace(0, float64(len(s.Values)-1), len(s.Values))
		}
		sb.WriteString(tracePath(x, s.Values, width, height, strokeColors[color%len(strokeColors)]))
		color++
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func tracePath(xs, ys []float64, width, height int, stroke string) string {
	if len(xs) < 2 || len(xs) != len(ys) {
		return ""
	}

	minX, maxX := bounds(xs)
	minY, maxY := bounds(ys)
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke))
	for i := range xs {
		px := (xs[i] - minX) / rangeX * float64(width)
		py := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", px, py))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px, py))
		}
	}
	sb.WriteString("\"/>\n")
	return sb.String()
}

func bounds(v []float64) (float64, float64) {
	min, max := v[0], v[0]
	for _, x := range v {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return min, max
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
