// Package export renders trajectories to standalone SVG files.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/odyn/internal/ode"
)

type point struct{ x, y float64 }

// TimeSeriesSVG plots one state component against time.
func TimeSeriesSVG(sol *ode.Solution, comp, width, height int, stroke string) string {
	pts := make([]point, sol.Len())
	for i := range sol.Times {
		pts[i] = point{sol.Times[i], sol.States[i][comp]}
	}
	return polyline(pts, width, height, stroke)
}

// PhasePortraitSVG plots one state component against another.
func PhasePortraitSVG(sol *ode.Solution, cx, cy, width, height int, stroke string) string {
	pts := make([]point, sol.Len())
	for i := range sol.States {
		pts[i] = point{sol.States[i][cx], sol.States[i][cy]}
	}
	return polyline(pts, width, height, stroke)
}

func polyline(points []point, width, height int, stroke string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].x, points[0].x
	minY, maxY := points[0].y, points[0].y
	for _, p := range points {
		if p.x < minX {
			minX = p.x
		}
		if p.x > maxX {
			maxX = p.x
		}
		if p.y < minY {
			minY = p.y
		}
		if p.y > maxY {
			maxY = p.y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, stroke))

	for i, p := range points {
		x := (p.x - minX) / rangeX * float64(width)
		y := float64(height) - (p.y-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
