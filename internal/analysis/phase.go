package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/chargesim/internal/dynamo"
)

// Coordinate selects one scalar of a particle's phase-space state.
type Coordinate int

const (
	PosX Coordinate = iota
	PosY
	VelX
	VelY
)

var coordinateNames = map[string]Coordinate{
	"x":  PosX,
	"y":  PosY,
	"vx": VelX,
	"vy": VelY,
}

func ParseCoordinate(s string) (Coordinate, error) {
	c, ok := coordinateNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unknown coordinate %q (want x, y, vx or vy)", s)
	}
	return c, nil
}

func (c Coordinate) of(p dynamo.Particle) float64 {
	switch c {
	case PosY:
		return p.Position.Y
	case VelX:
		return p.Velocity.X
	case VelY:
		return p.Velocity.Y
	default:
		return p.Position.X
	}
}

type Point struct{ X, Y float64 }

// PhasePortrait holds one particle's trajectory projected onto two coordinates.
type PhasePortrait struct {
	ID     dynamo.ParticleID
	XAxis  Coordinate
	YAxis  Coordinate
	Points []Point
}

// NewPhasePortrait projects particle id of every sample onto (xAxis, yAxis).
// Samples that do not hold the particle are skipped.
func NewPhasePortrait(samples []dynamo.Sample, id dynamo.ParticleID, xAxis, yAxis Coordinate) *PhasePortrait {
	portrait := &PhasePortrait{
		ID:     id,
		XAxis:  xAxis,
		YAxis:  yAxis,
		Points: make([]Point, 0, len(samples)),
	}
	for _, s := range samples {
		if int(id) < 0 || int(id) >= len(s.Particles) {
			continue
		}
		p := s.Particles[id]
		portrait.Points = append(portrait.Points, Point{X: xAxis.of(p), Y: yAxis.of(p)})
	}
	return portrait
}

// ASCII renders the portrait into a width×height character grid, with axes
// drawn where zero falls inside the plotted range.
func (portrait *PhasePortrait) ASCII(width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
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

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if grid[row][col] == ' ' {
				grid[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if grid[row][col] == ' ' {
				grid[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
