// Package world holds the three-dimensional grid of ecological cells that
// organisms live in.
package world

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when a coordinate does not address a cell.
var ErrOutOfBounds = errors.New("location outside world")

// Location addresses one cell of the world.
type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (l Location) String() string {
	return fmt.Sprintf("(%d, %d, %d)", l.X, l.Y, l.Z)
}

// Cell is the ecological state at one coordinate.
//
// LocalInput and LocalOutput hold the settled state visible to neighbouring
// cells. TemporaryInput and TemporaryOutput collect what organism activity
// produced during the current generation until update_ecology folds them in.
type Cell struct {
	LocalInput      []float64 `json:"local_input"`
	LocalOutput     []float64 `json:"local_output"`
	TemporaryInput  []float64 `json:"temporary_input"`
	TemporaryOutput []float64 `json:"temporary_output"`
	Organisms       int       `json:"organisms"`
}

// ClearTemporary drops the transient input and output of the cell.
func (c *Cell) ClearTemporary() {
	c.TemporaryInput = nil
	c.TemporaryOutput = nil
}

func (c Cell) clone() Cell {
	return Cell{
		LocalInput:      append([]float64(nil), c.LocalInput...),
		LocalOutput:     append([]float64(nil), c.LocalOutput...),
		TemporaryInput:  append([]float64(nil), c.TemporaryInput...),
		TemporaryOutput: append([]float64(nil), c.TemporaryOutput...),
		Organisms:       c.Organisms,
	}
}

// CellFunc is applied to cell (x, y, z) of w.
type CellFunc func(w *World, x, y, z int) error

// World is a fixed-size grid of cells stored x-major in a single slice.
type World struct {
	X, Y, Z int
	cells   []Cell
}

func New(x, y, z int) (*World, error) {
	if x <= 0 || y <= 0 || z <= 0 {
		return nil, fmt.Errorf("world dimensions must be > 0, got %dx%dx%d", x, y, z)
	}
	return &World{X: x, Y: y, Z: z, cells: make([]Cell, x*y*z)}, nil
}

// Size returns the number of cells.
func (w *World) Size() int { return len(w.cells) }

func (w *World) index(x, y, z int) int { return (x*w.Y+y)*w.Z + z }

// Contains reports whether loc addresses a cell of the world.
func (w *World) Contains(loc Location) bool {
	return loc.X >= 0 && loc.X < w.X &&
		loc.Y >= 0 && loc.Y < w.Y &&
		loc.Z >= 0 && loc.Z < w.Z
}

// Cell returns the cell at (x, y, z), or nil if the coordinate is outside the world.
func (w *World) Cell(x, y, z int) *Cell {
	return w.At(Location{X: x, Y: y, Z: z})
}

func (w *World) At(loc Location) *Cell {
	if !w.Contains(loc) {
		return nil
	}
	return &w.cells[w.index(loc.X, loc.Y, loc.Z)]
}

// EachCell calls fn for every cell exactly once, nested by x, then y, then z,
// all ascending. Iteration stops at the first error.
func (w *World) EachCell(fn func(x, y, z int) error) error {
	for x := 0; x < w.X; x++ {
		for y := 0; y < w.Y; y++ {
			for z := 0; z < w.Z; z++ {
				if err := fn(x, y, z); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Locations lists every coordinate in EachCell order.
func (w *World) Locations() []Location {
	out := make([]Location, 0, len(w.cells))
	_ = w.EachCell(func(x, y, z int) error {
		out = append(out, Location{X: x, Y: y, Z: z})
		return nil
	})
	return out
}

// Centre returns the middle cell of the grid, rounding down.
func (w *World) Centre() Location {
	return Location{X: (w.X - 1) / 2, Y: (w.Y - 1) / 2, Z: (w.Z - 1) / 2}
}

// Neighbours returns the Moore neighbourhood of loc clipped to the world
// boundary, in EachCell order. loc itself is excluded.
func (w *World) Neighbours(loc Location) []Location {
	var out []Location
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				n := Location{X: loc.X + dx, Y: loc.Y + dy, Z: loc.Z + dz}
				if w.Contains(n) {
					out = append(out, n)
				}
			}
		}
	}
	return out
}

type snapshot struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Z     int    `json:"z"`
	Cells []Cell `json:"cells"`
}

func (w *World) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot{X: w.X, Y: w.Y, Z: w.Z, Cells: w.cells})
}

func (w *World) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s.X <= 0 || s.Y <= 0 || s.Z <= 0 {
		return fmt.Errorf("world dimensions must be > 0, got %dx%dx%d", s.X, s.Y, s.Z)
	}
	if len(s.Cells) != s.X*s.Y*s.Z {
		return fmt.Errorf("world snapshot has %d cells, want %d", len(s.Cells), s.X*s.Y*s.Z)
	}
	w.X, w.Y, w.Z = s.X, s.Y, s.Z
	w.cells = s.Cells
	return nil
}

// Clone returns a deep copy of the world.
func (w *World) Clone() *World {
	out := &World{X: w.X, Y: w.Y, Z: w.Z, cells: make([]Cell, len(w.cells))}
	for i := range w.cells {
		out.cells[i] = w.cells[i].clone()
	}
	return out
}
