package world

import "fmt"

// Place records one more organism at loc.
func (w *World) Place(loc Location) error {
	cell := w.At(loc)
	if cell == nil {
		return fmt.Errorf("place %s: %w", loc, ErrOutOfBounds)
	}
	cell.Organisms++
	return nil
}

// Remove records one organism fewer at loc.
func (w *World) Remove(loc Location) error {
	cell := w.At(loc)
	if cell == nil {
		return fmt.Errorf("remove %s: %w", loc, ErrOutOfBounds)
	}
	if cell.Organisms <= 0 {
		return fmt.Errorf("remove %s: cell has no organisms", loc)
	}
	cell.Organisms--
	return nil
}

// Move transfers one organism from one cell to another. Both coordinates are
// checked before either count changes.
func (w *World) Move(from, to Location) error {
	src := w.At(from)
	if src == nil {
		return fmt.Errorf("move from %s: %w", from, ErrOutOfBounds)
	}
	dst := w.At(to)
	if dst == nil {
		return fmt.Errorf("move to %s: %w", to, ErrOutOfBounds)
	}
	if src.Organisms <= 0 {
		return fmt.Errorf("move from %s: cell has no organisms", from)
	}
	src.Organisms--
	dst.Organisms++
	return nil
}

// CheckOccupancy verifies that every location is inside the world and that
// each cell's organism count equals the number of given locations at it.
func (w *World) CheckOccupancy(locations []Location) error {
	counts := make([]int, len(w.cells))
	for _, loc := range locations {
		if !w.Contains(loc) {
			return fmt.Errorf("occupancy %s: %w", loc, ErrOutOfBounds)
		}
		counts[w.index(loc.X, loc.Y, loc.Z)]++
	}
	return w.EachCell(func(x, y, z int) error {
		idx := w.index(x, y, z)
		if got, want := w.cells[idx].Organisms, counts[idx]; got != want {
			return fmt.Errorf("occupancy mismatch at (%d, %d, %d): cell=%d agents=%d", x, y, z, got, want)
		}
		return nil
	})
}
