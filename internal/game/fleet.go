package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

var neighbours = [][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Validate checks bounds, overlap, ship shape and the per-length counts.
func (p FleetPolicy) Validate(layout Layout) error {
	occupied := make(map[Cell]int)
	counts := make(map[int]int)

	for i, s := range layout {
		if len(s.Cells) == 0 {
			return fmt.Errorf("%w: ship %d has no cells", ErrInvalidLayout, i)
		}
		for _, c := range s.Cells {
			if c.Row < 0 || c.Row >= p.Size || c.Col < 0 || c.Col >= p.Size {
				return fmt.Errorf("%w: ship %d cell %s outside %dx%d board", ErrInvalidLayout, i, c, p.Size, p.Size)
			}
			if j, ok := occupied[c]; ok {
				if j == i {
					return fmt.Errorf("%w: ship %d repeats cell %s", ErrInvalidLayout, i, c)
				}
				return fmt.Errorf("%w: ships %d and %d overlap at %s", ErrInvalidLayout, j, i, c)
			}
			occupied[c] = i
		}
		if !straight(s.Cells) {
			return fmt.Errorf("%w: ship %d is not a straight line", ErrInvalidLayout, i)
		}
		counts[len(s.Cells)]++
	}

	for length, want := range p.Ships {
		if counts[length] != want {
			return fmt.Errorf("%w: want %d ships of length %d, got %d", ErrInvalidLayout, want, length, counts[length])
		}
	}
	for length, got := range counts {
		if _, ok := p.Ships[length]; !ok {
			return fmt.Errorf("%w: %d unexpected ships of length %d", ErrInvalidLayout, got, length)
		}
	}

	if p.AllowTouching {
		return nil
	}
	for c, i := range occupied {
		for _, d := range neighbours {
			if j, ok := occupied[Cell{Row: c.Row + d[0], Col: c.Col + d[1]}]; ok && j != i {
				return fmt.Errorf("%w: ships %d and %d touch at %s", ErrInvalidLayout, i, j, c)
			}
		}
	}
	return nil
}

func straight(cells []Cell) bool {
	if len(cells) == 1 {
		return true
	}
	sameRow, sameCol := true, true
	for _, c := range cells[1:] {
		sameRow = sameRow && c.Row == cells[0].Row
		sameCol = sameCol && c.Col == cells[0].Col
	}
	if !sameRow && !sameCol {
		return false
	}
	idx := make([]int, len(cells))
	for i, c := range cells {
		if sameRow {
			idx[i] = c.Col
		} else {
			idx[i] = c.Row
		}
	}
	sort.Ints(idx)
	for i := 1; i < len(idx); i++ {
		if idx[i] != idx[i-1]+1 {
			return false
		}
	}
	return true
}

// RandomLayout produces a layout the policy accepts. Longest ships go first.
func RandomLayout(p FleetPolicy, rng *rand.Rand) (Layout, error) {
	var lengths []int
	for length, count := range p.Ships {
		for i := 0; i < count; i++ {
			lengths = append(lengths, length)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(lengths)))

	const restarts = 200
	for attempt := 0; attempt < restarts; attempt++ {
		if layout, ok := tryLayout(p, lengths, rng); ok {
			return layout, nil
		}
	}
	return nil, errors.New("could not place fleet on board")
}

func tryLayout(p FleetPolicy, lengths []int, rng *rand.Rand) (Layout, bool) {
	occupied := make(map[Cell]bool)
	layout := make(Layout, 0, len(lengths))

	for _, length := range lengths {
		placed := false
		for try := 0; try < 100 && !placed; try++ {
			vertical := rng.Intn(2) == 0
			row, col := rng.Intn(p.Size), rng.Intn(p.Size)
			cells := make([]Cell, length)
			for i := range cells {
				if vertical {
					cells[i] = Cell{Row: row + i, Col: col}
				} else {
					cells[i] = Cell{Row: row, Col: col + i}
				}
			}
			if !fits(p, occupied, cells) {
				continue
			}
			for _, c := range cells {
				occupied[c] = true
			}
			layout = append(layout, Ship{Cells: cells})
			placed = true
		}
		if !placed {
			return nil, false
		}
	}
	return layout, true
}

func fits(p FleetPolicy, occupied map[Cell]bool, cells []Cell) bool {
	for _, c := range cells {
		if c.Row < 0 || c.Row >= p.Size || c.Col < 0 || c.Col >= p.Size || occupied[c] {
			return false
		}
		if p.AllowTouching {
			continue
		}
		for _, d := range neighbours {
			if occupied[Cell{Row: c.Row + d[0], Col: c.Col + d[1]}] {
				return false
			}
		}
	}
	return true
}
