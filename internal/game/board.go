package game

import "fmt"

type shipState struct {
	cells []Cell
	alive int
}

// Board is one participant's own field. It is not safe for concurrent use;
// the owning session serialises access.
type Board struct {
	policy    FleetPolicy
	cells     [][]CellStatus
	shipAt    [][]int // index into ships, -1 for water
	ships     []shipState
	total     int
	remaining int
	accepted  bool
}

func NewBoard(policy FleetPolicy) *Board {
	if policy.Size <= 0 {
		policy.Size = 10
	}
	cells := make([][]CellStatus, policy.Size)
	shipAt := make([][]int, policy.Size)
	for r := range cells {
		cells[r] = make([]CellStatus, policy.Size)
		shipAt[r] = make([]int, policy.Size)
		for c := range shipAt[r] {
			shipAt[r][c] = -1
		}
	}
	return &Board{policy: policy, cells: cells, shipAt: shipAt}
}

func (b *Board) Size() int           { return b.policy.Size }
func (b *Board) Policy() FleetPolicy { return b.policy }
func (b *Board) Accepted() bool      { return b.accepted }
func (b *Board) Total() int          { return b.total }
func (b *Board) Remaining() int      { return b.remaining }

func (b *Board) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < b.policy.Size && c.Col >= 0 && c.Col < b.policy.Size
}

// PlaceFleet validates the layout against the board's policy and, if it
// passes, fixes the ship geometry for the rest of the match.
func (b *Board) PlaceFleet(layout Layout) error {
	if b.accepted {
		return ErrAlreadyAccepted
	}
	if err := b.policy.Validate(layout); err != nil {
		return err
	}
	for i, s := range layout {
		st := shipState{cells: append([]Cell(nil), s.Cells...), alive: len(s.Cells)}
		for _, c := range s.Cells {
			b.cells[c.Row][c.Col] = ShipCell
			b.shipAt[c.Row][c.Col] = i
		}
		b.ships = append(b.ships, st)
		b.total += len(s.Cells)
	}
	b.remaining = b.total
	b.accepted = true
	return nil
}

// Strike applies a single attack. A rejected strike leaves the board as it was.
func (b *Board) Strike(c Cell) (CellStatus, error) {
	if !b.accepted {
		return Empty, ErrNotAccepted
	}
	if !b.InBounds(c) {
		return Empty, fmt.Errorf("%w: %s", ErrOutOfBounds, c)
	}
	cur := b.cells[c.Row][c.Col]
	if cur.Struck() {
		return cur, fmt.Errorf("%w: %s", ErrAlreadyStruck, c)
	}
	if cur == Empty {
		b.cells[c.Row][c.Col] = Miss
		return Miss, nil
	}

	idx := b.shipAt[c.Row][c.Col]
	b.remaining--
	b.ships[idx].alive--
	if b.ships[idx].alive > 0 {
		b.cells[c.Row][c.Col] = Hit
		return Hit, nil
	}
	for _, sc := range b.ships[idx].cells {
		b.cells[sc.Row][sc.Col] = Destructed
	}
	return Destructed, nil
}

// IsFullyDestroyed is true once every ship cell has been struck.
func (b *Board) IsFullyDestroyed() bool {
	return b.accepted && b.remaining == 0
}

func (b *Board) Status(c Cell) CellStatus {
	if !b.InBounds(c) {
		return Empty
	}
	return b.cells[c.Row][c.Col]
}

// Field returns the damaged-field view of this board: struck cells keep their
// status, everything else reads as Empty.
func (b *Board) Field() Field {
	out := make([][]CellStatus, len(b.cells))
	for r, row := range b.cells {
		out[r] = make([]CellStatus, len(row))
		for c, s := range row {
			if s.Struck() {
				out[r][c] = s
			}
		}
	}
	return Field{Cells: out}
}

// Field is a snapshot of an opponent's board restricted to struck cells.
type Field struct {
	Cells [][]CellStatus `json:"cells"`
}

func (f Field) Size() int { return len(f.Cells) }

func (f Field) At(c Cell) CellStatus {
	if c.Row < 0 || c.Row >= len(f.Cells) || c.Col < 0 || c.Col >= len(f.Cells[c.Row]) {
		return Empty
	}
	return f.Cells[c.Row][c.Col]
}

func (f Field) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < len(f.Cells) && c.Col >= 0 && c.Col < len(f.Cells[c.Row])
}

// Open lists the cells that have not been struck yet, row-major.
func (f Field) Open() []Cell {
	var out []Cell
	for r, row := range f.Cells {
		for c, s := range row {
			if !s.Struck() {
				out = append(out, Cell{Row: r, Col: c})
			}
		}
	}
	return out
}
