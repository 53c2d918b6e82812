package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidLayout   = errors.New("invalid layout")
	ErrAlreadyAccepted = errors.New("fleet already accepted")
	ErrNotAccepted     = errors.New("fleet not placed yet")
	ErrOutOfBounds     = errors.New("cell out of bounds")
	ErrAlreadyStruck   = errors.New("cell already struck")
)

type CellStatus int

const (
	Empty CellStatus = iota
	ShipCell
	Hit
	Miss
	Destructed
)

var statusNames = [...]string{"empty", "ship", "hit", "miss", "destructed"}

func (s CellStatus) String() string {
	if s < Empty || s > Destructed {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// Struck reports whether the cell has already taken a strike.
func (s CellStatus) Struck() bool {
	return s == Hit || s == Miss || s == Destructed
}

func (s CellStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *CellStatus) UnmarshalText(b []byte) error {
	name := strings.ToLower(string(b))
	for i, n := range statusNames {
		if n == name {
			*s = CellStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown cell status %q", name)
}

type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Ship is a straight run of cells. Order of Cells is not significant.
type Ship struct {
	Cells []Cell `json:"cells"`
}

type Layout []Ship

// FleetPolicy decides which layouts a board accepts.
type FleetPolicy struct {
	Size          int         `json:"size"`
	Ships         map[int]int `json:"ships"` // length -> count
	AllowTouching bool        `json:"allowTouching"`
}

// ClassicFleet is the 10x10 board with one four-decker, two three-deckers,
// three two-deckers and four single cells, no two ships touching.
func ClassicFleet() FleetPolicy {
	return FleetPolicy{
		Size:  10,
		Ships: map[int]int{4: 1, 3: 2, 2: 3, 1: 4},
	}
}

func (p FleetPolicy) ShipCells() int {
	n := 0
	for length, count := range p.Ships {
		n += length * count
	}
	return n
}

// ParseFleet reads "length:count,length:count" as used in configuration.
func ParseFleet(s string) (map[int]int, error) {
	out := map[int]int{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var length, count int
		if _, err := fmt.Sscanf(part, "%d:%d", &length, &count); err != nil {
			return nil, fmt.Errorf("fleet entry %q: %w", part, err)
		}
		if length <= 0 || count <= 0 {
			return nil, fmt.Errorf("fleet entry %q: length and count must be positive", part)
		}
		out[length] += count
	}
	if len(out) == 0 {
		return nil, errors.New("empty fleet")
	}
	return out, nil
}
