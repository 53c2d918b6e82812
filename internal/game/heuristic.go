package game

// Unavailable marks a cell that cannot be targeted in TargetScores.
const Unavailable = -1 << 30

type TargetWeights struct {
	Adjacent  int // orthogonally next to a hit on an unfinished ship
	Line      int // extends a line of two hits
	NearWreck int // touches a destroyed ship
	Parity    int // checkerboard cell, useful while nothing is hit
}

func DefaultTargetWeights() TargetWeights {
	return TargetWeights{
		Adjacent:  50,
		Line:      100,
		NearWreck: -1000,
		Parity:    1,
	}
}

var orthogonal = [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// TargetScores rates every cell of a damaged field. Struck cells get Unavailable.
func TargetScores(f Field, w TargetWeights) [][]int {
	out := make([][]int, len(f.Cells))
	for r, row := range f.Cells {
		out[r] = make([]int, len(row))
		for c, s := range row {
			if s.Struck() {
				out[r][c] = Unavailable
				continue
			}
			out[r][c] = scoreCell(f, Cell{Row: r, Col: c}, w)
		}
	}
	return out
}

func scoreCell(f Field, cell Cell, w TargetWeights) int {
	score := 0
	if (cell.Row+cell.Col)%2 == 0 {
		score += w.Parity
	}

	for _, d := range orthogonal {
		one := Cell{Row: cell.Row + d[0], Col: cell.Col + d[1]}
		if f.At(one) != Hit {
			continue
		}
		score += w.Adjacent
		two := Cell{Row: one.Row + d[0], Col: one.Col + d[1]}
		if f.At(two) == Hit {
			score += w.Line
		}
	}

	for _, d := range neighbours {
		if f.At(Cell{Row: cell.Row + d[0], Col: cell.Col + d[1]}) == Destructed {
			score += w.NearWreck
			break
		}
	}
	return score
}
