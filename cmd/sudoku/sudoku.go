package sudoku

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/operator-framework/mustool/cmd/enumerate"
	"github.com/operator-framework/mustool/internal/solver"
	"github.com/operator-framework/mustool/pkg/mus/constraint"
)

// Board is a partially filled 9x9 sudoku. Zero marks an empty cell,
// otherwise a cell holds a number from 1 to 9.
type Board [9][9]int

// ParseBoard reads the 81 cells of a board row by row. Cells are
// digits, with '.' or '0' for empty cells; whitespace is ignored.
func ParseBoard(s string) (*Board, error) {
	cells := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if len(cells) != 81 {
		return nil, fmt.Errorf("invalid board: expected 81 cells, got %d", len(cells))
	}
	var b Board
	for i, r := range cells {
		switch {
		case r == '.' || r == '0':
		case r >= '1' && r <= '9':
			b[i/9][i%9] = int(r - '0')
		default:
			return nil, fmt.Errorf("invalid cell %q at row %d, column %d", r, i/9+1, i%9+1)
		}
	}
	return &b, nil
}

// GetID returns the variable stating that the cell at row, col holds
// num. All three are zero based.
func GetID(row, col, num int) constraint.Identifier {
	return constraint.Identifier(fmt.Sprintf("r%dc%d=%d", row+1, col+1, num+1))
}

func cellID(row, col int) constraint.Identifier {
	return constraint.Identifier(fmt.Sprintf("r%dc%d", row+1, col+1))
}

// Givens returns one constraint per filled cell, row by row.
func (b *Board) Givens() []constraint.Applied {
	var givens []constraint.Applied
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			if n := b[row][col]; n != 0 {
				givens = append(givens, constraint.Applied{
					Subject:    GetID(row, col, n-1),
					Constraint: constraint.Mandatory(),
				})
			}
		}
	}
	return givens
}

// Instance returns the givens of the board as constraints, under the
// rules of sudoku as background.
func (b *Board) Instance() *enumerate.Instance {
	givens := b.Givens()
	labels := make([]string, len(givens))
	for i, g := range givens {
		labels[i] = g.String()
	}
	return &enumerate.Instance{
		Constraints: givens,
		Background:  Rules(),
		Labels:      labels,
	}
}

// Rules returns the constraints every solved board satisfies.
// adapted from: https://github.com/go-air/gini/blob/871d828a26852598db2b88f436549634ba9533ff/sudoku_test.go#L10
func Rules() []constraint.Applied {
	var rules []constraint.Applied

	// every position on the board holds exactly one number
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			ids := make([]constraint.Identifier, 9)
			for n := 0; n < 9; n++ {
				ids[n] = GetID(row, col, n)
			}
			cell := cellID(row, col)
			rules = append(rules,
				constraint.Applied{Subject: cell, Constraint: constraint.Mandatory()},
				constraint.Applied{Subject: cell, Constraint: constraint.Dependency(ids...)},
				constraint.Applied{Subject: cell, Constraint: constraint.AtMost(1, ids...)},
			)
		}
	}

	// every row, column and box has unique numbers
	type pos struct{ row, col int }
	unique := func(cells []pos) {
		for n := 0; n < 9; n++ {
			for i, a := range cells {
				for _, b := range cells[i+1:] {
					rules = append(rules, constraint.Applied{
						Subject:    GetID(a.row, a.col, n),
						Constraint: constraint.Conflict(GetID(b.row, b.col, n)),
					})
				}
			}
		}
	}
	for i := 0; i < 9; i++ {
		row := make([]pos, 9)
		col := make([]pos, 9)
		box := make([]pos, 9)
		for j := 0; j < 9; j++ {
			row[j] = pos{i, j}
			col[j] = pos{j, i}
			box[j] = pos{3*(i/3) + j/3, 3*(i%3) + j%3}
		}
		unique(row)
		unique(col)
		unique(box)
	}
	return rules
}

// printBoard prints the board of the last model of v.
func printBoard(w io.Writer, v solver.Valuer) {
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			found := false
			for n := 0; n < 9; n++ {
				if v.Value(GetID(row, col, n)) {
					fmt.Fprintf(w, "%d", n+1)
					found = true
					break
				}
			}
			if !found {
				fmt.Fprintf(w, " ")
			}
			if col != 8 {
				fmt.Fprintf(w, " ")
			}
		}
		fmt.Fprintf(w, "\n")
	}
}
