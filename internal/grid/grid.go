// Package grid implements the Infinity Storm playing field: a 6-column by
// 5-row board of symbols, cluster (4-connected flood-fill) detection, and
// the gravity/refill mechanics that drive each cascade step. The column/row
// and clone/serialize conventions follow the base game's reel-strip Grid
// type; the win-detection rule is replaced wholesale (ways-of-a-kind per
// reel becomes flood-fill clustering across the whole board).
package grid

import (
	"encoding/json"
	"fmt"

	"github.com/infinitystorm/server/internal/symbols"
)

const (
	// Cols is the number of grid columns.
	Cols = 6
	// Rows is the number of visible rows per column.
	Rows = 5
	// MinClusterSize is the minimum number of 4-connected matching cells
	// required to form a paying cluster.
	MinClusterSize = 8
)

// Cell is a single grid position. Gold marks a mystery variant that turns
// into Wild when it participates in a winning cluster.
type Cell struct {
	Symbol symbols.Symbol `json:"symbol"`
	Gold   bool           `json:"gold,omitempty"`
}

// Empty reports whether the cell holds no symbol (a post-removal hole,
// mid-cascade only — a returned/serialized grid is never left with holes).
func (c Cell) Empty() bool {
	return c.Symbol == ""
}

// Grid is addressed Grid[col][row], row 0 at the top.
type Grid [][]Cell

// New allocates an empty Cols x Rows grid.
func New() Grid {
	g := make(Grid, Cols)
	for c := range g {
		g[c] = make([]Cell, Rows)
	}
	return g
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for c := range g {
		out[c] = make([]Cell, len(g[c]))
		copy(out[c], g[c])
	}
	return out
}

// Get returns the cell at (col, row). Out-of-bounds returns a zero Cell.
func (g Grid) Get(col, row int) Cell {
	if col < 0 || col >= len(g) || row < 0 || row >= len(g[col]) {
		return Cell{}
	}
	return g[col][row]
}

// Set writes the cell at (col, row).
func (g Grid) Set(col, row int, cell Cell) {
	if col < 0 || col >= len(g) || row < 0 || row >= len(g[col]) {
		return
	}
	g[col][row] = cell
}

// Position identifies a single cell's coordinates.
type Position struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Cluster is one connected group of matching cells large enough to pay.
type Cluster struct {
	Symbol    symbols.Symbol `json:"symbol"`
	Positions []Position     `json:"positions"`
}

// Size returns the number of cells in the cluster.
func (c Cluster) Size() int { return len(c.Positions) }

// FindClusters runs 4-connected flood fill over the whole board and returns
// every cluster that meets MinClusterSize. Wild cells join and are counted
// toward any adjacent paying symbol's cluster (a Wild-only region, with no
// adjacent paying symbol, never pays on its own).
func FindClusters(g Grid) []Cluster {
	visited := make([][]bool, len(g))
	for c := range visited {
		visited[c] = make([]bool, len(g[c]))
	}

	var clusters []Cluster
	for col := 0; col < len(g); col++ {
		for row := 0; row < len(g[col]); row++ {
			if visited[col][row] {
				continue
			}
			cell := g[col][row]
			if cell.Empty() || cell.Symbol == symbols.Wild || cell.Symbol == symbols.Scatter {
				continue
			}
			positions := floodFill(g, visited, col, row, cell.Symbol)
			if len(positions) >= MinClusterSize {
				clusters = append(clusters, Cluster{Symbol: cell.Symbol, Positions: positions})
			}
		}
	}
	return clusters
}

// floodFill walks the 4-connected region of cells matching target (directly
// or via Wild substitution), marking every visited cell so each region is
// only explored once regardless of which cell the scan started from.
func floodFill(g Grid, visited [][]bool, startCol, startRow int, target symbols.Symbol) []Position {
	type stackEntry struct{ col, row int }
	stack := []stackEntry{{startCol, startRow}}
	var positions []Position

	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if e.col < 0 || e.col >= len(g) || e.row < 0 || e.row >= len(g[e.col]) {
			continue
		}
		if visited[e.col][e.row] {
			continue
		}
		cell := g[e.col][e.row]
		matches := cell.Symbol == target || (cell.Symbol == symbols.Wild && symbols.CanBeSubstituted(target))
		if !matches {
			continue
		}

		visited[e.col][e.row] = true
		positions = append(positions, Position{Col: e.col, Row: e.row})

		stack = append(stack,
			stackEntry{e.col - 1, e.row},
			stackEntry{e.col + 1, e.row},
			stackEntry{e.col, e.row - 1},
			stackEntry{e.col, e.row + 1},
		)
	}
	return positions
}

// Remove clears every position in clusters, turning Gold cells into Wild
// instead of clearing them (the mystery-symbol payout embellishment).
func (g Grid) Remove(clusters []Cluster) {
	for _, cl := range clusters {
		for _, p := range cl.Positions {
			cell := g.Get(p.Col, p.Row)
			if cell.Gold {
				g.Set(p.Col, p.Row, Cell{Symbol: symbols.Wild})
				continue
			}
			g.Set(p.Col, p.Row, Cell{})
		}
	}
}

// Drop applies gravity independently to each column: non-empty cells settle
// to the bottom, leaving holes at the top for Refill to populate.
func (g Grid) Drop() {
	for col := range g {
		write := len(g[col]) - 1
		for row := len(g[col]) - 1; row >= 0; row-- {
			if !g[col][row].Empty() {
				g[col][write] = g[col][row]
				if write != row {
					g[col][row] = Cell{}
				}
				write--
			}
		}
		for row := write; row >= 0; row-- {
			g[col][row] = Cell{}
		}
	}
}

// Refiller draws a new symbol for a single empty cell. The engine supplies
// one backed by the configured weight table and an RNG.
type Refiller interface {
	Draw() (symbols.Symbol, bool, error)
}

// Refill fills every remaining hole from the top of each column using fn.
func (g Grid) Refill(fn Refiller) error {
	for col := range g {
		for row := 0; row < len(g[col]); row++ {
			if !g[col][row].Empty() {
				continue
			}
			sym, gold, err := fn.Draw()
			if err != nil {
				return fmt.Errorf("grid: refill col %d row %d: %w", col, row, err)
			}
			g[col][row] = Cell{Symbol: sym, Gold: gold}
		}
	}
	return nil
}

// CountSymbol returns the number of cells across the whole grid holding sym.
func (g Grid) CountSymbol(sym symbols.Symbol) int {
	n := 0
	for col := range g {
		for row := range g[col] {
			if g[col][row].Symbol == sym {
				n++
			}
		}
	}
	return n
}

// IsComplete reports that every cell is populated (no mid-cascade holes) —
// an invariant that must hold for any grid handed back across the API
// boundary.
func (g Grid) IsComplete() bool {
	for col := range g {
		for row := range g[col] {
			if g[col][row].Empty() {
				return false
			}
		}
	}
	return true
}

// ToJSON serializes the grid.
func (g Grid) ToJSON() ([]byte, error) {
	return json.Marshal(g)
}

// FromJSON deserializes a grid.
func FromJSON(data []byte) (Grid, error) {
	var g Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("grid: unmarshal: %w", err)
	}
	return g, nil
}
