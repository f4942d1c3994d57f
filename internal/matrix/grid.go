package matrix

import (
	"strconv"

	"github.com/san-kum/corrlab/internal/colormap"
	"github.com/san-kum/corrlab/internal/market"
)

// DiagonalLabel is shown on every diagonal cell.
const DiagonalLabel = "1.00"

type Kind int

const (
	KindCorner Kind = iota
	KindColumnHeader
	KindRowHeader
	KindDiagonal
	KindValue
	// KindMissing marks an off-diagonal position the payload has no cell for.
	KindMissing
)

func (k Kind) String() string {
	switch k {
	case KindCorner:
		return "corner"
	case KindColumnHeader, KindRowHeader:
		return "header"
	case KindDiagonal:
		return "diagonal"
	case KindValue:
		return "value"
	case KindMissing:
		return "missing"
	}
	return "unknown"
}

// Selection is the asset pair a value cell selects.
type Selection struct {
	AssetA string
	AssetB string
}

type Cell struct {
	Row, Col int
	Kind     Kind
	Label    string
	Fill     colormap.RGBA
	Text     colormap.RGBA
	data     market.CorrelationCell
}

// Interactive reports whether the cell carries select and hover actions.
func (c Cell) Interactive() bool {
	return c.Kind == KindValue
}

// Select returns the pair to show when the cell is chosen.
func (c Cell) Select() (Selection, bool) {
	if !c.Interactive() {
		return Selection{}, false
	}
	return Selection{AssetA: c.data.AssetA, AssetB: c.data.AssetB}, true
}

// Hover returns the backing cell for tooltip display.
func (c Cell) Hover() (market.CorrelationCell, bool) {
	if !c.Interactive() {
		return market.CorrelationCell{}, false
	}
	return c.data, true
}

// Grid is a row-major square of cells.
type Grid struct {
	Size          int
	Cells         []Cell
	ReferenceDate string
	names         map[string]string
}

// At returns the cell at (row, col), or nil when out of bounds.
func (g *Grid) At(row, col int) *Cell {
	if row < 0 || col < 0 || row >= g.Size || col >= g.Size {
		return nil
	}
	return &g.Cells[row*g.Size+col]
}

// Rows returns the cells split into rows.
func (g *Grid) Rows() [][]Cell {
	rows := make([][]Cell, g.Size)
	for i := range rows {
		rows[i] = g.Cells[i*g.Size : (i+1)*g.Size]
	}
	return rows
}

// Name returns the display name for an asset id.
func (g *Grid) Name(id string) string {
	if n, ok := g.names[id]; ok && n != "" {
		return n
	}
	return id
}

type Renderer struct {
	Palette colormap.Palette
}

func NewRenderer() *Renderer {
	return &Renderer{Palette: colormap.DefaultPalette}
}

// Render builds the grid for m. A nil matrix yields an empty grid.
func (r *Renderer) Render(m *market.CorrelationMatrix) *Grid {
	if m == nil {
		return &Grid{}
	}
	n := m.Size()
	size := n + 1
	g := &Grid{
		Size:          size,
		Cells:         make([]Cell, 0, size*size),
		ReferenceDate: m.ReferenceDate,
		names:         m.AssetNames,
	}

	g.Cells = append(g.Cells, Cell{Row: 0, Col: 0, Kind: KindCorner})
	for j, id := range m.Assets {
		g.Cells = append(g.Cells, Cell{Row: 0, Col: j + 1, Kind: KindColumnHeader, Label: id})
	}

	for i, id := range m.Assets {
		g.Cells = append(g.Cells, Cell{Row: i + 1, Col: 0, Kind: KindRowHeader, Label: id})
		for j := 0; j < n; j++ {
			g.Cells = append(g.Cells, r.cell(m, i, j))
		}
	}
	return g
}

func (r *Renderer) cell(m *market.CorrelationMatrix, i, j int) Cell {
	c := Cell{Row: i + 1, Col: j + 1}
	if i == j {
		c.Kind = KindDiagonal
		c.Label = DiagonalLabel
		return c
	}
	data, ok := m.Cell(i, j)
	if !ok {
		c.Kind = KindMissing
		c.Label = "-"
		return c
	}
	c.Kind = KindValue
	c.Label = strconv.FormatFloat(data.Correlation, 'f', 2, 64)
	c.Fill, c.Text = r.Palette.Map(data.Correlation)
	c.data = data
	return c
}
