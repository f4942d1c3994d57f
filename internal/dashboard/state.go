package dashboard

import (
	"github.com/san-kum/corrlab/internal/market"
	"github.com/san-kum/corrlab/internal/matrix"
)

// Kind names one of the independently fetched payloads.
type Kind int

const (
	KindMatrix Kind = iota
	KindComparison
	KindInsights
	numKinds
)

// State is the dashboard's single view-state object. It is only touched from
// the bubbletea update loop, so it needs no locking.
type State struct {
	Assets     []market.Asset
	Range      market.Range
	AssetA     string
	AssetB     string
	Matrix     *market.CorrelationMatrix
	Grid       *matrix.Grid
	Comparison *market.Comparison
	Insights   *market.Insights
	Dark       bool
	Cursor     matrix.Position

	renderer *matrix.Renderer
	gens     [numKinds]uint64
}

func NewState(r market.Range, assetA, assetB string, dark bool) *State {
	return &State{
		Range:    r,
		AssetA:   assetA,
		AssetB:   assetB,
		Dark:     dark,
		Cursor:   matrix.Position{Row: 1, Col: 2},
		renderer: matrix.NewRenderer(),
	}
}

// Issue starts a new fetch of kind and returns its generation. Responses
// carrying an older generation are stale.
func (s *State) Issue(k Kind) uint64 {
	s.gens[k]++
	return s.gens[k]
}

// Current reports whether gen is the latest generation issued for k.
func (s *State) Current(k Kind, gen uint64) bool {
	return s.gens[k] == gen
}

// SetRange switches the range. It reports whether anything changed.
func (s *State) SetRange(r market.Range) bool {
	if s.Range == r {
		return false
	}
	s.Range = r
	return true
}

// SetAssets stores the asset universe and repairs a selected pair that is not
// part of it.
func (s *State) SetAssets(assets []market.Asset) {
	s.Assets = assets
	if len(assets) == 0 {
		return
	}
	if s.assetIndex(s.AssetA) < 0 {
		s.AssetA = assets[0].ID
	}
	if s.assetIndex(s.AssetB) < 0 {
		s.AssetB = assets[min(1, len(assets)-1)].ID
	}
}

func (s *State) assetIndex(id string) int {
	for i, a := range s.Assets {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// AssetName returns the display name for id.
func (s *State) AssetName(id string) string {
	if i := s.assetIndex(id); i >= 0 && s.Assets[i].Name != "" {
		return s.Assets[i].Name
	}
	return id
}

// CycleAsset steps asset A (which == 0) or asset B through the universe.
func (s *State) CycleAsset(which, step int) {
	n := len(s.Assets)
	if n == 0 {
		return
	}
	cur := &s.AssetA
	if which != 0 {
		cur = &s.AssetB
	}
	i := s.assetIndex(*cur)
	if i < 0 {
		i = 0
	}
	i = ((i+step)%n + n) % n
	*cur = s.Assets[i].ID
}

// ApplyMatrix stores m if gen is current and rebuilds the grid.
func (s *State) ApplyMatrix(gen uint64, m *market.CorrelationMatrix) bool {
	if !s.Current(KindMatrix, gen) {
		return false
	}
	s.Matrix = m
	s.Grid = s.renderer.Render(m)
	s.clampCursor()
	return true
}

func (s *State) ApplyComparison(gen uint64, c *market.Comparison) bool {
	if !s.Current(KindComparison, gen) {
		return false
	}
	s.Comparison = c
	return true
}

func (s *State) ApplyInsights(gen uint64, ins *market.Insights) bool {
	if !s.Current(KindInsights, gen) {
		return false
	}
	s.Insights = ins
	return true
}

// MoveCursor moves the cursor within the asset rows and columns of the grid.
func (s *State) MoveCursor(dRow, dCol int) {
	s.Cursor.Row += dRow
	s.Cursor.Col += dCol
	s.clampCursor()
}

func (s *State) clampCursor() {
	if s.Grid == nil || s.Grid.Size < 2 {
		s.Cursor = matrix.NoCursor
		return
	}
	hi := s.Grid.Size - 1
	s.Cursor.Row = min(max(s.Cursor.Row, 1), hi)
	s.Cursor.Col = min(max(s.Cursor.Col, 1), hi)
}

// Hovered is the cell under the cursor, or nil.
func (s *State) Hovered() *matrix.Cell {
	if s.Grid == nil {
		return nil
	}
	return s.Grid.At(s.Cursor.Row, s.Cursor.Col)
}

// Tooltip describes the hovered cell. ok is false on diagonal and header
// cells.
func (s *State) Tooltip() (matrix.Tooltip, bool) {
	c := s.Hovered()
	if c == nil {
		return matrix.Tooltip{}, false
	}
	data, ok := c.Hover()
	if !ok {
		return matrix.Tooltip{}, false
	}
	return s.Grid.TooltipFor(data), true
}

// SelectHovered runs the hovered cell's selection action. It reports whether
// the selected pair changed.
func (s *State) SelectHovered() bool {
	c := s.Hovered()
	if c == nil {
		return false
	}
	sel, ok := c.Select()
	if !ok {
		return false
	}
	if sel.AssetA == s.AssetA && sel.AssetB == s.AssetB {
		return false
	}
	s.AssetA, s.AssetB = sel.AssetA, sel.AssetB
	return true
}
