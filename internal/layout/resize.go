package layout

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"frame/internal/rows"
	"frame/internal/services"
)

// ErrNoDrag is returned by Move when no drag is in progress.
var ErrNoDrag = errors.New("no drag in progress")

// Heights is the row store surface the row resizer needs.
type Heights interface {
	Get(id string) (rows.Row, bool)
	SetHeight(id string, height int) bool
}

// RowResizer drags one row's height at a time.
type RowResizer struct {
	store    Heights
	min, max int

	mu          sync.Mutex
	active      bool
	rowID       string
	startY      float64
	startHeight int
}

// NewRowResizer clamps heights to [min, max].
func NewRowResizer(store Heights, min, max int) *RowResizer {
	return &RowResizer{store: store, min: min, max: max}
}

// Begin records the pointer position and the row's current height.
func (r *RowResizer) Begin(rowID string, y float64) error {
	row, ok := r.store.Get(rowID)
	if !ok {
		return services.Wrap(services.ErrNotFound, "layout", "begin row drag", fmt.Sprintf("unknown row %q", rowID), nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = true
	r.rowID = rowID
	r.startY = y
	r.startHeight = row.Height
	return nil
}

// Move sets the height to the starting height plus the pointer delta.
func (r *RowResizer) Move(y float64) (int, error) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return 0, ErrNoDrag
	}
	height := clampInt(r.startHeight+int(math.Round(y-r.startY)), r.min, r.max)
	rowID := r.rowID
	r.mu.Unlock()

	r.store.SetHeight(rowID, height)
	return height, nil
}

// End stops the drag. Calling End without a drag is harmless.
func (r *RowResizer) End() {
	r.mu.Lock()
	r.active = false
	r.rowID = ""
	r.mu.Unlock()
}

// Active reports the row being dragged, if any.
func (r *RowResizer) Active() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rowID, r.active
}

// ColumnResizer drags one column's width at a time.
type ColumnResizer struct {
	columns  *Columns
	min, max float64

	mu         sync.Mutex
	active     bool
	column     rows.Field
	startX     float64
	startWidth float64
	viewport   float64
}

// NewColumnResizer clamps widths to [min, max] percent.
func NewColumnResizer(columns *Columns, min, max float64) *ColumnResizer {
	return &ColumnResizer{columns: columns, min: min, max: max}
}

// Begin records the pointer position, the viewport width in pixels, and the
// column's current width.
func (c *ColumnResizer) Begin(column rows.Field, x, viewportWidth float64) error {
	if viewportWidth <= 0 {
		return services.Wrap(services.ErrInvalidInput, "layout", "begin column drag", "viewport width must be positive", nil)
	}
	width, ok := c.columns.Width(column)
	if !ok {
		return services.Wrap(services.ErrNotFound, "layout", "begin column drag", fmt.Sprintf("unknown column %q", column), nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = true
	c.column = column
	c.startX = x
	c.startWidth = width
	c.viewport = viewportWidth
	return nil
}

// Move converts the pointer delta to a percentage of the viewport and applies
// it to the starting width.
func (c *ColumnResizer) Move(x float64) (float64, error) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return 0, ErrNoDrag
	}
	delta := (x - c.startX) / c.viewport * 100
	width := math.Min(math.Max(c.startWidth+delta, c.min), c.max)
	column := c.column
	c.mu.Unlock()

	if err := c.columns.Set(column, width); err != nil {
		return 0, err
	}
	return width, nil
}

// End stops the drag.
func (c *ColumnResizer) End() {
	c.mu.Lock()
	c.active = false
	c.column = ""
	c.mu.Unlock()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
