package layout

import (
	"fmt"
	"sync"

	"frame/internal/rows"
	"frame/internal/services"
)

// DefaultColumnWidth is the starting width of every column, in percent.
const DefaultColumnWidth = 20.0

// Columns holds the width of each table column as a percentage of the
// viewport.
type Columns struct {
	mu       sync.Mutex
	widths   map[rows.Field]float64
	onChange func(column rows.Field, width float64)
}

// NewColumns returns the default layout: every display column at 20%.
func NewColumns() *Columns {
	widths := make(map[rows.Field]float64, len(rows.AllFields))
	for _, f := range rows.AllFields {
		widths[f] = DefaultColumnWidth
	}
	return &Columns{widths: widths}
}

// OnChange registers fn to run after every width change.
func (c *Columns) OnChange(fn func(column rows.Field, width float64)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Width returns the width of column.
func (c *Columns) Width(column rows.Field) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.widths[column]
	return w, ok
}

// Set stores a width for a known column.
func (c *Columns) Set(column rows.Field, width float64) error {
	c.mu.Lock()
	if _, ok := c.widths[column]; !ok {
		c.mu.Unlock()
		return services.Wrap(services.ErrNotFound, "layout", "set width", fmt.Sprintf("unknown column %q", column), nil)
	}
	c.widths[column] = width
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(column, width)
	}
	return nil
}

// Snapshot returns a copy of all widths.
func (c *Columns) Snapshot() map[rows.Field]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[rows.Field]float64, len(c.widths))
	for k, v := range c.widths {
		out[k] = v
	}
	return out
}
