// Package page tracks the current page of a loaded collection.
package page

// Cursor holds the current page index and the number of pages.
//
// Moves are clamped to [0, Count()-1]: stepping past either end leaves the
// cursor where it is. The zero value is an empty cursor with no valid page.
type Cursor struct {
	current int
	count   int
}

// Current returns the current page index.
func (c *Cursor) Current() int { return c.current }

// SetCurrent moves the cursor to index without bounds checks. Callers that
// accept user input check with [Cursor.InRange] first.
func (c *Cursor) SetCurrent(index int) { c.current = index }

// Count returns the number of pages.
func (c *Cursor) Count() int { return c.count }

// SetCount sets the number of pages.
func (c *Cursor) SetCount(n int) { c.count = n }

// Next advances to the following page and returns the resulting index.
// At the last page it does nothing.
func (c *Cursor) Next() int {
	if c.current+1 < c.count {
		c.current++
	}
	return c.current
}

// Prev steps back to the preceding page and returns the resulting index.
// At page 0 it does nothing.
func (c *Cursor) Prev() int {
	if c.current > 0 {
		c.current--
	}
	return c.current
}

// Valid reports whether the current index addresses a page.
func (c *Cursor) Valid() bool { return c.InRange(c.current) }

// InRange reports whether index addresses a page.
func (c *Cursor) InRange(index int) bool { return index >= 0 && index < c.count }

// Reset empties the cursor. It is called on every collection load before the
// new page count is assigned.
func (c *Cursor) Reset() {
	c.current = 0
	c.count = 0
}
