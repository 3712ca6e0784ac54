package cart

import (
	"encoding/json"

	"github.com/Kariqs/myfood-api/models"
)

// Cart holds at most one line per menu item, every line with quantity >= 1.
// The zero value is an empty cart.
type Cart struct {
	lines []models.CartLine
}

func New(lines ...models.CartLine) *Cart {
	c := &Cart{}
	for _, l := range lines {
		c.merge(l)
	}
	return c
}

// AddItem adds one unit of item, snapshotting its current price on a new line.
func (c *Cart) AddItem(item models.MenuItem) {
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, models.CartLine{
		MenuItemID:        item.ID,
		Name:              item.Name,
		Quantity:          1,
		UnitPriceSnapshot: item.Price,
	})
}

// RemoveItem reports whether a line was removed.
func (c *Cart) RemoveItem(menuItemID uint) bool {
	i := c.index(menuItemID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

// SetQuantity updates an existing line; qty <= 0 removes it. It reports whether
// the item was in the cart.
func (c *Cart) SetQuantity(menuItemID uint, qty int) bool {
	if qty <= 0 {
		return c.RemoveItem(menuItemID)
	}
	i := c.index(menuItemID)
	if i < 0 {
		return false
	}
	c.lines[i].Quantity = qty
	return true
}

// Quantity returns the quantity of menuItemID, or 0 when it is not in the cart.
func (c *Cart) Quantity(menuItemID uint) int {
	if i := c.index(menuItemID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c *Cart) Clear() {
	c.lines = nil
}

// TotalCount is the number of units across all lines.
func (c *Cart) TotalCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

func (c *Cart) index(menuItemID uint) int {
	for i, l := range c.lines {
		if l.MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

// merge folds a decoded line into the cart, keeping the invariants.
func (c *Cart) merge(l models.CartLine) {
	if l.Quantity < 1 {
		return
	}
	if i := c.index(l.MenuItemID); i >= 0 {
		c.lines[i].Quantity += l.Quantity
		return
	}
	c.lines = append(c.lines, l)
}

type snapshot struct {
	Items []models.CartLine `json:"items"`
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot{Items: c.Lines()})
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	c.lines = nil
	for _, l := range s.Items {
		c.merge(l)
	}
	return nil
}
