package domain

import "strings"

// CartLine is one product in the cart. Quantity is always >= 1.
type CartLine struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	VendorID    string  `json:"vendorId"`
	VendorName  string  `json:"vendorName"`
	Description string  `json:"description,omitempty"`
}

// Subtotal is price times quantity
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// Vendor identifies the seller of the cart's lines
type Vendor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VendorGroup is the lines belonging to one vendor
type VendorGroup struct {
	Vendor   Vendor     `json:"vendor"`
	Lines    []CartLine `json:"lines"`
	Subtotal float64    `json:"subtotal"`
}

// CartSnapshot is a consistent view of the cart at one instant
type CartSnapshot struct {
	Items     []CartLine    `json:"items"`
	Vendor    *Vendor       `json:"vendor"`
	Groups    []VendorGroup `json:"groups"`
	Total     float64       `json:"total"`
	ItemCount int           `json:"itemCount"`
}

// Cart is the in-memory shopping cart aggregate.
//
// Invariants:
//   - every line shares one vendor id
//   - line ids are unique and keep insertion order
//   - quantities are >= 1; reaching 0 removes the line
//
// Cart is not safe for concurrent use; CartService serializes access.
type Cart struct {
	lines []CartLine
}

// NewCart returns an empty cart
func NewCart() *Cart {
	return &Cart{lines: []CartLine{}}
}

// Lines returns a copy of the lines in insertion order
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Snapshot copies the lines together with their derived totals
func (c *Cart) Snapshot() CartSnapshot {
	return CartSnapshot{
		Items:     c.Lines(),
		Vendor:    c.Vendor(),
		Groups:    c.ByVendor(),
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
	}
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Vendor returns the sole vendor represented, or nil when empty
func (c *Cart) Vendor() *Vendor {
	if len(c.lines) == 0 {
		return nil
	}
	first := c.lines[0]
	return &Vendor{ID: first.VendorID, Name: first.VendorName}
}

// ConflictsWith reports whether adding an item from vendorID would break the
// single-vendor invariant
func (c *Cart) ConflictsWith(vendorID string) bool {
	if len(c.lines) == 0 {
		return false
	}
	return c.lines[0].VendorID != vendorID
}

// Add increments an existing line by qty or appends a new one.
// It returns ErrVendorMismatch instead of mixing vendors.
func (c *Cart) Add(item Product, qty int) error {
	if err := ValidateCartItem(item, qty); err != nil {
		return err
	}
	if c.ConflictsWith(item.VendorID) {
		return ErrVendorMismatch
	}

	if idx := c.indexOf(item.ID); idx >= 0 {
		c.lines[idx].Quantity += qty
		return nil
	}
	c.lines = append(c.lines, newCartLine(item, qty))
	return nil
}

// Replace discards every line and leaves only item at qty
func (c *Cart) Replace(item Product, qty int) error {
	if err := ValidateCartItem(item, qty); err != nil {
		return err
	}
	c.lines = []CartLine{newCartLine(item, qty)}
	return nil
}

// Remove deletes the line with id; absent ids are ignored
func (c *Cart) Remove(id string) {
	idx := c.indexOf(id)
	if idx < 0 {
		return
	}
	// preserve order
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
}

// SetQuantity sets a line's quantity exactly; qty < 1 removes the line
func (c *Cart) SetQuantity(id string, qty int) {
	if qty < 1 {
		c.Remove(id)
		return
	}
	if idx := c.indexOf(id); idx >= 0 {
		c.lines[idx].Quantity = qty
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.lines = []CartLine{}
}

// Total is the sum of price * quantity over all lines
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// ItemCount is the sum of quantities over all lines
func (c *Cart) ItemCount() int {
	var n int
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Quantity returns the quantity for id, or 0 when absent
func (c *Cart) Quantity(id string) int {
	if idx := c.indexOf(id); idx >= 0 {
		return c.lines[idx].Quantity
	}
	return 0
}

// ByVendor groups lines by vendor id in first-seen order. It does not rely on
// the single-vendor invariant.
func (c *Cart) ByVendor() []VendorGroup {
	groups := []VendorGroup{}
	index := make(map[string]int)
	for _, l := range c.lines {
		i, ok := index[l.VendorID]
		if !ok {
			i = len(groups)
			index[l.VendorID] = i
			groups = append(groups, VendorGroup{
				Vendor: Vendor{ID: l.VendorID, Name: l.VendorName},
				Lines:  []CartLine{},
			})
		}
		groups[i].Lines = append(groups[i].Lines, l)
		groups[i].Subtotal += l.Subtotal()
	}
	return groups
}

func (c *Cart) indexOf(id string) int {
	for i := range c.lines {
		if c.lines[i].ID == id {
			return i
		}
	}
	return -1
}

// ValidateCartItem checks qty >= 1 and that item has an id and vendor
func ValidateCartItem(item Product, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if strings.TrimSpace(item.ID) == "" || strings.TrimSpace(item.VendorID) == "" {
		return ErrInvalidItem
	}
	return nil
}

func newCartLine(item Product, qty int) CartLine {
	return CartLine{
		ID:          item.ID,
		Name:        item.Name,
		Price:       item.Price,
		Quantity:    qty,
		ImageURL:    item.ImageURL,
		VendorID:    item.VendorID,
		VendorName:  item.VendorName,
		Description: item.Description,
	}
}
