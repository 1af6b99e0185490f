package cart

// Item is one line of an in-progress cart. Title and Price are captured
// when the line is added, so later catalog edits do not reach into carts
// that already reference the product.
type Item struct {
	ProductID int    `json:"productId"`
	Title     string `json:"title"`
	Price     int    `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Cart holds the current selection of a single session before submission.
// It is pure in-memory state: no operation performs I/O or fails. The
// invariant throughout is at most one line per product id.
//
// Cart itself is not safe for concurrent use; Sessions serializes access
// per user.
type Cart struct {
	lines []Item
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) find(productID int) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem merges the incoming line into the cart: an existing line for
// the same product has its quantity incremented, otherwise the line is
// appended. Callers must pass a positive quantity.
func (c *Cart) AddItem(item Item) {
	if i := c.find(item.ProductID); i >= 0 {
		c.lines[i].Quantity += item.Quantity
		return
	}
	c.lines = append(c.lines, item)
}

// RemoveItem deletes the whole line regardless of its quantity.
func (c *Cart) RemoveItem(productID int) {
	if i := c.find(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// DecrementOrRemove takes one unit off the line; when the quantity would
// drop below 1 the line is removed entirely.
func (c *Cart) DecrementOrRemove(productID int) {
	i := c.find(productID)
	if i < 0 {
		return
	}
	if c.lines[i].Quantity-1 < 1 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return
	}
	c.lines[i].Quantity--
}

// SetQuantity replaces the line's quantity exactly; n < 1 removes the
// line, matching DecrementOrRemove's floor.
func (c *Cart) SetQuantity(productID int, n int) {
	if n < 1 {
		c.RemoveItem(productID)
		return
	}
	if i := c.find(productID); i >= 0 {
		c.lines[i].Quantity = n
	}
}

// Clear empties the cart. Called after a successful order submission.
func (c *Cart) Clear() {
	c.lines = nil
}

// Total is the sum of price*quantity over all lines, recomputed on
// demand.
func (c *Cart) Total() int {
	total := 0
	for _, line := range c.lines {
		total += line.Price * line.Quantity
	}
	return total
}

// ItemCount is the sum of quantities (not the number of lines).
func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// Len is the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Items returns a copy of the current lines, newest last. The copy is
// what order submission freezes into the order payload, so edits that
// land while a submission is in flight cannot corrupt it.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.lines))
	copy(out, c.lines)
	return out
}
