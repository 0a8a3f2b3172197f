package model

type CartEntry struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Cart keeps entries in insertion order, at most one per product.
type Cart struct {
	Entries []CartEntry `json:"entries"`
}

func (c *Cart) Find(productID int64) (int, bool) {
	for i, e := range c.Entries {
		if e.ProductID == productID {
			return i, true
		}
	}
	return -1, false
}

// List returns a copy so callers cannot reorder the cart.
func (c *Cart) List() []CartEntry {
	out := make([]CartEntry, len(c.Entries))
	copy(out, c.Entries)
	return out
}

func (c *Cart) Len() int {
	return len(c.Entries)
}

func (c *Cart) Clear() {
	c.Entries = nil
}
