package model

// Product is owned by a supplier. Only Name and Description change after creation.
type Product struct {
	BaseModel
	SupplierName string       `db:"supplier_name" json:"supplier_name"`
	CategoryID   *int64       `db:"category_id" json:"category_id"` // Nullable
	Name         string       `db:"name" json:"name"`
	Description  string       `db:"description" json:"description"`
	Category     *Category    `db:"-" json:"category,omitempty"` // Joined data
	Lots         []CatalogLot `db:"-" json:"-"`
}

// AvailableQuantity sums remaining stock over the loaded lots.
func (p *Product) AvailableQuantity() int {
	total := 0
	for _, l := range p.Lots {
		total += l.RemainingQuantity
	}
	return total
}
