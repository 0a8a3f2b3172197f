package dto

type CreateProductInput struct {
	SupplierName string
	CategoryID   int64 // 0 means uncategorised
	Name         string
	Description  string
}

// UpdateProductInput only carries the supplier-editable fields.
type UpdateProductInput struct {
	ID           int64
	SupplierName string // must own the product
	Name         string
	Description  string
}
