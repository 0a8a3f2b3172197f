package dto

type ProductFilters struct {
	SupplierName string
	CategoryID   int64
	SearchQuery  string // name / description search
	SortBy       string // name, created_at
	SortOrder    string // asc, desc
	Page         int
	PageSize     int
}
