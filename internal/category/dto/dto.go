package dto

type CategoryFilters struct {
	Page     int
	PageSize int
}
