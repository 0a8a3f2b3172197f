package dto

type MovementFilters struct {
	ProductID    int64
	LotID        int64
	MovementType string
	Page         int
	PageSize     int
}
