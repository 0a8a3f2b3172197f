package dto

type AddLotInput struct {
	SupplierName string
	ProductID    int64
	UnitPrice    string // decimal text as entered, e.g. "12.50"
	Quantity     int
}

type RestockInput struct {
	SupplierName string
	LotID        int64
	Quantity     int
}
