package dto

type CartLine struct {
	ProductID   int64
	ProductName string
	Quantity    int
	Available   int
	// Exceeds marks lines that can no longer be fulfilled as requested.
	Exceeds bool
}

type CartView struct {
	Lines        []CartLine
	HasShortfall bool
}
