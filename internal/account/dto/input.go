package dto

type CustomerSignUpInput struct {
	AccountName string
	Password    string
	FirstName   string
	LastName    string
}

type SupplierSignUpInput struct {
	Name         string
	Password     string
	ContactEmail string
}
