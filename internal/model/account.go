package model

import "time"

type Customer struct {
	AccountName  string    `db:"account_name"`
	PasswordHash string    `db:"password_hash"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	CreatedAt    time.Time `db:"created_at"`
}

type Supplier struct {
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	ContactEmail string    `db:"contact_email"`
	CreatedAt    time.Time `db:"created_at"`
}
