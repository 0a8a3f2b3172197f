package auth

import (
	"encoding/json"
	"fmt"
)

type Kind int

const (
	KindAnonymous Kind = iota
	KindCustomer
	KindSupplier
)

func (k Kind) String() string {
	switch k {
	case KindCustomer:
		return "customer"
	case KindSupplier:
		return "supplier"
	default:
		return "anonymous"
	}
}

// Actor is exactly one of Anonymous, Customer(account name) or
// Supplier(supplier name). The zero value is Anonymous.
type Actor struct {
	kind Kind
	id   string
}

func Anonymous() Actor { return Actor{} }

func Customer(accountName string) Actor {
	return Actor{kind: KindCustomer, id: accountName}
}

func Supplier(name string) Actor {
	return Actor{kind: KindSupplier, id: name}
}

func (a Actor) Kind() Kind { return a.kind }

// ID is the customer account name or supplier name; empty for Anonymous.
func (a Actor) ID() string { return a.id }

func (a Actor) IsCustomer() bool  { return a.kind == KindCustomer }
func (a Actor) IsSupplier() bool  { return a.kind == KindSupplier }
func (a Actor) IsAnonymous() bool { return a.kind == KindAnonymous }

// CustomerName returns the account name if a is a customer.
func (a Actor) CustomerName() (string, bool) {
	return a.id, a.kind == KindCustomer
}

// SupplierName returns the supplier name if a is a supplier.
func (a Actor) SupplierName() (string, bool) {
	return a.id, a.kind == KindSupplier
}

func (a Actor) String() string {
	if a.kind == KindAnonymous {
		return "anonymous"
	}
	return a.kind.String() + ":" + a.id
}

type actorJSON struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
}

func (a Actor) MarshalJSON() ([]byte, error) {
	return json.Marshal(actorJSON{Kind: a.kind.String(), ID: a.id})
}

func (a *Actor) UnmarshalJSON(b []byte) error {
	var raw actorJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case "customer":
		*a = Customer(raw.ID)
	case "supplier":
		*a = Supplier(raw.ID)
	case "anonymous", "":
		*a = Anonymous()
	default:
		return fmt.Errorf("auth: unknown actor kind %q", raw.Kind)
	}
	if !a.IsAnonymous() && a.id == "" {
		return fmt.Errorf("auth: %s actor without id", raw.Kind)
	}
	return nil
}
