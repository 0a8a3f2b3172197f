package session

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

// Session is the per-visitor state passed explicitly into cart and checkout
// operations.
type Session struct {
	ID          string     `json:"id"`
	Actor       auth.Actor `json:"actor"`
	DisplayName string     `json:"display_name,omitempty"`
	Cart        model.Cart `json:"cart"`
	Flash       string     `json:"flash,omitempty"`
}

func New(id string) *Session {
	return &Session{ID: id}
}

// SignIn switches the session to a. An anonymous cart carries over to a
// customer; any other change of identity drops the previous actor's cart.
func (s *Session) SignIn(a auth.Actor, displayName string) {
	_, toCustomer := a.CustomerName()
	carry := s.Actor.IsAnonymous() && toCustomer
	if s.Actor != a && !carry {
		s.Cart.Clear()
	}
	s.Actor = a
	s.DisplayName = displayName
}

func (s *Session) SignOut() {
	s.Cart.Clear()
	s.Actor = auth.Anonymous()
	s.DisplayName = ""
}

// PopFlash returns the pending one-shot message and clears it.
func (s *Session) PopFlash() string {
	msg := s.Flash
	s.Flash = ""
	return msg
}

type Store interface {
	// Get returns nil, nil when the session does not exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
