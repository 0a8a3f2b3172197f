package cart

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/cart/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/session"
)

// UseCase operates on the cart held by the given session. It never writes
// to the database; callers persist the session afterwards.
type UseCase interface {
	AddOrIncrement(ctx context.Context, sess *session.Session, productID int64) (model.CartEntry, error)
	List(sess *session.Session) []model.CartEntry
	Clear(sess *session.Session)
	View(ctx context.Context, sess *session.Session) (*dto.CartView, error)
}
