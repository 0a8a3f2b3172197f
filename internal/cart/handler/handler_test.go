package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/cart/usecase"
	"github.com/fekuna/omnipos-storefront-service/internal/catalog"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/view/viewtest"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProducts struct {
	product.UseCase
	items map[int64]model.Product
}

func (s stubProducts) GetProduct(_ context.Context, id int64) (*model.Product, error) {
	p, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s stubProducts) GetProducts(_ context.Context, ids []int64) (map[int64]model.Product, error) {
	out := map[int64]model.Product{}
	for _, id := range ids {
		if p, ok := s.items[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type stubCatalog struct {
	catalog.UseCase
	stock map[int64]int
}

func (s stubCatalog) AvailableQuantity(_ context.Context, productID int64) (int, error) {
	return s.stock[productID], nil
}

func (s stubCatalog) ListAvailableByProducts(_ context.Context, ids []int64) (map[int64][]model.CatalogLot, error) {
	out := map[int64][]model.CatalogLot{}
	for _, id := range ids {
		if n := s.stock[id]; n > 0 {
			out[id] = []model.CatalogLot{{ID: id * 10, ProductID: id, RemainingQuantity: n}}
		}
	}
	return out, nil
}

func setup(t *testing.T) *viewtest.Env {
	env := viewtest.New(t)
	products := stubProducts{items: map[int64]model.Product{
		1: {BaseModel: model.BaseModel{ID: 1}, Name: "Desk lamp"},
		2: {BaseModel: model.BaseModel{ID: 2}, Name: "Kettle"},
	}}
	stock := stubCatalog{stock: map[int64]int{1: 2}}
	uc := usecase.NewCartUseCase(stock, products, logger.NewNop())
	NewCartHandler(uc, products, env.Renderer, logger.NewNop()).RegisterRoutes(env.Router)
	return env
}

func add(env *viewtest.Env, productID, sid string) int {
	return env.Post("/cart/add", url.Values{"product_id": {productID}}, sid).Code
}

func TestAddUpToAvailableStock(t *testing.T) {
	env := setup(t)
	sid := env.SignIn(t, auth.Customer("alice"), "Alice")

	require.Equal(t, http.StatusSeeOther, add(env, "1", sid))
	assert.Equal(t, "Desk lamp added to your cart.", env.Session(t, sid).Flash)
	require.Equal(t, http.StatusSeeOther, add(env, "1", sid))

	require.Equal(t, http.StatusSeeOther, add(env, "1", sid))
	sess := env.Session(t, sid)
	assert.Equal(t, "Only 2 of Desk lamp are available.", sess.Flash)
	assert.Equal(t, []model.CartEntry{{ProductID: 1, Quantity: 2}}, sess.Cart.Entries)
}

func TestFirstAddSkipsStockCheck(t *testing.T) {
	env := setup(t)
	sid := env.SignIn(t, auth.Customer("alice"), "Alice")

	require.Equal(t, http.StatusSeeOther, add(env, "2", sid))
	assert.Equal(t, []model.CartEntry{{ProductID: 2, Quantity: 1}}, env.Session(t, sid).Cart.Entries)

	w := env.Get("/cart", sid)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="short"`)
	assert.Contains(t, w.Body.String(), "Kettle")
}

func TestAddUnknownProduct(t *testing.T) {
	env := setup(t)

	assert.Equal(t, http.StatusNotFound, add(env, "404", ""))
	assert.Equal(t, http.StatusNotFound, add(env, "x", ""))
}

func TestClearCart(t *testing.T) {
	env := setup(t)
	sid := env.SignIn(t, auth.Customer("alice"), "Alice")
	add(env, "1", sid)

	w := env.Post("/cart/clear", url.Values{}, sid)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 0, env.Session(t, sid).Cart.Len())

	w = env.Get("/cart", sid)
	assert.Contains(t, w.Body.String(), "Your cart has been cleared.")
	assert.Contains(t, w.Body.String(), "Your cart is empty.")
}
