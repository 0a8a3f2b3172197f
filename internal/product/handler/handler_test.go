package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/catalog"
	"github.com/fekuna/omnipos-storefront-service/internal/category"
	categoryDto "github.com/fekuna/omnipos-storefront-service/internal/category/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/view/viewtest"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Stubs embed the interfaces so only the methods under test need bodies.

type stubProducts struct {
	product.UseCase
	items   map[int64]*model.Product
	filters *dto.ProductFilters
	updated *dto.UpdateProductInput
}

func (s *stubProducts) GetProduct(_ context.Context, id int64) (*model.Product, error) {
	return s.items[id], nil
}

func (s *stubProducts) ListProducts(_ context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	s.filters = f
	var out []model.Product
	for _, p := range s.items {
		if f.SupplierName == "" || p.SupplierName == f.SupplierName {
			out = append(out, *p)
		}
	}
	return out, 25, nil
}

func (s *stubProducts) TopSellers(_ context.Context, n int) ([]model.Product, error) {
	return []model.Product{*s.items[1]}, nil
}

func (s *stubProducts) CreateProduct(_ context.Context, in *dto.CreateProductInput) (*model.Product, error) {
	if in.Name == "" {
		return nil, model.ErrInvalidInput
	}
	p := &model.Product{BaseModel: model.BaseModel{ID: 99}, SupplierName: in.SupplierName, Name: in.Name}
	s.items[p.ID] = p
	return p, nil
}

func (s *stubProducts) UpdateProduct(_ context.Context, in *dto.UpdateProductInput) (*model.Product, error) {
	s.updated = in
	p, ok := s.items[in.ID]
	if !ok {
		return nil, model.ErrNotFound
	}
	if p.SupplierName != in.SupplierName {
		return nil, model.ErrForbidden
	}
	p.Name = in.Name
	return p, nil
}

type stubCatalog struct {
	catalog.UseCase
	lots map[int64][]model.CatalogLot
}

func (s *stubCatalog) ListAvailable(_ context.Context, productID int64) ([]model.CatalogLot, error) {
	var out []model.CatalogLot
	for _, l := range s.lots[productID] {
		if l.IsAvailable() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *stubCatalog) ListAvailableByProducts(ctx context.Context, ids []int64) (map[int64][]model.CatalogLot, error) {
	out := map[int64][]model.CatalogLot{}
	for _, id := range ids {
		out[id], _ = s.ListAvailable(ctx, id)
	}
	return out, nil
}

func (s *stubCatalog) ListLots(_ context.Context, productID int64) ([]model.CatalogLot, error) {
	return s.lots[productID], nil
}

type stubCategories struct {
	category.UseCase
}

func (stubCategories) ListCategories(context.Context, *categoryDto.CategoryFilters) ([]model.Category, int, error) {
	return []model.Category{{BaseModel: model.BaseModel{ID: 3}, Name: "Lighting"}}, 1, nil
}

func (stubCategories) GetCategory(_ context.Context, id int64) (*model.Category, error) {
	return &model.Category{BaseModel: model.BaseModel{ID: id}, Name: "Lighting"}, nil
}

func setup(t *testing.T) (*viewtest.Env, *stubProducts) {
	env := viewtest.New(t)
	cat := int64(3)
	products := &stubProducts{items: map[int64]*model.Product{
		1: {BaseModel: model.BaseModel{ID: 1}, SupplierName: "acme", CategoryID: &cat, Name: "Desk lamp", Description: "bright"},
		2: {BaseModel: model.BaseModel{ID: 2}, SupplierName: "globex", Name: "Kettle"},
	}}
	lots := &stubCatalog{lots: map[int64][]model.CatalogLot{
		1: {
			{ID: 10, ProductID: 1, UnitPrice: 1250, RemainingQuantity: 4},
			{ID: 11, ProductID: 1, UnitPrice: 999, RemainingQuantity: 0},
		},
	}}
	NewProductHandler(products, lots, stubCategories{}, env.Renderer, logger.NewNop()).RegisterRoutes(env.Router)
	return env, products
}

func TestHome(t *testing.T) {
	env, _ := setup(t)

	w := env.Get("/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Desk lamp")
}

func TestShowListsAvailableLotsOnly(t *testing.T) {
	env, _ := setup(t)

	w := env.Get("/products/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "$12.50")
	assert.NotContains(t, body, "$9.99")
	assert.Contains(t, body, "Lighting")

	assert.Equal(t, http.StatusNotFound, env.Get("/products/404", "").Code)
	assert.Equal(t, http.StatusNotFound, env.Get("/products/abc", "").Code)
}

func TestBrowsePassesFilters(t *testing.T) {
	env, products := setup(t)

	w := env.Get("/products?category=3&q=lamp&page=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), products.filters.CategoryID)
	assert.Equal(t, "lamp", products.filters.SearchQuery)
	assert.Equal(t, 2, products.filters.Page)
	assert.Equal(t, browsePageSize, products.filters.PageSize)
	assert.Contains(t, w.Body.String(), "Page 2 of 3")
}

func TestSupplierPagesRequireSupplier(t *testing.T) {
	env, _ := setup(t)
	sid := env.SignIn(t, auth.Customer("alice"), "Alice")

	w := env.Get("/supplier/products", sid)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestSupplierProductsShowsSoldOutLots(t *testing.T) {
	env, products := setup(t)
	sid := env.SignIn(t, auth.Supplier("acme"), "acme")

	w := env.Get("/supplier/products", sid)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "acme", products.filters.SupplierName)
	body := w.Body.String()
	assert.Contains(t, body, "Desk lamp")
	assert.Contains(t, body, "$9.99")
	assert.NotContains(t, body, "Kettle")
}

func TestCreateProduct(t *testing.T) {
	env, products := setup(t)
	sid := env.SignIn(t, auth.Supplier("acme"), "acme")

	w := env.Post("/supplier/products", url.Values{"name": {""}}, sid)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.Post("/supplier/products", url.Values{"name": {"Torch"}, "category_id": {"3"}}, sid)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "acme", products.items[99].SupplierName)
	assert.Equal(t, "Torch saved.", env.Session(t, sid).Flash)
}

func TestUpdateOnlyOwnProducts(t *testing.T) {
	env, products := setup(t)
	sid := env.SignIn(t, auth.Supplier("acme"), "acme")

	w := env.Post("/supplier/products/2", url.Values{"name": {"Mine now"}}, sid)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Kettle", products.items[2].Name)

	assert.Equal(t, http.StatusForbidden, env.Get("/supplier/products/2/edit", sid).Code)

	w = env.Post("/supplier/products/1", url.Values{"name": {"Desk lamp XL"}, "description": {"brighter"}}, sid)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "Desk lamp XL", products.items[1].Name)
	assert.Equal(t, "brighter", products.updated.Description)
}
