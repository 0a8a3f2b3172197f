package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/catalog"
	"github.com/fekuna/omnipos-storefront-service/internal/category"
	categoryDto "github.com/fekuna/omnipos-storefront-service/internal/category/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/session"
	"github.com/fekuna/omnipos-storefront-service/internal/view"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	topSellers     = 3
	browsePageSize = 10
)

// listing pairs a product with the lots shown next to it.
type listing struct {
	Product model.Product
	Lots    []model.CatalogLot
}

type ProductHandler struct {
	uc         product.UseCase
	catalog    catalog.UseCase
	categories category.UseCase
	view       *view.Renderer
	logger     logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, catalogUC catalog.UseCase, categoryUC category.UseCase, v *view.Renderer, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:         uc,
		catalog:    catalogUC,
		categories: categoryUC,
		view:       v,
		logger:     log,
	}
}

func (h *ProductHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Home)
	r.GET("/products", h.Browse)
	r.GET("/products/:id", h.Show)

	supplier := r.Group("/supplier", h.view.RequireSupplier())
	supplier.GET("/products", h.SupplierProducts)
	supplier.GET("/products/new", h.NewForm)
	supplier.POST("/products", h.Create)
	supplier.GET("/products/:id/edit", h.EditForm)
	supplier.POST("/products/:id", h.Update)
}

func (h *ProductHandler) Home(c *gin.Context) {
	products, err := h.uc.TopSellers(c.Request.Context(), topSellers)
	if err != nil {
		h.view.Fail(c, "failed to load best sellers", err)
		return
	}
	h.view.HTML(c, http.StatusOK, "home.html", gin.H{"Products": products})
}

// Browse lists products with their available lots, optionally narrowed by
// category and search text.
func (h *ProductHandler) Browse(c *gin.Context) {
	ctx := c.Request.Context()
	filters := &dto.ProductFilters{
		SearchQuery: strings.TrimSpace(c.Query("q")),
		Page:        view.PageParam(c.Query("page")),
		PageSize:    browsePageSize,
	}
	if id, err := strconv.ParseInt(c.Query("category"), 10, 64); err == nil && id > 0 {
		filters.CategoryID = id
	}

	products, total, err := h.uc.ListProducts(ctx, filters)
	if err != nil {
		h.view.Fail(c, "failed to list products", err)
		return
	}

	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	lots, err := h.catalog.ListAvailableByProducts(ctx, ids)
	if err != nil {
		h.view.Fail(c, "failed to load lots", err)
		return
	}

	items := make([]listing, len(products))
	for i, p := range products {
		items[i] = listing{Product: p, Lots: lots[p.ID]}
	}

	cats, _, err := h.categories.ListCategories(ctx, &categoryDto.CategoryFilters{})
	if err != nil {
		h.view.Fail(c, "failed to list categories", err)
		return
	}

	pager := view.NewPager("/products", c.Request.URL.Query(), filters.Page, filters.PageSize, total)
	h.view.HTML(c, http.StatusOK, "browse.html", gin.H{
		"Title":      "Products",
		"Items":      items,
		"Categories": cats,
		"CategoryID": filters.CategoryID,
		"Query":      filters.SearchQuery,
		"Page":       pager.Page,
		"Pages":      pager.Pages,
		"PrevPage":   pager.PrevPage,
		"NextPage":   pager.NextPage,
	})
}

func (h *ProductHandler) Show(c *gin.Context) {
	ctx := c.Request.Context()
	p, ok := h.loadProduct(c)
	if !ok {
		return
	}

	lots, err := h.catalog.ListAvailable(ctx, p.ID)
	if err != nil {
		h.view.Fail(c, "failed to load lots", err)
		return
	}

	var cat *model.Category
	if p.CategoryID != nil {
		if cat, err = h.categories.GetCategory(ctx, *p.CategoryID); err != nil {
			h.logger.Warn("failed to load category", zap.Int64("category_id", *p.CategoryID), zap.Error(err))
		}
	}

	h.view.HTML(c, http.StatusOK, "product.html", gin.H{
		"Title":    p.Name,
		"Product":  p,
		"Category": cat,
		"Lots":     lots,
	})
}

// SupplierProducts lists the signed-in supplier's products with every lot,
// sold-out ones included.
func (h *ProductHandler) SupplierProducts(c *gin.Context) {
	ctx := c.Request.Context()
	supplier, _ := session.Current(c).Actor.SupplierName()

	products, _, err := h.uc.ListProducts(ctx, &dto.ProductFilters{SupplierName: supplier, SortBy: "name", SortOrder: "asc"})
	if err != nil {
		h.view.Fail(c, "failed to list supplier products", err)
		return
	}

	items := make([]listing, 0, len(products))
	for _, p := range products {
		lots, err := h.catalog.ListLots(ctx, p.ID)
		if err != nil {
			h.view.Fail(c, "failed to load lots", err)
			return
		}
		items = append(items, listing{Product: p, Lots: lots})
	}

	h.view.HTML(c, http.StatusOK, "supplier_products.html", gin.H{"Title": "My products", "Items": items})
}

func (h *ProductHandler) NewForm(c *gin.Context) {
	h.renderForm(c, http.StatusOK, nil, "", "", "")
}

func (h *ProductHandler) Create(c *gin.Context) {
	supplier, _ := session.Current(c).Actor.SupplierName()
	input := &dto.CreateProductInput{
		SupplierName: supplier,
		Name:         c.PostForm("name"),
		Description:  c.PostForm("description"),
	}
	if id, err := strconv.ParseInt(c.PostForm("category_id"), 10, 64); err == nil {
		input.CategoryID = id
	}

	p, err := h.uc.CreateProduct(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			h.renderForm(c, http.StatusBadRequest, nil, input.Name, input.Description, h.view.T(c, "MissingFields", nil))
			return
		}
		h.view.Fail(c, "failed to create product", err)
		return
	}

	h.view.Flash(c, "ProductSaved", map[string]interface{}{"Product": p.Name})
	h.view.Redirect(c, "/supplier/products")
}

func (h *ProductHandler) EditForm(c *gin.Context) {
	p, ok := h.loadProduct(c)
	if !ok {
		return
	}
	if supplier, _ := session.Current(c).Actor.SupplierName(); p.SupplierName != supplier {
		h.view.ErrorPage(c, http.StatusForbidden, "NotOwner")
		return
	}
	h.renderForm(c, http.StatusOK, p, p.Name, p.Description, "")
}

// Update changes name and description of one of the supplier's own products.
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.view.ErrorPage(c, http.StatusNotFound, "ProductNotFound")
		return
	}
	supplier, _ := session.Current(c).Actor.SupplierName()
	input := &dto.UpdateProductInput{
		ID:           id,
		SupplierName: supplier,
		Name:         c.PostForm("name"),
		Description:  c.PostForm("description"),
	}

	p, err := h.uc.UpdateProduct(c.Request.Context(), input)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrNotFound):
		h.view.ErrorPage(c, http.StatusNotFound, "ProductNotFound")
		return
	case errors.Is(err, model.ErrForbidden):
		h.view.ErrorPage(c, http.StatusForbidden, "NotOwner")
		return
	case errors.Is(err, model.ErrInvalidInput):
		stub := &model.Product{BaseModel: model.BaseModel{ID: id}, Name: input.Name}
		h.renderForm(c, http.StatusBadRequest, stub, input.Name, input.Description, h.view.T(c, "MissingFields", nil))
		return
	default:
		h.view.Fail(c, "failed to update product", err)
		return
	}

	h.view.Flash(c, "ProductSaved", map[string]interface{}{"Product": p.Name})
	h.view.Redirect(c, "/supplier/products")
}

// loadProduct resolves :id or renders the not-found page.
func (h *ProductHandler) loadProduct(c *gin.Context) (*model.Product, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.view.ErrorPage(c, http.StatusNotFound, "ProductNotFound")
		return nil, false
	}
	p, err := h.uc.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.view.Fail(c, "failed to load product", err)
		return nil, false
	}
	if p == nil {
		h.view.ErrorPage(c, http.StatusNotFound, "ProductNotFound")
		return nil, false
	}
	return p, true
}

func (h *ProductHandler) renderForm(c *gin.Context, status int, p *model.Product, name, description, errMsg string) {
	data := gin.H{
		"Title":       "Product",
		"Product":     p,
		"Name":        name,
		"Description": description,
	}
	if p == nil {
		cats, _, err := h.categories.ListCategories(c.Request.Context(), &categoryDto.CategoryFilters{})
		if err != nil {
			h.view.Fail(c, "failed to list categories", err)
			return
		}
		data["Categories"] = cats
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	h.view.HTML(c, status, "product_form.html", data)
}
