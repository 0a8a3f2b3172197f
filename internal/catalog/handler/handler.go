package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-storefront-service/internal/catalog"
	"github.com/fekuna/omnipos-storefront-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/session"
	"github.com/fekuna/omnipos-storefront-service/internal/view"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	backToProducts    = "/supplier/products"
	movementsPageSize = 20
)

type CatalogHandler struct {
	uc       catalog.UseCase
	products product.UseCase
	view     *view.Renderer
	logger   logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, productUC product.UseCase, v *view.Renderer, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{
		uc:       uc,
		products: productUC,
		view:     v,
		logger:   log,
	}
}

func (h *CatalogHandler) RegisterRoutes(r gin.IRouter) {
	supplier := r.Group("/supplier", h.view.RequireSupplier())
	supplier.POST("/products/:id/lots", h.AddLot)
	supplier.POST("/lots/:id/restock", h.Restock)
	supplier.GET("/products/:id/movements", h.Movements)
}

// AddLot prices a new batch of stock for one of the supplier's products.
func (h *CatalogHandler) AddLot(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.view.ErrorPage(c, http.StatusNotFound, "ProductNotFound")
		return
	}
	qty, ok := h.quantity(c)
	if !ok {
		return
	}

	supplier, _ := session.Current(c).Actor.SupplierName()
	lot, err := h.uc.AddLot(c.Request.Context(), &dto.AddLotInput{
		SupplierName: supplier,
		ProductID:    productID,
		UnitPrice:    c.PostForm("unit_price"),
		Quantity:     qty,
	})
	if err != nil {
		// quantity is already validated, so bad input here is the price
		h.handleErr(c, err, "InvalidPrice", "failed to add lot")
		return
	}

	h.logger.Info("lot added", zap.Int64("lot_id", lot.ID), zap.Int64("product_id", productID), zap.String("supplier", supplier))
	h.view.Flash(c, "LotAdded", map[string]interface{}{"Product": h.productName(c, productID)})
	h.view.Redirect(c, backToProducts)
}

func (h *CatalogHandler) Restock(c *gin.Context) {
	lotID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.view.ErrorPage(c, http.StatusNotFound, "PageNotFound")
		return
	}
	qty, ok := h.quantity(c)
	if !ok {
		return
	}

	supplier, _ := session.Current(c).Actor.SupplierName()
	lot, err := h.uc.Restock(c.Request.Context(), &dto.RestockInput{
		SupplierName: supplier,
		LotID:        lotID,
		Quantity:     qty,
	})
	if err != nil {
		h.handleErr(c, err, "InvalidQuantity", "failed to restock lot")
		return
	}

	h.view.Flash(c, "Restocked", map[string]interface{}{"LotID": lot.ID, "Remaining": lot.RemainingQuantity})
	h.view.Redirect(c, backToProducts)
}

// Movements shows the stock history of one product, newest first.
func (h *CatalogHandler) Movements(c *gin.Context) {
	ctx := c.Request.Context()
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.view.ErrorPage(c, http.StatusNotFound, "ProductNotFound")
		return
	}

	supplier, _ := session.Current(c).Actor.SupplierName()
	filters := &dto.MovementFilters{
		ProductID: productID,
		Page:      view.PageParam(c.Query("page")),
		PageSize:  movementsPageSize,
	}
	movements, total, err := h.uc.ListMovements(ctx, supplier, filters)
	if err != nil {
		h.handleErr(c, err, "PageNotFound", "failed to list movements")
		return
	}

	p, err := h.products.GetProduct(ctx, productID)
	if err != nil {
		h.view.Fail(c, "failed to load product", err)
		return
	}
	if p == nil {
		h.view.ErrorPage(c, http.StatusNotFound, "ProductNotFound")
		return
	}

	pager := view.NewPager(c.Request.URL.Path, c.Request.URL.Query(), filters.Page, filters.PageSize, total)
	h.view.HTML(c, http.StatusOK, "movements.html", gin.H{
		"Title":     "Stock history",
		"Product":   p,
		"Movements": movements,
		"PrevPage":  pager.PrevPage,
		"NextPage":  pager.NextPage,
	})
}

func (h *CatalogHandler) quantity(c *gin.Context) (int, bool) {
	qty, err := strconv.Atoi(c.PostForm("quantity"))
	if err != nil || qty <= 0 {
		h.view.Flash(c, "InvalidQuantity", nil)
		h.view.Redirect(c, backToProducts)
		return 0, false
	}
	return qty, true
}

func (h *CatalogHandler) handleErr(c *gin.Context, err error, invalidID, msg string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		h.view.ErrorPage(c, http.StatusNotFound, "ProductNotFound")
	case errors.Is(err, model.ErrForbidden):
		h.view.ErrorPage(c, http.StatusForbidden, "NotOwner")
	case errors.Is(err, model.ErrInvalidInput):
		h.view.Flash(c, invalidID, nil)
		h.view.Redirect(c, backToProducts)
	default:
		h.view.Fail(c, msg, err)
	}
}

func (h *CatalogHandler) productName(c *gin.Context, id int64) string {
	p, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil || p == nil {
		return "#" + strconv.FormatInt(id, 10)
	}
	return p.Name
}
