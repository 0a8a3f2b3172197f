package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/session"
	"github.com/fekuna/omnipos-storefront-service/internal/view"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	uc       cart.UseCase
	products product.UseCase
	view     *view.Renderer
	logger   logger.ZapLogger
}

func NewCartHandler(uc cart.UseCase, productUC product.UseCase, v *view.Renderer, log logger.ZapLogger) *CartHandler {
	return &CartHandler{
		uc:       uc,
		products: productUC,
		view:     v,
		logger:   log,
	}
}

func (h *CartHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/cart", h.Show)
	r.POST("/cart/add", h.Add)
	r.POST("/cart/clear", h.Clear)
}

// Show renders the cart with current availability per line.
func (h *CartHandler) Show(c *gin.Context) {
	h.Render(c, http.StatusOK, "")
}

// Render draws the cart page with an optional error banner. Checkout
// failures come back through here.
func (h *CartHandler) Render(c *gin.Context, status int, errMsg string) {
	v, err := h.uc.View(c.Request.Context(), session.Current(c))
	if err != nil {
		h.view.Fail(c, "failed to load cart", err)
		return
	}
	data := gin.H{"Title": "Cart", "Cart": v}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	h.view.HTML(c, status, "cart.html", data)
}

func (h *CartHandler) Add(c *gin.Context) {
	productID, err := strconv.ParseInt(c.PostForm("product_id"), 10, 64)
	if err != nil {
		h.view.ErrorPage(c, http.StatusNotFound, "ProductNotFound")
		return
	}

	sess := session.Current(c)
	_, err = h.uc.AddOrIncrement(c.Request.Context(), sess, productID)
	var lineErr *model.LineError
	switch {
	case err == nil:
		h.view.Flash(c, "AddedToCart", map[string]interface{}{"Product": h.productName(c, productID)})
		h.view.Redirect(c, "/cart")
	case errors.Is(err, model.ErrNotFound):
		h.view.ErrorPage(c, http.StatusNotFound, "ProductNotFound")
	case errors.As(err, &lineErr) && errors.Is(err, model.ErrInventoryExceeded):
		h.view.Flash(c, "InventoryExceeded", map[string]interface{}{
			"Available": lineErr.Available,
			"Product":   h.productName(c, productID),
		})
		h.view.Redirect(c, "/cart")
	default:
		h.view.Fail(c, "failed to add to cart", err)
	}
}

func (h *CartHandler) Clear(c *gin.Context) {
	h.uc.Clear(session.Current(c))
	h.view.Flash(c, "CartCleared", nil)
	h.view.Redirect(c, "/cart")
}

func (h *CartHandler) productName(c *gin.Context, id int64) string {
	p, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil || p == nil {
		return "#" + strconv.FormatInt(id, 10)
	}
	return p.Name
}
