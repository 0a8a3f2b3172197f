package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/order"
	"github.com/fekuna/omnipos-storefront-service/internal/session"
	"github.com/fekuna/omnipos-storefront-service/internal/view"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	uc     order.UseCase
	cart   cart.UseCase
	view   *view.Renderer
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, cartUC cart.UseCase, v *view.Renderer, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		cart:   cartUC,
		view:   v,
		logger: log,
	}
}

func (h *OrderHandler) RegisterRoutes(r gin.IRouter) {
	customer := r.Group("", h.view.RequireCustomer())
	customer.POST("/checkout", h.Checkout)
	customer.GET("/orders", h.List)
	customer.GET("/orders/:id", h.Show)
}

// Checkout places the session cart as an order. Lines that cannot be
// fulfilled, and lots lost to a concurrent checkout, send the customer back
// to the cart with an explanation; nothing has been written in either case.
func (h *OrderHandler) Checkout(c *gin.Context) {
	sess := session.Current(c)
	placed, err := h.uc.Checkout(c.Request.Context(), sess)
	if err == nil {
		h.view.Flash(c, "OrderPlaced", map[string]interface{}{"OrderID": placed.ID})
		h.view.Redirect(c, "/orders/"+strconv.FormatInt(placed.ID, 10))
		return
	}

	var lineErr *model.LineError
	switch {
	case errors.Is(err, model.ErrEmptyCart):
		h.renderCart(c, http.StatusUnprocessableEntity, h.view.T(c, "EmptyCart", nil))
	case errors.Is(err, model.ErrInventoryRace):
		h.renderCart(c, http.StatusConflict, h.view.T(c, "InventoryRace", nil))
	case errors.Is(err, model.ErrCheckoutInProgress):
		h.renderCart(c, http.StatusConflict, h.view.T(c, "CheckoutInProgress", nil))
	case errors.As(err, &lineErr) && errors.Is(err, model.ErrInsufficientInventory):
		h.renderCart(c, http.StatusUnprocessableEntity, h.view.T(c, "InsufficientInventory", map[string]interface{}{
			"Product":  h.lineName(c, lineErr.ProductID),
			"Quantity": lineErr.Quantity,
		}))
	case errors.Is(err, model.ErrForbidden):
		h.view.Flash(c, "LoginRequired", nil)
		h.view.Redirect(c, "/login")
	default:
		h.logger.Error("checkout failed",
			zap.String("session_id", sess.ID),
			zap.String("actor", sess.Actor.String()),
			zap.Error(err),
		)
		_ = c.Error(err)
		h.view.ErrorPage(c, http.StatusInternalServerError, "PersistenceFailure")
	}
}

func (h *OrderHandler) List(c *gin.Context) {
	customer, _ := session.Current(c).Actor.CustomerName()
	orders, err := h.uc.ListOrders(c.Request.Context(), customer)
	if err != nil {
		h.view.Fail(c, "failed to list orders", err)
		return
	}
	h.view.HTML(c, http.StatusOK, "orders.html", gin.H{"Title": "My orders", "Orders": orders})
}

func (h *OrderHandler) Show(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.view.ErrorPage(c, http.StatusNotFound, "OrderNotFound")
		return
	}

	customer, _ := session.Current(c).Actor.CustomerName()
	o, err := h.uc.GetOrder(c.Request.Context(), customer, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			h.view.ErrorPage(c, http.StatusNotFound, "OrderNotFound")
			return
		}
		h.view.Fail(c, "failed to load order", err)
		return
	}
	h.view.HTML(c, http.StatusOK, "order.html", gin.H{"Title": "Order", "Order": o})
}

func (h *OrderHandler) renderCart(c *gin.Context, status int, errMsg string) {
	v, err := h.cart.View(c.Request.Context(), session.Current(c))
	if err != nil {
		h.view.Fail(c, "failed to load cart", err)
		return
	}
	h.view.HTML(c, status, "cart.html", gin.H{"Title": "Cart", "Cart": v, "Error": errMsg})
}

func (h *OrderHandler) lineName(c *gin.Context, productID int64) string {
	v, err := h.cart.View(c.Request.Context(), session.Current(c))
	if err == nil {
		for _, l := range v.Lines {
			if l.ProductID == productID {
				return l.ProductName
			}
		}
	}
	return "#" + strconv.FormatInt(productID, 10)
}
