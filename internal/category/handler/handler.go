package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/category"
	"github.com/fekuna/omnipos-storefront-service/internal/category/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/session"
	"github.com/fekuna/omnipos-storefront-service/internal/view"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	uc     category.UseCase
	view   *view.Renderer
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, v *view.Renderer, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		view:   v,
		logger: log,
	}
}

func (h *CategoryHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/categories", h.List)
	r.POST("/supplier/categories", h.view.RequireSupplier(), h.Create)
}

func (h *CategoryHandler) List(c *gin.Context) {
	cats, _, err := h.uc.ListCategories(c.Request.Context(), &dto.CategoryFilters{})
	if err != nil {
		h.view.Fail(c, "failed to list categories", err)
		return
	}
	h.view.HTML(c, http.StatusOK, "categories.html", gin.H{"Title": "Categories", "Categories": cats})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	input := &dto.CreateCategoryInput{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: strings.TrimSpace(c.PostForm("description")),
	}

	cat, err := h.uc.CreateCategory(c.Request.Context(), input)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrAlreadyExists):
		h.view.Flash(c, "CategoryNameTaken", nil)
		h.view.Redirect(c, "/categories")
		return
	case errors.Is(err, model.ErrInvalidInput):
		h.view.Flash(c, "MissingFields", nil)
		h.view.Redirect(c, "/categories")
		return
	default:
		h.view.Fail(c, "failed to create category", err)
		return
	}

	supplier, _ := session.Current(c).Actor.SupplierName()
	h.logger.Info("category created", zap.Int64("category_id", cat.ID), zap.String("supplier", supplier))
	h.view.Flash(c, "CategoryCreated", map[string]interface{}{"Name": cat.Name})
	h.view.Redirect(c, "/categories")
}
