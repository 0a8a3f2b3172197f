package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/account"
	"github.com/fekuna/omnipos-storefront-service/internal/account/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/session"
	"github.com/fekuna/omnipos-storefront-service/internal/view"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const roleSupplier = "supplier"

type AccountHandler struct {
	uc     account.UseCase
	view   *view.Renderer
	logger logger.ZapLogger
}

func NewAccountHandler(uc account.UseCase, v *view.Renderer, log logger.ZapLogger) *AccountHandler {
	return &AccountHandler{
		uc:     uc,
		view:   v,
		logger: log,
	}
}

func (h *AccountHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.GET("/signup/customer", h.CustomerSignUpPage)
	r.POST("/signup/customer", h.CustomerSignUp)
	r.GET("/signup/supplier", h.SupplierSignUpPage)
	r.POST("/signup/supplier", h.SupplierSignUp)
}

func (h *AccountHandler) LoginPage(c *gin.Context) {
	h.renderLogin(c, http.StatusOK, c.Query("role"), "", "")
}

// Login signs the session in as a customer or supplier depending on the
// role field. The session gets a fresh id; an anonymous cart survives a
// customer sign-in.
func (h *AccountHandler) Login(c *gin.Context) {
	role := c.PostForm("role")
	name := strings.TrimSpace(c.PostForm("name"))
	password := c.PostForm("password")

	if name == "" || password == "" {
		h.renderLogin(c, http.StatusBadRequest, role, name, h.view.T(c, "MissingFields", nil))
		return
	}

	sess := session.Current(c)
	var err error
	if role == roleSupplier {
		var s *model.Supplier
		if s, err = h.uc.LoginSupplier(c.Request.Context(), name, password); err == nil {
			sess.SignIn(auth.Supplier(s.Name), s.Name)
		}
	} else {
		var cust *model.Customer
		if cust, err = h.uc.LoginCustomer(c.Request.Context(), name, password); err == nil {
			sess.SignIn(auth.Customer(cust.AccountName), cust.FirstName)
		}
	}

	switch {
	case err == nil:
	case errors.Is(err, model.ErrUnknownAccount):
		h.renderLogin(c, http.StatusUnauthorized, role, name, h.view.T(c, "UsernameNotFound", nil))
		return
	case errors.Is(err, model.ErrWrongPassword):
		h.renderLogin(c, http.StatusUnauthorized, role, name, h.view.T(c, "PasswordIncorrect", nil))
		return
	default:
		h.view.Fail(c, "failed to log in", err)
		return
	}

	if err := session.Rotate(c); err != nil {
		h.view.Fail(c, "failed to rotate session", err)
		return
	}
	h.logger.Info("signed in", zap.String("actor", sess.Actor.String()))
	h.view.Flash(c, "Welcome", map[string]interface{}{"Name": sess.DisplayName})
	if sess.Actor.IsSupplier() {
		h.view.Redirect(c, "/supplier/products")
		return
	}
	h.view.Redirect(c, "/")
}

func (h *AccountHandler) Logout(c *gin.Context) {
	actor := session.Current(c).Actor
	if err := session.Reset(c); err != nil {
		h.view.Fail(c, "failed to end session", err)
		return
	}
	h.logger.Info("signed out", zap.String("actor", actor.String()))
	h.view.Flash(c, "LoggedOut", nil)
	h.view.Redirect(c, "/")
}

func (h *AccountHandler) CustomerSignUpPage(c *gin.Context) {
	h.view.HTML(c, http.StatusOK, "signup_customer.html", gin.H{
		"Title": "Sign up",
		"Form":  &dto.CustomerSignUpInput{},
	})
}

func (h *AccountHandler) CustomerSignUp(c *gin.Context) {
	input := &dto.CustomerSignUpInput{
		AccountName: strings.TrimSpace(c.PostForm("account_name")),
		Password:    c.PostForm("password"),
		FirstName:   strings.TrimSpace(c.PostForm("first_name")),
		LastName:    strings.TrimSpace(c.PostForm("last_name")),
	}

	cust, err := h.uc.SignUpCustomer(c.Request.Context(), input)
	if err != nil {
		msg, status, ok := h.signUpError(c, err, "AccountNameTaken")
		if !ok {
			h.view.Fail(c, "failed to sign up customer", err)
			return
		}
		input.Password = ""
		h.view.HTML(c, status, "signup_customer.html", gin.H{"Title": "Sign up", "Form": input, "Error": msg})
		return
	}

	session.Current(c).SignIn(auth.Customer(cust.AccountName), cust.FirstName)
	if err := session.Rotate(c); err != nil {
		h.view.Fail(c, "failed to rotate session", err)
		return
	}
	h.view.Flash(c, "Welcome", map[string]interface{}{"Name": cust.FirstName})
	h.view.Redirect(c, "/")
}

func (h *AccountHandler) SupplierSignUpPage(c *gin.Context) {
	h.view.HTML(c, http.StatusOK, "signup_supplier.html", gin.H{
		"Title": "Supplier sign up",
		"Form":  &dto.SupplierSignUpInput{},
	})
}

func (h *AccountHandler) SupplierSignUp(c *gin.Context) {
	input := &dto.SupplierSignUpInput{
		Name:         strings.TrimSpace(c.PostForm("name")),
		Password:     c.PostForm("password"),
		ContactEmail: strings.TrimSpace(c.PostForm("contact_email")),
	}

	s, err := h.uc.SignUpSupplier(c.Request.Context(), input)
	if err != nil {
		msg, status, ok := h.signUpError(c, err, "SupplierNameTaken")
		if !ok {
			h.view.Fail(c, "failed to sign up supplier", err)
			return
		}
		input.Password = ""
		h.view.HTML(c, status, "signup_supplier.html", gin.H{"Title": "Supplier sign up", "Form": input, "Error": msg})
		return
	}

	session.Current(c).SignIn(auth.Supplier(s.Name), s.Name)
	if err := session.Rotate(c); err != nil {
		h.view.Fail(c, "failed to rotate session", err)
		return
	}
	h.view.Flash(c, "Welcome", map[string]interface{}{"Name": s.Name})
	h.view.Redirect(c, "/supplier/products")
}

func (h *AccountHandler) signUpError(c *gin.Context, err error, takenID string) (string, int, bool) {
	switch {
	case errors.Is(err, model.ErrAlreadyExists):
		return h.view.T(c, takenID, nil), http.StatusConflict, true
	case errors.Is(err, model.ErrInvalidInput):
		return h.view.T(c, "MissingFields", nil), http.StatusBadRequest, true
	}
	return "", 0, false
}

func (h *AccountHandler) renderLogin(c *gin.Context, status int, role, name, errMsg string) {
	if role != roleSupplier {
		role = "customer"
	}
	data := gin.H{"Title": "Log in", "Role": role, "Name": name}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	h.view.HTML(c, status, "login.html", data)
}
