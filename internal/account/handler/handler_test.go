package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/fekuna/omnipos-storefront-service/internal/account/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/view/viewtest"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAccounts struct {
	customers map[string]string // account name -> password
	suppliers map[string]string
}

func (s *stubAccounts) SignUpCustomer(_ context.Context, in *dto.CustomerSignUpInput) (*model.Customer, error) {
	if in.AccountName == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" {
		return nil, model.ErrInvalidInput
	}
	if _, ok := s.customers[in.AccountName]; ok {
		return nil, model.ErrAlreadyExists
	}
	s.customers[in.AccountName] = in.Password
	return &model.Customer{AccountName: in.AccountName, FirstName: in.FirstName, LastName: in.LastName}, nil
}

func (s *stubAccounts) SignUpSupplier(_ context.Context, in *dto.SupplierSignUpInput) (*model.Supplier, error) {
	if _, ok := s.suppliers[in.Name]; ok {
		return nil, model.ErrAlreadyExists
	}
	s.suppliers[in.Name] = in.Password
	return &model.Supplier{Name: in.Name, ContactEmail: in.ContactEmail}, nil
}

func (s *stubAccounts) LoginCustomer(_ context.Context, name, password string) (*model.Customer, error) {
	pw, ok := s.customers[name]
	if !ok {
		return nil, model.ErrUnknownAccount
	}
	if pw != password {
		return nil, model.ErrWrongPassword
	}
	return &model.Customer{AccountName: name, FirstName: "Alice"}, nil
}

func (s *stubAccounts) LoginSupplier(_ context.Context, name, password string) (*model.Supplier, error) {
	pw, ok := s.suppliers[name]
	if !ok {
		return nil, model.ErrUnknownAccount
	}
	if pw != password {
		return nil, model.ErrWrongPassword
	}
	return &model.Supplier{Name: name}, nil
}

func setup(t *testing.T) *viewtest.Env {
	env := viewtest.New(t)
	accounts := &stubAccounts{
		customers: map[string]string{"alice": "secret"},
		suppliers: map[string]string{"acme": "tools"},
	}
	NewAccountHandler(accounts, env.Renderer, logger.NewNop()).RegisterRoutes(env.Router)
	return env
}

func TestLoginCustomer(t *testing.T) {
	env := setup(t)

	w := env.Post("/login", url.Values{"role": {"customer"}, "name": {"alice"}, "password": {"secret"}}, "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	sess := env.Session(t, viewtest.SID(w))
	assert.Equal(t, auth.Customer("alice"), sess.Actor)
	assert.Equal(t, "Alice", sess.DisplayName)
	assert.Equal(t, "Welcome, Alice!", sess.Flash)
}

func TestLoginErrors(t *testing.T) {
	env := setup(t)

	tests := []struct {
		name   string
		form   url.Values
		status int
		msg    string
	}{
		{"unknown account", url.Values{"name": {"bob"}, "password": {"x"}}, http.StatusUnauthorized, "Username not found"},
		{"wrong password", url.Values{"name": {"alice"}, "password": {"nope"}}, http.StatusUnauthorized, "Password incorrect"},
		{"wrong role", url.Values{"role": {"supplier"}, "name": {"alice"}, "password": {"secret"}}, http.StatusUnauthorized, "Username not found"},
		{"missing password", url.Values{"name": {"alice"}}, http.StatusBadRequest, "Please fill in every required field."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.Post("/login", tt.form, "")
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.msg)
		})
	}
}

func TestSwitchingActorClearsCart(t *testing.T) {
	env := setup(t)

	sid := env.SignIn(t, auth.Customer("alice"), "Alice")
	sess := env.Session(t, sid)
	sess.Cart.Entries = []model.CartEntry{{ProductID: 1, Quantity: 2}}
	require.NoError(t, env.Store.Save(context.Background(), sess))

	w := env.Post("/login", url.Values{"role": {"supplier"}, "name": {"acme"}, "password": {"tools"}}, sid)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/supplier/products", w.Header().Get("Location"))

	after := env.Session(t, viewtest.SID(w))
	assert.Equal(t, auth.Supplier("acme"), after.Actor)
	assert.Equal(t, 0, after.Cart.Len())
}

func TestLoginKeepsAnonymousCartUnderNewID(t *testing.T) {
	env := setup(t)

	anon := env.SignIn(t, auth.Anonymous(), "")
	sess := env.Session(t, anon)
	sess.Cart.Entries = []model.CartEntry{{ProductID: 1, Quantity: 2}}
	require.NoError(t, env.Store.Save(context.Background(), sess))

	w := env.Post("/login", url.Values{"name": {"alice"}, "password": {"secret"}}, anon)
	require.Equal(t, http.StatusSeeOther, w.Code)

	sid := viewtest.SID(w)
	assert.NotEqual(t, anon, sid)
	old, err := env.Store.Get(context.Background(), anon)
	require.NoError(t, err)
	assert.Nil(t, old)

	after := env.Session(t, sid)
	assert.Equal(t, auth.Customer("alice"), after.Actor)
	assert.Equal(t, []model.CartEntry{{ProductID: 1, Quantity: 2}}, after.Cart.Entries)
}

func TestLogoutDropsSession(t *testing.T) {
	env := setup(t)
	sid := env.SignIn(t, auth.Customer("alice"), "Alice")

	w := env.Post("/logout", url.Values{}, sid)
	require.Equal(t, http.StatusSeeOther, w.Code)

	old, err := env.Store.Get(context.Background(), sid)
	require.NoError(t, err)
	assert.Nil(t, old)

	fresh := env.Session(t, viewtest.SID(w))
	assert.True(t, fresh.Actor.IsAnonymous())
	assert.Equal(t, "You have been logged out.", fresh.Flash)
}

func TestCustomerSignUp(t *testing.T) {
	env := setup(t)

	form := url.Values{"account_name": {"carol"}, "password": {"pw"}, "first_name": {"Carol"}, "last_name": {"C"}}
	w := env.Post("/signup/customer", form, "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, auth.Customer("carol"), env.Session(t, viewtest.SID(w)).Actor)

	w = env.Post("/signup/customer", form, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Account name already in use")
	assert.Contains(t, w.Body.String(), `value="Carol"`)
}

func TestSupplierSignUp(t *testing.T) {
	env := setup(t)

	w := env.Post("/signup/supplier", url.Values{"name": {"acme"}, "password": {"x"}, "contact_email": {"a@b.c"}}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Supplier name already registered")

	w = env.Post("/signup/supplier", url.Values{"name": {"globex"}, "password": {"x"}, "contact_email": {"g@b.c"}}, "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/supplier/products", w.Header().Get("Location"))
}
