// Package viewtest builds gin routers with real templates and an in-memory
// session store for handler tests.
package viewtest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/session"
	"github.com/fekuna/omnipos-storefront-service/internal/view"
	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type Env struct {
	Router   *gin.Engine
	Store    *session.MemoryStore
	Renderer *view.Renderer
}

func New(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tr, err := i18n.New()
	require.NoError(t, err)
	tmpl, err := view.Templates()
	require.NoError(t, err)

	store := session.NewMemoryStore()
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(session.Middleware(store, session.CookieOptions{TTL: time.Hour}, logger.NewNop()))

	return &Env{Router: r, Store: store, Renderer: view.NewRenderer(tr, logger.NewNop())}
}

// SignIn stores a session for a under a fixed id and returns that id.
func (e *Env) SignIn(t *testing.T, a auth.Actor, name string) string {
	t.Helper()
	sess := session.New("sess-" + a.String())
	sess.SignIn(a, name)
	require.NoError(t, e.Store.Save(context.Background(), sess))
	return sess.ID
}

// Session loads the stored session id, failing the test when it is gone.
func (e *Env) Session(t *testing.T, id string) *session.Session {
	t.Helper()
	sess, err := e.Store.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, sess)
	return sess
}

func (e *Env) Get(path, sid string) *httptest.ResponseRecorder {
	return e.do(http.MethodGet, path, nil, sid)
}

func (e *Env) Post(path string, form url.Values, sid string) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, path, form, sid)
}

func (e *Env) do(method, path string, form url.Values, sid string) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sid})
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// SID returns the session cookie the response set last.
func SID(w *httptest.ResponseRecorder) string {
	id := ""
	for _, ck := range w.Result().Cookies() {
		if ck.Name == session.CookieName {
			id = ck.Value
		}
	}
	return id
}
