// Package view renders storefront pages and carries the per-request
// plumbing shared by handlers: localised messages, one-shot flash messages
// and actor guards.
package view

import (
	"net/http"

	"github.com/fekuna/omnipos-storefront-service/internal/session"
	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Renderer struct {
	tr     *i18n.Translator
	logger logger.ZapLogger
}

func NewRenderer(tr *i18n.Translator, log logger.ZapLogger) *Renderer {
	return &Renderer{tr: tr, logger: log}
}

// T localises id for the request's Accept-Language.
func (r *Renderer) T(c *gin.Context, id string, data map[string]interface{}) string {
	return r.tr.T(id, data, c.GetHeader("Accept-Language"))
}

// Flash queues a localised message for the next rendered page.
func (r *Renderer) Flash(c *gin.Context, id string, data map[string]interface{}) {
	session.Current(c).Flash = r.T(c, id, data)
}

// HTML renders name with the layout data every page needs. A pending flash
// message is consumed.
func (r *Renderer) HTML(c *gin.Context, status int, name string, data gin.H) {
	sess := session.Current(c)
	if data == nil {
		data = gin.H{}
	}
	data["IsCustomer"] = sess.Actor.IsCustomer()
	data["IsSupplier"] = sess.Actor.IsSupplier()
	data["DisplayName"] = sess.DisplayName
	data["CartCount"] = sess.Cart.Len()

	if sess.Flash != "" {
		data["Flash"] = sess.PopFlash()
		r.save(c)
	}
	c.HTML(status, name, data)
}

// Redirect persists the session and sends a 303 so the browser follows
// with a GET.
func (r *Renderer) Redirect(c *gin.Context, location string) {
	r.save(c)
	c.Redirect(http.StatusSeeOther, location)
}

// ErrorPage renders a localised failure page.
func (r *Renderer) ErrorPage(c *gin.Context, status int, messageID string) {
	r.HTML(c, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Message": r.T(c, messageID, nil),
	})
}

// Fail logs an unexpected error and shows the generic failure page.
func (r *Renderer) Fail(c *gin.Context, msg string, err error) {
	r.logger.Error(msg, zap.Error(err), zap.String("path", c.Request.URL.Path))
	_ = c.Error(err)
	r.ErrorPage(c, http.StatusInternalServerError, "PersistenceFailure")
}

// RequireCustomer sends visitors who are not signed in as a customer to
// the login page.
func (r *Renderer) RequireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session.Current(c).Actor.IsCustomer() {
			r.Flash(c, "LoginRequired", nil)
			r.Redirect(c, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (r *Renderer) RequireSupplier() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session.Current(c).Actor.IsSupplier() {
			r.Flash(c, "SupplierOnly", nil)
			r.Redirect(c, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (r *Renderer) save(c *gin.Context) {
	if err := session.Save(c); err != nil {
		r.logger.Error("failed to save session", zap.Error(err))
	}
}
