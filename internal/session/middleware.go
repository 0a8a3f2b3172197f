package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CookieName = "sid"

	contextKey = "session"
	storeKey   = "session_store"
	cookieKey  = "session_cookie"
)

var ErrNoSession = errors.New("no session in request context")

type CookieOptions struct {
	TTL    time.Duration
	Secure bool
}

// Middleware loads the visitor's session, or starts a new one, and refreshes
// the cookie. The signed-in actor is also put on the request context.
func Middleware(store Store, opts CookieOptions, log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *Session
		if id, err := c.Cookie(CookieName); err == nil && id != "" {
			sess, err = store.Get(c.Request.Context(), id)
			if err != nil {
				log.Error("failed to load session", zap.Error(err))
				sess = nil
			}
		}
		if sess == nil {
			sess = New(uuid.New().String())
		}

		c.Set(contextKey, sess)
		c.Set(storeKey, store)
		c.Set(cookieKey, opts)
		setCookie(c, sess.ID, opts)
		c.Request = c.Request.WithContext(auth.WithActor(c.Request.Context(), sess.Actor))

		c.Next()
	}
}

func setCookie(c *gin.Context, id string, opts CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, id, int(opts.TTL.Seconds()), "/", "", opts.Secure, true)
}

// Current returns the request's session. It panics when Middleware is not
// installed.
func Current(c *gin.Context) *Session {
	return c.MustGet(contextKey).(*Session)
}

// Save persists the request's session. Call it before writing the response.
func Save(c *gin.Context) error {
	sess, ok := c.Get(contextKey)
	if !ok {
		return ErrNoSession
	}
	store := c.MustGet(storeKey).(Store)
	return store.Save(c.Request.Context(), sess.(*Session))
}

// Reset drops the stored session and starts a fresh anonymous one under a
// new id.
func Reset(c *gin.Context) error {
	old := Current(c)
	store := c.MustGet(storeKey).(Store)
	if err := store.Delete(c.Request.Context(), old.ID); err != nil {
		return err
	}
	old.SignOut()

	fresh := New(uuid.New().String())
	c.Set(contextKey, fresh)
	setCookie(c, fresh.ID, c.MustGet(cookieKey).(CookieOptions))
	c.Request = c.Request.WithContext(auth.WithActor(c.Request.Context(), fresh.Actor))
	return nil
}

// Rotate moves the request's session, cart included, to a new id and drops
// the old stored copy. Call it after a sign-in.
func Rotate(c *gin.Context) error {
	sess := Current(c)
	store := c.MustGet(storeKey).(Store)
	if err := store.Delete(c.Request.Context(), sess.ID); err != nil {
		return err
	}
	sess.ID = uuid.New().String()
	setCookie(c, sess.ID, c.MustGet(cookieKey).(CookieOptions))
	c.Request = c.Request.WithContext(auth.WithActor(c.Request.Context(), sess.Actor))
	return nil
}
