package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/interviewhub/interviewhub-api/pkg/helpers"
	"github.com/interviewhub/interviewhub-api/pkg/response"
)

// Context keys set for downstream handlers on successful authentication.
const (
	CtxUserID  = "userID"
	CtxEmail   = "userEmail"
	CtxIsAdmin = "isAdmin"
)

// authenticate reads the session cookie and verifies it. Any failure
// (missing cookie, bad signature, expiry) yields a structured 401, never a
// panic.
func authenticate(c *gin.Context, codec *helpers.TokenCodec, msg string) (*helpers.TokenClaims, bool) {
	token, err := c.Cookie(helpers.SessionCookieName)
	if err != nil || token == "" {
		response.AbortError(c, http.StatusUnauthorized, msg, nil)
		return nil, false
	}
	claims, err := codec.Verify(token)
	if err != nil {
		response.AbortError(c, http.StatusUnauthorized, msg, nil)
		return nil, false
	}
	return claims, true
}

func inject(c *gin.Context, claims *helpers.TokenClaims) {
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxEmail, claims.Email)
	c.Set(CtxIsAdmin, claims.IsAdmin)
}

// RequireUser gates routes that need any authenticated account.
func RequireUser(codec *helpers.TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c, codec, "not logged in")
		if !ok {
			return
		}
		inject(c, claims)
		c.Next()
	}
}

// RequireAdmin gates admin-only routes. A valid session token without the
// admin role clears the cookie before rejecting, so a stale non-admin token
// is not silently retried against admin routes.
func RequireAdmin(codec *helpers.TokenCodec, cookies *helpers.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c, codec, "not logged in as admin")
		if !ok {
			return
		}
		if !claims.IsAdmin {
			cookies.Clear(c)
			response.AbortError(c, http.StatusUnauthorized, "not logged in as admin", nil)
			return
		}
		inject(c, claims)
		c.Next()
	}
}
