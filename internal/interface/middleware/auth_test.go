package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interviewhub/interviewhub-api/pkg/helpers"
)

func setupRouter(codec *helpers.TokenCodec) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/user", RequireUser(codec), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"uid":      c.GetString(CtxUserID),
			"email":    c.GetString(CtxEmail),
			"is_admin": c.GetBool(CtxIsAdmin),
		})
	})

	cookies := helpers.NewCookie("", false)
	r.GET("/admin", RequireAdmin(codec, cookies), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": c.GetString(CtxUserID)})
	})
	return r
}

func doRequest(r *gin.Engine, path, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: helpers.SessionCookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireUserNoCookie(t *testing.T) {
	codec := helpers.NewTokenCodec("mw-secret", time.Hour, time.Hour, time.Hour)
	r := setupRouter(codec)

	w := doRequest(r, "/user", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "not logged in")
}

func TestRequireUserInvalidToken(t *testing.T) {
	codec := helpers.NewTokenCodec("mw-secret", time.Hour, time.Hour, time.Hour)
	r := setupRouter(codec)

	w := doRequest(r, "/user", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireUserExpiredToken(t *testing.T) {
	expired := helpers.NewTokenCodec("mw-secret", -time.Minute, -time.Minute, -time.Minute)
	tok, _, err := expired.Issue(helpers.TokenKindSession, "u1", "u@example.com", false)
	require.NoError(t, err)

	codec := helpers.NewTokenCodec("mw-secret", time.Hour, time.Hour, time.Hour)
	r := setupRouter(codec)

	w := doRequest(r, "/user", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireUserInjectsClaims(t *testing.T) {
	codec := helpers.NewTokenCodec("mw-secret", time.Hour, time.Hour, time.Hour)
	r := setupRouter(codec)

	tok, _, err := codec.Issue(helpers.TokenKindSession, "u1", "u@example.com", false)
	require.NoError(t, err)

	w := doRequest(r, "/user", tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":"u1"`)
	assert.Contains(t, w.Body.String(), `"email":"u@example.com"`)
}

func TestRequireAdminRejectsNonAdminAndClearsCookie(t *testing.T) {
	codec := helpers.NewTokenCodec("mw-secret", time.Hour, time.Hour, time.Hour)
	r := setupRouter(codec)

	tok, _, err := codec.Issue(helpers.TokenKindSession, "u1", "u@example.com", false)
	require.NoError(t, err)

	w := doRequest(r, "/admin", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "not logged in as admin")

	cleared := false
	for _, ck := range w.Result().Cookies() {
		if ck.Name == helpers.SessionCookieName && ck.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "expected the session cookie to be cleared")
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	codec := helpers.NewTokenCodec("mw-secret", time.Hour, time.Hour, time.Hour)
	r := setupRouter(codec)

	tok, _, err := codec.Issue(helpers.TokenKindSession, "a1", "admin@example.com", true)
	require.NoError(t, err)

	w := doRequest(r, "/admin", tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":"a1"`)
}

func TestRequireAdminNoCookie(t *testing.T) {
	codec := helpers.NewTokenCodec("mw-secret", time.Hour, time.Hour, time.Hour)
	r := setupRouter(codec)

	w := doRequest(r, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "not logged in as admin")
}
