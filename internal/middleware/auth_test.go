package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newAuthRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", Auth(token), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"authed": IsAuthenticated(c)})
	})
	return r
}

func doGet(r *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthDisabledWhenNoToken(t *testing.T) {
	r := newAuthRouter("")
	w := doGet(r, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authed":true`)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	r := newAuthRouter("secret")
	w := doGet(r, "/ping", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsWrongToken(t *testing.T) {
	r := newAuthRouter("secret")
	w := doGet(r, "/ping", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthAcceptsBearerHeader(t *testing.T) {
	r := newAuthRouter("secret")
	w := doGet(r, "/ping", map[string]string{"Authorization": "Bearer secret"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthAcceptsQueryToken(t *testing.T) {
	r := newAuthRouter("secret")
	w := doGet(r, "/ping?token=secret", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", NormalizeToken("  abc "))
	assert.Equal(t, "abc", NormalizeToken("Bearer abc"))
	assert.Equal(t, "abc", NormalizeToken("bearer abc"))
	assert.Equal(t, "", NormalizeToken("   "))
}
