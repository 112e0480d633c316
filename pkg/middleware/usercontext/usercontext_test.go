package usercontext

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name: "Ada",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func serve(t *testing.T, header string) (int, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware("secret"))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, Subject(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code, rec.Body.String()
}

func TestMiddlewareAttachesSubject(t *testing.T) {
	code, body := serve(t, "Bearer "+signToken(t, "secret", "student-42"))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "student-42", body)
}

func TestMiddlewarePassesThroughWithoutToken(t *testing.T) {
	code, body := serve(t, "")

	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, body)
}

func TestMiddlewareIgnoresInvalidToken(t *testing.T) {
	code, body := serve(t, "Bearer "+signToken(t, "other", "student-42"))

	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, body)

	code, body = serve(t, "Basic abc")
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, body)
}
