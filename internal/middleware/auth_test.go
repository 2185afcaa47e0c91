package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bust-order-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminRouter(sessions *middleware.AdminSessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/login", func(c *gin.Context) {
		if err := sessions.SetCookie(c); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	router.GET("/admin", middleware.AdminOnly(sessions), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": c.GetString(middleware.AdminSubjectKey)})
	})
	return router
}

func TestAdminOnly_NoSession(t *testing.T) {
	router := adminRouter(middleware.NewAdminSessions("secret", false))

	req, _ := http.NewRequest("GET", "/admin", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnly_CookieFromLogin(t *testing.T) {
	router := adminRouter(middleware.NewAdminSessions("secret", false))

	req, _ := http.NewRequest("POST", "/login", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, middleware.AdminCookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int(middleware.AdminSessionTTL.Seconds()), cookie.MaxAge)

	req, _ = http.NewRequest("GET", "/admin", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subject":"admin"}`, w.Body.String())
}

func TestAdminOnly_BearerToken(t *testing.T) {
	sessions := middleware.NewAdminSessions("secret", false)
	token, err := sessions.Issue()
	require.NoError(t, err)

	req, _ := http.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	adminRouter(sessions).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminOnly_RejectsForeignTokens(t *testing.T) {
	sessions := middleware.NewAdminSessions("secret", false)

	wrongKey, err := middleware.NewAdminSessions("other-secret", false).Issue()
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		Issuer:    "bust-order-backend",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	otherSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-123",
		Issuer:    "bust-order-backend",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong key":     wrongKey,
		"expired":       expired,
		"other subject": otherSubject,
		"garbage":       "invalid-token",
	} {
		t.Run(name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/admin", nil)
			req.AddCookie(&http.Cookie{Name: middleware.AdminCookieName, Value: token})
			w := httptest.NewRecorder()
			adminRouter(sessions).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAdminSessions_NoSecret(t *testing.T) {
	sessions := middleware.NewAdminSessions("", false)
	_, err := sessions.Issue()
	assert.Error(t, err)

	_, err = sessions.Verify("anything")
	assert.Error(t, err)
}
