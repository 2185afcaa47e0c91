package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"bust-order-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	AdminCookieName = "admin_auth"
	AdminSessionTTL = 7 * 24 * time.Hour
	AdminSubjectKey = "admin_subject"

	adminSubject = "admin"
	adminIssuer  = "bust-order-backend"
)

// AdminSessions issues and verifies the signed admin session token carried
// in the admin_auth cookie.
type AdminSessions struct {
	secret []byte
	secure bool
	now    func() time.Time
}

// NewAdminSessions returns a session signer. secure marks the cookie as
// HTTPS-only and should be set in production.
func NewAdminSessions(secret string, secure bool) *AdminSessions {
	return &AdminSessions{secret: []byte(secret), secure: secure, now: time.Now}
}

// Issue signs a new HS256 session token.
func (s *AdminSessions) Issue() (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("admin session secret is not configured")
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		Issuer:    adminIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(AdminSessionTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses tokenString and returns its subject.
func (s *AdminSessions) Verify(tokenString string) (string, error) {
	if len(s.secret) == 0 {
		return "", jwt.ErrSignatureInvalid
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(adminIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject != adminSubject {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, nil
}

// SetCookie stores a fresh session on the response.
func (s *AdminSessions) SetCookie(c *gin.Context) error {
	token, err := s.Issue()
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AdminCookieName, token, int(AdminSessionTTL.Seconds()), "/", "", s.secure, true)
	return nil
}

// ClearCookie expires the session cookie.
func (s *AdminSessions) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AdminCookieName, "", -1, "/", "", s.secure, true)
}

// AdminOnly rejects requests without a valid admin session. The token is
// read from the admin_auth cookie, or from a Bearer Authorization header for
// scripted access.
func AdminOnly(sessions *AdminSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(AdminCookieName)
		if err != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = strings.TrimSpace(parts[1])
			}
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
			return
		}

		subject, err := sessions.Verify(tokenString)
		if err != nil {
			message := "invalid session"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "session has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized", Message: message})
			return
		}

		c.Set(AdminSubjectKey, subject)
		c.Next()
	}
}
