// Package usercontext reads an optional bearer token and passes the caller
// identity through the request. It never rejects a request.
package usercontext

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const contextKey = "user_context"

// User is the opaque caller identity carried through a request.
type User struct {
	Subject string `json:"sub"`
	Name    string `json:"name,omitempty"`
}

type claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Middleware attaches the token subject when a valid HS256 token is present.
func Middleware(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if user, ok := parse(c.GetHeader("Authorization"), key); ok {
			c.Set(contextKey, user)
		}
		c.Next()
	}
}

// FromContext returns the caller identity, if one was attached.
func FromContext(c *gin.Context) (User, bool) {
	if v, exists := c.Get(contextKey); exists {
		if user, ok := v.(User); ok {
			return user, true
		}
	}
	return User{}, false
}

// Subject returns the caller subject or an empty string.
func Subject(c *gin.Context) string {
	user, _ := FromContext(c)
	return user.Subject
}

func parse(header string, key []byte) (User, bool) {
	if header == "" || len(key) == 0 {
		return User{}, false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return User{}, false
	}

	var parsed claims
	token, err := jwt.ParseWithClaims(parts[1], &parsed, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return User{}, false
	}
	subject, err := parsed.GetSubject()
	if err != nil || subject == "" {
		return User{}, false
	}
	return User{Subject: subject, Name: parsed.Name}, true
}
