package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	basicAuthRealm = `Basic realm="expenses"`

	// UserKey is the context key holding the authenticated username.
	UserKey = "user"
)

// BasicAuthMiddleware admits requests carrying the configured credential
// pair and answers 401 otherwise.
func BasicAuthMiddleware(username, password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok || !credentialsMatch(user, pass, username, password) {
			c.Header("WWW-Authenticate", basicAuthRealm)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

func credentialsMatch(user, pass, username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
	return userOK && passOK
}
