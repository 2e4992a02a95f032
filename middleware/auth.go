package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"food-distribution-backend/apperror"
	"food-distribution-backend/policy"
	"food-distribution-backend/session"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// Authenticator turns a bearer token into a session context.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*session.Context, error)
}

func abortWithError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error(), "code": apperror.Code(err)}
	var authErr *apperror.AuthError
	if errors.As(err, &authErr) {
		body["field"] = authErr.Field
	}
	c.AbortWithStatusJSON(apperror.HTTPStatus(err), body)
}

// bearerToken reads the Authorization header, falling back to the token
// query parameter used by websocket clients.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		token := c.Query("token")
		return token, token != ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
				"code":  apperror.Code(apperror.ErrUnauthenticated),
			})
			return
		}

		sess, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// CurrentSession returns the session set by AuthMiddleware, or nil.
func CurrentSession(c *gin.Context) *session.Context {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil
	}
	sess, _ := v.(*session.Context)
	return sess
}

// Authorize rejects requests whose principal may not perform action on kind.
// Services check again with the full resource.
func Authorize(action policy.Action, kind policy.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil {
			abortWithError(c, apperror.ErrUnauthenticated)
			return
		}
		if !policy.Can(sess.Principal, action, policy.On(kind)) {
			abortWithError(c, &apperror.PermissionDeniedError{Action: string(action), Role: string(sess.Role())})
			return
		}
		c.Next()
	}
}
