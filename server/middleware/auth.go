package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/imagefeed/auth"
	"github.com/kbukum/imagefeed/auth/authctx"
	apperrors "github.com/kbukum/imagefeed/errors"
)

// AuthConfig configures the bearer token guard.
type AuthConfig struct {
	Validator auth.TokenValidator
	// Scope, when set, must be granted by the token's claims.
	Scope string
}

type scoped interface {
	HasScope(scope string) bool
}

// Auth requires a valid bearer token and stores its claims in the request
// context (see authctx). Failures abort with a 401 or 403 error envelope.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, apperrors.Unauthorized("Authorization header with a bearer token is required."))
			return
		}

		claims, err := cfg.Validator.ValidateToken(token)
		if err != nil {
			abort(c, auth.ToAppError(err))
			return
		}

		if cfg.Scope != "" {
			s, ok := claims.(scoped)
			if !ok || !s.HasScope(cfg.Scope) {
				abort(c, apperrors.Forbidden("Token lacks the "+cfg.Scope+" scope."))
				return
			}
		}

		c.Request = c.Request.WithContext(authctx.Set(c.Request.Context(), claims))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abort(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
}
