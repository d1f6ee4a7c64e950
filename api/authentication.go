package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/utils"
)

type TokenValidator interface {
	ValidateToken(token string) (models.Credentials, error)
}

type Authentication struct {
	validator TokenValidator
}

func NewAuthentication(validator TokenValidator) Authentication {
	return Authentication{validator: validator}
}

// Middleware puts the credentials of the bearer token in the request context, with a logger
// carrying the user id.
func (a Authentication) Middleware(c *gin.Context) {
	ctx := c.Request.Context()
	token, err := ParseAuthorizationBearerHeader(c.Request.Header)
	if err != nil {
		presentError(ctx, c, err)
		c.Abort()
		return
	}
	if token == "" {
		presentError(ctx, c, errors.Wrap(models.UnAuthorizedError, "missing bearer token"))
		c.Abort()
		return
	}

	creds, err := a.validator.ValidateToken(token)
	if err != nil {
		if !errors.Is(err, models.UnAuthorizedError) {
			err = errors.Mark(err, models.UnAuthorizedError)
		}
		presentError(ctx, c, err)
		c.Abort()
		return
	}

	ctx = utils.StoreCredentialsInContext(ctx, creds)
	ctx, _ = utils.LoggerWithAttrs(ctx,
		slog.String("user_id", string(creds.ActorIdentity.UserId)),
		slog.String("role", creds.Role.String()))
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

func ParseAuthorizationBearerHeader(header http.Header) (string, error) {
	authorization := header.Get("Authorization")
	if authorization == "" {
		return "", nil
	}

	authHeader := strings.Split(authorization, "Bearer ")
	if len(authHeader) != 2 {
		return "", fmt.Errorf("malformed token: %w", models.UnAuthorizedError)
	}
	return authHeader[1], nil
}
