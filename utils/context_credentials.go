package utils

import (
	"context"

	"github.com/offerlookup/offer-backend/models"
)

type contextKey int

const (
	contextKeyCredentials contextKey = iota
	contextKeyLogger
)

func CredentialsFromCtx(ctx context.Context) (models.Credentials, bool) {
	creds, ok := ctx.Value(contextKeyCredentials).(models.Credentials)
	return creds, ok
}

func StoreCredentialsInContext(ctx context.Context, creds models.Credentials) context.Context {
	return context.WithValue(ctx, contextKeyCredentials, creds)
}
