package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cocodas/prierboard/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextCredentialKey stores the raw bearer token inside Gin context.
	ContextCredentialKey = "credential"
)

// CredentialResolver is satisfied by services.TokenIdentityResolver.
type CredentialResolver interface {
	UserIDFromCredential(ctx context.Context, credential string) (uint, error)
}

// AuthRequired ensures the request carries a valid bearer credential.
func AuthRequired(resolver CredentialResolver) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		userID, err := resolver.UserIDFromCredential(ctx.Request.Context(), tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid or revoked token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, userID)
		ctx.Set(ContextCredentialKey, tokenString)
		ctx.Next()
	}
}

// Credential returns the token accepted by AuthRequired, or "".
func Credential(ctx *gin.Context) string {
	return ctx.GetString(ContextCredentialKey)
}
