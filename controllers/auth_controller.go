package controllers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/cocodas/prierboard/middleware"
	"github.com/cocodas/prierboard/utils"
)

// CredentialRevoker is implemented by services.TokenIdentityResolver.
type CredentialRevoker interface {
	Revoke(ctx context.Context, credential string) error
}

// AuthController handles the credential endpoints this service owns. Tokens are issued
// by the account service; here they can only be revoked.
type AuthController struct {
	revoker CredentialRevoker
}

func NewAuthController(revoker CredentialRevoker) *AuthController {
	return &AuthController{revoker: revoker}
}

// Logout blacklists the caller's token until it expires.
func (a *AuthController) Logout(ctx *gin.Context) {
	if err := a.revoker.Revoke(ctx.Request.Context(), middleware.Credential(ctx)); err != nil {
		respondError(ctx, err, 50010)
		return
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}
