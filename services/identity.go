package services

import (
	"context"
	"strings"
	"time"

	"github.com/cocodas/prierboard/utils"
)

// RevocationList remembers credentials that were logged out before they expired.
type RevocationList interface {
	IsRevoked(ctx context.Context, token string) bool
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
}

// TokenIdentityResolver resolves JWT bearer credentials issued by the account service.
type TokenIdentityResolver struct {
	tokens  *utils.TokenManager
	revoked RevocationList
	users   UserStore
	urls    URLResolver
}

func NewTokenIdentityResolver(tokens *utils.TokenManager, revoked RevocationList, users UserStore, urls URLResolver) *TokenIdentityResolver {
	return &TokenIdentityResolver{tokens: tokens, revoked: revoked, users: users, urls: urls}
}

func (r *TokenIdentityResolver) UserIDFromCredential(ctx context.Context, credential string) (uint, error) {
	claims, token, err := r.parse(credential)
	if err != nil {
		return 0, err
	}
	if r.revoked != nil && r.revoked.IsRevoked(ctx, token) {
		return 0, ErrUnauthenticated
	}
	return claims.UserID, nil
}

func (r *TokenIdentityResolver) ProfileSummary(ctx context.Context, userID uint) (ProfileSummary, error) {
	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		return ProfileSummary{}, err
	}
	return ProfileSummary{UserID: user.ID, ImageURL: r.urls.PublicURL(user.ImageKey)}, nil
}

// Revoke blacklists credential until its natural expiry.
func (r *TokenIdentityResolver) Revoke(ctx context.Context, credential string) error {
	claims, token, err := r.parse(credential)
	if err != nil {
		return err
	}
	if r.revoked == nil || claims.ExpiresAt == nil {
		return nil
	}
	return r.revoked.Revoke(ctx, token, claims.ExpiresAt.Time)
}

func (r *TokenIdentityResolver) parse(credential string) (*utils.Claims, string, error) {
	token := bearerToken(credential)
	if token == "" {
		return nil, "", ErrUnauthenticated
	}
	claims, err := r.tokens.ParseToken(token)
	if err != nil {
		return nil, "", ErrUnauthenticated
	}
	return claims, token, nil
}

// bearerToken accepts both a raw token and an Authorization header value.
func bearerToken(credential string) string {
	credential = strings.TrimSpace(credential)
	if len(credential) > 7 && strings.EqualFold(credential[:7], "bearer ") {
		credential = strings.TrimSpace(credential[7:])
	}
	return credential
}
