package auth

import "mentora/internal/domain/models"

// JWTVerifier validates bearer tokens for the auth middleware. The production
// implementation checks signatures against the Supabase JWKS endpoint; tests
// substitute a static verifier.
type JWTVerifier interface {
	// VerifyToken parses and validates a raw token string, returning the
	// claims on success and domain.ErrUnauthorized otherwise.
	VerifyToken(tokenString string) (*models.SupabaseClaims, error)

	// Close stops the background JWKS refresh. Call on shutdown.
	Close() error
}
