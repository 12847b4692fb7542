package types

import "github.com/google/uuid"

// TokenClaims holds the identity carried by an access token.
type TokenClaims struct {
	UserID uuid.UUID
}
