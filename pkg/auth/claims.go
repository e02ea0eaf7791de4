package auth

import (
	"github.com/angelmondragon/authsys-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Subject string
	Role    enums.UserRole
}

// AccessTokenClaims represents the typed JWT issued to clients. The subject
// registered claim carries the user's email.
type AccessTokenClaims struct {
	Role enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
