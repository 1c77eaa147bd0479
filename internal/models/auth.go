package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims are the JWT claims carried by session tokens guarding the
// authenticated security-question setup endpoints.
type TokenClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}
