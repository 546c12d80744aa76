package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtClaims - payload bearer-токена. Subject = числовой ID пользователя.
type jwtClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateJWT подписывает HS256 токен для userID.
func GenerateJWT(secret, issuer, userID, email, role string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	if userID == "" {
		return "", errors.New("user id is required")
	}

	now := time.Now()
	claims := jwtClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// JWTTokenValidator возвращает TokenValidator для AuthConfig.
// Принимаются только HMAC-подписи; issuer проверяется, если задан.
func JWTTokenValidator(secret, issuer string) func(token string) (*AuthClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(tokenString string) (*AuthClaims, error) {
		claims := &jwtClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
			return []byte(secret), nil
		})
		if err != nil {
			return nil, fmt.Errorf("parse token: %w", err)
		}
		if !token.Valid {
			return nil, errors.New("invalid token")
		}
		if claims.Subject == "" {
			return nil, errors.New("token has no subject")
		}

		role := claims.Role
		if role == "" {
			role = "user"
		}

		out := &AuthClaims{UserID: claims.Subject, Email: claims.Email, Role: role}
		if claims.ExpiresAt != nil {
			out.Exp = claims.ExpiresAt.Time
		} else {
			// без exp токен бессрочный
			out.Exp = time.Now().Add(time.Hour)
		}
		return out, nil
	}
}
