package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/adsmith-studio/adsmith-backend/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indicates a token that failed validation.
var ErrInvalidToken = errors.New("security: invalid token")

// UserClaims carries the authenticated identity embedded in a JWT.
type UserClaims struct {
	UserID  uint64
	IsAdmin bool
}

// SignUserToken issues a signed HS256 JWT for the user.
func SignUserToken(cfg config.JWTConfig, userID uint64, isAdmin bool) (string, error) {
	if cfg.Secret == "" {
		return "", errors.New("security: missing jwt secret")
	}
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(userID, 10),
		"admin": isAdmin,
		"iat":   now.Unix(),
		"exp":   now.Add(cfg.Expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("security: sign token: %w", err)
	}
	return signed, nil
}

// ParseUserToken validates a JWT and extracts the user claims.
func ParseUserToken(cfg config.JWTConfig, raw string) (UserClaims, error) {
	token, errParse := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	})
	if errParse != nil || !token.Valid {
		return UserClaims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return UserClaims{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	userID, errAtoi := strconv.ParseUint(sub, 10, 64)
	if errAtoi != nil || userID == 0 {
		return UserClaims{}, ErrInvalidToken
	}
	isAdmin, _ := claims["admin"].(bool)
	return UserClaims{UserID: userID, IsAdmin: isAdmin}, nil
}
