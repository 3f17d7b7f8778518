package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var accessSecret = []byte("access-secret")
var refreshSecret = []byte("refresh-secret")

const (
	AccessTokenTTL  = 2 * time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
)

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// SetSecrets 启动时从配置设置签名密钥，refresh 为空时沿用 access 派生
func SetSecrets(access, refresh string) {
	if access != "" {
		accessSecret = []byte(access)
	}
	if refresh != "" {
		refreshSecret = []byte(refresh)
	} else if access != "" {
		refreshSecret = []byte(access + ":refresh")
	}
}

func GenerateAccessToken(userID string) (string, error) {
	return generateToken(userID, AccessTokenTTL, "durak-access", accessSecret)
}

func GenerateRefreshToken(userID string) (string, error) {
	return generateToken(userID, RefreshTokenTTL, "durak-refresh", refreshSecret)
}

func generateToken(userID string, ttl time.Duration, issuer string, secret []byte) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ParseAccessToken(tokenStr string) (*Claims, error) {
	return parseToken(tokenStr, accessSecret)
}

func ParseRefreshToken(tokenStr string) (*Claims, error) {
	return parseToken(tokenStr, refreshSecret)
}

func parseToken(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
