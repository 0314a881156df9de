package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	jwtSecret       []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
)

func Configure(secret string, accessTTL, refreshTTL time.Duration) error {
	if secret == "" {
		return fmt.Errorf("JWT secret is empty")
	}

	jwtSecret = []byte(secret)
	accessTokenTTL = accessTTL
	refreshTokenTTL = refreshTTL
	return nil
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Claims carried by both token types. The username is a convenience claim so
// clients can display the identity without a second request.
type Claims struct {
	UserID    uint
	Username  string
	TokenType string
}

// GenerateTokenPair issues a short-lived access token and a longer-lived
// refresh token for the same identity.
func GenerateTokenPair(userID uint, username string) (TokenPair, error) {
	access, err := generateToken(userID, username, TokenTypeAccess, accessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := generateToken(userID, username, TokenTypeRefresh, refreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

func generateToken(userID uint, username, tokenType string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"username":   username,
		"token_type": tokenType,
		"exp":        time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// VerifyToken validates the signature and expiry and checks the token is of
// the expected type, so a refresh token cannot be replayed as an access token
// or vice versa.
func VerifyToken(tokenString, expectedType string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	})

	if err != nil || !token.Valid {
		return Claims{}, fmt.Errorf("invalid or expired token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("invalid token claims")
	}

	userIDFloat, ok := mapClaims["user_id"].(float64)
	if !ok {
		return Claims{}, fmt.Errorf("invalid user ID in token claims")
	}

	username, _ := mapClaims["username"].(string)

	tokenType, ok := mapClaims["token_type"].(string)
	if !ok || tokenType != expectedType {
		return Claims{}, fmt.Errorf("unexpected token type")
	}

	return Claims{
		UserID:    uint(userIDFloat),
		Username:  username,
		TokenType: tokenType,
	}, nil
}
