package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims is what the service reads back out of a token.
type Claims struct {
	UserID  uint
	Role    string
	HotelID uint
}

type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// GenerateTokens issues an access/refresh pair for a user.
func (m *TokenManager) GenerateTokens(c Claims) (string, string, error) {
	access, err := m.sign(c, tokenTypeAccess, m.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := m.sign(c, tokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (m *TokenManager) sign(c Claims, typ string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":        c.UserID,
		"user_role": c.Role,
		"hotel_id":  c.HotelID,
		"typ":       typ,
		"exp":       time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(m.secret)
}

// ParseAccess validates an access token.
func (m *TokenManager) ParseAccess(tokenString string) (*Claims, error) {
	return m.parse(tokenString, tokenTypeAccess)
}

// ParseRefresh validates a refresh token.
func (m *TokenManager) ParseRefresh(tokenString string) (*Claims, error) {
	return m.parse(tokenString, tokenTypeRefresh)
}

func (m *TokenManager) parse(tokenString, wantType string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if typ, _ := claims["typ"].(string); typ != wantType {
		return nil, ErrWrongTokenType
	}

	id, ok := claims["id"].(float64)
	if !ok || id <= 0 {
		return nil, fmt.Errorf("%w: id not found or invalid type", ErrInvalidToken)
	}
	role, ok := claims["user_role"].(string)
	if !ok || role == "" {
		return nil, fmt.Errorf("%w: role not found in token", ErrInvalidToken)
	}
	hotelID, _ := claims["hotel_id"].(float64)

	return &Claims{
		UserID:  uint(id),
		Role:    role,
		HotelID: uint(hotelID),
	}, nil
}
