package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken возвращается для любого непрошедшего проверку токена
var ErrInvalidToken = errors.New("недействительный токен")

// Claims represents JWT claims
type Claims struct {
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

// Issuer выпускает и проверяет токены доступа к API карт
type Issuer struct {
	secret []byte
	issuer string
}

// NewIssuer создаёт Issuer с секретом в base64 (не короче 32 байт).
// Пустой секрет заменяется случайным: токены живут до перезапуска процесса.
func NewIssuer(secret string) (*Issuer, error) {
	if secret == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("не удалось сгенерировать секрет: %w", err)
		}
		return &Issuer{secret: key, issuer: "arena-maps"}, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("секрет должен быть в base64: %w", err)
	}
	if len(decoded) < 32 {
		return nil, errors.New("secret key must be at least 32 bytes")
	}
	return &Issuer{secret: decoded, issuer: "arena-maps"}, nil
}

// Generate creates a signed token for subject
func (is *Issuer) Generate(subject string, isAdmin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    is.issuer,
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(is.secret)
}

// Validate checks token validity and returns its claims
func (is *Issuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return is.secret, nil
	}, jwt.WithIssuer(is.issuer))

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateSecureSecret generates a new secure secret key
func GenerateSecureSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
