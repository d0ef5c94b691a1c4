package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	coreauth "github.com/ogurasousui/employee-management/internal/core/auth"
)

// ErrInvalidToken はトークンが不正または期限切れの場合に返却されます。
var ErrInvalidToken = errors.New("auth: invalid token")

// AccessClaims はアクセストークンのクレームです。Subject にユーザー ID を格納します。
type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer は HS256 署名のアクセストークンを発行・検証します。
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer は TokenIssuer を生成します。
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue はユーザー ID とロールを含むトークンを発行します。
func (i *TokenIssuer) Issue(userID string, role coreauth.Role) (string, time.Time, error) {
	issuedAt := i.now()
	expiresAt := issuedAt.Add(i.ttl)
	claims := AccessClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse はトークンを検証し、呼び出し元情報を返します。
func (i *TokenIssuer) Parse(token string) (coreauth.Caller, error) {
	var claims AccessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return coreauth.Caller{}, ErrInvalidToken
	}

	role := coreauth.Role(claims.Role)
	if claims.Subject == "" || !role.IsValid() {
		return coreauth.Caller{}, ErrInvalidToken
	}

	return coreauth.Caller{UserID: claims.Subject, Role: role}, nil
}
