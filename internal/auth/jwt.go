// Package auth проверяет bearer-токены внешнего сервиса пользователей и выпускает их для разработки.
package auth

import (
	"errors"
	"time"

	"bakery-service/internal/models"
	"bakery-service/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type HSProvider struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewHSProvider(secret, issuer string) *HSProvider {
	return &HSProvider{secret: []byte(secret), issuer: issuer, now: time.Now}
}

type customClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Sign выпускает токен участника; в проде токены выдаёт сервис пользователей
func (p *HSProvider) Sign(sub uuid.UUID, role models.Role, ttl time.Duration) (string, time.Time, error) {
	now := p.now()
	exp := now.Add(ttl)

	claims := customClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   sub.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	return signed, exp, err
}

func (p *HSProvider) Parse(token string) (service.Actor, error) {
	parsed, err := jwt.ParseWithClaims(token, &customClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	}, jwt.WithIssuer(p.issuer), jwt.WithTimeFunc(p.now), jwt.WithExpirationRequired())
	if err != nil {
		return service.Actor{}, errors.Join(ErrInvalidToken, err)
	}
	cc, ok := parsed.Claims.(*customClaims)
	if !ok || !parsed.Valid {
		return service.Actor{}, ErrInvalidToken
	}
	uid, err := uuid.Parse(cc.Subject)
	if err != nil {
		return service.Actor{}, errors.Join(ErrInvalidToken, err)
	}
	role := models.Role(cc.Role)
	if !role.Valid() {
		return service.Actor{}, ErrInvalidToken
	}
	return service.Actor{ID: uid, Role: role}, nil
}
