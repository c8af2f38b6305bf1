// Package jwt firma y verifica los tokens de acceso (HS256) que identifican usuario, tenant y rol.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken envuelve cualquier rechazo de Verify.
var ErrInvalidToken = errors.New("jwt: token inválido")

// Identity es lo que viaja en el token. El rol puede venir vacío; lo decide el middleware.
type Identity struct {
	UserID   string
	TenantID string
	Role     string
}

type claims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenant_id"`
	Role     string `json:"role,omitempty"`
}

// Signer emite y valida tokens con un secreto compartido.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner construye el firmador. issuer vacío desactiva la verificación del emisor.
func NewSigner(secret, issuer string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("jwt: secret vacío")
	}
	return &Signer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Sign emite un token para id con vencimiento now+ttl.
func (s *Signer) Sign(id Identity) (string, error) {
	if id.UserID == "" || id.TenantID == "" {
		return "", errors.New("jwt: user_id y tenant_id son obligatorios")
	}
	now := s.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		TenantID: id.TenantID,
		Role:     id.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Verify valida firma, vencimiento y emisor y devuelve la identidad.
func (s *Signer) Verify(token string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	var c claims
	if _, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return s.secret, nil }, opts...); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" || c.TenantID == "" {
		return Identity{}, fmt.Errorf("%w: faltan sub o tenant_id", ErrInvalidToken)
	}
	return Identity{UserID: c.Subject, TenantID: c.TenantID, Role: c.Role}, nil
}
