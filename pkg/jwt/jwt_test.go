package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/homecare-fulfillment/pkg/jwt"
)

func signer(t *testing.T, secret, issuer string, ttl time.Duration) *jwt.Signer {
	t.Helper()
	s, err := jwt.NewSigner(secret, issuer, ttl)
	require.NoError(t, err)
	return s
}

func TestSigner_IdaYVuelta(t *testing.T) {
	s := signer(t, "clave", "homecare", time.Hour)
	tok, err := s.Sign(jwt.Identity{UserID: "user-1", TenantID: "tenant-1", Role: "facturador"})
	require.NoError(t, err)

	id, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, jwt.Identity{UserID: "user-1", TenantID: "tenant-1", Role: "facturador"}, id)
}

func TestSigner_RolVacioEsValido(t *testing.T) {
	s := signer(t, "clave", "", time.Hour)
	tok, err := s.Sign(jwt.Identity{UserID: "user-1", TenantID: "tenant-1"})
	require.NoError(t, err)

	id, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Empty(t, id.Role)
}

func TestSigner_Rechazos(t *testing.T) {
	base := signer(t, "clave", "homecare", time.Hour)
	valid, err := base.Sign(jwt.Identity{UserID: "user-1", TenantID: "tenant-1", Role: "admin"})
	require.NoError(t, err)
	expired, err := signer(t, "clave", "homecare", -time.Minute).Sign(jwt.Identity{UserID: "user-1", TenantID: "tenant-1"})
	require.NoError(t, err)
	otherIssuer, err := signer(t, "clave", "otro", time.Hour).Sign(jwt.Identity{UserID: "user-1", TenantID: "tenant-1"})
	require.NoError(t, err)

	cases := map[string]struct {
		s     *jwt.Signer
		token string
	}{
		"expirado":     {base, expired},
		"otro emisor":  {base, otherIssuer},
		"otra firma":   {signer(t, "otra-clave", "homecare", time.Hour), valid},
		"token basura": {base, "abc.def.ghi"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.s.Verify(c.token)
			assert.ErrorIs(t, err, jwt.ErrInvalidToken)
		})
	}
}

func TestSigner_Obligatorios(t *testing.T) {
	_, err := jwt.NewSigner("", "homecare", time.Hour)
	assert.Error(t, err)

	s := signer(t, "clave", "homecare", time.Hour)
	_, err = s.Sign(jwt.Identity{UserID: "user-1"})
	assert.Error(t, err, "sin tenant")
	_, err = s.Sign(jwt.Identity{TenantID: "tenant-1"})
	assert.Error(t, err, "sin usuario")
}
