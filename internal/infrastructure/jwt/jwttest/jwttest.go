// Package jwttest builds throwaway token providers for tests.
package jwttest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/heimu09/ApartXCleaning/internal/config"
	jwtinfra "github.com/heimu09/ApartXCleaning/internal/infrastructure/jwt"
	"github.com/stretchr/testify/require"
)

const Issuer = "apartx-test"

// NewProvider generates a fresh RSA key pair, writes it to t.TempDir() and
// returns a provider with a 5m access and 24h refresh lifetime.
func NewProvider(t testing.TB) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))
	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTIssuer:         Issuer,
		JWTAccessTTL:      5 * time.Minute,
		JWTRefreshTTL:     24 * time.Hour,
	})
	require.NoError(t, err)
	return p
}
