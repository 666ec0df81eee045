package oauth_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/tracker-bot/internal/oauth"
)

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func generateECKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

func TestParsePrivateKeyPKCS1(t *testing.T) {
	key := generateKey(t)
	data := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	parsed, err := oauth.ParsePrivateKey(data)
	require.NoError(t, err)
	require.Equal(t, key.N, parsed.N)
}

func TestParsePrivateKeyPKCS8(t *testing.T) {
	key := generateKey(t)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	data := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	parsed, err := oauth.ParsePrivateKey(data)
	require.NoError(t, err)
	require.Equal(t, key.N, parsed.N)
}

func TestParsePrivateKeyRejectsNonRSAKey(t *testing.T) {
	// An EC key in PKCS#8 decodes but is not usable for RSA-SHA1 signing.
	der, err := x509.MarshalPKCS8PrivateKey(generateECKey(t))
	require.NoError(t, err)
	data := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	_, err = oauth.ParsePrivateKey(data)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not RSA")
}

func TestParsePrivateKeyRejectsGarbage(t *testing.T) {
	_, err := oauth.ParsePrivateKey([]byte("not a pem block"))
	require.Error(t, err)
}

func TestLoadPrivateKeyReadsFromDisk(t *testing.T) {
	key := generateKey(t)
	path := filepath.Join(t.TempDir(), "consumer.pem")
	data := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(path, data, 0o600))

	parsed, err := oauth.LoadPrivateKey(path)
	require.NoError(t, err)
	require.Equal(t, key.N, parsed.N)
}

func TestLoadPrivateKeyReportsMissingFile(t *testing.T) {
	_, err := oauth.LoadPrivateKey(filepath.Join(t.TempDir(), "missing.pem"))
	require.Error(t, err)
}
