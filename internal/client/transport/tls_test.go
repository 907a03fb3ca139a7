package transport

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/DigitalHouse/internal/certgen"
)

func TestNewHTTPClient_TrustsCA(t *testing.T) {
	dir := t.TempDir()
	ca, err := certgen.NewAuthority("Transport Test CA")
	require.NoError(t, err)
	certPEM, keyPEM, err := ca.IssueServer("127.0.0.1")
	require.NoError(t, err)
	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	require.NoError(t, err)

	caFile := filepath.Join(dir, certgen.CACertFile)
	require.NoError(t, os.WriteFile(caFile, ca.CertPEM(), 0o600))

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "hello")
	}))
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{pair}}
	srv.StartTLS()
	defer srv.Close()

	hc, err := NewHTTPClient(caFile, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, hc.Timeout)

	resp, err := hc.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	plain, err := NewHTTPClient("", time.Second)
	require.NoError(t, err)
	_, err = plain.Get(srv.URL)
	assert.Error(t, err, "the dev CA is not a system root")
}

func TestNewHTTPClient_BadCAFile(t *testing.T) {
	_, err := NewHTTPClient(filepath.Join(t.TempDir(), "missing.crt"), time.Second)
	assert.Error(t, err)

	junk := filepath.Join(t.TempDir(), "junk.crt")
	require.NoError(t, os.WriteFile(junk, []byte("not pem"), 0o600))
	_, err = NewHTTPClient(junk, time.Second)
	assert.EqualError(t, err, "failed to parse CA cert")
}
