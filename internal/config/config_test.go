package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAPIBase(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		web    bool
		origin string
		want   string
	}{
		{name: "unset", raw: "", want: DefaultAPIURL},
		{name: "blank", raw: "   ", want: DefaultAPIURL},
		{name: "relative", raw: "/api", want: DefaultAPIURL},
		{name: "no scheme", raw: "localhost:4000/api", want: DefaultAPIURL},
		{name: "ftp", raw: "ftp://h/api", want: DefaultAPIURL},
		{name: "already api", raw: "http://192.168.1.5:4000/api", want: "http://192.168.1.5:4000/api"},
		{name: "append api", raw: "https://h.example", want: "https://h.example/api"},
		{name: "trailing slashes", raw: "https://h.example/api///", want: "https://h.example/api"},
		{name: "web same origin", raw: "https://app.example/api", web: true, origin: "https://app.example", want: DefaultAPIURL},
		{name: "web other origin", raw: "https://api.example", web: true, origin: "https://app.example", want: "https://api.example/api"},
		{name: "native same origin allowed", raw: "https://app.example/api", origin: "https://app.example", want: "https://app.example/api"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveAPIBase(tt.raw, tt.web, tt.origin))
		})
	}
}

func TestServerBase(t *testing.T) {
	assert.Equal(t, "https://h", ServerBase("https://h/api"))
	assert.Equal(t, "https://h", ServerBase("https://h/api/"))
	assert.Equal(t, "https://h/v1", ServerBase("https://h/v1"))
}

func TestParseClient_Defaults(t *testing.T) {
	t.Setenv("DH_API_URL", "")
	opts, err := ParseClient(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, opts.APIURL)
	assert.Equal(t, 30*time.Second, opts.Timeout)
	assert.Equal(t, BackendFile, opts.CredentialBackend)
	assert.Equal(t, "warn", opts.LogLevel)
}

func TestParseClient_EnvAndFlags(t *testing.T) {
	t.Setenv("DH_API_URL", "http://env.example:4000")
	t.Setenv("DH_CREDENTIAL_BACKEND", "memory")

	opts, err := ParseClient(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example:4000/api", opts.APIURL)
	assert.Equal(t, BackendMemory, opts.CredentialBackend)

	opts, err = ParseClient([]string{"-url", "http://flag.example/api", "-timeout", "15s"})
	require.NoError(t, err)
	assert.Equal(t, "http://flag.example/api", opts.APIURL)
	assert.Equal(t, 15*time.Second, opts.Timeout)
	assert.Equal(t, BackendMemory, opts.CredentialBackend, "env survives when the flag is not set")
}

func TestParseClient_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: https://file.example\ncredential_backend: redis\nredis_url: redis://r:6379/1\n"), 0o600))

	opts, err := ParseClient([]string{"-c", path})
	require.NoError(t, err)
	assert.Equal(t, "https://file.example/api", opts.APIURL)
	assert.Equal(t, BackendRedis, opts.CredentialBackend)
	assert.Equal(t, "redis://r:6379/1", opts.RedisURL)
}

func TestParseClient_Invalid(t *testing.T) {
	_, err := ParseClient([]string{"-credential-backend", "keychain"})
	require.Error(t, err)

	_, err = ParseClient([]string{"-timeout", "0s"})
	require.Error(t, err)
}

func TestParseServer(t *testing.T) {
	opts, err := ParseServer([]string{"-a", "127.0.0.1:5000", "-otp", "123456", "-auto-approve"})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5000", opts.Addr)
	assert.Equal(t, "http://127.0.0.1:5000", opts.PublicURL)
	assert.Equal(t, "123456", opts.OTPCode)
	assert.True(t, opts.AutoApprove)
	assert.Equal(t, 45, opts.Seed)

	_, err = ParseServer([]string{"-jwt-secret", "short"})
	require.Error(t, err)
}
