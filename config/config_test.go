package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	c := map[string]string{
		"PORT":    "9000",
		"BAD_INT": "x",
		"FLAG":    "true",
		"EMPTY":   "",
		"LIST":    " a, ,b ,c",
	}

	assert.Equal(t, "9000", GetString(c, "PORT", "1"))
	assert.Equal(t, "fallback", GetString(c, "EMPTY", "fallback"))
	assert.Equal(t, 7, GetInt(c, "BAD_INT", 7))
	assert.True(t, GetBool(c, "FLAG", false))
	assert.False(t, GetBool(c, "MISSING", false))
	assert.Equal(t, 3*time.Second, GetSeconds(c, "MISSING", 3))
	assert.Equal(t, []string{"a", "b", "c"}, GetList(c, "LIST"))
	assert.Nil(t, GetList(nil, "LIST"))
}

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "mongo", s.DBType)
	assert.Equal(t, 7*24*time.Hour, s.TokenTTL)
	assert.Equal(t, "outbox", s.Notifier)
	assert.Equal(t, "local", s.StorageBackend)
	assert.False(t, s.IsProduction())
	assert.False(t, s.TrustProxyHeaders)
	assert.False(t, s.PrivilegedSignup)

	s, err = Load(map[string]string{"TRUST_PROXY_HEADERS": "true", "ALLOW_PRIVILEGED_SIGNUP": "true"})
	require.NoError(t, err)
	assert.True(t, s.TrustProxyHeaders)
	assert.True(t, s.PrivilegedSignup)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	_, err := Load(map[string]string{"ENV": "production"})
	require.Error(t, err)

	s, err := Load(map[string]string{"ENV": "Production", "JWT_SECRET": "s3cr3t", "PUBLIC_BASE_URL": "https://x.dev/"})
	require.NoError(t, err)
	assert.True(t, s.IsProduction())
	assert.Equal(t, "https://x.dev", s.PublicBaseURL)
}
