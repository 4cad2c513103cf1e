package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/usecase"
)

func TestTokenCommand(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")
	t.Setenv("AUTH_ISSUER", "ragzy")
	t.Setenv("CRYPTO_ENCRYPTION_KEY", "MDEyMzQ1Njc4OTAxMjM0NTY3ODkwMTIzNDU2Nzg5MDE=")

	var stdout, stderr bytes.Buffer
	cmd := newTokenCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--user-id", "user-42", "--email", "dev@ragzy.local", "--ttl", "1h"})
	require.NoError(t, cmd.Execute())

	conf, err := config.Load()
	require.NoError(t, err)
	user, err := usecase.NewAuthUseCase(conf).Parse(strings.TrimSpace(stdout.String()))
	require.NoError(t, err)
	assert.Equal(t, "user-42", user.ID)
	assert.Equal(t, "dev@ragzy.local", user.Email)
	assert.Contains(t, stderr.String(), "expires at")
}

func TestTokenCommandRequiresUserID(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")
	t.Setenv("CRYPTO_ENCRYPTION_KEY", "MDEyMzQ1Njc4OTAxMjM0NTY3ODkwMTIzNDU2Nzg5MDE=")

	cmd := newTokenCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--user-id", ""})
	assert.Error(t, cmd.Execute())
}
