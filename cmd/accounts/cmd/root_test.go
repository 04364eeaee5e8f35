package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vavastapak/account-service/internal/api/middleware"
	"github.com/vavastapak/account-service/internal/core/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestAdminToken_PrintsVerifiableToken(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "cli-secret")

	out, err := execute(t, "admin-token", "--subject", "ops", "--ttl", "30m")
	require.NoError(t, err)

	var claims middleware.Claims
	token, err := jwt.ParseWithClaims(strings.TrimSpace(out), &claims, func(*jwt.Token) (any, error) {
		return []byte("cli-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestAdminToken_RequiresSecret(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")

	_, err := execute(t, "admin-token", "--subject", "ops")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestWipe_RequiresConfirmation(t *testing.T) {
	t.Setenv("ENV", "development")

	_, err := execute(t, "wipe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "admin-token", "wipe"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
