package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/taskwire/taskwire/internal/auth/domain"
	"github.com/taskwire/taskwire/internal/auth/store"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func testClient(id string) domain.Client {
	now := time.Now().UTC()
	return domain.Client{
		ID:            id,
		SecretHash:    "$argon2id$fake",
		RedirectURIs:  []string{"https://app.example/callback", "https://app.example/alt"},
		GrantTypes:    []string{"authorization_code"},
		ResponseTypes: []string{"code"},
		Scope:         "mcp:read mcp:write",
		Name:          "MCP Client",
		CreatedAt:     now,
		ExpiresAt:     now.Add(30 * 24 * time.Hour),
	}
}

func testCode(hash, clientID string, expiresAt time.Time) domain.AuthorizationCode {
	return domain.AuthorizationCode{
		ID:                  "code-" + hash,
		CodeHash:            hash,
		ClientID:            clientID,
		RedirectURI:         "https://app.example/callback",
		Scope:               "mcp:read",
		CodeChallenge:       "challenge",
		CodeChallengeMethod: "S256",
		CreatedAt:           time.Now().UTC(),
		ExpiresAt:           expiresAt,
	}
}

func TestClientsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	want := testClient("client-1")
	require.NoError(t, s.Clients().CreateClient(ctx, want))

	got, err := s.Clients().GetClientByID(ctx, "client-1")
	require.NoError(t, err)
	require.Equal(t, want.RedirectURIs, got.RedirectURIs)
	require.Equal(t, want.GrantTypes, got.GrantTypes)
	require.Equal(t, want.Scope, got.Scope)
	require.Equal(t, want.Name, got.Name)

	_, err = s.Clients().GetClientByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, s.Clients().CreateClient(ctx, want), store.ErrAlreadyExists)
}

func TestConsumeAuthorizationCodeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	code := testCode("hash-1", "client-1", time.Now().UTC().Add(10*time.Minute))
	require.NoError(t, s.AuthorizationCodes().CreateAuthorizationCode(ctx, code))

	got, err := s.AuthorizationCodes().ConsumeAuthorizationCode(ctx, "hash-1")
	require.NoError(t, err)
	require.Equal(t, code.ClientID, got.ClientID)
	require.Equal(t, code.CodeChallenge, got.CodeChallenge)

	_, err = s.AuthorizationCodes().ConsumeAuthorizationCode(ctx, "hash-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteExpiredSweeps(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	past := time.Now().UTC().Add(-time.Minute)
	future := time.Now().UTC().Add(time.Hour)

	require.NoError(t, s.AuthorizationCodes().CreateAuthorizationCode(ctx, testCode("stale", "c", past)))
	require.NoError(t, s.AuthorizationCodes().CreateAuthorizationCode(ctx, testCode("fresh", "c", future)))

	require.NoError(t, s.AuthorizationCodes().DeleteExpiredAuthorizationCodes(ctx))

	_, err := s.AuthorizationCodes().ConsumeAuthorizationCode(ctx, "stale")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.AuthorizationCodes().ConsumeAuthorizationCode(ctx, "fresh")
	require.NoError(t, err)
}

func TestAccessTokensRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC()
	token := domain.AccessToken{
		ID:        "token-1",
		TokenHash: "token-hash-1",
		ClientID:  "client-1",
		Scope:     "mcp:read",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, s.AccessTokens().CreateAccessToken(ctx, token))

	got, err := s.AccessTokens().GetAccessTokenByHash(ctx, "token-hash-1")
	require.NoError(t, err)
	require.Equal(t, token.ClientID, got.ClientID)
	require.WithinDuration(t, token.ExpiresAt, got.ExpiresAt, time.Second)

	_, err = s.AccessTokens().GetAccessTokenByHash(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	code := testCode("tx-hash", "client-1", time.Now().UTC().Add(10*time.Minute))
	require.NoError(t, s.AuthorizationCodes().CreateAuthorizationCode(ctx, code))

	wantErr := store.ErrNotFound
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.AuthorizationCodes().ConsumeAuthorizationCode(ctx, "tx-hash"); err != nil {
			return err
		}
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	// Rolled back: the code is still redeemable.
	_, err = s.AuthorizationCodes().ConsumeAuthorizationCode(ctx, "tx-hash")
	require.NoError(t, err)
}
