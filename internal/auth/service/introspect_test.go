package service

import (
	"context"
	"testing"
	"time"

	"github.com/taskwire/taskwire/internal/auth/domain"
	"github.com/taskwire/taskwire/pkg/cryptox"
	"github.com/taskwire/taskwire/pkg/idx"

	"github.com/stretchr/testify/require"
)

func TestIntrospectActiveToken(t *testing.T) {
	ctx := context.Background()
	f := newGrantFixture(t, 0)
	svc := &IntrospectService{Store: f.store}

	result, err := (&TokenService{Store: f.store}).ExchangeAuthorizationCode(ctx, f.request())
	require.NoError(t, err)

	info, err := svc.Introspect(ctx, result.AccessToken)
	require.NoError(t, err)
	require.True(t, info.Active)
	require.Equal(t, f.clientID, info.ClientID)
	require.Equal(t, DefaultScope, info.Scope)
	require.Greater(t, info.Exp, info.Iat)
}

func TestIntrospectInactiveTokens(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &IntrospectService{Store: st}

	t.Run("empty token", func(t *testing.T) {
		info, err := svc.Introspect(ctx, "")
		require.NoError(t, err)
		require.False(t, info.Active)
	})

	t.Run("unknown token", func(t *testing.T) {
		info, err := svc.Introspect(ctx, "no-such-token")
		require.NoError(t, err)
		require.False(t, info.Active)
		require.Empty(t, info.ClientID)
		require.Zero(t, info.Exp)
	})

	t.Run("expired token", func(t *testing.T) {
		token := cryptox.MustGenerateToken(cryptox.TokenSize256)
		record := domain.AccessToken{
			ID:        idx.New().String(),
			TokenHash: cryptox.FingerprintToken(token),
			ClientID:  "client-1",
			Scope:     DefaultScope,
			CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
			ExpiresAt: time.Now().UTC().Add(-time.Hour),
		}
		require.NoError(t, st.AccessTokens().CreateAccessToken(ctx, record))

		info, err := svc.Introspect(ctx, token)
		require.NoError(t, err)
		require.False(t, info.Active)
	})
}
