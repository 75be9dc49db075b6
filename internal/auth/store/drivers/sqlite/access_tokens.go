package sqlite

import (
	"context"
	"time"

	"github.com/taskwire/taskwire/internal/auth/domain"
)

type accessTokensRepo struct {
	q querier
}

func (r *accessTokensRepo) CreateAccessToken(ctx context.Context, t domain.AccessToken) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO access_tokens (id, token_hash, client_id, scope, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.TokenHash,
		t.ClientID,
		t.Scope,
		t.CreatedAt,
		t.ExpiresAt,
	)
	return mapConflict(err)
}

func (r *accessTokensRepo) GetAccessTokenByHash(ctx context.Context, hash string) (domain.AccessToken, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, token_hash, client_id, scope, created_at, expires_at
		FROM access_tokens WHERE token_hash = ?`, hash)

	var t domain.AccessToken
	err := row.Scan(
		&t.ID,
		&t.TokenHash,
		&t.ClientID,
		&t.Scope,
		&t.CreatedAt,
		&t.ExpiresAt,
	)
	if err != nil {
		return domain.AccessToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *accessTokensRepo) DeleteExpiredAccessTokens(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM access_tokens WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
