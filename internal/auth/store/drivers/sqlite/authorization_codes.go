package sqlite

import (
	"context"
	"time"

	"github.com/taskwire/taskwire/internal/auth/domain"
)

type authorizationCodesRepo struct {
	q querier
}

func (r *authorizationCodesRepo) CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO authorization_codes (id, code_hash, client_id, redirect_uri, scope, code_challenge, code_challenge_method, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		code.ID,
		code.CodeHash,
		code.ClientID,
		code.RedirectURI,
		code.Scope,
		code.CodeChallenge,
		code.CodeChallengeMethod,
		code.CreatedAt,
		code.ExpiresAt,
	)
	return mapConflict(err)
}

// ConsumeAuthorizationCode deletes the row and returns it in one statement.
// The DELETE is the serialization point for concurrent redemptions: the row
// exists for exactly one caller.
func (r *authorizationCodesRepo) ConsumeAuthorizationCode(ctx context.Context, hash string) (domain.AuthorizationCode, error) {
	row := r.q.QueryRowContext(ctx, `
		DELETE FROM authorization_codes WHERE code_hash = ?
		RETURNING id, code_hash, client_id, redirect_uri, scope, code_challenge, code_challenge_method, created_at, expires_at`,
		hash,
	)

	var code domain.AuthorizationCode
	err := row.Scan(
		&code.ID,
		&code.CodeHash,
		&code.ClientID,
		&code.RedirectURI,
		&code.Scope,
		&code.CodeChallenge,
		&code.CodeChallengeMethod,
		&code.CreatedAt,
		&code.ExpiresAt,
	)
	if err != nil {
		return domain.AuthorizationCode{}, mapNotFound(err)
	}
	return code, nil
}

func (r *authorizationCodesRepo) DeleteExpiredAuthorizationCodes(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM authorization_codes WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
