package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/taskwire/taskwire/internal/auth/domain"
)

type clientsRepo struct {
	q querier
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO clients (id, secret_hash, redirect_uris, grant_types, response_types, scope, name, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.SecretHash,
		strings.Join(c.RedirectURIs, " "),
		strings.Join(c.GrantTypes, " "),
		strings.Join(c.ResponseTypes, " "),
		c.Scope,
		c.Name,
		c.CreatedAt,
		c.ExpiresAt,
	)
	return mapConflict(err)
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, secret_hash, redirect_uris, grant_types, response_types, scope, name, created_at, expires_at
		FROM clients WHERE id = ?`, id)

	var c domain.Client
	var redirectURIs, grantTypes, responseTypes string
	err := row.Scan(
		&c.ID,
		&c.SecretHash,
		&redirectURIs,
		&grantTypes,
		&responseTypes,
		&c.Scope,
		&c.Name,
		&c.CreatedAt,
		&c.ExpiresAt,
	)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}

	c.RedirectURIs = splitFields(redirectURIs)
	c.GrantTypes = splitFields(grantTypes)
	c.ResponseTypes = splitFields(responseTypes)
	return c, nil
}

func (r *clientsRepo) DeleteExpiredClients(ctx context.Context) error {
	// The cutoff is bound as a parameter so it compares against expires_at in
	// the same encoding the driver wrote it with.
	_, err := r.q.ExecContext(ctx, `DELETE FROM clients WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
