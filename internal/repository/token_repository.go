package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tracker-bot/internal/domain"
)

// TokenRepository encapsulates per-user OAuth token persistence.
type TokenRepository interface {
	Get(ctx context.Context, userIdentity string) (*domain.TokenRecord, error)
	UpsertRequestToken(ctx context.Context, userIdentity, token, secret string) error
	SetAccessToken(ctx context.Context, userIdentity, token, secret string) error
}

type tokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository instantiates repository.
func NewTokenRepository(pool *pgxpool.Pool) TokenRepository {
	return &tokenRepository{pool: pool}
}

func (r *tokenRepository) Get(ctx context.Context, userIdentity string) (*domain.TokenRecord, error) {
	const query = `
        SELECT user_identity, request_token, request_token_secret, access_token, access_token_secret,
               created_at, updated_at
        FROM oauth_tokens WHERE user_identity=$1`
	var record domain.TokenRecord
	if err := r.pool.QueryRow(ctx, query, userIdentity).Scan(
		&record.UserIdentity,
		&record.RequestToken,
		&record.RequestTokenSecret,
		&record.AccessToken,
		&record.AccessTokenSecret,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpsertRequestToken writes the request-token pair for a user in a single
// statement. Existing access-token columns are left untouched so a forced
// re-acquisition never clobbers a completed exchange.
func (r *tokenRepository) UpsertRequestToken(ctx context.Context, userIdentity, token, secret string) error {
	const query = `
        INSERT INTO oauth_tokens (user_identity, request_token, request_token_secret)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_identity) DO UPDATE
        SET request_token=EXCLUDED.request_token,
            request_token_secret=EXCLUDED.request_token_secret,
            updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query, userIdentity, token, secret)
	return err
}

func (r *tokenRepository) SetAccessToken(ctx context.Context, userIdentity, token, secret string) error {
	const query = `
        UPDATE oauth_tokens SET access_token=$2, access_token_secret=$3, updated_at=NOW()
        WHERE user_identity=$1`
	cmd, err := r.pool.Exec(ctx, query, userIdentity, token, secret)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
