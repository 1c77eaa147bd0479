package repositories

import (
	"context"

	"github.com/askeland/riskgate/internal/database"
	"github.com/askeland/riskgate/internal/models"
)

// ResetTokenRepository stores the single live password-reset token per user.
// Same last-write-wins shape as RecoveryCodeRepository.
type ResetTokenRepository struct {
	db *database.DB
}

func NewResetTokenRepository(db *database.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func (r *ResetTokenRepository) Upsert(ctx context.Context, token *models.ResetToken) error {
	query := `
		INSERT INTO reset_tokens (username, secret_hex, hash_sha256, hash_sha512, issued_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO UPDATE
		SET secret_hex = EXCLUDED.secret_hex, hash_sha256 = EXCLUDED.hash_sha256,
		    hash_sha512 = EXCLUDED.hash_sha512, issued_at = EXCLUDED.issued_at
	`

	_, err := r.db.Pool.Exec(ctx, query,
		token.Username, token.SecretHex, token.HashSHA256, token.HashSHA512, token.IssuedAt)
	if err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

func (r *ResetTokenRepository) Get(ctx context.Context, username string) (*models.ResetToken, error) {
	query := `
		SELECT username, secret_hex, hash_sha256, hash_sha512, issued_at
		FROM reset_tokens WHERE username = $1
	`

	var token models.ResetToken
	err := r.db.Pool.QueryRow(ctx, query, username).Scan(
		&token.Username, &token.SecretHex, &token.HashSHA256, &token.HashSHA512, &token.IssuedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &token, nil
}

func (r *ResetTokenRepository) Delete(ctx context.Context, username string) error {
	query := `DELETE FROM reset_tokens WHERE username = $1`

	_, err := r.db.Pool.Exec(ctx, query, username)
	if err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

func (r *ResetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM reset_tokens WHERE issued_at < NOW() - $1::interval`

	tag, err := r.db.Pool.Exec(ctx, query, models.ArtifactLifetime.String())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}
