package repositories

import (
	"context"

	"github.com/askeland/riskgate/internal/database"
	"github.com/askeland/riskgate/internal/models"
)

// RecoveryCodeRepository stores the single live one-time-code artifact per
// user. Issuing a new code overwrites any prior row (last write wins).
type RecoveryCodeRepository struct {
	db *database.DB
}

func NewRecoveryCodeRepository(db *database.DB) *RecoveryCodeRepository {
	return &RecoveryCodeRepository{db: db}
}

// Upsert replaces the user's live code artifact.
func (r *RecoveryCodeRepository) Upsert(ctx context.Context, code *models.RecoveryCode) error {
	query := `
		INSERT INTO recovery_codes (username, code_hash, salt, issued_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE
		SET code_hash = EXCLUDED.code_hash, salt = EXCLUDED.salt, issued_at = EXCLUDED.issued_at
	`

	_, err := r.db.Pool.Exec(ctx, query, code.Username, code.CodeHash, code.Salt, code.IssuedAt)
	if err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

// Get fetches the user's live code artifact, if any.
func (r *RecoveryCodeRepository) Get(ctx context.Context, username string) (*models.RecoveryCode, error) {
	query := `
		SELECT username, code_hash, salt, issued_at
		FROM recovery_codes WHERE username = $1
	`

	var code models.RecoveryCode
	err := r.db.Pool.QueryRow(ctx, query, username).Scan(&code.Username, &code.CodeHash, &code.Salt, &code.IssuedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &code, nil
}

// Delete purges the user's code artifact. Deleting a missing row is not an
// error; validation treats an already-purged artifact as a plain failure.
func (r *RecoveryCodeRepository) Delete(ctx context.Context, username string) error {
	query := `DELETE FROM recovery_codes WHERE username = $1`

	_, err := r.db.Pool.Exec(ctx, query, username)
	if err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

// DeleteExpired purges all code artifacts past their lifetime.
func (r *RecoveryCodeRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM recovery_codes WHERE issued_at < NOW() - $1::interval`

	tag, err := r.db.Pool.Exec(ctx, query, models.ArtifactLifetime.String())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}
