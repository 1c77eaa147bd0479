package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/askeland/riskgate/internal/database"
	"github.com/askeland/riskgate/internal/models"
)

// LoginHistoryRepository handles the append-only contextual login log
type LoginHistoryRepository struct {
	db *database.DB
}

// NewLoginHistoryRepository creates a new LoginHistoryRepository
func NewLoginHistoryRepository(db *database.DB) *LoginHistoryRepository {
	return &LoginHistoryRepository{db: db}
}

// Append records one contextual login event. Rows are never updated.
func (r *LoginHistoryRepository) Append(ctx context.Context, record *models.LoginRecord) error {
	query := `
		INSERT INTO login_history (username, ip_address, country, browser, operating_system, login_time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		record.Username,
		record.IPAddress,
		record.Country,
		record.Browser,
		record.OperatingSystem,
		record.LoginTime,
	)
	if err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}

// GetRecent returns up to limit records for a user, most recent first.
func (r *LoginHistoryRepository) GetRecent(ctx context.Context, username string, limit int) ([]models.LoginRecord, error) {
	query := `
		SELECT id, username, ip_address, country, browser, operating_system, login_time
		FROM login_history
		WHERE username = $1
		ORDER BY login_time DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query login history: %w", err)
	}
	defer rows.Close()

	records := make([]models.LoginRecord, 0, limit)
	for rows.Next() {
		var rec models.LoginRecord
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.IPAddress, &rec.Country, &rec.Browser, &rec.OperatingSystem, &rec.LoginTime); err != nil {
			return nil, fmt.Errorf("failed to scan login record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// DeleteOlderThan trims history beyond the retention window.
func (r *LoginHistoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM login_history WHERE login_time < $1`

	tag, err := r.db.Pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return tag.RowsAffected(), nil
}
