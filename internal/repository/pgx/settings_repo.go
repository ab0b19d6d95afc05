package pgxrepo

import (
	"context"
	"errors"

	"ghorihut-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a key-value settings store over the
// settings table. Each key holds one opaque JSONB blob.
func NewSettingsRepository(pool *pgxpool.Pool) domain.SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) Get(ctx context.Context, key string) (domain.RawJSON, error) {
	var value []byte
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT value FROM settings WHERE key = $1`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettingNotFound
		}
		return nil, err
	}
	return domain.RawJSON(value), nil
}

func (r *settingsRepository) Upsert(ctx context.Context, key string, value domain.RawJSON) error {
	_, err := db(ctx, r.pool).Exec(ctx,
		`INSERT INTO settings (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, []byte(value),
	)
	return err
}

func (r *settingsRepository) Delete(ctx context.Context, key string) error {
	_, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM settings WHERE key = $1`, key)
	return err
}
