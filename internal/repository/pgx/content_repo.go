package pgxrepo

import (
	"context"
	"errors"
	"time"

	"ghorihut-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contentRepository struct {
	pool *pgxpool.Pool
}

func NewContentRepository(pool *pgxpool.Pool) domain.ContentRepository {
	return &contentRepository{pool: pool}
}

func (r *contentRepository) GetContentByKey(ctx context.Context, key string) (*domain.ContentBlock, error) {
	row := db(ctx, r.pool).QueryRow(ctx,
		`SELECT id, section_key, content, is_active, start_at, end_at, updated_at
		 FROM content_blocks WHERE section_key = $1`, key)
	return scanContentBlock(row)
}

func (r *contentRepository) UpsertContent(ctx context.Context, key string, content domain.RawJSON) (*domain.ContentBlock, error) {
	row := db(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO content_blocks (section_key, content)
		 VALUES ($1, $2)
		 ON CONFLICT (section_key) DO UPDATE SET content = EXCLUDED.content, updated_at = now()
		 RETURNING id, section_key, content, is_active, start_at, end_at, updated_at`,
		key, []byte(content))
	return scanContentBlock(row)
}

func (r *contentRepository) UpdateSchedule(ctx context.Context, key string, isActive bool, startAt, endAt *time.Time) error {
	tag, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE content_blocks
		 SET is_active = $2, start_at = $3, end_at = $4, updated_at = now()
		 WHERE section_key = $1`,
		key, isActive, timestampPtr(startAt), timestampPtr(endAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContentNotFound
	}
	return nil
}

func scanContentBlock(row rowScanner) (*domain.ContentBlock, error) {
	var (
		block          domain.ContentBlock
		content        []byte
		startAt, endAt pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
	)
	err := row.Scan(&block.ID, &block.SectionKey, &content, &block.IsActive,
		&startAt, &endAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContentNotFound
		}
		return nil, err
	}
	block.Content = domain.RawJSON(content)
	block.StartAt = timePtr(startAt)
	block.EndAt = timePtr(endAt)
	block.UpdatedAt = updatedAt.Time
	return &block, nil
}
