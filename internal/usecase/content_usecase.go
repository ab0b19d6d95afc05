package usecase

import (
	"context"
	"time"

	"ghorihut-backend/internal/domain"
)

type ContentUsecase interface {
	GetContent(ctx context.Context, key string) (*domain.ContentBlock, error)
	GetActiveContent(ctx context.Context, key string) (*domain.ContentBlock, error)
	UpsertContent(ctx context.Context, key string, content domain.RawJSON) (*domain.ContentBlock, error)
	UpdateSchedule(ctx context.Context, key string, isActive bool, startAt, endAt *time.Time) error
}

type contentUsecase struct {
	repo domain.ContentRepository
}

func NewContentUsecase(r domain.ContentRepository) ContentUsecase {
	return &contentUsecase{repo: r}
}

func (u *contentUsecase) GetContent(ctx context.Context, key string) (*domain.ContentBlock, error) {
	return u.repo.GetContentByKey(ctx, key)
}

// GetActiveContent returns a block only while it is active and scheduled,
// for the public storefront.
func (u *contentUsecase) GetActiveContent(ctx context.Context, key string) (*domain.ContentBlock, error) {
	block, err := u.repo.GetContentByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if !block.IsCurrentlyActive() {
		return nil, domain.ErrContentNotFound
	}
	return block, nil
}

func (u *contentUsecase) UpsertContent(ctx context.Context, key string, content domain.RawJSON) (*domain.ContentBlock, error) {
	return u.repo.UpsertContent(ctx, key, content)
}

func (u *contentUsecase) UpdateSchedule(ctx context.Context, key string, isActive bool, startAt, endAt *time.Time) error {
	return u.repo.UpdateSchedule(ctx, key, isActive, startAt, endAt)
}
