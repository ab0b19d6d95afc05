package domain

import (
	"context"
	"errors"
	"time"
)

// ContentBlock is a dynamic homepage section (hero banner, marquee ticker
// text, featured-brand strip). Structure is section-specific, so content is
// stored raw. Scheduling fields allow time-boxed campaigns.
type ContentBlock struct {
	ID         string     `json:"id"`
	SectionKey string     `json:"sectionKey"`
	Content    RawJSON    `json:"content"`
	IsActive   bool       `json:"isActive"`
	StartAt    *time.Time `json:"startAt,omitempty"`
	EndAt      *time.Time `json:"endAt,omitempty"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// IsCurrentlyActive reports whether the block is active and inside its
// schedule. Single point of truth for content visibility.
func (c *ContentBlock) IsCurrentlyActive() bool {
	if !c.IsActive {
		return false
	}
	now := time.Now()
	if c.StartAt != nil && now.Before(*c.StartAt) {
		return false
	}
	if c.EndAt != nil && now.After(*c.EndAt) {
		return false
	}
	return true
}

var ErrContentNotFound = errors.New("content not found")

type ContentRepository interface {
	GetContentByKey(ctx context.Context, key string) (*ContentBlock, error)
	UpsertContent(ctx context.Context, key string, content RawJSON) (*ContentBlock, error)
	UpdateSchedule(ctx context.Context, key string, isActive bool, startAt, endAt *time.Time) error
}
