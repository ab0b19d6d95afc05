package domain

import (
	"context"
	"time"
)

// DashboardStats is the admin landing-page summary.
type DashboardStats struct {
	TotalOrders         int64   `json:"totalOrders"`
	PendingOrders       int64   `json:"pendingOrders"`
	PendingVerification int64   `json:"pendingVerification"`
	TotalRevenue        float64 `json:"totalRevenue"` // delivered orders only
	ActiveProducts      int64   `json:"activeProducts"`
	TotalCustomers      int64   `json:"totalCustomers"`
}

type DailySales struct {
	Day     time.Time `json:"day"`
	Orders  int64     `json:"orders"`
	Revenue float64   `json:"revenue"`
}

type StatsRepository interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
	GetDailySales(ctx context.Context, start, end time.Time) ([]DailySales, error)
}
