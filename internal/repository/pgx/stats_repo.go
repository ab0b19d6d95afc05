package pgxrepo

import (
	"context"
	"fmt"
	"time"

	"ghorihut-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type statsRepo struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) domain.StatsRepository {
	return &statsRepo{pool: pool}
}

func (r *statsRepo) GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM orders WHERE status = 'pending'),
			(SELECT COUNT(*) FROM orders WHERE payment_status = 'pending_verification'),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status = 'delivered'),
			(SELECT COUNT(*) FROM products WHERE is_active = true),
			(SELECT COUNT(*) FROM users WHERE role = 'customer')`

	var stats domain.DashboardStats
	err := db(ctx, r.pool).QueryRow(ctx, query).Scan(
		&stats.TotalOrders,
		&stats.PendingOrders,
		&stats.PendingVerification,
		&stats.TotalRevenue,
		&stats.ActiveProducts,
		&stats.TotalCustomers,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &stats, nil
}

func (r *statsRepo) GetDailySales(ctx context.Context, start, end time.Time) ([]domain.DailySales, error) {
	const query = `
		SELECT date_trunc('day', created_at) AS day,
		       COUNT(*),
		       COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
		  AND status NOT IN ('cancelled', 'refunded')
		GROUP BY day
		ORDER BY day`

	rows, err := db(ctx, r.pool).Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.DailySales
	for rows.Next() {
		var s domain.DailySales
		if err := rows.Scan(&s.Day, &s.Orders, &s.Revenue); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
