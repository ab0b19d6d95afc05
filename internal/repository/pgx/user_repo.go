package pgxrepo

import (
	"context"
	"errors"

	"ghorihut-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type userRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) domain.UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, email, password_hash, role, first_name, last_name, phone, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := db(ctx, r.pool).Exec(ctx,
		`INSERT INTO users (id, email, password_hash, role, first_name, last_name, phone)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		user.ID, user.Email, user.PasswordHash, user.Role,
		user.FirstName, user.LastName, user.Phone)
	return err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := db(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := db(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *userRepository) GetAll(ctx context.Context, limit, offset int) ([]*domain.User, int64, error) {
	var total int64
	if err := db(ctx, r.pool).QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		int32(limit), int32(offset))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *userRepository) UpdateProfile(ctx context.Context, id, firstName, lastName, phone string) (*domain.User, error) {
	row := db(ctx, r.pool).QueryRow(ctx,
		`UPDATE users SET first_name = $2, last_name = $3, phone = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns, id, firstName, lastName, phone)
	return scanUser(row)
}

func (r *userRepository) AddAddress(ctx context.Context, addr *domain.Address) error {
	_, err := db(ctx, r.pool).Exec(ctx,
		`INSERT INTO addresses (id, user_id, label, phone, first_name, last_name,
		   city, division, district, thana, area, address_line, zip, country, is_default)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		addr.ID, addr.UserID, addr.Label, addr.Phone, addr.FirstName, addr.LastName,
		addr.City, addr.Division, addr.District, addr.Thana, addr.Area,
		addr.AddressLine, addr.Zip, addr.Country, addr.IsDefault)
	return err
}

func (r *userRepository) GetAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT id, user_id, label, phone, first_name, last_name,
		        city, division, district, thana, area, address_line, zip, country,
		        is_default, created_at
		 FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addrs []domain.Address
	for rows.Next() {
		var a domain.Address
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&a.ID, &a.UserID, &a.Label, &a.Phone, &a.FirstName, &a.LastName,
			&a.City, &a.Division, &a.District, &a.Thana, &a.Area, &a.AddressLine,
			&a.Zip, &a.Country, &a.IsDefault, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt = createdAt.Time
		addrs = append(addrs, a)
	}
	return addrs, rows.Err()
}

func (r *userRepository) DeleteAddress(ctx context.Context, id, userID string) error {
	_, err := db(ctx, r.pool).Exec(ctx,
		`DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

func (r *userRepository) SaveRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	_, err := db(ctx, r.pool).Exec(ctx,
		`INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES ($1,$2,$3)`,
		token.Token, token.UserID, token.ExpiresAt)
	return err
}

func (r *userRepository) GetRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	var (
		t                    domain.RefreshToken
		expiresAt, createdAt pgtype.Timestamptz
	)
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT token, user_id, expires_at, created_at, revoked
		 FROM refresh_tokens WHERE token = $1`, token).
		Scan(&t.Token, &t.UserID, &expiresAt, &createdAt, &t.Revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.New("refresh token not found")
		}
		return nil, err
	}
	t.ExpiresAt = expiresAt.Time
	t.CreatedAt = createdAt.Time
	return &t, nil
}

func (r *userRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE refresh_tokens SET revoked = true WHERE token = $1`, token)
	return err
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u                    domain.User
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role,
		&u.FirstName, &u.LastName, &u.Phone, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time
	return &u, nil
}
