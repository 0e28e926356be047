package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/desinetwork/classifieds/internal/domain/entity"
	"github.com/desinetwork/classifieds/internal/domain/repository"
)

const userColumns = `id, email, password_hash, name, role,
	email_verified_at, email_verification_token, email_verification_expires_at,
	password_reset_token, password_reset_expires_at, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Role,
		&u.VerifiedAt, &u.VerificationToken, &u.VerificationExpiresAt,
		&u.ResetToken, &u.ResetExpiresAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, role,
			email_verification_token, email_verification_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, u.Name, u.Role, u.VerificationToken, u.VerificationExpiresAt)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) ListAll(ctx context.Context) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *UserRepository) SetVerificationOTP(ctx context.Context, userID, code string, expiresAt time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email_verification_token = $1, email_verification_expires_at = $2, updated_at = now()
		WHERE id = $3
	`, code, expiresAt, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ConsumeVerificationOTP is a single statement so that match, expiry check,
// clearing the code and setting verified-at cannot interleave with a
// concurrent consume of the same code.
func (r *UserRepository) ConsumeVerificationOTP(ctx context.Context, code string, now time.Time) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		UPDATE users
		SET email_verified_at = $2,
			email_verification_token = NULL,
			email_verification_expires_at = NULL,
			updated_at = now()
		WHERE email_verification_token = $1 AND email_verification_expires_at > $2
		RETURNING `+userColumns, code, now))
}

func (r *UserRepository) GetByVerificationOTP(ctx context.Context, code string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_verification_token = $1`, code))
}

func (r *UserRepository) SetResetOTP(ctx context.Context, userID, code string, expiresAt time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_reset_token = $1, password_reset_expires_at = $2, updated_at = now()
		WHERE id = $3
	`, code, expiresAt, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ConsumeResetOTP(ctx context.Context, code, newPasswordHash string, now time.Time) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		UPDATE users
		SET password_hash = $2,
			password_reset_token = NULL,
			password_reset_expires_at = NULL,
			updated_at = now()
		WHERE password_reset_token = $1 AND password_reset_expires_at > $3
		RETURNING `+userColumns, code, newPasswordHash, now))
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID, role string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		UPDATE users SET role = $1, updated_at = now() WHERE id = $2
		RETURNING `+userColumns, role, userID))
}

func (r *UserRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

var _ repository.UserRepository = (*UserRepository)(nil)
