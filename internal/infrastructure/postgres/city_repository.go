package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/desinetwork/classifieds/internal/domain/entity"
	"github.com/desinetwork/classifieds/internal/domain/repository"
)

type CityRepository struct {
	pool *pgxpool.Pool
}

func NewCityRepository(pool *pgxpool.Pool) *CityRepository {
	return &CityRepository{pool: pool}
}

func (r *CityRepository) List(ctx context.Context) ([]entity.City, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, state, created_at FROM cities ORDER BY state, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.City{}
	for rows.Next() {
		var c entity.City
		if err := rows.Scan(&c.ID, &c.Name, &c.State, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CityRepository) Create(ctx context.Context, name, state string) (*entity.City, error) {
	c := &entity.City{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO cities (name, state) VALUES ($1, $2)
		RETURNING id, name, state, created_at
	`, name, state).Scan(&c.ID, &c.Name, &c.State, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return c, nil
}

func (r *CityRepository) Delete(ctx context.Context, id string) error {
	var deleted string
	err := r.pool.QueryRow(ctx,
		`DELETE FROM cities WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

func (r *CityRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cities`).Scan(&n)
	return n, err
}

var _ repository.CityRepository = (*CityRepository)(nil)
