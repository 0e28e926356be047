package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/desinetwork/classifieds/internal/domain/entity"
	"github.com/desinetwork/classifieds/internal/domain/repository"
)

// Embedded relations are aggregated in SQL (json_agg) and decoded from the
// returned JSON, so a listing is a single round trip.
const classifiedSelect = `
	SELECT c.id, c.user_id, c.title, c.description, c.category,
		c.contact_email, c.contact_phone, c.visibility, c.status,
		c.created_at, c.updated_at,
		u.name AS author_name, u.email AS author_email,
		COALESCE(
			(SELECT json_agg(json_build_object('id', ct.id, 'name', ct.name, 'state', ct.state))
			 FROM classified_cities cc
			 JOIN cities ct ON cc.city_id = ct.id
			 WHERE cc.classified_id = c.id),
			'[]'::json
		) AS selected_cities,
		COALESCE(
			(SELECT json_agg(json_build_object(
				'id', ci.id,
				'url', CASE WHEN ci.file_path LIKE 'http%' THEN ci.file_path ELSE '/api/uploads/' || ci.file_path END
			 ) ORDER BY ci.sort_order)
			 FROM classified_images ci WHERE ci.classified_id = c.id),
			'[]'::json
		) AS images
	FROM classifieds c
	JOIN users u ON c.user_id = u.id`

type ClassifiedRepository struct {
	pool *pgxpool.Pool
}

func NewClassifiedRepository(pool *pgxpool.Pool) *ClassifiedRepository {
	return &ClassifiedRepository{pool: pool}
}

func scanClassified(row pgx.Row) (*entity.Classified, error) {
	c := &entity.Classified{}
	var citiesJSON, imagesJSON []byte
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Category,
		&c.ContactEmail, &c.ContactPhone, &c.Visibility, &c.Status,
		&c.CreatedAt, &c.UpdatedAt, &c.AuthorName, &c.AuthorEmail,
		&citiesJSON, &imagesJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(citiesJSON, &c.SelectedCities); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(imagesJSON, &c.Images); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ClassifiedRepository) queryMany(ctx context.Context, q string, args ...any) ([]entity.Classified, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Classified{}
	for rows.Next() {
		c, err := scanClassified(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *ClassifiedRepository) ListPublished(ctx context.Context, f repository.PublishedFilter) ([]entity.Classified, error) {
	q := classifiedSelect + ` WHERE c.status = 'published'`
	args := []any{}
	i := 1

	if f.CityID != "" {
		q += fmt.Sprintf(` AND (
			c.visibility = 'all_cities'
			OR EXISTS (SELECT 1 FROM classified_cities cc WHERE cc.classified_id = c.id AND cc.city_id = $%d)
		)`, i)
		args = append(args, f.CityID)
		i++
	} else {
		// A selected_cities ad with no links is reachable by neither the
		// all-cities rule nor any city, so it stays out of the unfiltered
		// listing too.
		q += ` AND (
			c.visibility = 'all_cities'
			OR EXISTS (SELECT 1 FROM classified_cities cc WHERE cc.classified_id = c.id)
		)`
	}
	if f.Category != "" {
		q += fmt.Sprintf(` AND c.category ILIKE $%d`, i)
		args = append(args, "%"+f.Category+"%")
		i++
	}
	if f.Search != "" {
		q += fmt.Sprintf(` AND (c.title ILIKE $%d OR c.description ILIKE $%d)`, i, i)
		args = append(args, "%"+f.Search+"%")
	}
	q += ` ORDER BY c.created_at DESC`

	return r.queryMany(ctx, q, args...)
}

func (r *ClassifiedRepository) GetPublished(ctx context.Context, id string) (*entity.Classified, error) {
	return scanClassified(r.pool.QueryRow(ctx,
		classifiedSelect+` WHERE c.id = $1 AND c.status = 'published'`, id))
}

func (r *ClassifiedRepository) GetByID(ctx context.Context, id string) (*entity.Classified, error) {
	return scanClassified(r.pool.QueryRow(ctx, classifiedSelect+` WHERE c.id = $1`, id))
}

func (r *ClassifiedRepository) ListByOwner(ctx context.Context, userID string) ([]entity.Classified, error) {
	return r.queryMany(ctx,
		classifiedSelect+` WHERE c.user_id = $1 ORDER BY c.created_at DESC`, userID)
}

func (r *ClassifiedRepository) ListAll(ctx context.Context) ([]entity.Classified, error) {
	return r.queryMany(ctx, classifiedSelect+` ORDER BY c.created_at DESC`)
}

func (r *ClassifiedRepository) Create(ctx context.Context, in repository.ClassifiedInsert) (*entity.Classified, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO classifieds (user_id, title, description, category, contact_email, contact_phone, visibility, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'draft')
		RETURNING id
	`, in.UserID, in.Title, in.Description, in.Category, in.ContactEmail, in.ContactPhone, in.Visibility).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ClassifiedRepository) Update(ctx context.Context, id, ownerID string, p repository.ClassifiedPatch) error {
	sets := []string{}
	args := []any{id, ownerID}
	i := 3

	add := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, v)
		i++
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.ContactEmail != nil {
		add("contact_email", *p.ContactEmail)
	}
	if p.ContactPhone != nil {
		add("contact_phone", *p.ContactPhone)
	}
	if p.Visibility != nil {
		add("visibility", *p.Visibility)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	sets = append(sets, "updated_at = now()")

	res, err := r.pool.Exec(ctx,
		`UPDATE classifieds SET `+strings.Join(sets, ", ")+` WHERE id = $1 AND user_id = $2`,
		args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ClassifiedRepository) UpdateStatus(ctx context.Context, id, status string) (*entity.Classified, error) {
	res, err := r.pool.Exec(ctx,
		`UPDATE classifieds SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *ClassifiedRepository) Delete(ctx context.Context, id, ownerID string) ([]entity.ClassifiedImage, error) {
	imgs, err := r.ListImages(ctx, id)
	if err != nil {
		return nil, err
	}

	q := `DELETE FROM classifieds WHERE id = $1 RETURNING id`
	args := []any{id}
	if ownerID != "" {
		q = `DELETE FROM classifieds WHERE id = $1 AND user_id = $2 RETURNING id`
		args = append(args, ownerID)
	}
	var deleted string
	if err := r.pool.QueryRow(ctx, q, args...).Scan(&deleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return imgs, nil
}

// ReplaceCityLinks computes add/remove sets against the stored links and
// applies both inside one transaction, instead of delete-then-reinsert.
func (r *ClassifiedRepository) ReplaceCityLinks(ctx context.Context, id string, cityIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx,
		`SELECT city_id FROM classified_cities WHERE classified_id = $1`, id)
	if err != nil {
		return err
	}
	current := map[string]bool{}
	for rows.Next() {
		var cid string
		if err := rows.Scan(&cid); err != nil {
			rows.Close()
			return err
		}
		current[cid] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	want := map[string]bool{}
	for _, cid := range cityIDs {
		want[cid] = true
	}

	var toRemove []string
	for cid := range current {
		if !want[cid] {
			toRemove = append(toRemove, cid)
		}
	}
	if len(toRemove) > 0 {
		if _, err := tx.Exec(ctx,
			`DELETE FROM classified_cities WHERE classified_id = $1 AND city_id = ANY($2::uuid[])`,
			id, toRemove); err != nil {
			return err
		}
	}
	for cid := range want {
		if !current[cid] {
			if _, err := tx.Exec(ctx,
				`INSERT INTO classified_cities (classified_id, city_id) VALUES ($1, $2)`,
				id, cid); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func (r *ClassifiedRepository) AddImages(ctx context.Context, id string, imgs []repository.ImageInsert) error {
	for _, img := range imgs {
		if _, err := r.pool.Exec(ctx,
			`INSERT INTO classified_images (classified_id, file_path, sort_order) VALUES ($1, $2, $3)`,
			id, img.FilePath, img.SortOrder); err != nil {
			return err
		}
	}
	return nil
}

func (r *ClassifiedRepository) ListImages(ctx context.Context, id string) ([]entity.ClassifiedImage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, file_path, sort_order FROM classified_images
		WHERE classified_id = $1 ORDER BY sort_order
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.ClassifiedImage{}
	for rows.Next() {
		var img entity.ClassifiedImage
		if err := rows.Scan(&img.ID, &img.FilePath, &img.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func (r *ClassifiedRepository) RemoveImages(ctx context.Context, id string, imageIDs []string) ([]entity.ClassifiedImage, error) {
	rows, err := r.pool.Query(ctx, `
		DELETE FROM classified_images
		WHERE classified_id = $1 AND id = ANY($2::uuid[])
		RETURNING id, file_path, sort_order
	`, id, imageIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.ClassifiedImage{}
	for rows.Next() {
		var img entity.ClassifiedImage
		if err := rows.Scan(&img.ID, &img.FilePath, &img.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func (r *ClassifiedRepository) MaxSortOrder(ctx context.Context, id string) (int, error) {
	var m int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(sort_order), -1) FROM classified_images WHERE classified_id = $1`, id).Scan(&m)
	return m, err
}

func (r *ClassifiedRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM classifieds`).Scan(&n)
	return n, err
}

func (r *ClassifiedRepository) CountPublished(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM classifieds WHERE status = 'published'`).Scan(&n)
	return n, err
}

var _ repository.ClassifiedRepository = (*ClassifiedRepository)(nil)
