package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opencontainers/go-digest"

	"model-bundle-service/internal/core/domain"
	"model-bundle-service/internal/core/ports/output"
)

type bundleRepo struct {
	pool *pgxpool.Pool
}

func NewBundleRepository(pool *pgxpool.Pool) ports.BundleRepository {
	return &bundleRepo{pool: pool}
}

const bundleColumns = `
	id, created_at, updated_at, name, version, state, digest, path,
	labels, artifacts
`

func (r *bundleRepo) Create(ctx context.Context, bundle *domain.Bundle) error {
	labelsJSON, err := json.Marshal(bundle.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}
	artifactsJSON, err := json.Marshal(bundle.Artifacts)
	if err != nil {
		return fmt.Errorf("marshal artifacts: %w", err)
	}

	query := `
		INSERT INTO bundle
			(id, created_at, updated_at, name, version, state, digest, path,
			 labels, artifacts)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	_, err = r.pool.Exec(ctx, query,
		bundle.ID, bundle.CreatedAt, bundle.UpdatedAt,
		bundle.Name, bundle.Version, string(bundle.State),
		string(bundle.Digest), bundle.Path, labelsJSON, artifactsJSON,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrBundleExists
		}
		return fmt.Errorf("create bundle: %w", err)
	}
	return nil
}

func (r *bundleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bundle, error) {
	query := `SELECT ` + bundleColumns + ` FROM bundle WHERE id = $1`
	bundle, err := scanBundle(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBundleNotFound
		}
		return nil, fmt.Errorf("get bundle by id: %w", err)
	}
	return bundle, nil
}

func (r *bundleRepo) GetByNameVersion(ctx context.Context, name, version string) (*domain.Bundle, error) {
	var row pgx.Row
	if version == "" {
		// Latest version of the name.
		query := `SELECT ` + bundleColumns + ` FROM bundle
			WHERE name = $1 ORDER BY version DESC LIMIT 1`
		row = r.pool.QueryRow(ctx, query, name)
	} else {
		query := `SELECT ` + bundleColumns + ` FROM bundle
			WHERE name = $1 AND version = $2`
		row = r.pool.QueryRow(ctx, query, name, version)
	}
	bundle, err := scanBundle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBundleNotFound
		}
		return nil, fmt.Errorf("get bundle by name and version: %w", err)
	}
	return bundle, nil
}

func (r *bundleRepo) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Bundle, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argn := 1

	if filter.Name != "" {
		conditions = append(conditions, fmt.Sprintf("name = $%d", argn))
		args = append(args, filter.Name)
		argn++
	}
	if filter.State != "" {
		conditions = append(conditions, fmt.Sprintf("state = $%d", argn))
		args = append(args, filter.State)
		argn++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM bundle ` + where
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bundles: %w", err)
	}

	sortBy := "created_at"
	switch filter.SortBy {
	case "name", "version", "created_at", "updated_at":
		sortBy = filter.SortBy
	}
	order := "DESC"
	if strings.EqualFold(filter.Order, "asc") {
		order = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM bundle %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		bundleColumns, where, sortBy, order, argn, argn+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bundles: %w", err)
	}
	defer rows.Close()

	bundles := []*domain.Bundle{}
	for rows.Next() {
		bundle, err := scanBundle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan bundle row: %w", err)
		}
		bundles = append(bundles, bundle)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bundles: %w", err)
	}
	return bundles, total, nil
}

func (r *bundleRepo) Update(ctx context.Context, bundle *domain.Bundle) error {
	labelsJSON, err := json.Marshal(bundle.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	query := `
		UPDATE bundle
		SET state=$1, labels=$2, updated_at=NOW()
		WHERE id=$3
	`
	result, err := r.pool.Exec(ctx, query, string(bundle.State), labelsJSON, bundle.ID)
	if err != nil {
		return fmt.Errorf("update bundle: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrBundleNotFound
	}
	return nil
}

func (r *bundleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM bundle WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bundle: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrBundleNotFound
	}
	return nil
}

func scanBundle(row pgx.Row) (*domain.Bundle, error) {
	var (
		b             domain.Bundle
		state         string
		dgst          string
		labelsJSON    []byte
		artifactsJSON []byte
	)
	err := row.Scan(
		&b.ID, &b.CreatedAt, &b.UpdatedAt, &b.Name, &b.Version,
		&state, &dgst, &b.Path, &labelsJSON, &artifactsJSON,
	)
	if err != nil {
		return nil, err
	}
	b.State = domain.BundleState(state)
	b.Digest = digest.Digest(dgst)

	if len(labelsJSON) > 0 {
		if err := json.Unmarshal(labelsJSON, &b.Labels); err != nil {
			return nil, fmt.Errorf("unmarshal labels: %w", err)
		}
	}
	if b.Labels == nil {
		b.Labels = make(map[string]string)
	}
	if len(artifactsJSON) > 0 {
		if err := json.Unmarshal(artifactsJSON, &b.Artifacts); err != nil {
			return nil, fmt.Errorf("unmarshal artifacts: %w", err)
		}
	}
	return &b, nil
}
