package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/veiculos/internal/model"
)

// PostgresVehicleRepo はPostgreSQLを使用した車両リポジトリ。
type PostgresVehicleRepo struct {
	db *sql.DB
}

// NewPostgresVehicleRepo はPostgresVehicleRepoを生成する。
func NewPostgresVehicleRepo(db *sql.DB) *PostgresVehicleRepo {
	return &PostgresVehicleRepo{db: db}
}

const vehicleColumns = `id, name, brand, year, created_at, updated_at`

// FindByID は指定IDの車両を取得する。見つからない場合はnilを返す。
func (r *PostgresVehicleRepo) FindByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	v := &model.Vehicle{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.Name, &v.Brand, &v.Year, &v.CreatedAt, &v.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicle by ID: %w", err)
	}
	return v, nil
}

// Create は車両を作成する。
func (r *PostgresVehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO vehicles (name, brand, year)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		v.Name, v.Brand, v.Year,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert vehicle: %w", err)
	}
	return nil
}

// Update は車両のname, brand, yearを上書きする。
func (r *PostgresVehicleRepo) Update(ctx context.Context, v *model.Vehicle) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE vehicles
		 SET name = $1, brand = $2, year = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING created_at, updated_at`,
		v.Name, v.Brand, v.Year, v.ID,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update vehicle: %w", err)
	}
	return nil
}

// Delete は車両を削除する。
func (r *PostgresVehicleRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List はID昇順で車両一覧を返す。空のフィルタ条件は無視する。
func (r *PostgresVehicleRepo) List(ctx context.Context, page, pageSize int, filter model.VehicleFilter) ([]*model.Vehicle, error) {
	var (
		conds []string
		args  []any
	)
	if name := strings.TrimSpace(filter.Name); name != "" {
		args = append(args, "%"+escapeLike(name)+"%")
		conds = append(conds, fmt.Sprintf(`name ILIKE $%d`, len(args)))
	}
	if brand := strings.TrimSpace(filter.Brand); brand != "" {
		args = append(args, "%"+escapeLike(brand)+"%")
		conds = append(conds, fmt.Sprintf(`brand ILIKE $%d`, len(args)))
	}

	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY id`
	if offset, limit, paged := pageBounds(page, pageSize); paged {
		args = append(args, limit, offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []*model.Vehicle{}
	for rows.Next() {
		v := &model.Vehicle{}
		if err := rows.Scan(&v.ID, &v.Name, &v.Brand, &v.Year, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vehicles: %w", err)
	}
	return vehicles, nil
}

// escapeLike はLIKEパターンのメタ文字をエスケープする。
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// compile-time interface check
var _ VehicleRepository = (*PostgresVehicleRepo)(nil)
