package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/veiculos/internal/model"
)

// uniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolation = "23505"

// PostgresAdministratorRepo はPostgreSQLを使用した管理者リポジトリ。
type PostgresAdministratorRepo struct {
	db *sql.DB
}

// NewPostgresAdministratorRepo はPostgresAdministratorRepoを生成する。
func NewPostgresAdministratorRepo(db *sql.DB) *PostgresAdministratorRepo {
	return &PostgresAdministratorRepo{db: db}
}

const administratorColumns = `id, email, password_hash, role, created_at`

// FindByEmail はemailが完全一致する管理者を取得する。見つからない場合はnilを返す。
func (r *PostgresAdministratorRepo) FindByEmail(ctx context.Context, email string) (*model.Administrator, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+administratorColumns+` FROM administrators WHERE email = $1`,
		email,
	)
	admin, err := scanAdministrator(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find administrator by email: %w", err)
	}
	return admin, nil
}

// FindByID は指定IDの管理者を取得する。見つからない場合はnilを返す。
func (r *PostgresAdministratorRepo) FindByID(ctx context.Context, id int64) (*model.Administrator, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+administratorColumns+` FROM administrators WHERE id = $1`,
		id,
	)
	admin, err := scanAdministrator(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find administrator by ID: %w", err)
	}
	return admin, nil
}

// Create は管理者を作成する。emailの一意制約違反はErrDuplicateEmailに変換する。
func (r *PostgresAdministratorRepo) Create(ctx context.Context, admin *model.Administrator) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO administrators (email, password_hash, role)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		admin.Email, admin.PasswordHash, string(admin.Role),
	).Scan(&admin.ID, &admin.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert administrator: %w", err)
	}
	return nil
}

// List はID昇順で管理者一覧を返す。page <= 0 の場合は全件を返す。
func (r *PostgresAdministratorRepo) List(ctx context.Context, page, pageSize int) ([]*model.Administrator, error) {
	query := `SELECT ` + administratorColumns + ` FROM administrators ORDER BY id`
	var args []any
	if offset, limit, paged := pageBounds(page, pageSize); paged {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list administrators: %w", err)
	}
	defer rows.Close()

	admins := []*model.Administrator{}
	for rows.Next() {
		admin, err := scanAdministrator(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan administrator: %w", err)
		}
		admins = append(admins, admin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate administrators: %w", err)
	}
	return admins, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdministrator(row rowScanner) (*model.Administrator, error) {
	admin := &model.Administrator{}
	var role string
	if err := row.Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &role, &admin.CreatedAt); err != nil {
		return nil, err
	}
	parsed, ok := model.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("unknown role %q for administrator %d", role, admin.ID)
	}
	admin.Role = parsed
	return admin, nil
}

// compile-time interface check
var _ AdministratorRepository = (*PostgresAdministratorRepo)(nil)
