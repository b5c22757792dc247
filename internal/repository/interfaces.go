// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"math"

	"github.com/hitoshi/veiculos/internal/model"
)

var (
	// ErrNotFound は更新・削除対象のレコードが存在しないことを表す。
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail は同じemailの管理者が既に存在することを表す。
	ErrDuplicateEmail = errors.New("administrator email already exists")
)

// AdministratorRepository は管理者データの永続化インターフェース。
// 管理者は登録のみで、更新・削除は提供しない。
type AdministratorRepository interface {
	// FindByEmail はemailが完全一致する管理者を取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Administrator, error)

	// FindByID は指定IDの管理者を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Administrator, error)

	// Create は管理者を作成し、採番したIDとCreatedAtを設定する。
	// emailが重複する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, admin *model.Administrator) error

	// List はID昇順で管理者一覧を返す。
	// pageは1始まり。page <= 0 の場合はページングせず全件を返す。
	List(ctx context.Context, page, pageSize int) ([]*model.Administrator, error)
}

// VehicleRepository は車両データの永続化インターフェース。
type VehicleRepository interface {
	// FindByID は指定IDの車両を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Vehicle, error)

	// Create は車両を作成し、採番したIDとタイムスタンプを設定する。
	Create(ctx context.Context, vehicle *model.Vehicle) error

	// Update は車両を上書き更新する。存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, vehicle *model.Vehicle) error

	// Delete は指定IDの車両を削除する。存在しない場合はErrNotFoundを返す。
	Delete(ctx context.Context, id int64) error

	// List はID昇順で車両一覧を返す。
	// filterのName/Brandは大文字小文字を区別しない部分一致で絞り込む。
	// pageは1始まり。page <= 0 の場合はページングせず全件を返す。
	List(ctx context.Context, page, pageSize int, filter model.VehicleFilter) ([]*model.Vehicle, error)
}

// HealthChecker はストアの疎通確認用インターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// pageBounds は1始まりのページ番号からOFFSETとLIMITを算出する。
// ページングしない場合はpagedがfalseになる。
// OFFSETがintに収まらないページは、offset+limitが溢れない最大値に丸める（結果は常に空になる）。
func pageBounds(page, pageSize int) (offset, limit int, paged bool) {
	if page <= 0 || pageSize <= 0 {
		return 0, 0, false
	}
	maxOffset := math.MaxInt - pageSize
	if page-1 > maxOffset/pageSize {
		return maxOffset, pageSize, true
	}
	return (page - 1) * pageSize, pageSize, true
}
