package model

import "time"

// DefaultPageSize は一覧取得時の1ページあたりの件数。
const DefaultPageSize = 10

// MinVehicleYearExclusive は登録可能な製造年の下限（この値は含まない）。
const MinVehicleYearExclusive = 1950

// Vehicle は管理対象の車両を表す。管理者との所有関係は持たない。
type Vehicle struct {
	ID        int64
	Name      string
	Brand     string
	Year      int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VehicleInput は車両の登録・更新リクエストの未検証データを表す。
type VehicleInput struct {
	Name  string
	Brand string
	Year  int
}

// VehicleFilter は車両一覧の絞り込み条件。
// 空文字列のフィールドは条件に含めない。
type VehicleFilter struct {
	Name  string
	Brand string
}
