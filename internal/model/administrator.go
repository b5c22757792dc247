// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// Role は管理者のアクセスレベル（perfil）を表す。
type Role string

const (
	// RoleAdmin は全ルートにアクセスできる管理者ロール。
	RoleAdmin Role = "Admin"
	// RoleEditor は車両の参照・登録のみ可能な編集者ロール。
	RoleEditor Role = "Editor"
)

// Roles は有効なロールの閉じた集合を返す。
func Roles() []Role {
	return []Role{RoleAdmin, RoleEditor}
}

// ParseRole は文字列をRoleに変換する。
// 大文字小文字は区別しない。旧データの "Adm" はRoleAdminとして扱う。
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "adm":
		return RoleAdmin, true
	case "editor":
		return RoleEditor, true
	default:
		return "", false
	}
}

// String はロール名を返す。
func (r Role) String() string {
	return string(r)
}

// Administrator はAPIを操作する管理者を表す。
// パスワードは平文を保持せず、bcryptハッシュのみを保持する。
type Administrator struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// AdministratorInput は管理者登録リクエストの未検証データを表す。
// Roleがnilの場合は perfil が送信されなかったことを示す。
type AdministratorInput struct {
	Email    string
	Password string
	Role     *string
}

// LoginInput はログインに使用する一時的な認証情報。永続化されない。
type LoginInput struct {
	Email    string
	Password string
}
