// Package auth は認証情報の照合、パスワードハッシュ、セッショントークンの発行・検証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/veiculos/internal/model"
)

// ErrInvalidCredentials はemailまたはパスワードが一致しないことを表す。
// どちらが誤っているかは区別しない。
var ErrInvalidCredentials = errors.New("invalid credentials")

// AdministratorFinder は認証情報の照合に必要なリポジトリ操作。
// repository.AdministratorRepositoryの部分集合として定義する。
type AdministratorFinder interface {
	// FindByEmail はemailが完全一致する管理者を返す。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Administrator, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	BcryptCost int // 存在しないemailの照合に使うダミーハッシュのコスト
}

// LoginResult はログイン成功時の結果。
type LoginResult struct {
	Administrator *model.Administrator
	Token         string
	ExpiresAt     time.Time
}

// Service は認証情報の照合とトークン発行を行う。
type Service struct {
	admins AdministratorFinder
	issuer *TokenIssuer
	config ServiceConfig

	hashDummy func(password string, cost int) (string, error)
	dummyOnce sync.Once
	dummyHash string
}

const dummyPassword = "veiculos-dummy-password"

// NewService はServiceを生成する。
func NewService(admins AdministratorFinder, issuer *TokenIssuer, config ServiceConfig) *Service {
	return &Service{
		admins: admins,
		issuer: issuer,
		config: config,

		hashDummy: HashPassword,
	}
}

// VerifyCredentials はemailとパスワードを保存済みの管理者と照合する。
// 一致しない場合はErrInvalidCredentialsを返す。
// emailが存在しない場合もダミーハッシュとの比較を行い、応答時間で存在を推測できないようにする。
func (s *Service) VerifyCredentials(ctx context.Context, email, password string) (*model.Administrator, error) {
	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find administrator: %w", err)
	}

	if admin == nil {
		CheckPassword(s.dummy(), password)
		return nil, ErrInvalidCredentials
	}

	if !CheckPassword(admin.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return admin, nil
}

// Login は認証情報を照合し、成功した場合はセッショントークンを発行する。
func (s *Service) Login(ctx context.Context, in model.LoginInput) (*LoginResult, error) {
	admin, err := s.VerifyCredentials(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.issuer.Issue(admin)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("administrator logged in",
		slog.Int64("administrator_id", admin.ID),
		slog.String("role", admin.Role.String()),
	)

	return &LoginResult{
		Administrator: admin,
		Token:         token,
		ExpiresAt:     expiresAt,
	}, nil
}

// dummy は未登録emailの照合に使うハッシュを遅延生成して返す。
// 設定コストでの生成に失敗した場合はMinCostのハッシュで代替する。
func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hashDummy(dummyPassword, s.config.BcryptCost)
		if err == nil && hash != "" {
			s.dummyHash = hash
			return
		}
		slog.Warn("failed to build dummy hash, falling back to minimum cost",
			slog.Any("error", err),
		)
		fallback, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), bcrypt.MinCost)
		if err != nil {
			// MinCostかつ72バイト未満の入力では発生しない
			slog.Error("failed to build fallback dummy hash", slog.String("error", err.Error()))
			return
		}
		s.dummyHash = string(fallback)
	})
	return s.dummyHash
}
