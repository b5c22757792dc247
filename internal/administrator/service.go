// Package administrator は管理者の登録・参照のドメインロジックを提供する。
package administrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/veiculos/internal/auth"
	"github.com/hitoshi/veiculos/internal/model"
	"github.com/hitoshi/veiculos/internal/repository"
	"github.com/hitoshi/veiculos/internal/security"
	"github.com/hitoshi/veiculos/internal/validation"
)

// Service は管理者管理のサービス層。
// 登録時の検証・パスワードハッシュ化と、一覧・単体取得を提供する。
type Service struct {
	repo       repository.AdministratorRepository
	sanitizer  security.TextSanitizer
	bcryptCost int
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.AdministratorRepository, sanitizer security.TextSanitizer, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		sanitizer:  sanitizer,
		bcryptCost: bcryptCost,
	}
}

// Register は管理者を登録する。
// 検証に失敗した場合は*validation.Resultを、emailが重複する場合は*model.APIErrorを返す。
func (s *Service) Register(ctx context.Context, in model.AdministratorInput) (*model.Administrator, error) {
	in.Email = s.sanitizer.Sanitize(in.Email)

	if result := validation.ValidateAdministrator(in); !result.OK() {
		return nil, result
	}

	// 検証済みなのでParseRoleは必ず成功する
	role, _ := model.ParseRole(*in.Role)

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, &validation.Result{Messages: []string{validation.MsgPasswordTooLong}}
	}
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	admin := &model.Administrator{
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewDuplicateEmailError(in.Email)
		}
		return nil, fmt.Errorf("管理者の登録に失敗しました: %w", err)
	}

	slog.Info("administrator registered",
		slog.Int64("administrator_id", admin.ID),
		slog.String("role", admin.Role.String()),
	)
	return admin, nil
}

// List は管理者一覧を返す。pageは1始まり。
func (s *Service) List(ctx context.Context, page int) ([]*model.Administrator, error) {
	admins, err := s.repo.List(ctx, page, model.DefaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("管理者一覧の取得に失敗しました: %w", err)
	}
	return admins, nil
}

// Get は指定IDの管理者を返す。存在しない場合は*model.APIErrorを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Administrator, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("管理者の取得に失敗しました: %w", err)
	}
	if admin == nil {
		return nil, model.NewAdministratorNotFoundError(id)
	}
	return admin, nil
}

// EnsureSeed は初期管理者（Admin）が存在しなければ作成する。
// 既に同じemailの管理者がいる場合は何もしない。作成した場合はtrueを返す。
func (s *Service) EnsureSeed(ctx context.Context, email, password string) (bool, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("初期管理者の確認に失敗しました: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	role := model.RoleAdmin.String()
	_, err = s.Register(ctx, model.AdministratorInput{
		Email:    email,
		Password: password,
		Role:     &role,
	})
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeDuplicateEmail {
		// 並行して作成された
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("初期管理者の作成に失敗しました: %w", err)
	}
	return true, nil
}
