// Package vehicle は車両のCRUDに関するドメインロジックを提供する。
package vehicle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/veiculos/internal/model"
	"github.com/hitoshi/veiculos/internal/repository"
	"github.com/hitoshi/veiculos/internal/security"
	"github.com/hitoshi/veiculos/internal/validation"
)

// Service は車両管理のサービス層。
type Service struct {
	repo      repository.VehicleRepository
	sanitizer security.TextSanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.VehicleRepository, sanitizer security.TextSanitizer) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// Create は車両を登録する。検証に失敗した場合は*validation.Resultを返す。
func (s *Service) Create(ctx context.Context, in model.VehicleInput) (*model.Vehicle, error) {
	in = s.clean(in)
	if result := validation.ValidateVehicle(in); !result.OK() {
		return nil, result
	}

	v := &model.Vehicle{Name: in.Name, Brand: in.Brand, Year: in.Year}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("車両の登録に失敗しました: %w", err)
	}

	slog.Info("vehicle created", slog.Int64("vehicle_id", v.ID))
	return v, nil
}

// List は車両一覧を返す。pageは1始まり。
func (s *Service) List(ctx context.Context, page int, filter model.VehicleFilter) ([]*model.Vehicle, error) {
	vehicles, err := s.repo.List(ctx, page, model.DefaultPageSize, filter)
	if err != nil {
		return nil, fmt.Errorf("車両一覧の取得に失敗しました: %w", err)
	}
	return vehicles, nil
}

// Get は指定IDの車両を返す。存在しない場合は*model.APIErrorを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Vehicle, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("車両の取得に失敗しました: %w", err)
	}
	if v == nil {
		return nil, model.NewVehicleNotFoundError(id)
	}
	return v, nil
}

// Update は車両を上書き更新する。
// 存在確認を検証より先に行うため、存在しないIDには入力内容に関わらず未検出エラーを返す。
func (s *Service) Update(ctx context.Context, id int64, in model.VehicleInput) (*model.Vehicle, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	in = s.clean(in)
	if result := validation.ValidateVehicle(in); !result.OK() {
		return nil, result
	}

	v := &model.Vehicle{ID: id, Name: in.Name, Brand: in.Brand, Year: in.Year}
	if err := s.repo.Update(ctx, v); err != nil {
		// 存在確認の後に削除された
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewVehicleNotFoundError(id)
		}
		return nil, fmt.Errorf("車両の更新に失敗しました: %w", err)
	}

	slog.Info("vehicle updated", slog.Int64("vehicle_id", v.ID))
	return v, nil
}

// Delete は車両を削除する。
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewVehicleNotFoundError(id)
		}
		return fmt.Errorf("車両の削除に失敗しました: %w", err)
	}

	slog.Info("vehicle deleted", slog.Int64("vehicle_id", id))
	return nil
}

func (s *Service) clean(in model.VehicleInput) model.VehicleInput {
	in.Name = s.sanitizer.Sanitize(in.Name)
	in.Brand = s.sanitizer.Sanitize(in.Brand)
	return in
}
