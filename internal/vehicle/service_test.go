package vehicle

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/hitoshi/veiculos/internal/model"
	"github.com/hitoshi/veiculos/internal/repository"
	"github.com/hitoshi/veiculos/internal/security"
	"github.com/hitoshi/veiculos/internal/validation"
)

// --- モック ---

type mockVehicleRepo struct {
	findByIDFn func(ctx context.Context, id int64) (*model.Vehicle, error)
	createFn   func(ctx context.Context, v *model.Vehicle) error
	updateFn   func(ctx context.Context, v *model.Vehicle) error
	deleteFn   func(ctx context.Context, id int64) error
	listFn     func(ctx context.Context, page, pageSize int, filter model.VehicleFilter) ([]*model.Vehicle, error)
}

func (m *mockVehicleRepo) FindByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockVehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	return m.createFn(ctx, v)
}
func (m *mockVehicleRepo) Update(ctx context.Context, v *model.Vehicle) error {
	return m.updateFn(ctx, v)
}
func (m *mockVehicleRepo) Delete(ctx context.Context, id int64) error {
	return m.deleteFn(ctx, id)
}
func (m *mockVehicleRepo) List(ctx context.Context, page, pageSize int, filter model.VehicleFilter) ([]*model.Vehicle, error) {
	return m.listFn(ctx, page, pageSize, filter)
}

func newTestService(repo repository.VehicleRepository) *Service {
	return NewService(repo, security.NewTextSanitizer())
}

// --- テスト ---

func TestService_Create(t *testing.T) {
	var stored *model.Vehicle
	repo := &mockVehicleRepo{
		createFn: func(ctx context.Context, v *model.Vehicle) error {
			v.ID = 1
			stored = v
			return nil
		},
	}
	svc := newTestService(repo)

	got, err := svc.Create(context.Background(), model.VehicleInput{Name: " <i>Uno</i> ", Brand: "Fiat", Year: 2010})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != 1 || stored.Name != "Uno" {
		t.Errorf("got %+v, stored name %q", got, stored.Name)
	}
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input model.VehicleInput
		want  []string
	}{
		{
			name:  "名前が空",
			input: model.VehicleInput{Name: "", Brand: "Ford", Year: 1999},
			want:  []string{validation.MsgNameEmpty},
		},
		{
			name:  "全て不正",
			input: model.VehicleInput{Name: " ", Brand: "<p></p>", Year: 1950},
			want:  []string{validation.MsgNameEmpty, validation.MsgBrandEmpty, validation.MsgYearTooOld},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockVehicleRepo{
				createFn: func(ctx context.Context, v *model.Vehicle) error {
					t.Fatal("Create must not be called on validation failure")
					return nil
				},
			}
			_, err := newTestService(repo).Create(context.Background(), tt.input)

			var result *validation.Result
			if !errors.As(err, &result) {
				t.Fatalf("err = %v, want *validation.Result", err)
			}
			if !reflect.DeepEqual(result.Messages, tt.want) {
				t.Errorf("Messages = %v, want %v", result.Messages, tt.want)
			}
		})
	}
}

// 存在しない車両の更新は、入力が不正でも未検出エラーになる。
func TestService_Update_NotFoundBeforeValidation(t *testing.T) {
	repo := &mockVehicleRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Vehicle, error) { return nil, nil },
		updateFn: func(ctx context.Context, v *model.Vehicle) error {
			t.Fatal("Update must not be called")
			return nil
		},
	}
	_, err := newTestService(repo).Update(context.Background(), 99, model.VehicleInput{})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeVehicleNotFound {
		t.Errorf("err = %v, want VEHICLE_NOT_FOUND", err)
	}
}

func TestService_Update(t *testing.T) {
	existing := &model.Vehicle{ID: 5, Name: "Uno", Brand: "Fiat", Year: 2010}
	var updated *model.Vehicle
	repo := &mockVehicleRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Vehicle, error) { return existing, nil },
		updateFn: func(ctx context.Context, v *model.Vehicle) error {
			updated = v
			return nil
		},
	}
	svc := newTestService(repo)

	got, err := svc.Update(context.Background(), 5, model.VehicleInput{Name: "Uno Way", Brand: "Fiat", Year: 2014})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.ID != 5 || updated.Name != "Uno Way" || updated.Year != 2014 {
		t.Errorf("updated = %+v", updated)
	}

	_, err = svc.Update(context.Background(), 5, model.VehicleInput{Name: "Uno", Brand: "Fiat", Year: 1900})
	var result *validation.Result
	if !errors.As(err, &result) || result.Messages[0] != validation.MsgYearTooOld {
		t.Errorf("err = %v, want year message", err)
	}
}

func TestService_Update_DeletedConcurrently(t *testing.T) {
	repo := &mockVehicleRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Vehicle, error) {
			return &model.Vehicle{ID: id}, nil
		},
		updateFn: func(ctx context.Context, v *model.Vehicle) error { return repository.ErrNotFound },
	}
	_, err := newTestService(repo).Update(context.Background(), 3, model.VehicleInput{Name: "a", Brand: "b", Year: 2000})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeVehicleNotFound {
		t.Errorf("err = %v, want VEHICLE_NOT_FOUND", err)
	}
}

func TestService_Delete(t *testing.T) {
	repo := &mockVehicleRepo{
		deleteFn: func(ctx context.Context, id int64) error {
			if id == 1 {
				return nil
			}
			return repository.ErrNotFound
		},
	}
	svc := newTestService(repo)

	if err := svc.Delete(context.Background(), 1); err != nil {
		t.Errorf("Delete(1) = %v", err)
	}
	var apiErr *model.APIError
	if err := svc.Delete(context.Background(), 2); !errors.As(err, &apiErr) {
		t.Errorf("Delete(2) = %v, want APIError", err)
	}
}

func TestService_GetAndList(t *testing.T) {
	repo := &mockVehicleRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Vehicle, error) { return nil, nil },
		listFn: func(ctx context.Context, page, pageSize int, filter model.VehicleFilter) ([]*model.Vehicle, error) {
			if page != 2 || pageSize != model.DefaultPageSize || filter.Brand != "Fiat" {
				t.Errorf("List args = %d, %d, %+v", page, pageSize, filter)
			}
			return []*model.Vehicle{{ID: 11}}, nil
		},
	}
	svc := newTestService(repo)

	if _, err := svc.Get(context.Background(), 1); err == nil {
		t.Error("Get of unknown id should fail")
	}
	got, err := svc.List(context.Background(), 2, model.VehicleFilter{Brand: "Fiat"})
	if err != nil || len(got) != 1 {
		t.Errorf("List = %v, %v", got, err)
	}
}

func TestService_StoreErrorsAreWrapped(t *testing.T) {
	storeErr := errors.New("db down")
	repo := &mockVehicleRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Vehicle, error) { return nil, storeErr },
		createFn:   func(ctx context.Context, v *model.Vehicle) error { return storeErr },
		deleteFn:   func(ctx context.Context, id int64) error { return storeErr },
	}
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.Get(ctx, 1); !errors.Is(err, storeErr) {
		t.Errorf("Get err = %v", err)
	}
	if _, err := svc.Create(ctx, model.VehicleInput{Name: "a", Brand: "b", Year: 2000}); !errors.Is(err, storeErr) {
		t.Errorf("Create err = %v", err)
	}
	if err := svc.Delete(ctx, 1); !errors.Is(err, storeErr) {
		t.Errorf("Delete err = %v", err)
	}
}
