package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/veiculos/internal/model"
)

// MemoryVehicleRepo はプロセス内メモリに車両を保持するリポジトリ。
type MemoryVehicleRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]model.Vehicle
	now    func() time.Time
}

// NewMemoryVehicleRepo は空のMemoryVehicleRepoを生成する。
func NewMemoryVehicleRepo() *MemoryVehicleRepo {
	return &MemoryVehicleRepo{
		byID: make(map[int64]model.Vehicle),
		now:  time.Now,
	}
}

func (r *MemoryVehicleRepo) FindByID(_ context.Context, id int64) (*model.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *MemoryVehicleRepo) Create(_ context.Context, v *model.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := r.now()
	v.ID = r.nextID
	v.CreatedAt = now
	v.UpdatedAt = now
	r.byID[v.ID] = *v
	return nil
}

// Update はname, brand, yearを上書きする。IDとCreatedAtは保持する。
func (r *MemoryVehicleRepo) Update(_ context.Context, v *model.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[v.ID]
	if !ok {
		return ErrNotFound
	}
	current.Name = v.Name
	current.Brand = v.Brand
	current.Year = v.Year
	current.UpdatedAt = r.now()
	r.byID[v.ID] = current
	*v = current
	return nil
}

func (r *MemoryVehicleRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryVehicleRepo) List(_ context.Context, page, pageSize int, filter model.VehicleFilter) ([]*model.Vehicle, error) {
	name := strings.ToLower(strings.TrimSpace(filter.Name))
	brand := strings.ToLower(strings.TrimSpace(filter.Brand))

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.byID))
	for id, v := range r.byID {
		if name != "" && !strings.Contains(strings.ToLower(v.Name), name) {
			continue
		}
		if brand != "" && !strings.Contains(strings.ToLower(v.Brand), brand) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	ids = paginate(ids, page, pageSize)

	vehicles := make([]*model.Vehicle, 0, len(ids))
	for _, id := range ids {
		v := r.byID[id]
		vehicles = append(vehicles, &v)
	}
	return vehicles, nil
}

// compile-time interface check
var _ VehicleRepository = (*MemoryVehicleRepo)(nil)
