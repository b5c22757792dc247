package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hitoshi/veiculos/internal/model"
)

// MemoryAdministratorRepo はプロセス内メモリに管理者を保持するリポジトリ。
// インスタンスごとに独立した状態を持ち、並行アクセスに対して安全。
type MemoryAdministratorRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]model.Administrator
	now    func() time.Time
}

// NewMemoryAdministratorRepo は空のMemoryAdministratorRepoを生成する。
func NewMemoryAdministratorRepo() *MemoryAdministratorRepo {
	return &MemoryAdministratorRepo{
		byID: make(map[int64]model.Administrator),
		now:  time.Now,
	}
}

func (r *MemoryAdministratorRepo) FindByEmail(_ context.Context, email string) (*model.Administrator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.byID {
		if a.Email == email {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryAdministratorRepo) FindByID(_ context.Context, id int64) (*model.Administrator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// Create は管理者を保存し、IDを採番する。emailが重複する場合はErrDuplicateEmailを返す。
func (r *MemoryAdministratorRepo) Create(_ context.Context, admin *model.Administrator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == admin.Email {
			return ErrDuplicateEmail
		}
	}
	r.nextID++
	admin.ID = r.nextID
	admin.CreatedAt = r.now()
	r.byID[admin.ID] = *admin
	return nil
}

func (r *MemoryAdministratorRepo) List(_ context.Context, page, pageSize int) ([]*model.Administrator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	ids = paginate(ids, page, pageSize)

	admins := make([]*model.Administrator, 0, len(ids))
	for _, id := range ids {
		a := r.byID[id]
		admins = append(admins, &a)
	}
	return admins, nil
}

// paginate はID昇順のスライスから指定ページを切り出す。
func paginate(ids []int64, page, pageSize int) []int64 {
	offset, limit, paged := pageBounds(page, pageSize)
	if !paged {
		return ids
	}
	if offset >= len(ids) {
		return nil
	}
	if limit > len(ids)-offset {
		limit = len(ids) - offset
	}
	return ids[offset : offset+limit]
}

// compile-time interface check
var _ AdministratorRepository = (*MemoryAdministratorRepo)(nil)
