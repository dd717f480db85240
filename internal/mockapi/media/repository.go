package media

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/mediahub/internal/common"
)

type Repository interface {
	Create(ctx context.Context, item *Item) (*Item, error)
	Get(ctx context.Context, id string) (*Item, error)
	GetByStoredName(ctx context.Context, name string) (*Item, error)
	ListByUser(ctx context.Context, userID string) ([]Item, error)
	Update(ctx context.Context, item *Item) (*Item, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository keeps items in insertion order; listings return the
// newest first.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]Item
	order []string
	now   func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		items: make(map[string]Item),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func storedName(id, fileName string) string {
	return id + strings.ToLower(filepath.Ext(fileName))
}

func (r *InMemoryRepository) Create(ctx context.Context, item *Item) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	it := *item
	it.ID = uuid.NewString()
	it.StoredName = storedName(it.ID, it.FileName)
	it.CreatedAt = r.now()
	it.UpdatedAt = it.CreatedAt

	r.mu.Lock()
	r.items[it.ID] = it
	r.order = append(r.order, it.ID)
	r.mu.Unlock()

	return &it, nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &it, nil
}

func (r *InMemoryRepository) GetByStoredName(ctx context.Context, name string) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := strings.TrimSuffix(name, filepath.Ext(name))

	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok || it.StoredName != name {
		return nil, common.ErrNotFound
	}
	return &it, nil
}

func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Item, 0)
	for _, id := range slices.Backward(r.order) {
		if it := r.items[id]; it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

// Update replaces the file of an existing item. The owner and creation time
// are kept.
func (r *InMemoryRepository) Update(ctx context.Context, item *Item) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.items[item.ID]
	if !ok {
		return nil, common.ErrNotFound
	}

	cur.FileName = item.FileName
	cur.FileType = item.FileType
	cur.ContentType = item.ContentType
	cur.Data = item.Data
	if item.Title != "" {
		cur.Title = item.Title
	}
	cur.StoredName = storedName(cur.ID, cur.FileName)
	cur.UpdatedAt = r.now()
	r.items[cur.ID] = cur

	return &cur, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.items, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
	return nil
}
