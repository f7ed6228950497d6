package todo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/client/repositories/metadata"
)

var errBoom = errors.New("boom")

// fakeTodoAPI mimics the todo service: ids are server assigned and the list
// is newest first.
type fakeTodoAPI struct {
	mu     sync.Mutex
	items  []models.Item
	nextID int
	fail   map[string]error
	calls  []string
}

func newFakeTodoAPI(items ...models.Item) *fakeTodoAPI {
	return &fakeTodoAPI{items: items, fail: make(map[string]error)}
}

func (f *fakeTodoAPI) enter(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.fail[op]
}

func (f *fakeTodoAPI) failOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

func (f *fakeTodoAPI) ListTodos(ctx context.Context) ([]models.Item, error) {
	if err := f.enter("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Item, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeTodoAPI) GetTodo(ctx context.Context, id string) (models.Item, error) {
	if err := f.enter("get"); err != nil {
		return models.Item{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := indexOf(f.items, id); i >= 0 {
		return f.items[i], nil
	}
	return models.Item{}, &client.APIError{Status: 404, Message: "Todo not found"}
}

func (f *fakeTodoAPI) CreateTodo(ctx context.Context, title string) (models.Item, error) {
	if err := f.enter("create"); err != nil {
		return models.Item{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	it := models.Item{ID: fmt.Sprintf("srv-%d", f.nextID), Title: title}
	f.items = append([]models.Item{it}, f.items...)
	return it, nil
}

func (f *fakeTodoAPI) UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) (models.Item, error) {
	if err := f.enter("update"); err != nil {
		return models.Item{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := indexOf(f.items, id)
	if i < 0 {
		return models.Item{}, &client.APIError{Status: 404, Message: "Todo not found"}
	}
	f.items[i] = patch.Apply(f.items[i])
	// the server normalises titles
	f.items[i].Title = "[" + f.items[i].Title + "]"
	return f.items[i], nil
}

func (f *fakeTodoAPI) DeleteTodo(ctx context.Context, id string) error {
	if err := f.enter("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := indexOf(f.items, id)
	if i < 0 {
		return &client.APIError{Status: 404, Message: "Todo not found"}
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return nil
}

// failingRepo wraps a repository and fails writes or reads on demand.
type failingRepo struct {
	metadata.Repository
	getErr error
	setErr error
}

func (r *failingRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.Repository.Get(ctx, key)
}

func (r *failingRepo) Set(ctx context.Context, key string, v []byte) error {
	if r.setErr != nil {
		return r.setErr
	}
	return r.Repository.Set(ctx, key, v)
}
