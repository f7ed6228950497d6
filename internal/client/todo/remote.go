package todo

import (
	"context"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
)

// RemoteStore keeps the list on the todo service. Ids are assigned by the
// server and new items show up first.
type RemoteStore struct {
	api client.TodoAPI
}

var _ Store = (*RemoteStore)(nil)

func NewRemoteStore(api client.TodoAPI) *RemoteStore {
	return &RemoteStore{api: api}
}

func (s *RemoteStore) Load(ctx context.Context) ([]models.Item, error) {
	return s.api.ListTodos(ctx)
}

func (s *RemoteStore) Create(ctx context.Context, title string) (models.Item, error) {
	return s.api.CreateTodo(ctx, title)
}

// Update returns the server's representation of the item, which replaces the
// local one.
func (s *RemoteStore) Update(ctx context.Context, id string, patch models.TodoPatch) (models.Item, error) {
	return s.api.UpdateTodo(ctx, id, patch)
}

func (s *RemoteStore) Delete(ctx context.Context, id string) error {
	return s.api.DeleteTodo(ctx, id)
}

func (s *RemoteStore) Placement() Placement {
	return PlaceFront
}
