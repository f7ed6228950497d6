package todo

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/common"
)

// Placement says where a store puts newly created items.
type Placement int

const (
	PlaceFront Placement = iota
	PlaceBack
)

var ErrItemNotFound = fmt.Errorf("todo item %w", common.ErrorNotFound)

// Store persists todo items.
type Store interface {
	Load(ctx context.Context) ([]models.Item, error)
	Create(ctx context.Context, title string) (models.Item, error)
	Update(ctx context.Context, id string, patch models.TodoPatch) (models.Item, error)
	Delete(ctx context.Context, id string) error
	Placement() Placement
}

func indexOf(items []models.Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
