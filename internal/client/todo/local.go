package todo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/google/uuid"
)

// StorageKey is where LocalStore keeps the serialized list.
const StorageKey = common.TodosKey

// legacyNamespace seeds the ids given to items stored in the old
// list-of-strings format, so the same entry gets the same id on every read.
var legacyNamespace = uuid.MustParse("3f0c6a52-8d0e-4c8e-9b5e-6a1f1e7d2c41")

// LocalStore keeps the whole list as one JSON array in a key/value
// repository. Every change rewrites the array.
type LocalStore struct {
	repo   metadata.Repository
	key    string
	logger logging.Logger
	newID  func() string
}

var _ Store = (*LocalStore)(nil)

type LocalOption func(*LocalStore)

func WithLocalLogger(l logging.Logger) LocalOption {
	return func(s *LocalStore) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithStorageKey(key string) LocalOption {
	return func(s *LocalStore) {
		if key != "" {
			s.key = key
		}
	}
}

func NewLocalStore(repo metadata.Repository, opts ...LocalOption) *LocalStore {
	s := &LocalStore{
		repo:   repo,
		key:    StorageKey,
		logger: logging.Discard(),
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load never fails: unreadable or corrupt data is logged and loads as an
// empty list.
func (s *LocalStore) Load(ctx context.Context) ([]models.Item, error) {
	items, err := s.read(ctx)
	if err != nil {
		s.logger.Error(ctx, "failed to load todos, starting empty", "error", err)
		return []models.Item{}, nil
	}
	return items, nil
}

func (s *LocalStore) Create(ctx context.Context, title string) (models.Item, error) {
	items, err := s.read(ctx)
	if err != nil {
		return models.Item{}, err
	}

	it := models.Item{ID: s.newID(), Title: title}
	if err := s.write(ctx, append(items, it)); err != nil {
		return models.Item{}, err
	}
	return it, nil
}

func (s *LocalStore) Update(ctx context.Context, id string, patch models.TodoPatch) (models.Item, error) {
	items, err := s.read(ctx)
	if err != nil {
		return models.Item{}, err
	}

	i := indexOf(items, id)
	if i < 0 {
		return models.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	items[i] = patch.Apply(items[i])

	if err := s.write(ctx, items); err != nil {
		return models.Item{}, err
	}
	return items[i], nil
}

func (s *LocalStore) Delete(ctx context.Context, id string) error {
	items, err := s.read(ctx)
	if err != nil {
		return err
	}

	i := indexOf(items, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return s.write(ctx, append(items[:i], items[i+1:]...))
}

func (s *LocalStore) Placement() Placement {
	return PlaceBack
}

// read returns repository failures; undecodable content reads as empty.
func (s *LocalStore) read(ctx context.Context) ([]models.Item, error) {
	b, err := s.repo.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.key, err)
	}
	return s.decode(ctx, b), nil
}

func (s *LocalStore) decode(ctx context.Context, b []byte) []models.Item {
	items := []models.Item{}
	if len(b) == 0 {
		return items
	}

	if err := json.Unmarshal(b, &items); err == nil {
		if items == nil {
			items = []models.Item{}
		}
		for i := range items {
			if items[i].ID == "" {
				items[i].ID = legacyID(i, items[i].Title)
			}
		}
		return items
	}

	var titles []string
	if err := json.Unmarshal(b, &titles); err == nil {
		s.logger.Info(ctx, "upgrading legacy todo list", "count", len(titles))
		items = make([]models.Item, 0, len(titles))
		for i, t := range titles {
			items = append(items, models.Item{ID: legacyID(i, t), Title: t})
		}
		return items
	}

	s.logger.Warn(ctx, "stored todo list is corrupt, ignoring it", "key", s.key, "size", len(b))
	return []models.Item{}
}

func (s *LocalStore) write(ctx context.Context, items []models.Item) error {
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := s.repo.Set(ctx, s.key, b); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.key, err)
	}
	return nil
}

func legacyID(i int, title string) string {
	return uuid.NewSHA1(legacyNamespace, []byte(strconv.Itoa(i)+"\x00"+title)).String()
}
