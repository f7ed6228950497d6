package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophtodo/internal/client/metrics"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
)

var (
	ErrEmptyTitle      = errors.New("Please enter a todo!")
	ErrEmptyEdit       = errors.New("Cannot save empty todo!")
	ErrNotEditing      = errors.New("no todo is being edited")
	ErrIndexOutOfRange = errors.New("todo index out of range")
)

const noEdit = -1

// Manager is the in-memory todo list plus a single edit slot. It is safe for
// concurrent use.
//
// Index-based methods address the sequence as returned by Items; indexes
// shift when items are added or removed.
type Manager struct {
	store   Store
	logger  logging.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	items   []models.Item
	editing int
	buffer  string
}

type Option func(*Manager)

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		logger:  logging.Discard(),
		items:   []models.Item{},
		editing: noEdit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) record(op string, err error) {
	switch {
	case err == nil:
		m.metrics.ListOperation(op, metrics.OutcomeOK)
	case errors.Is(err, ErrEmptyTitle), errors.Is(err, ErrEmptyEdit),
		errors.Is(err, ErrNotEditing), errors.Is(err, ErrIndexOutOfRange):
		m.metrics.ListOperation(op, metrics.OutcomeRejected)
	default:
		m.metrics.ListOperation(op, metrics.OutcomeError)
	}
}

// Load replaces the sequence with what the store holds and leaves edit mode.
// On error the current sequence is kept.
func (m *Manager) Load(ctx context.Context) (err error) {
	defer func() { m.record("load", err) }()

	items, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Error(ctx, "load todos failed", "error", err)
		return fmt.Errorf("load todos: %w", err)
	}
	if items == nil {
		items = []models.Item{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
	m.editing = noEdit
	m.buffer = ""
	return nil
}

// Items returns a copy of the sequence.
func (m *Manager) Items() []models.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Item, len(m.items))
	copy(out, m.items)
	return out
}

// Add creates an item with the trimmed title.
func (m *Manager) Add(ctx context.Context, title string) (it models.Item, err error) {
	defer func() { m.record("add", err) }()

	title = strings.TrimSpace(title)
	if title == "" {
		return models.Item{}, ErrEmptyTitle
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	it, err = m.store.Create(ctx, title)
	if err != nil {
		m.logger.Error(ctx, "create todo failed", "error", err)
		return models.Item{}, fmt.Errorf("add todo: %w", err)
	}

	if m.store.Placement() == PlaceFront {
		m.items = append([]models.Item{it}, m.items...)
		if m.editing != noEdit {
			m.editing++
		}
	} else {
		m.items = append(m.items, it)
	}
	return it, nil
}

// Remove deletes the item with the given id.
func (m *Manager) Remove(ctx context.Context, id string) (err error) {
	defer func() { m.record("remove", err) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOf(m.items, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return m.removeLocked(ctx, i)
}

// RemoveAt deletes the item at index i.
func (m *Manager) RemoveAt(ctx context.Context, i int) (err error) {
	defer func() { m.record("remove", err) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	if i < 0 || i >= len(m.items) {
		return ErrIndexOutOfRange
	}
	return m.removeLocked(ctx, i)
}

func (m *Manager) removeLocked(ctx context.Context, i int) error {
	if err := m.store.Delete(ctx, m.items[i].ID); err != nil {
		m.logger.Error(ctx, "delete todo failed", "id", m.items[i].ID, "error", err)
		return fmt.Errorf("remove todo: %w", err)
	}

	m.items = append(m.items[:i:i], m.items[i+1:]...)

	switch {
	case m.editing == i:
		m.editing = noEdit
		m.buffer = ""
	case m.editing > i:
		m.editing--
	}
	return nil
}

// Edit puts item i into edit mode and seeds the buffer with its title. Any
// unsaved edit of another item is dropped.
func (m *Manager) Edit(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i < 0 || i >= len(m.items) {
		return ErrIndexOutOfRange
	}
	m.editing = i
	m.buffer = m.items[i].Title
	return nil
}

func (m *Manager) SetBuffer(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.editing == noEdit {
		return ErrNotEditing
	}
	m.buffer = text
	return nil
}

func (m *Manager) Buffer() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buffer
}

// Editing reports the index in edit mode.
func (m *Manager) Editing() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editing, m.editing != noEdit
}

func (m *Manager) CancelEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editing = noEdit
	m.buffer = ""
}

// Save writes the trimmed buffer as the title of the item in edit mode and
// leaves edit mode. The stored item replaces the local one.
func (m *Manager) Save(ctx context.Context) (it models.Item, err error) {
	defer func() { m.record("save", err) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.editing == noEdit {
		return models.Item{}, ErrNotEditing
	}
	title := strings.TrimSpace(m.buffer)
	if title == "" {
		return models.Item{}, ErrEmptyEdit
	}

	i := m.editing
	it, err = m.store.Update(ctx, m.items[i].ID, models.TodoPatch{Title: &title})
	if err != nil {
		m.logger.Error(ctx, "update todo failed", "id", m.items[i].ID, "error", err)
		return models.Item{}, fmt.Errorf("save todo: %w", err)
	}

	m.items[i] = it
	m.editing = noEdit
	m.buffer = ""
	return it, nil
}

// Toggle flips the completed flag of item i.
func (m *Manager) Toggle(ctx context.Context, i int) (it models.Item, err error) {
	defer func() { m.record("toggle", err) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	if i < 0 || i >= len(m.items) {
		return models.Item{}, ErrIndexOutOfRange
	}

	done := !m.items[i].Completed
	it, err = m.store.Update(ctx, m.items[i].ID, models.TodoPatch{Completed: &done})
	if err != nil {
		m.logger.Error(ctx, "toggle todo failed", "id", m.items[i].ID, "error", err)
		return models.Item{}, fmt.Errorf("toggle todo: %w", err)
	}

	m.items[i] = it
	return it, nil
}

// Reset forgets everything held in memory. The store is not touched.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = []models.Item{}
	m.editing = noEdit
	m.buffer = ""
}
