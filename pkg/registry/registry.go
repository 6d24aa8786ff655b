package registry

import (
	"sort"
	"sync"

	"github.com/arthur-debert/gomud/pkg/errors"
)

// Registry is a generic, thread-safe registry for storing and retrieving
// items by id.
type Registry[T any] interface {
	// Register adds an item to the registry
	Register(id string, item T) error

	// Get retrieves an item from the registry
	Get(id string) (T, error)

	// Remove removes an item from the registry
	Remove(id string) error

	// List returns all registered ids in sorted order
	List() []string

	// Values returns all registered items in unspecified order. The
	// returned slice is a snapshot: mutating the registry afterwards does
	// not affect it.
	Values() []T

	// Has checks if an item is registered
	Has(id string) bool

	// Clear removes all items from the registry
	Clear()

	// Count returns the number of registered items
	Count() int
}

type registry[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// New creates a new Registry instance
func New[T any]() Registry[T] {
	return &registry[T]{
		items: make(map[string]T),
	}
}

func (r *registry[T]) Register(id string, item T) error {
	if id == "" {
		return errors.New(errors.ErrInvalidInput, "registry id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "item '%s' is already registered", id)
	}

	r.items[id] = item
	return nil
}

func (r *registry[T]) Get(id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		var zero T
		return zero, errors.Newf(errors.ErrObjectNotFound, "item '%s' not found in registry", id)
	}

	return item, nil
}

func (r *registry[T]) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return errors.Newf(errors.ErrObjectNotFound, "item '%s' not found in registry", id)
	}

	delete(r.items, id)
	return nil
}

func (r *registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}

	sort.Strings(ids)
	return ids
}

func (r *registry[T]) Values() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values := make([]T, 0, len(r.items))
	for _, item := range r.items {
		values = append(values, item)
	}
	return values
}

func (r *registry[T]) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.items[id]
	return exists
}

func (r *registry[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[string]T)
}

func (r *registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}
