// Package registry keeps one shared [domain.Store] per name.
package registry

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
	"github.com/vinicius-lino-figueiredo/bucketdb/pkg/ctxsync"
)

// Factory creates the store registered under name.
type Factory func(ctx context.Context, name string) (domain.Store, error)

// Registry hands out shared stores by name, creating them on first use.
type Registry struct {
	mu      *ctxsync.Mutex
	factory Factory
	stores  map[string]domain.Store
}

// New returns an empty [Registry] creating stores with factory.
func New(factory Factory) *Registry {
	return &Registry{
		mu:      ctxsync.NewMutex(),
		factory: factory,
		stores:  make(map[string]domain.Store),
	}
}

// Open returns the store registered under name, creating it if needed. Every
// call with the same name returns the same store until it is closed.
func (r *Registry) Open(ctx context.Context, name string) (domain.Store, error) {
	var store domain.Store
	err := r.mu.Do(ctx, func() error {
		if s, ok := r.stores[name]; ok {
			store = s
			return nil
		}
		s, err := r.factory(ctx, name)
		if err != nil {
			return fmt.Errorf("opening store %q: %w", name, err)
		}
		r.stores[name] = s
		store = s
		return nil
	})
	return store, err
}

// Close closes and forgets the store registered under name. Closing a name
// that is not open is a no-op.
func (r *Registry) Close(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stores[name]
	if !ok {
		return nil
	}
	delete(r.stores, name)
	return s.Close()
}

// CloseAll closes every open store. All of them are closed even if some fail.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, name := range slices.Sorted(maps.Keys(r.stores)) {
		if err := r.stores[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing store %q: %w", name, err))
		}
		delete(r.stores, name)
	}
	return errors.Join(errs...)
}

// Names returns the names of the open stores in byte order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.stores))
}
