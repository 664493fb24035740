package ecs

// Registry tracks all per-entity stores and supports bulk cleanup on destroy.
type Registry struct {
	stores []Removable
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]Removable, 0, 16),
	}
}

// Register adds a store to the registry. Stores are cleared in
// registration order.
func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

// RemoveAll clears the given entity from every registered store.
func (r *Registry) RemoveAll(e Entity) {
	for _, s := range r.stores {
		s.Remove(e)
	}
}

// Len is the number of registered stores.
func (r *Registry) Len() int { return len(r.stores) }
