package ecs

// Removable is implemented by every per-entity store so the Registry can
// bulk-remove an entity's data from all of them on destroy.
type Removable interface {
	Remove(e Entity)
}

// ComponentStore is a generic typed map store for small per-entity values
// such as labels. Dense, iteration-heavy data belongs in its own
// structure-of-arrays store instead.
type ComponentStore[T any] struct {
	data map[Entity]T
}

func NewComponentStore[T any]() *ComponentStore[T] {
	return &ComponentStore[T]{
		data: make(map[Entity]T, 256),
	}
}

func (s *ComponentStore[T]) Set(e Entity, c T) {
	s.data[e] = c
}

func (s *ComponentStore[T]) Get(e Entity) (T, bool) {
	c, ok := s.data[e]
	return c, ok
}

func (s *ComponentStore[T]) Remove(e Entity) {
	delete(s.data, e)
}

func (s *ComponentStore[T]) Has(e Entity) bool {
	_, ok := s.data[e]
	return ok
}

func (s *ComponentStore[T]) Len() int {
	return len(s.data)
}

// Each visits every stored value in map order.
func (s *ComponentStore[T]) Each(fn func(Entity, T)) {
	for e, c := range s.data {
		fn(e, c)
	}
}
