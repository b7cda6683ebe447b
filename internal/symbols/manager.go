package symbols

import (
	"sort"
)

// Scope provides generic symbol tracking by name, it keeps the insertion order.
// T is the type of symbol being managed.
type Scope[T any] struct {
	items map[string]T
	order []string
}

// NewScope creates a new empty scope.
func NewScope[T any]() *Scope[T] {
	return &Scope[T]{
		items: make(map[string]T),
	}
}

// Get returns the item with the given name.
func (s *Scope[T]) Get(name string) (T, bool) {
	item, ok := s.items[name]
	return item, ok
}

// Has returns whether an item with the given name exists.
func (s *Scope[T]) Has(name string) bool {
	_, ok := s.items[name]
	return ok
}

// Add inserts the item, it returns false if the name is already used.
func (s *Scope[T]) Add(name string, item T) bool {
	if s.Has(name) {
		return false
	}
	s.items[name] = item
	s.order = append(s.order, name)
	return true
}

// Len returns the number of items in the scope.
func (s *Scope[T]) Len() int {
	return len(s.items)
}

// Ordered returns all items in insertion order.
func (s *Scope[T]) Ordered() []T {
	items := make([]T, 0, len(s.order))
	for _, name := range s.order {
		items = append(items, s.items[name])
	}
	return items
}

// SortedBy returns all items as a slice sorted by the less function. The sort
// is stable, items that compare equal keep their insertion order.
func (s *Scope[T]) SortedBy(less func(a, b T) bool) []T {
	items := s.Ordered()
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
	return items
}
