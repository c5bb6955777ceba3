package application

// orderedSet keeps distinct items in insertion order.
type orderedSet[T comparable] struct {
	items []T
	seen  map[T]struct{}
}

func newOrderedSet[T comparable]() *orderedSet[T] {
	return &orderedSet[T]{
		items: []T{},
		seen:  make(map[T]struct{}),
	}
}

func (s *orderedSet[T]) Add(item T) {
	if _, ok := s.seen[item]; ok {
		return
	}
	s.seen[item] = struct{}{}
	s.items = append(s.items, item)
}

func (s *orderedSet[T]) Items() []T {
	return s.items
}
