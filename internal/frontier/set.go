package frontier

// Set tracks membership of comparable values.
type Set[T comparable] struct {
	members map[T]struct{}
}

func NewSet[T comparable]() *Set[T] {
	return &Set[T]{members: make(map[T]struct{})}
}

func (s *Set[T]) Add(value T) {
	s.members[value] = struct{}{}
}

func (s *Set[T]) Contains(value T) bool {
	_, ok := s.members[value]
	return ok
}

func (s *Set[T]) Len() int {
	return len(s.members)
}
