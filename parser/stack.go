package parser

// stack is an immutable singly linked stack. The nil pointer is the empty
// stack, push returns a new head sharing the previous nodes, and nothing is
// ever modified after construction, so any number of forked parse states
// can hold references into the same chain of nodes.
type stack[T any] struct {
	head T
	tail *stack[T]
	size int
}

// stackOf builds a stack from a slice, first element on top.
func stackOf[T any](items []T) *stack[T] {
	var st *stack[T]

	for i := len(items) - 1; i >= 0; i-- {
		st = st.push(items[i])
	}

	return st
}

// push returns a new stack with item on top of the receiver.
func (s *stack[T]) push(item T) *stack[T] {
	size := 1
	if s != nil {
		size += s.size
	}

	return &stack[T]{head: item, tail: s, size: size}
}

// pop returns the top item and the remainder of the stack.
func (s *stack[T]) pop() (T, *stack[T], bool) {
	if s == nil {
		var zero T

		return zero, nil, false
	}

	return s.head, s.tail, true
}

// peek returns the top item without removing it.
func (s *stack[T]) peek() (T, bool) {
	if s == nil {
		var zero T

		return zero, false
	}

	return s.head, true
}

// len returns the number of items. The size is memoized at node
// construction, so this is O(1).
func (s *stack[T]) len() int {
	if s == nil {
		return 0
	}

	return s.size
}

// slice returns the items top to bottom.
func (s *stack[T]) slice() []T {
	items := make([]T, 0, s.len())

	for node := s; node != nil; node = node.tail {
		items = append(items, node.head)
	}

	return items
}
