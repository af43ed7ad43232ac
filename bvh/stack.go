package bvh

import "fmt"

// StackCapacity bounds traversal depth. Builders cap tree depth at
// StackCapacity-1 so a depth-first walk that pushes both children never
// holds more than StackCapacity entries.
const StackCapacity = 64

// Stack is a fixed-capacity node index stack for depth-first traversal.
// The zero value is ready to use.
type Stack struct {
	items [StackCapacity]uint32
	n     int
}

// Push panics when the stack is full; a tree deeper than the builder allows
// is a programming error.
func (s *Stack) Push(node uint32) {
	if s.n == StackCapacity {
		panic(fmt.Sprintf("bvh: traversal stack overflow (capacity %d)", StackCapacity))
	}
	s.items[s.n] = node
	s.n++
}

func (s *Stack) Pop() (uint32, bool) {
	if s.n == 0 {
		return 0, false
	}
	s.n--
	return s.items[s.n], true
}

func (s *Stack) Len() int {
	return s.n
}

func (s *Stack) Reset() {
	s.n = 0
}
