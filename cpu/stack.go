package cpu

const (
	STACK_LIMIT = 16 // Maximum call depth
)

// Stack is the fixed-size return address stack.
type Stack struct {
	Data [STACK_LIMIT]uint16
	Sp   int // Number of valid entries in Data.
}

// Push stores a return address. Returns false if the stack is full.
func (s *Stack) Push(value uint16) (ok bool) {
	if s.Full() {
		return
	}

	s.Data[s.Sp] = value
	s.Sp++

	return true
}

// Pop removes the most recent return address.
func (s *Stack) Pop() (value uint16, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Sp--
	}
	return
}

func (s *Stack) Empty() bool {
	return s.Sp == 0
}

func (s *Stack) Full() bool {
	return s.Sp == STACK_LIMIT
}

func (s *Stack) Peek() (value uint16, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[s.Sp-1], true
}

// Reset empties the stack and zeroes its storage.
func (s *Stack) Reset() {
	clear(s.Data[:])
	s.Sp = 0
}
