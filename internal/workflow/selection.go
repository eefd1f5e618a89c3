package workflow

// MaxSelected is the most files that can be sent as code context.
const MaxSelected = 3

// Selection is an insertion-ordered set of at most MaxSelected paths.
type Selection struct {
	paths []string
}

func (s *Selection) index(p string) int {
	for i, v := range s.paths {
		if v == p {
			return i
		}
	}
	return -1
}

func (s *Selection) Contains(p string) bool { return s.index(p) >= 0 }

// Add inserts p. It is a no-op when p is present or the set is full, and
// reports whether p is selected afterwards.
func (s *Selection) Add(p string) bool {
	if s.Contains(p) {
		return true
	}
	if s.Len() >= MaxSelected {
		return false
	}
	s.paths = append(s.paths, p)
	return true
}

// Remove always succeeds.
func (s *Selection) Remove(p string) {
	if i := s.index(p); i >= 0 {
		s.paths = append(s.paths[:i], s.paths[i+1:]...)
	}
}

// Toggle flips membership of p, subject to the cap, and reports whether p is
// selected afterwards.
func (s *Selection) Toggle(p string) bool {
	if s.Contains(p) {
		s.Remove(p)
		return false
	}
	return s.Add(p)
}

// Len is the number of selected paths.
func (s *Selection) Len() int { return len(s.paths) }

// Paths returns a copy in selection order.
func (s *Selection) Paths() []string { return append([]string(nil), s.paths...) }
