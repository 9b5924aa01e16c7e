package beatgrid

import (
	"sync"
	"sync/atomic"
)

// ProjectStore holds the current project snapshot. Readers get the latest
// snapshot without locking; writers are serialized and always edit a copy, so
// a snapshot handed out earlier never changes underneath its reader.
type ProjectStore struct {
	mu       sync.Mutex
	current  atomic.Pointer[Project]
	onChange []func(Project)
}

// NewProjectStore returns a store holding p.
func NewProjectStore(p Project) *ProjectStore {
	s := &ProjectStore{}
	p = p.Copy()
	s.current.Store(&p)
	return s
}

// Project returns the current snapshot. The returned slices must be treated
// as read-only.
func (s *ProjectStore) Project() Project {
	return *s.current.Load()
}

// Update applies f to a copy of the current project, publishes the result
// and notifies the change listeners.
func (s *ProjectStore) Update(f func(p *Project)) Project {
	s.mu.Lock()
	p := s.current.Load().Copy()
	f(&p)
	s.current.Store(&p)
	listeners := s.onChange
	s.mu.Unlock()
	for _, l := range listeners {
		l(p)
	}
	return p
}

// Set replaces the whole project, e.g. after loading a file.
func (s *ProjectStore) Set(p Project) {
	s.Update(func(dst *Project) { *dst = p.Copy() })
}

// OnChange registers a listener called after every Update, on the updating
// goroutine.
func (s *ProjectStore) OnChange(f func(Project)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, f)
}
