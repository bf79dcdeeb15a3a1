package state

import "sync"

type Step struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Steps are the wizard screens in order.
var Steps = []Step{
	{ID: 1, Name: "Personal Info"},
	{ID: 2, Name: "Address Info"},
	{ID: 3, Name: "Education"},
	{ID: 4, Name: "Employment"},
	{ID: 5, Name: "References"},
	{ID: 6, Name: "Gaps"},
	{ID: 7, Name: "EPF/Gratuity"},
	{ID: 8, Name: "Preview"},
	{ID: 9, Name: "Process"},
}

// Sequencer is a cursor over steps 1..total. Next and Prev stop at the ends.
type Sequencer struct {
	mu      sync.Mutex
	current int
	total   int
}

func NewSequencer(total int) *Sequencer {
	if total < 1 {
		total = 1
	}
	return &Sequencer{current: 1, total: total}
}

func (s *Sequencer) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < s.total {
		s.current++
	}
	return s.current
}

func (s *Sequencer) Prev() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current > 1 {
		s.current--
	}
	return s.current
}

func (s *Sequencer) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Sequencer) Total() int {
	return s.total
}

// Step describes the active step when the sequencer runs over Steps.
func (s *Sequencer) Step() Step {
	cur := s.Current()
	if cur <= len(Steps) {
		return Steps[cur-1]
	}
	return Step{ID: cur}
}
