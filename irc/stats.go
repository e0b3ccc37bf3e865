package irc

import (
	"sync"
)

// Stats counts the active connections and the peak since startup.
type Stats struct {
	sync.Mutex

	Total int
	Max   int
}

// Add records a new connection and returns the active count.
func (s *Stats) Add() int {
	s.Lock()
	defer s.Unlock()

	s.Total++
	if s.Total > s.Max {
		s.Max = s.Total
	}
	return s.Total
}

// Remove records a closed connection and returns the active count.
func (s *Stats) Remove() int {
	s.Lock()
	defer s.Unlock()

	s.Total--
	return s.Total
}

// GetStats returns the active and peak connection counts.
func (s *Stats) GetStats() (total, max int) {
	s.Lock()
	defer s.Unlock()

	return s.Total, s.Max
}
