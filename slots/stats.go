package slots

// Stats is a point-in-time summary of a store's slot table.
type Stats struct {
	Len        int
	Cap        int
	LastID     int
	Holes      int
	Blocks     int
	Generation uint64
}

// CollectStats gathers slot table statistics under a single lock.
func (s *Store[T]) CollectStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := s.lastID()
	return Stats{
		Len:        s.count,
		Cap:        s.length,
		LastID:     last,
		Holes:      last + 1 - s.count,
		Blocks:     len(s.blocks),
		Generation: s.generation,
	}
}
