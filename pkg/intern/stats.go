package intern

// Stats holds interner counters and sizes.
type Stats struct {
	Interned    int    // Number of distinct strings interned.
	DedupHits   uint64 // GetOrIntern calls answered from the index.
	DedupMisses uint64 // GetOrIntern calls that stored new content.
	ArenaBytes  int    // Total bytes reserved by the arena.
	ArenaBlocks int    // Number of arena blocks.
	MemoryLimit int    // Configured byte limit; MaxInt when unbounded.
}

// DedupRatio returns the fraction of GetOrIntern calls that deduplicated
// (0.0 to 1.0).
func (s Stats) DedupRatio() float64 {
	total := s.DedupHits + s.DedupMisses
	if total == 0 {
		return 0
	}

	return float64(s.DedupHits) / float64(total)
}

// Stats returns current interner statistics.
func (r *Rodeo) Stats() Stats {
	return Stats{
		Interned:    len(r.spans),
		DedupHits:   r.hits,
		DedupMisses: r.misses,
		ArenaBytes:  r.arena.memoryUsage(),
		ArenaBlocks: r.arena.blockCount(),
		MemoryLimit: r.arena.memoryLimit(),
	}
}
