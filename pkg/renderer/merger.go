package renderer

import "sync"

// orderedMerger merges finished tiles into the result strictly in traversal
// order, so the floating point sums do not depend on which worker finished
// first. Tiles that arrive early are held until their predecessors are in.
type orderedMerger struct {
	mu      sync.Mutex
	result  *ImageBlock
	next    int
	pending map[int]*ImageBlock
	release func(*ImageBlock)
	merged  func(count int)
}

func newOrderedMerger(result *ImageBlock, release func(*ImageBlock), merged func(count int)) *orderedMerger {
	return &orderedMerger{
		result:  result,
		pending: make(map[int]*ImageBlock),
		release: release,
		merged:  merged,
	}
}

// submit hands over a finished tile. The merger owns the block afterwards.
func (m *orderedMerger) submit(index int, block *ImageBlock) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending[index] = block
	for {
		b, ok := m.pending[m.next]
		if !ok {
			return
		}
		delete(m.pending, m.next)
		m.result.Merge(b)
		m.next++
		if m.release != nil {
			m.release(b)
		}
		if m.merged != nil {
			m.merged(m.next)
		}
	}
}

// mergedCount returns the number of tiles merged so far
func (m *orderedMerger) mergedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.next
}

// held returns the number of tiles waiting for a predecessor
func (m *orderedMerger) held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
