package sim

// MemoryAllocator issues block-granular pseudo-addresses linearly, wrapping
// to the start of memory when the region would run past the end. There is
// no free list; wrapped-over regions are implicitly reused. The allocator
// models address issuance only and does not track live allocations.
type MemoryAllocator struct {
	counter     uint32
	maxBlocks   uint32
	blockSizeKB uint32
}

// NewMemoryAllocator sizes the allocator from total memory and block size,
// both in kbytes.
func NewMemoryAllocator(systemMemoryKB, blockSizeKB int64) *MemoryAllocator {
	return &MemoryAllocator{
		maxBlocks:   uint32(systemMemoryKB / blockSizeKB),
		blockSizeKB: uint32(blockSizeKB),
	}
}

// Allocate reserves enough blocks for kbytes of memory and returns the
// pseudo-address of the first block.
func (m *MemoryAllocator) Allocate(kbytes uint32) uint32 {
	required := kbytes / m.blockSizeKB
	if m.blockSizeKB*required < kbytes {
		required++
	}

	if m.counter+required >= m.maxBlocks {
		m.counter = 0
	}

	address := m.counter * m.blockSizeKB
	m.counter += required
	return address
}
