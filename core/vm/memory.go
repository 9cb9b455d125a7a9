package vm

// Memory is a minimal byte-addressable scratch buffer, shaped after
// go-ethereum's core/vm/memory.go. Growth cost accounting belongs to the
// (out of scope) base interpreter; Resize here only guarantees capacity
// so MCOPY (§4.2) can be exercised and tested in isolation.
type Memory struct {
	store []byte
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Len() int { return len(m.store) }

// Resize grows the buffer to at least size bytes, zero-filling the
// extension, mirroring go-ethereum's Memory.Resize.
func (m *Memory) Resize(size uint64) {
	if uint64(len(m.store)) >= size {
		return
	}
	grown := make([]byte, size)
	copy(grown, m.store)
	m.store = grown
}

func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	m.Resize(offset + size)
	copy(m.store[offset:offset+size], value)
}

func (m *Memory) GetCopy(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, m.store[offset:offset+size])
	return out
}

// Copy performs an in-place, overlap-safe copy of size bytes from src to
// dst, as MCOPY (EIP-5656) requires (§4.2).
func (m *Memory) Copy(dst, src, size uint64) {
	if size == 0 {
		return
	}
	copy(m.store[dst:dst+size], m.store[src:src+size])
}
