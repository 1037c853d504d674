package odrtable

// arenaChunkSize is the default chunk size (1 MiB).
const arenaChunkSize = 1 << 20

// arena hands out the buffers for decompressed blobs of one Check call.
// Buffers are carved from large chunks and all of them are dropped together
// by release; nothing is freed one by one or shared between calls.
type arena struct {
	chunks [][]byte
	cur    []byte // свободный хвост текущего чанка
	used   int
}

// alloc returns a zeroed n-byte buffer whose capacity is exactly n.
func (a *arena) alloc(n int) []byte {
	// крупные блобы получают собственный чанк, текущий не выбрасываем
	if n >= arenaChunkSize/4 {
		b := make([]byte, n)
		a.chunks = append(a.chunks, b)
		a.used += n
		return b[:n:n]
	}
	if n > len(a.cur) {
		a.cur = make([]byte, arenaChunkSize)
		a.chunks = append(a.chunks, a.cur)
	}
	b := a.cur[:n:n]
	a.cur = a.cur[n:]
	a.used += n
	return b
}

// release drops every chunk at once.
func (a *arena) release() {
	clear(a.chunks)
	a.chunks = a.chunks[:0]
	a.cur = nil
	a.used = 0
}
