package odrtable

import (
	"fmt"

	"fortio.org/safecast"

	"odrtab/internal/odrtable/storage"
)

// strtab is an ELF-style string table: offset 0 holds the empty string,
// every other string is stored once, NUL-terminated, in insertion order.
// Offsets are final as soon as add returns.
type strtab struct {
	buf   []byte
	index map[string]storage.Str // строка -> смещение
}

func newStrtab() *strtab {
	return &strtab{
		buf:   []byte{0},
		index: map[string]storage.Str{"": 0},
	}
}

// add возвращает смещение строки, добавляя её при первом появлении.
func (t *strtab) add(s string) storage.Str {
	if off, ok := t.index[s]; ok {
		return off
	}
	raw, err := safecast.Conv[uint32](len(t.buf))
	if err != nil {
		panic(fmt.Errorf("string table overflow: %w", err))
	}
	off := storage.Str(raw)
	t.buf = append(t.buf, s...)
	t.buf = append(t.buf, 0)
	t.index[s] = off
	return off
}

// size counts bytes including the leading NUL.
func (t *strtab) size() int {
	return len(t.buf)
}

func (t *strtab) bytes() []byte {
	return t.buf
}
