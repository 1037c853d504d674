package odrtable

import "github.com/cespare/xxhash/v2"

// NameHash is the default bucketing hash (XXH64, seed 0) over the raw name bytes.
// Tables built with a different hash still check correctly among themselves,
// but mixing hashes in one link makes every name look unrelated.
func NameHash(name string) uint64 {
	return xxhash.Sum64String(name)
}
