package odrtable

// InputFile is one link input. Data holds one or more concatenated tables.
// Source is opaque to the checker and comes back in Def.Source.
type InputFile struct {
	Source any
	Data   []byte
}

// Def is one definition of a violating symbol.
type Def struct {
	Source any
	File   string
	Line   uint32
}

// Diag reports a name defined with at least two distinct ODR hashes.
// Defs holds the first occurrence of each distinct hash, in discovery order.
type Diag struct {
	Name string
	Defs []Def
}

// Entry is a fully decoded symbol, as returned by ReadTables.
type Entry struct {
	Name     string
	File     string
	Line     uint32
	NameHash uint64
	ODRHash  uint32
}

// Table is a fully decoded table.
type Table struct {
	Version  uint32
	Producer string
	Symbols  []Entry
}
