// Package symlist reads and writes symbol listings: the definitions a
// compiler front end hands to `odrtab build`. Tools exchange listings as
// msgpack; TOML listings are meant to be written by hand.
package symlist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/unicode/norm"

	"odrtab/internal/odrtable"
)

// schemaVersion меняется вместе с форматом msgpack-листинга.
const schemaVersion uint16 = 1

// ErrSchema is returned for msgpack listings written with another schema.
var ErrSchema = errors.New("symlist: unsupported schema")

// Entry is one ODR-relevant definition.
type Entry struct {
	Name string `toml:"name" msgpack:"name" json:"name"`
	File string `toml:"file" msgpack:"file" json:"file"`
	Line uint32 `toml:"line" msgpack:"line" json:"line"`
	Hash uint32 `toml:"hash" msgpack:"hash" json:"hash"`
}

// Listing is the content of one translation unit.
type Listing struct {
	Producer string  `toml:"producer,omitempty" json:"producer,omitempty"`
	Symbols  []Entry `toml:"symbol" json:"symbols"`
}

// payload is the msgpack envelope.
type payload struct {
	Schema   uint16  `msgpack:"schema"`
	Producer string  `msgpack:"producer"`
	Symbols  []Entry `msgpack:"symbols"`
}

// Load reads a listing, picking the format from the extension
// (.toml, .mp or .msgpack).
func Load(path string) (*Listing, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return LoadTOML(path)
	case ".mp", ".msgpack":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		l, err := ReadMsgpack(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return l, nil
	default:
		return nil, fmt.Errorf("%s: unknown listing format (expected .toml, .mp or .msgpack)", path)
	}
}

// LoadTOML reads a hand-written listing:
//
//	producer = "clang 18"
//
//	[[symbol]]
//	name = "_ZN3foo3barEv"
//	file = "foo.cpp"
//	line = 10
//	hash = 0xAAAA
func LoadTOML(path string) (*Listing, error) {
	var l Listing
	meta, err := toml.DecodeFile(path, &l)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	for i, e := range l.Symbols {
		if e.Name == "" {
			return nil, fmt.Errorf("%s: symbol #%d: missing name", path, i+1)
		}
	}
	l.normalize()
	return &l, nil
}

// ReadMsgpack decodes a listing written by WriteMsgpack.
func ReadMsgpack(r io.Reader) (*Listing, error) {
	var p payload
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, err
	}
	if p.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrSchema, p.Schema, schemaVersion)
	}
	l := &Listing{Producer: p.Producer, Symbols: p.Symbols}
	l.normalize()
	return l, nil
}

// WriteMsgpack encodes l for ReadMsgpack.
func WriteMsgpack(w io.Writer, l *Listing) error {
	return msgpack.NewEncoder(w).Encode(&payload{
		Schema:   schemaVersion,
		Producer: l.Producer,
		Symbols:  l.Symbols,
	})
}

// WriteTOML encodes l in the LoadTOML format.
func WriteTOML(w io.Writer, l *Listing) error {
	return toml.NewEncoder(w).Encode(l)
}

// AddTo feeds every entry into b, in listing order.
func (l *Listing) AddTo(b *odrtable.Builder) {
	for _, e := range l.Symbols {
		b.Add(e.Name, e.File, e.Line, e.Hash)
	}
}

// FromTable turns a decoded table back into a listing.
func FromTable(t odrtable.Table) *Listing {
	l := &Listing{Producer: t.Producer, Symbols: make([]Entry, len(t.Symbols))}
	for i, s := range t.Symbols {
		l.Symbols[i] = Entry{Name: s.Name, File: s.File, Line: s.Line, Hash: s.ODRHash}
	}
	return l
}

// normalize приводит пути к NFC: macOS отдаёт имена файлов в NFD, и без
// этого один файл попадает в таблицу строк дважды. Имена символов не трогаем,
// от их байтов зависит NameHash.
func (l *Listing) normalize() {
	for i := range l.Symbols {
		l.Symbols[i].File = norm.NFC.String(l.Symbols[i].File)
	}
}
