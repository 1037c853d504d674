package odrtable

import (
	"context"
	"fmt"
	"strconv"

	"odrtab/internal/odrtable/storage"
	"odrtab/internal/trace"
)

// HaltReason tells why Check stopped before the last input.
type HaltReason uint8

const (
	// HaltNone means every input was read.
	HaltNone HaltReason = iota
	// HaltVersion means a table carried a foreign version.
	HaltVersion
	// HaltProducer means a table came from a different producer than the first one.
	HaltProducer
)

// String returns the string representation of HaltReason.
func (h HaltReason) String() string {
	switch h {
	case HaltNone:
		return "none"
	case HaltVersion:
		return "version mismatch"
	case HaltProducer:
		return "producer mismatch"
	default:
		return "unknown"
	}
}

// CheckOptions configures CheckWithOptions.
type CheckOptions struct {
	// Codec inflates detail blobs. nil means Zlib.
	Codec Codec
}

// Stats counts the work done by one check.
type Stats struct {
	Inputs         int // inputs read, including the one that halted
	Tables         int
	Symbols        int
	Conflicts      int // NameHash hits with differing ODR hashes
	Promotions     int // occurrences resolved to exact names
	Decompressions int
	BlobBytes      int
}

// Report is the full result of CheckWithOptions.
type Report struct {
	Diags []Diag
	Stats Stats
	Halt  HaltReason
	// HaltInput is the index of the input holding the mismatching table,
	// or -1 when Halt is HaltNone.
	HaltInput int
	// Producer of the first table seen.
	Producer string
}

// Check cross-references the tables of all inputs and returns one Diag per
// name defined with more than one ODR hash. Inputs are read in order; a table
// with a foreign version or producer silently ends the comparison and the
// diagnostics found before it are returned.
func Check(inputs []InputFile) ([]Diag, error) {
	rep, err := CheckWithOptions(context.Background(), inputs, CheckOptions{})
	if err != nil {
		return nil, err
	}
	return rep.Diags, nil
}

// CheckWithOptions is Check with options and the full report. The tracer
// attached to ctx receives spans for the call and for every input.
func CheckWithOptions(ctx context.Context, inputs []InputFile, opts CheckOptions) (*Report, error) {
	if opts.Codec == nil {
		opts.Codec = Zlib
	}
	c := &checker{
		codec:  opts.Codec,
		tracer: trace.FromContext(ctx),
		byHash: make(map[uint64]candidate),
		byName: make(map[string]*nameState),
	}
	defer c.arena.release()

	span := trace.Begin(c.tracer, trace.ScopeDriver, "odr-check", trace.SpanFromContext(ctx))
	rep, err := c.run(inputs, span.ID())
	if err != nil {
		span.WithExtra("error", err.Error()).End("failed")
		return nil, err
	}
	span.WithExtra("tables", strconv.Itoa(rep.Stats.Tables)).
		WithExtra("symbols", strconv.Itoa(rep.Stats.Symbols)).
		WithExtra("diags", strconv.Itoa(len(rep.Diags))).
		End(rep.Halt.String())
	return rep, nil
}

// parsedTable: прочитанная таблица и её лениво распакованный блоб.
type parsedTable struct {
	source any
	view   storage.View
	detail detailCell
}

// detailCell is either not decompressed (ready == false) or holds the
// inflated blob. It is filled at most once.
type detailCell struct {
	ready  bool
	blob   []byte
	strtab []byte
}

// ref points at one symbol of one table.
type ref struct {
	table int
	index int
}

// candidate is the last occurrence seen for a NameHash.
type candidate struct {
	odrHash uint32
	at      ref
	// promoted reports that at has already been resolved into byName.
	promoted bool
}

// nameState tracks an exact name once it took part in a conflict.
type nameState struct {
	hashes   map[uint32]struct{}
	first    Def
	reported bool
	diag     int // valid when reported
}

type checker struct {
	codec  Codec
	tracer trace.Tracer
	arena  arena

	tables []*parsedTable
	byHash map[uint64]candidate
	byName map[string]*nameState
	diags  []Diag
	stats  Stats

	producer     string
	haveProducer bool
}

func (c *checker) run(inputs []InputFile, parent uint64) (*Report, error) {
	for k, in := range inputs {
		c.stats.Inputs++
		span := trace.Begin(c.tracer, trace.ScopeInput, fmt.Sprint(in.Source), parent)
		halt, err := c.scanInput(in, span.ID())
		if err != nil {
			span.End("failed")
			return nil, err
		}
		if halt != HaltNone {
			span.End(halt.String())
			trace.Point(c.tracer, trace.ScopeInput, "halt", fmt.Sprintf("%v: %s", in.Source, halt))
			return c.report(halt, k), nil
		}
		span.End("")
	}
	return c.report(HaltNone, -1), nil
}

func (c *checker) report(halt HaltReason, at int) *Report {
	c.stats.BlobBytes = c.arena.used
	return &Report{
		Diags:     c.diags,
		Stats:     c.stats,
		Halt:      halt,
		HaltInput: at,
		Producer:  c.producer,
	}
}

// scanInput reads the concatenated tables of one input.
func (c *checker) scanInput(in InputFile, parent uint64) (HaltReason, error) {
	data := in.Data
	for len(data) >= storage.HeaderSize {
		hdr, err := storage.ReadHeader(data)
		if err != nil {
			return HaltNone, fmt.Errorf("%v: %w", in.Source, err)
		}
		if hdr.Version != storage.CurrentVersion {
			return HaltVersion, nil
		}
		producer, err := storage.ReadProducer(data)
		if err != nil {
			return HaltNone, fmt.Errorf("%v: %w", in.Source, err)
		}
		if !c.haveProducer {
			c.producer = producer
			c.haveProducer = true
		} else if producer != c.producer {
			// разные тулчейны не сравниваем
			return HaltProducer, nil
		}
		view, err := storage.Parse(data)
		if err != nil {
			return HaltNone, fmt.Errorf("%v: %w", in.Source, err)
		}
		if err := c.scanTable(in.Source, view, parent); err != nil {
			return HaltNone, err
		}
		data = data[view.Size():]
	}
	return HaltNone, nil
}

func (c *checker) scanTable(source any, view storage.View, parent uint64) error {
	ti := len(c.tables)
	c.tables = append(c.tables, &parsedTable{source: source, view: view})
	c.stats.Tables++

	span := trace.Begin(c.tracer, trace.ScopeTable, "table#"+strconv.Itoa(ti), parent)
	defer span.End("")

	n := view.Len()
	c.stats.Symbols += n
	for i := range n {
		sym := view.Symbol(i)
		cur := ref{table: ti, index: i}

		cand, ok := c.byHash[sym.NameHash]
		if !ok {
			c.byHash[sym.NameHash] = candidate{odrHash: sym.ODRHash, at: cur}
			continue
		}
		if cand.odrHash == sym.ODRHash {
			continue
		}

		c.stats.Conflicts++
		if !cand.promoted {
			if err := c.promote(cand.at); err != nil {
				return err
			}
		}
		if err := c.promote(cur); err != nil {
			return err
		}
		c.byHash[sym.NameHash] = candidate{odrHash: sym.ODRHash, at: cur, promoted: true}
	}
	return nil
}

// promote resolves the exact name of one occurrence and records its hash.
func (c *checker) promote(at ref) error {
	t := c.tables[at.table]
	if err := c.inflate(t); err != nil {
		return err
	}
	z, err := storage.ReadZSymbol(t.detail.blob, at.index)
	if err != nil {
		return fmt.Errorf("%v: %w", t.source, err)
	}
	name, err := z.Name.Get(t.detail.strtab)
	if err != nil {
		return fmt.Errorf("%v: %w", t.source, err)
	}
	file, err := z.File.Get(t.detail.strtab)
	if err != nil {
		return fmt.Errorf("%v: %w", t.source, err)
	}
	odrHash := t.view.Symbol(at.index).ODRHash
	def := Def{Source: t.source, File: file, Line: z.Line}
	c.stats.Promotions++

	if c.tracer.Enabled() && c.tracer.Level().ShouldEmit(trace.ScopeSymbol) {
		trace.Point(c.tracer, trace.ScopeSymbol, "promote", fmt.Sprintf("%s %#08x %s:%d", name, odrHash, file, z.Line))
	}

	st, ok := c.byName[name]
	if !ok {
		c.byName[name] = &nameState{
			hashes: map[uint32]struct{}{odrHash: {}},
			first:  def,
		}
		return nil
	}
	if _, seen := st.hashes[odrHash]; seen {
		return nil
	}
	st.hashes[odrHash] = struct{}{}
	if !st.reported {
		// второй различный хеш: диагностика появляется вместе с первым определением
		st.reported = true
		st.diag = len(c.diags)
		c.diags = append(c.diags, Diag{Name: name, Defs: []Def{st.first}})
	}
	c.diags[st.diag].Defs = append(c.diags[st.diag].Defs, def)
	return nil
}

// inflate fills the detail cell of t on first use.
func (c *checker) inflate(t *parsedTable) error {
	if t.detail.ready {
		return nil
	}
	blob := c.arena.alloc(int(t.view.Header.ZSize))
	if err := c.codec.Decompress(blob, t.view.Compressed); err != nil {
		return fmt.Errorf("%w: %v: %s: %w", ErrDecompress, t.source, c.codec.Name(), err)
	}
	strtab, err := storage.Strtab(blob, t.view.Len())
	if err != nil {
		return fmt.Errorf("%v: %w", t.source, err)
	}
	t.detail = detailCell{ready: true, blob: blob, strtab: strtab}
	c.stats.Decompressions++
	trace.Point(c.tracer, trace.ScopeTable, "inflate", fmt.Sprintf("%v: %d bytes", t.source, len(blob)))
	return nil
}
