package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"odrtab/internal/loader"
	"odrtab/internal/odrtable"
	"odrtab/internal/symlist"
)

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump INPUT...",
		Short: "Decode and print ODR tables",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDump,
	}
	cmd.Flags().String("format", "text", "output format (text|toml|json)")
	cmd.Flags().String("codec", "zlib", "detail blob codec the tables were built with (zlib|zstd|lz4)")
	return cmd
}

// dumpedInput is one input with its decoded tables.
type dumpedInput struct {
	Source string           `json:"source"`
	Tables []odrtable.Table `json:"tables"`
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "text", "toml", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be text, toml or json)", format)
	}
	codecName, err := pick(cmd, "codec", cfg.Table.Codec, "")
	if err != nil {
		return err
	}
	codec, err := odrtable.CodecByName(codecName)
	if err != nil {
		return err
	}

	inputs, err := loader.Load(cmd.Context(), args, 0)
	if err != nil {
		return err
	}
	dumped := make([]dumpedInput, len(inputs))
	for i, in := range inputs {
		tables, err := odrtable.ReadTables(in.Data, codec)
		if err != nil {
			return fmt.Errorf("%v: %w", in.Source, err)
		}
		dumped[i] = dumpedInput{Source: fmt.Sprint(in.Source), Tables: tables}
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(dumped)
	case "toml":
		return writeDumpTOML(out, dumped)
	default:
		return writeDumpText(out, dumped)
	}
}

// writeDumpTOML merges every table into one listing that build accepts back.
func writeDumpTOML(w io.Writer, dumped []dumpedInput) error {
	var merged *symlist.Listing
	for _, d := range dumped {
		for _, t := range d.Tables {
			l := symlist.FromTable(t)
			if merged == nil {
				merged = l
				continue
			}
			if l.Producer != merged.Producer {
				return fmt.Errorf("%s: producer %q differs from %q; dump the inputs separately", d.Source, l.Producer, merged.Producer)
			}
			merged.Symbols = append(merged.Symbols, l.Symbols...)
		}
	}
	if merged == nil {
		merged = &symlist.Listing{}
	}
	return symlist.WriteTOML(w, merged)
}

func writeDumpText(w io.Writer, dumped []dumpedInput) error {
	for _, d := range dumped {
		if len(d.Tables) == 0 {
			if _, err := fmt.Fprintf(w, "%s: no tables\n", d.Source); err != nil {
				return err
			}
			continue
		}
		for ti, t := range d.Tables {
			if _, err := fmt.Fprintf(w, "%s table #%d  version=%d producer=%q symbols=%d\n",
				nameColor.Sprint(d.Source), ti, t.Version, t.Producer, len(t.Symbols)); err != nil {
				return err
			}
			if err := writeSymbolRows(w, t.Symbols); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeSymbolRows prints aligned columns; widths count terminal cells so
// wide characters in names do not shift the columns.
func writeSymbolRows(w io.Writer, syms []odrtable.Entry) error {
	rows := make([][3]string, len(syms))
	var nameW, locW int
	for i, s := range syms {
		rows[i] = [3]string{s.Name, location(s.File, s.Line), fmt.Sprintf("%016x %08x", s.NameHash, s.ODRHash)}
		nameW = max(nameW, runewidth.StringWidth(rows[i][0]))
		locW = max(locW, runewidth.StringWidth(rows[i][1]))
	}
	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString("  ")
		sb.WriteString(runewidth.FillRight(r[0], nameW))
		sb.WriteString("  ")
		sb.WriteString(runewidth.FillRight(r[1], locW))
		sb.WriteString("  ")
		sb.WriteString(r[2])
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
