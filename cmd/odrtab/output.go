package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"odrtab/internal/odrtable"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	okColor    = color.New(color.FgGreen, color.Bold)
	noteColor  = color.New(color.FgYellow)
	nameColor  = color.New(color.Bold)
)

func validateCheckFormat(format string) error {
	switch format {
	case "short", "json":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be short or json)", format)
	}
}

// writeDiagsShort prints one block per violating name.
func writeDiagsShort(w io.Writer, diags []odrtable.Diag) error {
	for _, d := range diags {
		if _, err := fmt.Fprintf(w, "%s %s\n", errorColor.Sprint("odr violation:"), nameColor.Sprint(d.Name)); err != nil {
			return err
		}
		for _, def := range d.Defs {
			if _, err := fmt.Fprintf(w, "  %v: %s\n", def.Source, location(def.File, def.Line)); err != nil {
				return err
			}
		}
	}
	return nil
}

func location(file string, line uint32) string {
	if file == "" {
		file = "<unknown>"
	}
	if line == 0 {
		return file
	}
	return fmt.Sprintf("%s:%d", file, line)
}

type checkPayload struct {
	Producer    string        `json:"producer,omitempty"`
	Halt        string        `json:"halt,omitempty"`
	HaltInput   string        `json:"halt_input,omitempty"`
	Diagnostics []diagPayload `json:"diagnostics"`
	Stats       statsPayload  `json:"stats"`
}

type diagPayload struct {
	Name        string       `json:"name"`
	Definitions []defPayload `json:"definitions"`
}

type defPayload struct {
	Source string `json:"source"`
	File   string `json:"file"`
	Line   uint32 `json:"line"`
}

type statsPayload struct {
	Inputs         int `json:"inputs"`
	Tables         int `json:"tables"`
	Symbols        int `json:"symbols"`
	Conflicts      int `json:"conflicts"`
	Promotions     int `json:"promotions"`
	Decompressions int `json:"decompressions"`
	BlobBytes      int `json:"blob_bytes"`
}

func writeReportJSON(w io.Writer, rep *odrtable.Report, inputs []odrtable.InputFile) error {
	payload := checkPayload{
		Producer:    rep.Producer,
		Diagnostics: make([]diagPayload, 0, len(rep.Diags)),
		Stats:       statsPayload(rep.Stats),
	}
	if rep.Halt != odrtable.HaltNone {
		payload.Halt = rep.Halt.String()
		payload.HaltInput = fmt.Sprint(inputs[rep.HaltInput].Source)
	}
	for _, d := range rep.Diags {
		dp := diagPayload{Name: d.Name, Definitions: make([]defPayload, len(d.Defs))}
		for i, def := range d.Defs {
			dp.Definitions[i] = defPayload{Source: fmt.Sprint(def.Source), File: def.File, Line: def.Line}
		}
		payload.Diagnostics = append(payload.Diagnostics, dp)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// writeCheckSummary prints the one-line verdict and the halt note, if any.
func writeCheckSummary(w io.Writer, rep *odrtable.Report, inputs []odrtable.InputFile) {
	if rep.Halt != odrtable.HaltNone {
		fmt.Fprintf(w, "%s stopped at %v (%s); later inputs were not compared\n",
			noteColor.Sprint("note:"), inputs[rep.HaltInput].Source, rep.Halt)
	}
	counts := fmt.Sprintf("%d %s, %d %s, %d %s",
		rep.Stats.Inputs, plural(rep.Stats.Inputs, "input"),
		rep.Stats.Tables, plural(rep.Stats.Tables, "table"),
		rep.Stats.Symbols, plural(rep.Stats.Symbols, "symbol"))
	if n := len(rep.Diags); n > 0 {
		fmt.Fprintf(w, "%s (%s)\n", errorColor.Sprintf("%d ODR %s", n, plural(n, "violation")), counts)
		return
	}
	fmt.Fprintf(w, "%s (%s)\n", okColor.Sprint("no ODR violations"), counts)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
