package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"odrtab/internal/observ"
	"odrtab/internal/odrtable"
	"odrtab/internal/symlist"
	"odrtab/internal/trace"
	"odrtab/internal/version"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build LISTING",
		Short: "Build an ODR table from a symbol listing (.toml or .mp)",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}
	cmd.Flags().StringP("output", "o", "", "output file (default: LISTING with .odrtab extension)")
	cmd.Flags().String("producer", "", "producer string (default: listing, then config, then odrtab version)")
	cmd.Flags().String("codec", "zlib", "detail blob codec (zlib|zstd|lz4)")
	cmd.Flags().Bool("append", false, "append the table to an existing output file")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	listingPath := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	if output == "" {
		output = strings.TrimSuffix(listingPath, filepath.Ext(listingPath)) + ".odrtab"
	}
	appendMode, err := cmd.Flags().GetBool("append")
	if err != nil {
		return fmt.Errorf("failed to get append flag: %w", err)
	}
	codecName, err := pick(cmd, "codec", cfg.Table.Codec, "")
	if err != nil {
		return err
	}
	codec, err := odrtable.CodecByName(codecName)
	if err != nil {
		return err
	}
	quiet, err := getQuiet(cmd)
	if err != nil {
		return err
	}
	showTimings, err := getTimings(cmd)
	if err != nil {
		return err
	}

	tracer := trace.FromContext(cmd.Context())
	timer := observ.NewTimer()

	var listing *symlist.Listing
	err = timer.Measure("load listing", func() error {
		var loadErr error
		listing, loadErr = symlist.Load(listingPath)
		return loadErr
	})
	if err != nil {
		return err
	}

	// флаг > листинг > конфиг > версия утилиты
	producer := listing.Producer
	if cmd.Flags().Changed("producer") {
		producer, err = cmd.Flags().GetString("producer")
		if err != nil {
			return fmt.Errorf("failed to get producer flag: %w", err)
		}
	}
	if producer == "" {
		producer = cfg.Table.Producer
	}
	if producer == "" {
		producer = version.Producer()
	}

	var data []byte
	err = timer.Measure("build", func() error {
		span := trace.Begin(tracer, trace.ScopeInput, "build "+listingPath, trace.SpanFromContext(cmd.Context()))
		defer span.End("")
		b := odrtable.NewBuilderWithOptions(odrtable.BuilderOptions{Codec: codec})
		listing.AddTo(b)
		var buildErr error
		data, buildErr = b.Build(producer)
		span.WithExtra("symbols", fmt.Sprint(b.Len()))
		return buildErr
	})
	if err != nil {
		return err
	}

	if appendMode {
		prev, readErr := os.ReadFile(output)
		if readErr != nil && !errors.Is(readErr, os.ErrNotExist) {
			return readErr
		}
		data = append(prev, data...)
	}
	if err := timer.Measure("write", func() error { return writeFileAtomic(output, data) }); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %d %s -> %s (%d bytes, %s)\n",
			okColor.Sprint("built"), len(listing.Symbols), plural(len(listing.Symbols), "symbol"), output, len(data), codec.Name())
	}
	if showTimings {
		return timer.WriteSummary(cmd.ErrOrStderr())
	}
	return nil
}

// writeFileAtomic replaces path through a temp file in the same directory.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".odrtab-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), path)
}
