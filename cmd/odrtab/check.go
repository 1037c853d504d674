package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"odrtab/internal/loader"
	"odrtab/internal/observ"
	"odrtab/internal/odrtable"
)

var errViolations = errors.New("ODR violations found")

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check INPUT...",
		Short: "Cross-check the ODR tables of link inputs",
		Long: `check reads the ODR tables of every input (ELF objects carrying an .odrtab
section, or raw table files) in order and reports every name that is defined
with more than one ODR hash.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}
	cmd.Flags().String("format", "short", "output format (short|json)")
	cmd.Flags().String("codec", "zlib", "detail blob codec the tables were built with (zlib|zstd|lz4)")
	cmd.Flags().Int("jobs", 0, "inputs read in parallel (0 = GOMAXPROCS)")
	cmd.Flags().Bool("no-fail", false, "exit with status 0 even when violations are found")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, err := pick(cmd, "format", cfg.Check.Format, "")
	if err != nil {
		return err
	}
	if err := validateCheckFormat(format); err != nil {
		return err
	}
	codecName, err := pick(cmd, "codec", cfg.Table.Codec, "")
	if err != nil {
		return err
	}
	codec, err := odrtable.CodecByName(codecName)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if !cmd.Flags().Changed("jobs") {
		jobs = cfg.Check.Jobs
	}
	noFail, err := cmd.Flags().GetBool("no-fail")
	if err != nil {
		return fmt.Errorf("failed to get no-fail flag: %w", err)
	}
	fail := cfg.Check.failOnViolations() && !noFail
	quiet, err := getQuiet(cmd)
	if err != nil {
		return err
	}
	showTimings, err := getTimings(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	timer := observ.NewTimer()

	var inputs []odrtable.InputFile
	err = timer.Measure("load", func() error {
		var loadErr error
		inputs, loadErr = loader.Load(ctx, args, jobs)
		return loadErr
	})
	if err != nil {
		return err
	}

	var rep *odrtable.Report
	err = timer.Measure("check", func() error {
		var checkErr error
		rep, checkErr = odrtable.CheckWithOptions(ctx, inputs, odrtable.CheckOptions{Codec: codec})
		return checkErr
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		err = writeReportJSON(out, rep, inputs)
	default:
		err = writeDiagsShort(out, rep.Diags)
	}
	if err != nil {
		return err
	}

	if !quiet {
		writeCheckSummary(cmd.ErrOrStderr(), rep, inputs)
	}
	if showTimings {
		if err := timer.WriteSummary(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}
	if fail && len(rep.Diags) > 0 {
		return fmt.Errorf("%w: %d", errViolations, len(rep.Diags))
	}
	return nil
}
