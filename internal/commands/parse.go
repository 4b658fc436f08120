package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtconv/internal/convert"
	"github.com/cleared-dev/stmtconv/internal/export"
)

type parseOptions struct {
	layout string
	year   int
	format string
	strict bool
}

func newParseCommand(g *globalFlags) *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse <input.pdf> <output.csv>",
		Short: "Convert a statement PDF to CSV or XLSX",
		Long: "Extracts every transaction row from the statement and writes them in print order.\n" +
			"The output file is only created when the whole statement parses.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, g, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.layout, "layout", "", "statement layout (default: detect)")
	cmd.Flags().IntVar(&opts.year, "year", 0, "year for dates printed without one (default: infer)")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: csv or xlsx (default: from output extension)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when running balances do not reconcile")

	return cmd
}

func runParse(cmd *cobra.Command, g *globalFlags, input, output string, opts parseOptions) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}

	format := export.FormatFromPath(output)
	if opts.format != "" {
		if format, err = export.ParseFormat(opts.format); err != nil {
			return err
		}
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	svc := newService(cfg, logger, opts.strict)
	res, err := svc.Convert(cmd.Context(), f, convert.Request{
		Name:   input,
		Format: format,
		Layout: opts.layout,
		Year:   opts.year,
	})
	if err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(input), err)
	}

	if err := writeFileAtomic(output, res.Data); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d transactions to %s (layout: %s)\n",
		len(res.Statement.Transactions), output, res.Statement.Layout)
	return nil
}

// writeFileAtomic writes data to a temp file next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".stmtconv-*")
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing output: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("writing output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
