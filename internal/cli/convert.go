package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/nconklindev/tabula/internal/converter"
	"github.com/nconklindev/tabula/internal/export"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		format  string
		output  string
		noInfer bool
	)

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert a .csv, .xlsx or .xls file",
		Long: `Convert a spreadsheet into flat records, one per data row, keyed by the
header row. JSON is written with 2-space indentation.

Output goes to stdout unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := export.NewExporter(format)
			if err != nil {
				return err
			}

			conv := a.converter()
			if noInfer {
				conv = converter.New(converter.Options{MaxBytes: conv.MaxBytes()})
			}

			result, err := conv.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("error processing file: %w", err)
			}
			a.logger.Info("file converted",
				zap.String("file", result.FileName),
				zap.Int("rows", result.Table.NumRows()),
				zap.Int("columns", result.Table.NumCols()),
			)

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output: %w", err)
				}
				defer f.Close()
				w = f
			}

			if err := exporter.Export(result, w); err != nil {
				return fmt.Errorf("failed to write %s: %w", exporter.Extension(), err)
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d record(s) to %s\n", len(result.Records), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, csv, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&noInfer, "no-infer", false, "keep every cell as text")

	return cmd
}
