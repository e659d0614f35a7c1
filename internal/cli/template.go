package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/tabula/internal/session"
	"github.com/nconklindev/tabula/internal/template"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTemplateCmd(a *app) *cobra.Command {
	var (
		columns []string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Build an Excel template from column definitions",
		Long: `Build custom_template.xlsx with a Data sheet (header row plus one sample
row) and an Instructions sheet.

Each --column is Name or Name=sample, in the order given.`,
		Example: `  tabula template --column PolicyId=01 --column Role=ResearchAssistant`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state := session.New()
			for _, c := range columns {
				name, sample, _ := strings.Cut(c, "=")
				if err := state.AddColumn(name, sample); err != nil {
					return fmt.Errorf("invalid column %q: %w", c, err)
				}
			}
			if len(state.Columns()) == 0 {
				return fmt.Errorf("add at least one --column")
			}

			data, err := template.NewBuilder().Build(state.Columns())
			if err != nil {
				return fmt.Errorf("failed to build template: %w", err)
			}

			path := output
			if path == "" {
				path = filepath.Join(a.cfg.OutputDir, template.FileName)
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("failed to write template: %w", err)
			}

			a.logger.Info("template saved", zap.String("path", path), zap.Int("columns", len(columns)))
			fmt.Fprintf(cmd.OutOrStdout(), "Template created successfully: %s (%d columns)\n", path, len(columns))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&columns, "column", "c", nil, "column as Name or Name=sample (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default <output_dir>/custom_template.xlsx)")

	return cmd
}
