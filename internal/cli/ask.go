package cli

import (
	"fmt"
	"strings"

	"github.com/nconklindev/tabula/internal/intent"

	"github.com/spf13/cobra"
)

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask QUERY...",
		Short: "Ask the help assistant a question",
		Long: `Ask a question about templates, conversion or troubleshooting.
Multi-word queries work with or without quotes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks := intent.Respond(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			for i, b := range blocks {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, b.Text)
			}
			return nil
		},
	}
}
