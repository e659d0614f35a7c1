// Package cli wires the tabula commands together with cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/nconklindev/tabula/internal/config"
	"github.com/nconklindev/tabula/internal/converter"
	"github.com/nconklindev/tabula/internal/logging"
	"github.com/nconklindev/tabula/internal/template"
	"github.com/nconklindev/tabula/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// BuildInfo is stamped into the binary at release time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// app holds what every command needs after flags are parsed.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd builds the command tree. Without a subcommand it starts the TUI.
func NewRootCmd(info BuildInfo) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tabula",
		Short: "Convert Excel and CSV files into flat JSON",
		Long: `Tabula converts spreadsheets into flat JSON records and builds
Excel templates that convert back cleanly.

Run without arguments for the interactive interface, or use a subcommand:
  tabula convert data.xlsx               # Print records as JSON
  tabula convert data.csv --format yaml  # Or as YAML / CSV
  tabula template --column Name=Alice    # Build custom_template.xlsx
  tabula ask how do I create a template  # Ask the help assistant
  tabula serve                           # Start the HTTP API`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file path (default ~/.config/tabula/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newConvertCmd(a),
		newTemplateCmd(a),
		newAskCmd(a),
		newServeCmd(a),
	)

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute(info BuildInfo) {
	if err := NewRootCmd(info).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) load() error {
	path := a.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Debug = true
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Debug, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger
	a.logger.Debug("config loaded", zap.String("config_path", path))

	return nil
}

func (a *app) converter() *converter.Converter {
	return converter.New(converter.Options{
		MaxBytes:   a.cfg.MaxUploadBytes(),
		InferTypes: a.cfg.InferTypesOrDefault(),
	})
}

func (a *app) runTUI() error {
	// stderr output would tear the alt screen, so only a log file is used here
	logger := zap.NewNop()
	if a.cfg.LogFile != "" {
		logger = a.logger
	}

	model := ui.InitialModel(ui.Options{
		Converter: a.converter(),
		Builder:   template.NewBuilder(),
		OutputDir: a.cfg.OutputDir,
		Logger:    logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
