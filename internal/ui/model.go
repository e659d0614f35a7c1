package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/tabula/internal/converter"
	"github.com/nconklindev/tabula/internal/export"
	"github.com/nconklindev/tabula/internal/intent"
	"github.com/nconklindev/tabula/internal/session"
	"github.com/nconklindev/tabula/internal/template"
	"github.com/nconklindev/tabula/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

type state int

const (
	stateMenu state = iota
	stateTemplate
	stateFilePicker
	statePreview
	stateHelp
	stateError
)

type menuItem struct {
	title string
	desc  string
	next  state
}

var menuItems = []menuItem{
	{"📝 Create Template", "Design a spreadsheet with your own columns", stateTemplate},
	{"🔄 Convert File", "Turn an Excel or CSV file into flat JSON", stateFilePicker},
	{"❓ Get Help", "Ask a question about templates or conversion", stateHelp},
}

type previewTab int

const (
	tabTable previewTab = iota
	tabJSON
)

type inputFocus int

const (
	focusName inputFocus = iota
	focusSample
)

// Options wires the model to the core services.
type Options struct {
	Converter *converter.Converter
	Builder   *template.Builder
	OutputDir string
	Logger    *zap.Logger
}

type Model struct {
	state    state
	returnTo state
	cursor   int
	width    int
	height   int

	session   *session.State
	converter *converter.Converter
	builder   *template.Builder
	outputDir string
	logger    *zap.Logger

	filepicker   filepicker.Model
	selectedFile string

	nameInput       textinput.Model
	sampleInput     textinput.Model
	focus           inputFocus
	templateSaved   string
	templatePreview *types.Table

	tab       previewTab
	dataTable table.Model
	jsonView  viewport.Model

	queryInput textinput.Model
	responses  []intent.Block

	status     string
	statusErr  bool
	err        error
	errContext string
}

type fileLoadedMsg struct {
	result *types.ConversionResult
	err    error
}

type templateSavedMsg struct {
	path    string
	columns []types.ColumnDefinition
	err     error
}

type exportSavedMsg struct {
	path string
	err  error
}

func InitialModel(opts Options) Model {
	if opts.Converter == nil {
		opts.Converter = converter.New(converter.DefaultOptions())
	}
	if opts.Builder == nil {
		opts.Builder = template.NewBuilder()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.OutputDir == "" {
		opts.OutputDir, _ = os.Getwd()
	}

	fp := filepicker.New()
	fp.AllowedTypes = converter.SupportedExtensions
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(colorSoft)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(colorSoft)
	fp.Styles.File = lipgloss.NewStyle().Foreground(colorText)
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(colorMuted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(colorMuted)

	name := textinput.New()
	name.Placeholder = "e.g., PolicyId, Role, MonthlyAllowance"
	name.Prompt = "Column Name: "
	name.CharLimit = 128
	name.Focus()

	sample := textinput.New()
	sample.Placeholder = "e.g., 01, ResearchAssistant, PKR 8,000"
	sample.Prompt = "Sample value: "
	sample.CharLimit = 256

	query := textinput.New()
	query.Placeholder = "how do I create a template?"
	query.Prompt = "Ask: "
	query.CharLimit = 256

	return Model{
		state:       stateMenu,
		session:     session.New(),
		converter:   opts.Converter,
		builder:     opts.Builder,
		outputDir:   opts.OutputDir,
		logger:      opts.Logger,
		filepicker:  fp,
		nameInput:   name,
		sampleInput: sample,
		queryInput:  query,
		dataTable:   table.New(),
		jsonView:    viewport.New(80, 15),
	}
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for the title, subtitle and help lines
		height := msg.Height - 14
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)
		m.dataTable.SetHeight(height - 4)
		m.jsonView.Width = msg.Width - 8
		m.jsonView.Height = height - 4

		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}

		switch m.state {
		case stateMenu:
			return m.updateMenu(msg)
		case stateTemplate:
			return m.updateTemplate(msg)
		case stateFilePicker:
			if key.Matches(msg, keys.Back) {
				m.state = stateMenu
				return m, nil
			}
		case statePreview:
			return m.updatePreview(msg)
		case stateHelp:
			return m.updateHelp(msg)
		case stateError:
			m.err = nil
			m.state = m.returnTo
			if m.state == stateFilePicker {
				return m, m.filepicker.Init()
			}
			return m, nil
		}

	case fileLoadedMsg:
		if msg.err != nil {
			m.logger.Info("conversion failed", zap.String("file", m.selectedFile), zap.Error(msg.err))
			m.err = msg.err
			m.errContext = "Error processing file"
			m.returnTo = stateFilePicker
			m.state = stateError
			return m, nil
		}

		m.session.SetResult(msg.result)
		m.logger.Info("file converted",
			zap.String("file", msg.result.FileName),
			zap.Int("rows", msg.result.Table.NumRows()),
			zap.Int("columns", msg.result.Table.NumCols()),
		)
		m.dataTable = newDataTable(msg.result.Table, m.tableHeight())
		m.jsonView.SetContent(recordsJSON(msg.result.Records))
		m.jsonView.GotoTop()
		m.tab = tabTable
		m.setStatus("✅ File processed successfully!", false)
		m.state = statePreview
		return m, nil

	case templateSavedMsg:
		if msg.err != nil {
			m.logger.Error("template write failed", zap.Error(msg.err))
			m.err = msg.err
			m.errContext = "Error creating template"
			m.returnTo = stateTemplate
			m.state = stateError
			return m, nil
		}
		m.logger.Info("template saved", zap.String("path", msg.path), zap.Int("columns", len(msg.columns)))
		m.templateSaved = msg.path
		m.templatePreview = template.Preview(msg.columns)
		m.setStatus("Template created successfully!", false)
		return m, nil

	case exportSavedMsg:
		if msg.err != nil {
			m.logger.Error("export failed", zap.Error(msg.err))
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		m.logger.Info("export saved", zap.String("path", msg.path))
		m.setStatus("Saved "+msg.path, false)
		return m, nil
	}

	switch m.state {
	case stateFilePicker:
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			return m, m.loadFile(path)
		}
		if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
			m.setStatus(filepath.Base(path)+" is not a supported file (.csv, .xlsx, .xls)", true)
		}

		return m, cmd

	case stateTemplate:
		return m.updateFocusedInput(msg)

	case stateHelp:
		var cmd tea.Cmd
		m.queryInput, cmd = m.queryInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.QuitMenu):
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		m.status = ""
		m.state = menuItems[m.cursor].next
		switch m.state {
		case stateFilePicker:
			return m, m.filepicker.Init()
		case stateTemplate:
			return m, m.focusInput(focusName)
		case stateHelp:
			m.session.ToggleHelp()
			return m, m.queryInput.Focus()
		}
	}
	return m, nil
}

func (m Model) updateTemplate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.state = stateMenu
		m.status = ""
		return m, nil

	case key.Matches(msg, keys.Tab):
		if m.focus == focusName {
			return m, m.focusInput(focusSample)
		}
		return m, m.focusInput(focusName)

	case key.Matches(msg, keys.Enter):
		name := m.nameInput.Value()
		if err := m.session.AddColumn(name, m.sampleInput.Value()); err != nil {
			m.setStatus("Please enter a column name", true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Column '%s' added!", name), false)
		m.nameInput.SetValue("")
		m.sampleInput.SetValue("")
		return m, m.focusInput(focusName)

	case key.Matches(msg, keys.Clear):
		m.session.ClearColumns()
		m.templatePreview = nil
		m.templateSaved = ""
		m.setStatus("All columns cleared", false)
		return m, nil

	case key.Matches(msg, keys.Generate):
		columns := m.session.Columns()
		if len(columns) == 0 {
			m.setStatus("ℹ️ Add columns to start building your template", true)
			return m, nil
		}
		return m, m.saveTemplate(columns)
	}

	return m.updateFocusedInput(msg)
}

func (m Model) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	result := m.session.Result()

	switch {
	case key.Matches(msg, keys.Back):
		m.state = stateFilePicker
		m.status = ""
		return m, m.filepicker.Init()
	case key.Matches(msg, keys.Tab):
		if m.tab == tabTable {
			m.tab = tabJSON
		} else {
			m.tab = tabTable
		}
		return m, nil
	case key.Matches(msg, keys.SaveCSV):
		return m, m.saveExport(result, "csv")
	case key.Matches(msg, keys.SaveJSON):
		return m, m.saveExport(result, "json")
	case key.Matches(msg, keys.SaveYAML):
		return m, m.saveExport(result, "yaml")
	}

	var cmd tea.Cmd
	if m.tab == tabTable {
		m.dataTable, cmd = m.dataTable.Update(msg)
	} else {
		m.jsonView, cmd = m.jsonView.Update(msg)
	}
	return m, cmd
}

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.session.ToggleHelp()
		m.queryInput.Blur()
		m.state = stateMenu
		return m, nil
	case key.Matches(msg, keys.Enter):
		query := strings.TrimSpace(m.queryInput.Value())
		if query == "" {
			m.responses = nil
			return m, nil
		}
		m.responses = intent.Respond(query)
		m.logger.Debug("help query", zap.String("query", query), zap.Int("blocks", len(m.responses)))
		return m, nil
	}

	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	return m, cmd
}

func (m *Model) focusInput(f inputFocus) tea.Cmd {
	m.focus = f
	if f == focusName {
		m.sampleInput.Blur()
		return m.nameInput.Focus()
	}
	m.nameInput.Blur()
	return m.sampleInput.Focus()
}

func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == focusName {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.sampleInput, cmd = m.sampleInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m Model) tableHeight() int {
	h := m.height - 18
	if h < 5 {
		h = 5
	}
	return h
}

func (m Model) loadFile(path string) tea.Cmd {
	conv := m.converter
	return func() tea.Msg {
		result, err := conv.ReadFile(path)
		return fileLoadedMsg{result: result, err: err}
	}
}

func (m Model) saveTemplate(columns []types.ColumnDefinition) tea.Cmd {
	builder := m.builder
	path := filepath.Join(m.outputDir, template.FileName)
	return func() tea.Msg {
		data, err := builder.Build(columns)
		if err != nil {
			return templateSavedMsg{err: err}
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return templateSavedMsg{err: fmt.Errorf("save template: %w", err)}
		}
		return templateSavedMsg{path: path, columns: columns}
	}
}

func (m Model) saveExport(result *types.ConversionResult, format string) tea.Cmd {
	outputDir := m.outputDir
	return func() tea.Msg {
		if result == nil {
			return exportSavedMsg{err: fmt.Errorf("nothing to save")}
		}
		exporter, err := export.NewExporter(format)
		if err != nil {
			return exportSavedMsg{err: err}
		}

		var buf bytes.Buffer
		if err := exporter.Export(result, &buf); err != nil {
			return exportSavedMsg{err: err}
		}

		path := filepath.Join(outputDir, export.FileName(exporter))
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return exportSavedMsg{err: fmt.Errorf("save %s: %w", format, err)}
		}
		return exportSavedMsg{path: path}
	}
}

func newDataTable(t *types.Table, height int) table.Model {
	columns := make([]table.Column, t.NumCols())
	for i, name := range t.Columns {
		width := len(name)
		for _, row := range t.Rows {
			if w := len(converter.FormatCell(row[i])); w > width {
				width = w
			}
		}
		columns[i] = table.Column{Title: name, Width: clamp(width, 6, 28)}
	}

	rows := make([]table.Row, len(t.Rows))
	for i, row := range t.Rows {
		cells := make(table.Row, len(row))
		for j, v := range row {
			if v == nil {
				cells[j] = "None"
				continue
			}
			cells[j] = converter.FormatCell(v)
		}
		rows[i] = cells
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(colorHeader)
	styles.Selected = styles.Selected.
		Foreground(colorText).
		Background(colorAccent).
		Bold(false)

	tbl := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	tbl.SetStyles(styles)
	return tbl
}

func recordsJSON(records []*types.Record) string {
	if records == nil {
		records = []*types.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
