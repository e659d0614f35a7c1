package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nconklindev/tabula/internal/converter"
	"github.com/nconklindev/tabula/internal/intent"
	"github.com/nconklindev/tabula/internal/types"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
)

func (m Model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateTemplate:
		return m.viewTemplate()
	case stateFilePicker:
		return m.viewFilePicker()
	case statePreview:
		return m.viewPreview()
	case stateHelp:
		return m.viewHelp()
	case stateError:
		return m.viewError()
	}
	return ""
}

func header(subtitle string) string {
	title := TitleStyle.Render("📊 Tabula - Excel to JSON Converter")
	return lipgloss.JoinVertical(lipgloss.Left, title, SubtitleStyle.Render(subtitle))
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(header("Create templates, convert spreadsheets and get help"))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		line := fmt.Sprintf("  %s", item.title)
		if m.cursor == i {
			line = SelectedStyle.Render("> " + item.title)
		} else {
			line = UnselectedStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("    " + item.desc))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(helpLine(keys.Up, keys.Down, keys.Enter, keys.QuitMenu))

	return s.String()
}

func (m Model) viewTemplate() string {
	var s strings.Builder

	s.WriteString(header("Create Custom Template"))
	s.WriteString("\n\n")
	s.WriteString(m.nameInput.View())
	s.WriteString("\n")
	s.WriteString(m.sampleInput.View())
	s.WriteString("\n\n")

	rows := m.session.ColumnRows()
	if len(rows) == 0 {
		s.WriteString(WarningStyle.Render("ℹ️ Add columns to start building your template"))
		s.WriteString("\n")
	} else {
		s.WriteString(fmt.Sprintf("Current Columns (%d)\n", len(rows)))
		tbl := newStaticTable("#", "Column Name", "Sample Value")
		for _, r := range rows {
			tbl.Row(fmt.Sprint(r.Index), r.Name, r.SampleValue)
		}
		s.WriteString(tbl.Render())
		s.WriteString("\n")
	}

	if m.templateSaved != "" {
		s.WriteString("\n")
		s.WriteString(SuccessStyle.Render("Saved " + m.templateSaved))
		s.WriteString("\n")
		if m.templatePreview != nil {
			s.WriteString("Template Preview\n")
			s.WriteString(renderTable(m.templatePreview))
			s.WriteString("\n")
		}
	}

	s.WriteString(m.viewStatus())
	s.WriteString("\n")
	s.WriteString(helpLine(keys.Enter, keys.Tab, keys.Generate, keys.Clear, keys.Back))

	return BoxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(header("Select an Excel or CSV file to convert (.csv, .xlsx, .xls)"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n")
	s.WriteString(m.viewStatus())
	s.WriteString("\n")
	s.WriteString(helpLine(keys.Enter, keys.Back, keys.Quit))

	return s.String()
}

func (m Model) viewPreview() string {
	result := m.session.Result()
	if result == nil {
		return ""
	}

	var s strings.Builder

	s.WriteString(header("File: " + filepath.Base(result.FileName)))
	s.WriteString("\n\n")

	tabs := []string{"Data Preview", "JSON Output"}
	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		if previewTab(i) == m.tab {
			rendered[i] = ActiveTabStyle.Render(t)
		} else {
			rendered[i] = InactiveTabStyle.Render(t)
		}
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	s.WriteString("\n\n")

	if m.tab == tabTable {
		if result.Table.NumCols() == 0 {
			s.WriteString(WarningStyle.Render("The file has no columns"))
		} else {
			s.WriteString(m.dataTable.View())
		}
	} else {
		s.WriteString(m.jsonView.View())
	}
	s.WriteString("\n\n")

	s.WriteString(fmt.Sprintf("Total Rows: %d  •  Total Columns: %d\n",
		result.Table.NumRows(), result.Table.NumCols()))
	s.WriteString(HelpStyle.Render("Column Names: " + strings.Join(result.Table.Columns, ", ")))
	s.WriteString("\n")
	s.WriteString(m.viewStatus())
	s.WriteString("\n")
	s.WriteString(helpLine(keys.Tab, keys.SaveJSON, keys.SaveCSV, keys.SaveYAML, keys.Back))

	return s.String()
}

func (m Model) viewHelp() string {
	var s strings.Builder

	s.WriteString(header("Help & Support"))
	s.WriteString("\n\n")
	s.WriteString(m.queryInput.View())
	s.WriteString("\n\n")

	for _, b := range m.responses {
		s.WriteString(BlockStyle.Render(b.Text))
		s.WriteString("\n")
	}

	if len(m.responses) == 0 {
		s.WriteString(TitleStyle.Render("Frequently Asked Questions"))
		s.WriteString("\n")
		for _, section := range intent.FAQ {
			s.WriteString(SelectedStyle.Render(section.Title))
			s.WriteString("\n")
			for _, e := range section.Entries {
				s.WriteString("  Q: " + e.Question + "\n")
				s.WriteString(HelpStyle.Render("  A: "+e.Answer) + "\n")
			}
			s.WriteString("\n")
		}
	}

	s.WriteString(helpLine(keys.Enter, keys.Back, keys.Quit))

	return s.String()
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	if m.err != nil {
		if m.errContext != "" {
			s.WriteString(m.errContext + ": ")
		}
		s.WriteString(m.err.Error())
	}
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press any key to try again"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return WarningStyle.Render(m.status)
	}
	return SuccessStyle.Render(m.status)
}

func newStaticTable(headers ...string) *ltable.Table {
	return ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

// renderTable draws a small table in full, with None for empty cells.
func renderTable(t *types.Table) string {
	tbl := newStaticTable(t.Columns...)
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "None"
				continue
			}
			cells[i] = converter.FormatCell(v)
		}
		tbl.Row(cells...)
	}
	return tbl.Render()
}
