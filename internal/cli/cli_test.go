package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nconklindev/tabula/internal/converter"
	"github.com/nconklindev/tabula/internal/intent"
)

// run executes the command tree with an isolated config file.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	cmd := NewRootCmd(BuildInfo{Version: "test", Commit: "abc", Date: "today"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "test (commit: abc, built: today)" {
		t.Errorf("Unexpected version output %q", out)
	}
}

func TestConvertCommand(t *testing.T) {
	path := writeCSV(t, "Name,Hours,Code\nAlice,8,01\n")

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "JSON by default",
			args:     []string{"convert", path},
			expected: "[\n  {\n    \"Name\": \"Alice\",\n    \"Hours\": 8,\n    \"Code\": \"01\"\n  }\n]\n",
		},
		{
			name:     "No inference keeps text",
			args:     []string{"convert", path, "--no-infer"},
			expected: "[\n  {\n    \"Name\": \"Alice\",\n    \"Hours\": \"8\",\n    \"Code\": \"01\"\n  }\n]\n",
		},
		{
			name:     "CSV output",
			args:     []string{"convert", path, "--format", "csv"},
			expected: "Name,Hours,Code\nAlice,8,01\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("convert failed: %v", err)
			}
			if out != tt.expected {
				t.Errorf("Output = %q; want %q", out, tt.expected)
			}
		})
	}
}

func TestConvertCommand_OutputFile(t *testing.T) {
	path := writeCSV(t, "A\n1\n2\n")
	dest := filepath.Join(t.TempDir(), "out.yaml")

	out, err := run(t, "convert", path, "--format", "yaml", "--output", dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Wrote 2 record(s)") {
		t.Errorf("Unexpected message %q", out)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "A: 1") {
		t.Errorf("Unexpected YAML %s", data)
	}
}

func TestConvertCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"Malformed CSV", []string{"convert", writeCSV(t, "A,B\n1,2,3\n")}},
		{"Unknown format", []string{"convert", writeCSV(t, "A\n1\n"), "--format", "xml"}},
		{"Missing file", []string{"convert", filepath.Join(t.TempDir(), "missing.csv")}},
		{"No argument", []string{"convert"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestTemplateCommand(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "template.xlsx")

	out, err := run(t, "template", "--column", "PolicyId=01", "-c", "Role", "--output", dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "2 columns") {
		t.Errorf("Unexpected output %q", out)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	records, table, err := converter.Parse(data, "template.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(table.Columns, ",") != "PolicyId,Role" {
		t.Errorf("Unexpected columns %v", table.Columns)
	}
	if v, _ := records[0].Get("PolicyId"); v != "01" {
		t.Errorf("Expected sample 01, got %#v", v)
	}

	if _, err := run(t, "template"); err == nil {
		t.Error("Expected an error without columns")
	}
	if _, err := run(t, "template", "--column", "  =x"); err == nil {
		t.Error("Expected an error for a blank name")
	}
}

func TestAskCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"Fallback", []string{"ask", "xyz", "nonsense"}},
		{"Several topics", []string{"ask", "hello,", "can", "you", "help", "me", "with", "templates"}},
		{"Quoted query", []string{"ask", "how do I convert a csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}

			var texts []string
			for _, b := range intent.Respond(strings.Join(tt.args[1:], " ")) {
				texts = append(texts, b.Text)
			}
			want := strings.Join(texts, "\n\n") + "\n"
			if out != want {
				t.Errorf("Output = %q; want %q", out, want)
			}
		})
	}

	if _, err := run(t, "ask"); err == nil {
		t.Error("Expected an error without a query")
	}
}
