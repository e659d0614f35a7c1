package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	for _, debug := range []bool{false, true} {
		logger, err := New(debug, "")
		if err != nil {
			t.Fatalf("New(%v) failed: %v", debug, err)
		}
		if logger == nil {
			t.Fatalf("New(%v) returned nil logger", debug)
		}
		_ = logger.Sync()
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tabula.log")

	logger, err := New(false, path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("file written")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "file written") {
		t.Errorf("Expected log line in file, got %q", data)
	}
}
