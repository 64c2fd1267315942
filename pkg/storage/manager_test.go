package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestManager(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "Downloads")

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if _, err := os.Stat(tempDir); err != nil {
		t.Fatalf("Expected base directory to exist: %v", err)
	}

	folder, err := manager.EnsureFolder(manager.BaseDir(), "Travel")
	if err != nil {
		t.Fatalf("Failed to create board folder: %v", err)
	}
	if folder != filepath.Join(tempDir, "Travel") {
		t.Errorf("Unexpected folder path %s", folder)
	}

	path := filepath.Join(folder, "2b3069.jpg")
	if manager.Exists(path) {
		t.Error("Expected Exists to return false before writing")
	}

	data := []byte("jpeg bytes")
	n, err := manager.WriteFile(path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if n != int64(len(data)) {
		t.Errorf("Expected %d bytes written, got %d", len(data), n)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if !bytes.Equal(content, data) {
		t.Error("File content does not match expected data")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Expected temporary file to be gone")
	}

	if !manager.Exists(path) {
		t.Error("Expected Exists to return true after writing")
	}
	if manager.Exists(folder) {
		t.Error("Expected Exists to be false for a directory")
	}
}

func TestEnsureFolderIsIdempotent(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	first, err := manager.EnsureFolder(manager.BaseDir(), "cats")
	if err != nil {
		t.Fatal(err)
	}
	second, err := manager.EnsureFolder(manager.BaseDir(), "cats")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("Expected same folder, got %s and %s", first, second)
	}
}

func TestEnsureFolderRejectsTraversal(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"", "  ", ".", "..", "a/b", `a\b`} {
		if _, err := manager.EnsureFolder(manager.BaseDir(), name); err == nil {
			t.Errorf("Expected error for folder name %q", name)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteFileCleansUpOnError(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "broken.jpg")
	if _, err := manager.WriteFile(path, failingReader{}); err == nil {
		t.Fatal("Expected write error")
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected no final file after failed write")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Expected temporary file to be removed")
	}
}
