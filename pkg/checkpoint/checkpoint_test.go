package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"pinscraper/pkg/logger"
)

func TestCheckpointManager(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	username := "alice"

	t.Run("CreateAndLoad", func(t *testing.T) {
		mgr, err := NewManager(username, logger.NewNopLogger())
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}

		cp, err := mgr.Create(username, "https://www.pinterest.com/alice/")
		if err != nil {
			t.Fatalf("Failed to create checkpoint: %v", err)
		}
		if cp.RunID == "" {
			t.Error("Expected a run id")
		}

		loaded, err := mgr.Load()
		if err != nil {
			t.Fatalf("Failed to load checkpoint: %v", err)
		}
		if loaded == nil {
			t.Fatal("Expected checkpoint, got nil")
		}
		if loaded.ProfileURL != "https://www.pinterest.com/alice/" {
			t.Errorf("Unexpected profile url %s", loaded.ProfileURL)
		}
		if loaded.RunID != cp.RunID {
			t.Errorf("Expected run id %s, got %s", cp.RunID, loaded.RunID)
		}
	})

	t.Run("MarkBoardDone", func(t *testing.T) {
		mgr, err := NewManager(username, logger.NewNopLogger())
		if err != nil {
			t.Fatal(err)
		}
		cp, err := mgr.Create(username, "https://www.pinterest.com/alice/")
		if err != nil {
			t.Fatal(err)
		}

		board := "https://www.pinterest.com/alice/travel/"
		if cp.IsBoardDone(board) {
			t.Error("Board should not be done yet")
		}
		if err := mgr.MarkBoardDone(cp, board); err != nil {
			t.Fatalf("Failed to mark board: %v", err)
		}

		loaded, err := mgr.Load()
		if err != nil {
			t.Fatal(err)
		}
		if !loaded.IsBoardDone(board) {
			t.Error("Expected board to be recorded as done")
		}
		if loaded.IsBoardDone("https://www.pinterest.com/alice/cats/") {
			t.Error("Unrelated board must not be done")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		mgr, err := NewManager(username, logger.NewNopLogger())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := mgr.Create(username, ""); err != nil {
			t.Fatal(err)
		}
		if !mgr.Exists() {
			t.Fatal("Expected checkpoint to exist")
		}
		if err := mgr.Delete(); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if mgr.Exists() {
			t.Error("Expected checkpoint to be gone")
		}
		if err := mgr.Delete(); err != nil {
			t.Errorf("Deleting a missing checkpoint should not fail: %v", err)
		}
	})
}

func TestLoadMissingCheckpoint(t *testing.T) {
	mgr, err := NewManagerAt(t.TempDir(), "nobody", logger.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	cp, err := mgr.Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cp != nil {
		t.Error("Expected nil checkpoint")
	}
}

func TestLoadCorruptCheckpoint(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManagerAt(dir, "bob", logger.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bob.checkpoint.json"), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Load(); err == nil {
		t.Error("Expected decode error")
	}
}
