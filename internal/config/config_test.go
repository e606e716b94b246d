package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewManagerLoadCreatesDefaults(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	mgr := NewManager(tmpDir)
	if err := mgr.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "config.json")); err != nil {
		t.Fatalf("expected config.json to be created, got %v", err)
	}
	if mgr.Get().FPS != 60 {
		t.Errorf("expected default fps 60, got %v", mgr.Get().FPS)
	}
}

func TestManagerLoadRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	mgr1 := NewManager(tmpDir)
	if err := mgr1.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := mgr1.AddLibraryPath("/music"); err != nil {
		t.Fatalf("AddLibraryPath failed: %v", err)
	}

	mgr2 := NewManager(tmpDir)
	if err := mgr2.Load(); err != nil {
		t.Fatalf("reload Load failed: %v", err)
	}

	paths := mgr2.Get().LibraryPaths
	if len(paths) != 1 || paths[0] != "/music" {
		t.Errorf("expected reloaded library paths [/music], got %v", paths)
	}
}

func TestAddLibraryPathDeduplicates(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	mgr := NewManager(tmpDir)
	if err := mgr.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	mgr.AddLibraryPath("/music")
	mgr.AddLibraryPath("/music")

	if len(mgr.Get().LibraryPaths) != 1 {
		t.Errorf("expected deduplicated library paths, got %v", mgr.Get().LibraryPaths)
	}
}

func TestRemoveLibraryPath(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	mgr := NewManager(tmpDir)
	if err := mgr.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	mgr.AddLibraryPath("/music")
	mgr.RemoveLibraryPath("/music")

	if len(mgr.Get().LibraryPaths) != 0 {
		t.Errorf("expected empty library paths after removal, got %v", mgr.Get().LibraryPaths)
	}
}
